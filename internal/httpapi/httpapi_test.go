package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/services-marketplace/internal/config"
	"github.com/Leganyst/services-marketplace/internal/db"
	"github.com/Leganyst/services-marketplace/internal/model"
	"github.com/Leganyst/services-marketplace/internal/notify"
	"github.com/Leganyst/services-marketplace/internal/repository"
	"github.com/Leganyst/services-marketplace/internal/service"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gdb, err := db.NewGormDB(&config.DBConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := model.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	users := repository.NewGormUserRepository(gdb)
	providers := repository.NewGormProviderRepository(gdb)
	messages := repository.NewGormMessageRepository(gdb)

	return Setup(gin.TestMode, Services{
		Contracts: service.NewContractService(service.ContractDeps{
			Contracts:   repository.NewGormContractRepository(gdb),
			Users:       users,
			Providers:   providers,
			Messages:    messages,
			Settlements: repository.NewGormSettlementRepository(gdb),
			Events:      repository.NewGormEventRepository(gdb),
		}, service.DefaultRates()),
		Identity:  service.NewIdentityService(users, providers),
		Messaging: service.NewMessagingService(messages, users, nil),
		Hub:       notify.NewHub(),
	})
}

func do(t *testing.T, r http.Handler, method, path, actor string, body any) (int, apiResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actor != "" {
		req.Header.Set(ActorHeader, actor)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s %s: decode response %q: %v", method, path, w.Body.String(), err)
	}
	return w.Code, resp
}

func register(t *testing.T, r http.Handler, email, role string) string {
	t.Helper()
	code, resp := do(t, r, http.MethodPost, "/api/v1/users", "", gin.H{"email": email, "display_name": email, "role": role})
	if code != http.StatusCreated {
		t.Fatalf("register %s: %d %s", email, code, resp.Message)
	}
	var u userView
	if err := json.Unmarshal(resp.Data, &u); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	return u.ID
}

func decodeContract(t *testing.T, resp apiResponse) contractView {
	t.Helper()
	var v contractView
	if err := json.Unmarshal(resp.Data, &v); err != nil {
		t.Fatalf("decode contract: %v", err)
	}
	return v
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health = %d", w.Code)
	}
}

func TestRouter_FinalizeFlow(t *testing.T) {
	r := newTestRouter(t)

	client := register(t, r, "client@example.com", model.RoleCodeClient)
	provider := register(t, r, "provider@example.com", model.RoleCodeProvider)

	code, resp := do(t, r, http.MethodPut, "/api/v1/me/listing", provider, gin.H{"service_title": "Logo design", "service_rate": "50"})
	if code != http.StatusOK {
		t.Fatalf("listing: %d %s", code, resp.Message)
	}

	code, resp = do(t, r, http.MethodPost, "/api/v1/contracts", client, gin.H{"provider_id": provider})
	if code != http.StatusCreated {
		t.Fatalf("create: %d %s", code, resp.Message)
	}
	c := decodeContract(t, resp)
	if c.ServiceTitle != "Logo design" || c.ServiceRate != "50.00" || c.Status != "pending" {
		t.Fatalf("unexpected contract: %+v", c)
	}
	base := "/api/v1/contracts/" + c.ID

	code, _ = do(t, r, http.MethodPost, "/api/v1/contracts", client, gin.H{"provider_id": provider})
	if code != http.StatusConflict {
		t.Fatalf("duplicate create = %d, want 409", code)
	}

	steps := []struct {
		path  string
		actor string
		body  any
	}{
		{base + "/offer", provider, gin.H{"new_rate": 60}},
		{base + "/deposit", client, nil},
		{base + "/actions", client, gin.H{"action": "finalize"}},
		{base + "/actions", provider, gin.H{"action": "finalize"}},
	}
	for _, s := range steps {
		code, resp = do(t, r, http.MethodPost, s.path, s.actor, s.body)
		if code != http.StatusOK {
			t.Fatalf("POST %s: %d %s", s.path, code, resp.Message)
		}
	}
	c = decodeContract(t, resp)
	if c.Status != "finalized" || c.ServiceRate != "60.00" || len(c.AvailableActions) != 0 {
		t.Fatalf("unexpected final contract: %+v", c)
	}

	// повтор действия на закрытом контракте
	code, _ = do(t, r, http.MethodPost, base+"/actions", client, gin.H{"action": "cancel"})
	if code != http.StatusConflict {
		t.Fatalf("action on finalized = %d, want 409", code)
	}

	code, resp = do(t, r, http.MethodGet, "/api/v1/pairs/"+client+"/latest", provider, nil)
	if code != http.StatusOK || decodeContract(t, resp).ID != c.ID {
		t.Fatalf("latest: %d %s", code, resp.Data)
	}
	code, resp = do(t, r, http.MethodGet, "/api/v1/pairs/"+provider+"/open", client, nil)
	if code != http.StatusOK || string(resp.Data) != `{"exists":false}` {
		t.Fatalf("open: %d %s", code, resp.Data)
	}
}

func TestRouter_ListPaginates(t *testing.T) {
	r := newTestRouter(t)

	client := register(t, r, "client@example.com", model.RoleCodeClient)
	for _, email := range []string{"p1@example.com", "p2@example.com", "p3@example.com"} {
		provider := register(t, r, email, model.RoleCodeProvider)
		code, resp := do(t, r, http.MethodPost, "/api/v1/contracts", client, gin.H{
			"provider_id": provider, "service_title": "Work", "service_rate": "10",
		})
		if code != http.StatusCreated {
			t.Fatalf("create: %d %s", code, resp.Message)
		}
	}

	code, resp := do(t, r, http.MethodGet, "/api/v1/contracts?page=1&page_size=2", client, nil)
	if code != http.StatusOK {
		t.Fatalf("list: %d %s", code, resp.Message)
	}
	var page struct {
		Items   []contractView `json:"items"`
		Total   int            `json:"total"`
		HasNext bool           `json:"has_next"`
	}
	if err := json.Unmarshal(resp.Data, &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if len(page.Items) != 2 || page.Total != 3 || !page.HasNext {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestRouter_Errors(t *testing.T) {
	r := newTestRouter(t)

	client := register(t, r, "client@example.com", model.RoleCodeClient)
	provider := register(t, r, "provider@example.com", model.RoleCodeProvider)
	stranger := register(t, r, "stranger@example.com", model.RoleCodeClient)

	code, _ := do(t, r, http.MethodGet, "/api/v1/contracts", "", nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("no actor = %d, want 401", code)
	}

	code, _ = do(t, r, http.MethodGet, "/api/v1/contracts/not-a-uuid", client, nil)
	if code != http.StatusBadRequest {
		t.Fatalf("bad id = %d, want 400", code)
	}

	code, _ = do(t, r, http.MethodGet, "/api/v1/contracts/"+stranger, client, nil)
	if code != http.StatusNotFound {
		t.Fatalf("unknown contract = %d, want 404", code)
	}

	code, resp := do(t, r, http.MethodPost, "/api/v1/contracts", client, gin.H{
		"provider_id": provider, "service_title": "Work", "service_rate": "-1",
	})
	if code != http.StatusBadRequest || resp.Success {
		t.Fatalf("negative rate = %d, want 400", code)
	}

	_, resp = do(t, r, http.MethodPost, "/api/v1/contracts", client, gin.H{
		"provider_id": provider, "service_title": "Work", "service_rate": "5",
	})
	id := decodeContract(t, resp).ID

	code, _ = do(t, r, http.MethodGet, "/api/v1/contracts/"+id, stranger, nil)
	if code != http.StatusForbidden {
		t.Fatalf("stranger read = %d, want 403", code)
	}

	code, _ = do(t, r, http.MethodPost, "/api/v1/contracts/"+id+"/actions", client, gin.H{"action": "explode"})
	if code != http.StatusBadRequest {
		t.Fatalf("unknown action = %d, want 400", code)
	}

	code, _ = do(t, r, http.MethodPost, "/api/v1/contracts/"+id+"/resolve", client, gin.H{"resolution": "to_client"})
	if code != http.StatusForbidden {
		t.Fatalf("non-admin resolve = %d, want 403", code)
	}

	code, _ = do(t, r, http.MethodPut, "/api/v1/users/"+provider+"/role", client, gin.H{"role": "admin"})
	if code != http.StatusForbidden {
		t.Fatalf("foreign role change = %d, want 403", code)
	}
}

func TestRouter_Messages(t *testing.T) {
	r := newTestRouter(t)

	a := register(t, r, "a@example.com", model.RoleCodeClient)
	b := register(t, r, "b@example.com", model.RoleCodeProvider)

	code, resp := do(t, r, http.MethodPost, "/api/v1/messages", a, gin.H{"recipient_id": b, "body": "hello"})
	if code != http.StatusCreated {
		t.Fatalf("send: %d %s", code, resp.Message)
	}

	code, resp = do(t, r, http.MethodGet, "/api/v1/messages/"+a, b, nil)
	if code != http.StatusOK {
		t.Fatalf("conversation: %d %s", code, resp.Message)
	}
	var msgs []messageView
	if err := json.Unmarshal(resp.Data, &msgs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Body != "hello" || msgs[0].SenderID != a {
		t.Fatalf("unexpected conversation: %+v", msgs)
	}
}

func TestRouter_AdminNotSelfAssignable(t *testing.T) {
	r := newTestRouter(t)

	code, resp := do(t, r, http.MethodPost, "/api/v1/users", "", gin.H{"email": "root@example.com", "role": "admin"})
	if code != http.StatusForbidden || resp.Success {
		t.Fatalf("register as admin = %d, want 403", code)
	}

	client := register(t, r, "client@example.com", model.RoleCodeClient)
	provider := register(t, r, "provider@example.com", model.RoleCodeProvider)

	_, resp = do(t, r, http.MethodPost, "/api/v1/contracts", client, gin.H{
		"provider_id": provider, "service_title": "Work", "service_rate": "50",
	})
	base := "/api/v1/contracts/" + decodeContract(t, resp).ID
	for _, s := range []struct {
		path, actor string
		body        any
	}{
		{base + "/offer", provider, gin.H{"new_rate": 60}},
		{base + "/deposit", client, nil},
		{base + "/actions", client, gin.H{"action": "dispute"}},
	} {
		if code, resp := do(t, r, http.MethodPost, s.path, s.actor, s.body); code != http.StatusOK {
			t.Fatalf("POST %s: %d %s", s.path, code, resp.Message)
		}
	}

	code, _ = do(t, r, http.MethodPut, "/api/v1/users/"+client+"/role", client, gin.H{"role": "admin"})
	if code != http.StatusForbidden {
		t.Fatalf("self-promote = %d, want 403", code)
	}
	code, _ = do(t, r, http.MethodPost, base+"/resolve", client, gin.H{"resolution": "to_client"})
	if code != http.StatusForbidden {
		t.Fatalf("resolve by party = %d, want 403", code)
	}

	code, resp = do(t, r, http.MethodGet, base, client, nil)
	if code != http.StatusOK || decodeContract(t, resp).Status != "disputed" {
		t.Fatalf("contract must stay disputed: %d %s", code, resp.Data)
	}

	// своя роль в пределах client/provider меняется без администратора
	code, resp = do(t, r, http.MethodPut, "/api/v1/users/"+client+"/role", client, gin.H{"role": "provider"})
	if code != http.StatusOK {
		t.Fatalf("self role change = %d %s", code, resp.Message)
	}
}

func TestRouter_ContractRequiresProviderRole(t *testing.T) {
	r := newTestRouter(t)

	a := register(t, r, "a@example.com", model.RoleCodeClient)
	b := register(t, r, "b@example.com", model.RoleCodeClient)

	code, _ := do(t, r, http.MethodPost, "/api/v1/contracts", a, gin.H{
		"provider_id": b, "service_title": "Work", "service_rate": "10",
	})
	if code != http.StatusForbidden {
		t.Fatalf("contract with a client as provider = %d, want 403", code)
	}

	code, _ = do(t, r, http.MethodPost, "/api/v1/contracts", a, gin.H{
		"provider_id": register(t, r, "p@example.com", model.RoleCodeProvider), "service_title": "Work", "service_rate": "-0.004",
	})
	if code != http.StatusBadRequest {
		t.Fatalf("negative sub-cent rate = %d, want 400", code)
	}
}
