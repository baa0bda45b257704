package notify

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type recordingSink struct {
	mu  sync.Mutex
	got []Notification
	err error
}

func (s *recordingSink) Deliver(n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, n)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestDispatcher_DeliversToAllSinks(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{err: errors.New("offline")}

	d, err := NewDispatcher(2, a, b)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	defer d.Close(time.Second)

	u1, u2 := uuid.New(), uuid.New()
	d.Notify(
		Notification{UserID: u1, Kind: KindSuccess, Message: "Contract finalized"},
		Notification{UserID: u2, Kind: KindSuccess, Message: "Contract finalized"},
	)

	waitFor(t, "both sinks", func() bool { return a.count() == 2 && b.count() == 2 })

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, n := range a.got {
		if n.CreatedAt.IsZero() {
			t.Fatalf("created_at not stamped: %+v", n)
		}
	}
}

func TestHub_DeliverWithoutSession(t *testing.T) {
	h := NewHub()
	if err := h.Deliver(Notification{UserID: uuid.New()}); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestHub_WebsocketRoundTrip(t *testing.T) {
	h := NewHub()
	userID := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Serve(w, r, userID)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	waitFor(t, "session registration", func() bool { return h.Connected(userID) == 1 })

	contractID := uuid.New()
	want := Notification{UserID: userID, Kind: KindError, Message: "Invalid action", ContractID: &contractID}
	if err := h.Deliver(want); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Notification
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Message != want.Message || got.Kind != KindError || got.ContractID == nil || *got.ContractID != contractID {
		t.Fatalf("unexpected notification: %+v", got)
	}

	_ = conn.Close()
	waitFor(t, "session cleanup", func() bool { return h.Connected(userID) == 0 })
}
