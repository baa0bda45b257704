package rpc

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	marketplacepb "github.com/Leganyst/services-marketplace/internal/api/marketplace/v1"
	"github.com/Leganyst/services-marketplace/internal/config"
	"github.com/Leganyst/services-marketplace/internal/db"
	"github.com/Leganyst/services-marketplace/internal/model"
	"github.com/Leganyst/services-marketplace/internal/repository"
	"github.com/Leganyst/services-marketplace/internal/service"
)

type testEnv struct {
	contracts *marketplacepb.ContractServiceClient
	identity  *marketplacepb.IdentityServiceClient

	identitySvc *service.IdentityService
}

func newTestEnv(t *testing.T) *testEnv {
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
	contractSvc := service.NewContractService(service.ContractDeps{
		Contracts:   repository.NewGormContractRepository(gdb),
		Users:       users,
		Providers:   providers,
		Messages:    repository.NewGormMessageRepository(gdb),
		Settlements: repository.NewGormSettlementRepository(gdb),
		Events:      repository.NewGormEventRepository(gdb),
	}, service.DefaultRates())
	identitySvc := service.NewIdentityService(users, providers)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	marketplacepb.RegisterContractServiceServer(srv, NewContractServer(contractSvc))
	marketplacepb.RegisterIdentityServiceServer(srv, NewIdentityServer(identitySvc))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return &testEnv{
		contracts: marketplacepb.NewContractServiceClient(conn),
		identity:  marketplacepb.NewIdentityServiceClient(conn),

		identitySvc: identitySvc,
	}
}

// admin заводится так же, как при старте сервиса из конфига.
func (e *testEnv) admin(t *testing.T, email string) string {
	t.Helper()
	p, err := e.identitySvc.EnsureAdmin(context.Background(), email, "Admin")
	if err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	return p.User.ID.String()
}

func (e *testEnv) register(t *testing.T, email, role string) string {
	t.Helper()
	resp, err := e.identity.RegisterUser(context.Background(), &marketplacepb.RegisterUserRequest{
		Email:       email,
		DisplayName: email,
		RoleCode:    role,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return resp.GetUser().Id
}

func assertCode(t *testing.T, err error, want codes.Code) {
	t.Helper()
	if got := status.Code(err); got != want {
		t.Fatalf("code = %s, want %s (err=%v)", got, want, err)
	}
}

func TestContractServer_DisputeFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	client := env.register(t, "client@example.com", model.RoleCodeClient)
	provider := env.register(t, "provider@example.com", model.RoleCodeProvider)
	admin := env.admin(t, "admin@example.com")

	if _, err := env.identity.UpsertListing(ctx, &marketplacepb.UpsertListingRequest{
		UserId:       provider,
		ServiceTitle: "Translation",
		ServiceRate:  "60",
	}); err != nil {
		t.Fatalf("listing: %v", err)
	}

	created, err := env.contracts.CreateContract(ctx, &marketplacepb.CreateContractRequest{
		ClientId:    client,
		ProviderId:  provider,
		FromListing: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	c := created.GetContract()
	if c.Status != string(model.ContractStatusPending) || c.ServiceRate != "60.00" {
		t.Fatalf("unexpected contract: %+v", c)
	}
	if c.CreatedAt == nil || c.CreatedAt.AsTime().IsZero() {
		t.Fatalf("created_at must be set")
	}

	// второй контракт той же паре не положен
	_, err = env.contracts.CreateContract(ctx, &marketplacepb.CreateContractRequest{
		ClientId: client, ProviderId: provider, ServiceTitle: "Again", ServiceRate: "10",
	})
	assertCode(t, err, codes.AlreadyExists)

	if _, err := env.contracts.MakeOffer(ctx, &marketplacepb.MakeOfferRequest{ContractId: c.Id, ActorId: provider, NewRate: "60"}); err != nil {
		t.Fatalf("offer: %v", err)
	}
	if _, err := env.contracts.DepositFunds(ctx, &marketplacepb.ContractRef{ContractId: c.Id, ActorId: client}); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, err := env.contracts.HandleContractAction(ctx, &marketplacepb.ContractActionRequest{ContractId: c.Id, ActorId: client, Action: "dispute"}); err != nil {
		t.Fatalf("dispute: %v", err)
	}

	_, err = env.contracts.ResolveDispute(ctx, &marketplacepb.ResolveDisputeRequest{ContractId: c.Id, AdminId: client, Resolution: "to_client"})
	assertCode(t, err, codes.PermissionDenied)

	resolved, err := env.contracts.ResolveDispute(ctx, &marketplacepb.ResolveDisputeRequest{ContractId: c.Id, AdminId: admin, Resolution: "to_provider"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := resolved.GetContract(); got.Status != string(model.ContractStatusFinalizedByDispute) || got.DisputeResolution != "to_provider" {
		t.Fatalf("unexpected resolved contract: %+v", got)
	}

	_, err = env.contracts.HandleContractAction(ctx, &marketplacepb.ContractActionRequest{ContractId: c.Id, ActorId: provider, Action: "cancel"})
	assertCode(t, err, codes.FailedPrecondition)
}

func TestContractServer_QueriesAndQuote(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	client := env.register(t, "c@example.com", model.RoleCodeClient)
	provider := env.register(t, "p@example.com", model.RoleCodeProvider)
	stranger := env.register(t, "s@example.com", model.RoleCodeClient)

	pair := &marketplacepb.PairRequest{FirstUserId: client, SecondUserId: provider}
	latest, err := env.contracts.GetLatestBetween(ctx, pair)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.GetContract() != nil {
		t.Fatalf("expected no contract yet, got %+v", latest.GetContract())
	}

	created, err := env.contracts.CreateContract(ctx, &marketplacepb.CreateContractRequest{
		ClientId: client, ProviderId: provider, ServiceTitle: "Audit", ServiceRate: "60",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := created.GetContract().Id

	open, err := env.contracts.HasActiveOrPending(ctx, pair)
	if err != nil || !open.Exists {
		t.Fatalf("has active or pending = %v, %v", open, err)
	}

	q, err := env.contracts.GetQuote(ctx, &marketplacepb.ContractRef{ContractId: id, ActorId: client})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.ClientTotal != "63.00" || q.ProviderAmount != "54.00" || q.PlatformCommission != "6.00" {
		t.Fatalf("unexpected quote: %+v", q)
	}

	_, err = env.contracts.GetContract(ctx, &marketplacepb.ContractRef{ContractId: id, ActorId: stranger})
	assertCode(t, err, codes.PermissionDenied)

	got, err := env.contracts.GetContract(ctx, &marketplacepb.ContractRef{ContractId: id, ActorId: provider})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.AvailableActions) == 0 {
		t.Fatalf("provider must have actions on a pending contract")
	}

	list, err := env.contracts.ListContracts(ctx, &marketplacepb.ListContractsRequest{UserId: client, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.TotalCount != 1 || len(list.Contracts) != 1 || list.HasNext {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestContractServer_InvalidArguments(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	client := env.register(t, "c@example.com", model.RoleCodeClient)
	provider := env.register(t, "p@example.com", model.RoleCodeProvider)

	_, err := env.contracts.CreateContract(ctx, &marketplacepb.CreateContractRequest{ClientId: "nope", ProviderId: provider})
	assertCode(t, err, codes.InvalidArgument)

	_, err = env.contracts.CreateContract(ctx, &marketplacepb.CreateContractRequest{
		ClientId: client, ProviderId: provider, ServiceTitle: "X", ServiceRate: "abc",
	})
	assertCode(t, err, codes.InvalidArgument)

	_, err = env.contracts.CreateContract(ctx, &marketplacepb.CreateContractRequest{
		ClientId: client, ProviderId: provider, ServiceTitle: "X", ServiceRate: "-5",
	})
	assertCode(t, err, codes.InvalidArgument)

	created, err := env.contracts.CreateContract(ctx, &marketplacepb.CreateContractRequest{
		ClientId: client, ProviderId: provider, ServiceTitle: "X", ServiceRate: "5",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = env.contracts.HandleContractAction(ctx, &marketplacepb.ContractActionRequest{
		ContractId: created.GetContract().Id, ActorId: client, Action: "explode",
	})
	assertCode(t, err, codes.InvalidArgument)

	_, err = env.contracts.GetContract(ctx, &marketplacepb.ContractRef{ContractId: provider, ActorId: client})
	assertCode(t, err, codes.NotFound)
}

func TestIdentityServer_Profile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	id := env.register(t, "Someone@Example.com", "")

	byEmail, err := env.identity.GetProfile(ctx, &marketplacepb.GetProfileRequest{Email: "someone@example.com"})
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.GetUser().Id != id || byEmail.GetUser().RoleCode != model.RoleCodeClient {
		t.Fatalf("unexpected profile: %+v", byEmail.GetUser())
	}

	_, err = env.identity.RegisterUser(ctx, &marketplacepb.RegisterUserRequest{Email: "someone@example.com"})
	assertCode(t, err, codes.AlreadyExists)

	// клиент не может завести карточку исполнителя
	_, err = env.identity.UpsertListing(ctx, &marketplacepb.UpsertListingRequest{UserId: id, ServiceTitle: "X", ServiceRate: "1"})
	assertCode(t, err, codes.PermissionDenied)

	promoted, err := env.identity.SetRole(ctx, &marketplacepb.SetRoleRequest{UserId: id, RoleCode: model.RoleCodeProvider})
	if err != nil {
		t.Fatalf("set role: %v", err)
	}
	if promoted.GetUser().RoleCode != model.RoleCodeProvider {
		t.Fatalf("role = %q", promoted.GetUser().RoleCode)
	}

	_, err = env.identity.SetRole(ctx, &marketplacepb.SetRoleRequest{UserId: id, RoleCode: "wizard"})
	assertCode(t, err, codes.InvalidArgument)

	// admin нельзя ни получить при регистрации, ни выдать себе
	_, err = env.identity.RegisterUser(ctx, &marketplacepb.RegisterUserRequest{Email: "root@example.com", RoleCode: model.RoleCodeAdmin})
	assertCode(t, err, codes.PermissionDenied)
	_, err = env.identity.SetRole(ctx, &marketplacepb.SetRoleRequest{UserId: id, RoleCode: model.RoleCodeAdmin})
	assertCode(t, err, codes.PermissionDenied)

	other := env.register(t, "other@example.com", model.RoleCodeClient)
	_, err = env.identity.SetRole(ctx, &marketplacepb.SetRoleRequest{UserId: other, ActorId: id, RoleCode: model.RoleCodeProvider})
	assertCode(t, err, codes.PermissionDenied)

	admin := env.admin(t, "admin@example.com")
	granted, err := env.identity.SetRole(ctx, &marketplacepb.SetRoleRequest{UserId: other, ActorId: admin, RoleCode: model.RoleCodeAdmin})
	if err != nil {
		t.Fatalf("admin grant: %v", err)
	}
	if granted.GetUser().RoleCode != model.RoleCodeAdmin {
		t.Fatalf("role = %q", granted.GetUser().RoleCode)
	}

	_, err = env.identity.GetProfile(ctx, &marketplacepb.GetProfileRequest{})
	assertCode(t, err, codes.InvalidArgument)
}
