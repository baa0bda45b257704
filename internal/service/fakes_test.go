package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Leganyst/services-marketplace/internal/model"
	"github.com/Leganyst/services-marketplace/internal/notify"
	"github.com/Leganyst/services-marketplace/internal/repository"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
	roles map[uuid.UUID]string
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[uuid.UUID]*model.User{}, roles: map[uuid.UUID]string{}}
}

func (f *fakeUsers) add(role string) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.users[id] = &model.User{ID: id, Email: id.String() + "@example.com"}
	f.roles[id] = role
	return id
}

func (f *fakeUsers) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetRole(ctx context.Context, userID uuid.UUID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.roles[userID]
	if !ok {
		return "", repository.ErrRoleNotSet
	}
	return r, nil
}

type fakeCleaner struct {
	mu    sync.Mutex
	pairs [][2]uuid.UUID
}

func (f *fakeCleaner) ClearConversation(ctx context.Context, user1, user2 uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pairs = append(f.pairs, [2]uuid.UUID{user1, user2})
	return 0, nil
}

func (f *fakeCleaner) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pairs)
}

type fakeSettlements struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*model.Settlement
}

func (f *fakeSettlements) Create(ctx context.Context, s *model.Settlement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[s.ContractID]; ok {
		return repository.ErrSettlementExists
	}
	cp := *s
	f.byID[s.ContractID] = &cp
	return nil
}

func (f *fakeSettlements) GetByContractID(ctx context.Context, contractID uuid.UUID) (*model.Settlement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[contractID]
	if !ok {
		return nil, repository.ErrSettlementNotFound
	}
	return s, nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events []model.Event
}

func (f *fakeEvents) Record(ctx context.Context, t model.EventType, userID, contractID *uuid.UUID, details any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, model.Event{EventType: t, UserID: userID, ContractID: contractID})
	return nil
}

func (f *fakeEvents) ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Event
	for _, e := range f.events {
		if e.ContractID != nil && *e.ContractID == contractID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEvents) count(t model.EventType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.EventType == t {
			n++
		}
	}
	return n
}

// Синхронный нотификатор для проверок.
type recordingNotifier struct {
	mu  sync.Mutex
	got []notify.Notification
}

func (r *recordingNotifier) Notify(ns ...notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, ns...)
}

func (r *recordingNotifier) last(userID uuid.UUID) (notify.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.got) - 1; i >= 0; i-- {
		if r.got[i].UserID == userID {
			return r.got[i], true
		}
	}
	return notify.Notification{}, false
}

type fakeProviders struct {
	listings map[uuid.UUID]*model.Provider
}

func (f *fakeProviders) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Provider, error) {
	p, ok := f.listings[userID]
	if !ok {
		return nil, repository.ErrProviderNotFound
	}
	return p, nil
}

type harness struct {
	svc         *ContractService
	users       *fakeUsers
	cleaner     *fakeCleaner
	settlements *fakeSettlements
	events      *fakeEvents
	notes       *recordingNotifier
	providers   *fakeProviders

	client, provider, admin uuid.UUID
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		users:       newFakeUsers(),
		cleaner:     &fakeCleaner{},
		settlements: &fakeSettlements{byID: map[uuid.UUID]*model.Settlement{}},
		events:      &fakeEvents{},
		notes:       &recordingNotifier{},
		providers:   &fakeProviders{listings: map[uuid.UUID]*model.Provider{}},
	}
	h.client = h.users.add(model.RoleCodeClient)
	h.provider = h.users.add(model.RoleCodeProvider)
	h.admin = h.users.add(model.RoleCodeAdmin)

	h.svc = NewContractService(ContractDeps{
		Contracts:   repository.NewMemoryContractRepository(),
		Users:       h.users,
		Providers:   h.providers,
		Messages:    h.cleaner,
		Settlements: h.settlements,
		Events:      h.events,
		Notifier:    h.notes,
	}, DefaultRates())
	return h
}

func usd(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}
