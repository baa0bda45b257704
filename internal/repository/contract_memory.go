package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Leganyst/services-marketplace/internal/model"
)

// MemoryContractRepository: хранилище контрактов в памяти процесса.
// Для тестов и локального запуска; наружу всегда отдаются копии.
type MemoryContractRepository struct {
	mu        sync.RWMutex
	contracts map[uuid.UUID]*model.Contract
	now       func() time.Time
}

func NewMemoryContractRepository() *MemoryContractRepository {
	return &MemoryContractRepository{
		contracts: make(map[uuid.UUID]*model.Contract),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryContractRepository) Create(_ context.Context, contract *model.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if contract.ID == uuid.Nil {
		contract.ID = uuid.New()
	}
	if _, ok := r.contracts[contract.ID]; ok {
		return ErrContractExists
	}
	for _, c := range r.contracts {
		if c.ClientID == contract.ClientID && c.ProviderID == contract.ProviderID && !c.Status.IsTerminal() {
			return ErrOpenContractExists
		}
	}

	now := r.now()
	if contract.CreatedAt.IsZero() {
		contract.CreatedAt = now
	}
	contract.UpdatedAt = now
	if contract.Version == 0 {
		contract.Version = 1
	}
	r.contracts[contract.ID] = contract.Clone()
	return nil
}

func (r *MemoryContractRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.contracts[id]
	if !ok {
		return nil, ErrContractNotFound
	}
	return c.Clone(), nil
}

func (r *MemoryContractRepository) Update(_ context.Context, contract *model.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.contracts[contract.ID]
	if !ok {
		return ErrContractNotFound
	}
	if cur.Version != contract.Version {
		return ErrConcurrentUpdate
	}

	next := contract.Clone()
	// id, стороны, комиссия и дата создания не меняются.
	next.ClientID = cur.ClientID
	next.ProviderID = cur.ProviderID
	next.CommissionRate = cur.CommissionRate
	next.CreatedAt = cur.CreatedAt
	next.Version = cur.Version + 1
	next.UpdatedAt = r.now()
	r.contracts[contract.ID] = next

	contract.Version = next.Version
	contract.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *MemoryContractRepository) ListByParticipant(_ context.Context, userID uuid.UUID) ([]model.Contract, error) {
	return r.filter(func(c *model.Contract) bool {
		return c.ClientID == userID || c.ProviderID == userID
	}, true), nil
}

func (r *MemoryContractRepository) ListByStatus(_ context.Context, statuses ...model.ContractStatus) ([]model.Contract, error) {
	want := make(map[model.ContractStatus]struct{}, len(statuses))
	for _, s := range statuses {
		want[s] = struct{}{}
	}
	return r.filter(func(c *model.Contract) bool {
		_, ok := want[c.Status]
		return ok
	}, false), nil
}

func (r *MemoryContractRepository) HasActiveOrPending(_ context.Context, clientID, providerID uuid.UUID) (bool, error) {
	found := r.filter(func(c *model.Contract) bool {
		if c.ClientID != clientID || c.ProviderID != providerID {
			return false
		}
		for _, s := range activeOrPendingStatuses {
			if c.Status == s {
				return true
			}
		}
		return false
	}, false)
	return len(found) > 0, nil
}

func (r *MemoryContractRepository) LatestBetween(_ context.Context, user1, user2 uuid.UUID) (*model.Contract, error) {
	found := r.filter(func(c *model.Contract) bool {
		return (c.ClientID == user1 && c.ProviderID == user2) || (c.ClientID == user2 && c.ProviderID == user1)
	}, true)
	if len(found) == 0 {
		return nil, ErrContractNotFound
	}
	latest := found[0]
	return &latest, nil
}

// filter возвращает копии подходящих контрактов, отсортированные по created_at.
func (r *MemoryContractRepository) filter(match func(c *model.Contract) bool, newestFirst bool) []model.Contract {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Contract, 0)
	for _, c := range r.contracts {
		if match(c) {
			out = append(out, *c.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if newestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
