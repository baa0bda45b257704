package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/services-marketplace/internal/model"
)

var (
	ErrContractNotFound   = errors.New("contract not found")
	ErrContractExists     = errors.New("contract with this id already exists")
	ErrOpenContractExists = errors.New("an open contract already exists between these users")
	// Запись не прошла compare-and-swap: контракт успели изменить.
	ErrConcurrentUpdate = errors.New("contract was modified concurrently")
)

// activeOrPendingStatuses: то, что считается «занятой» парой для UI.
var activeOrPendingStatuses = []model.ContractStatus{
	model.ContractStatusPending,
	model.ContractStatusOffered,
	model.ContractStatusActive,
}

type ContractRepository interface {
	// Создать контракт. Проверка «нет открытого контракта у пары» и вставка
	// выполняются атомарно.
	Create(ctx context.Context, contract *model.Contract) error
	// Получить контракт по ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	// Записать новое состояние, если с момента чтения контракт не менялся:
	// contract.Version должен совпадать с версией в хранилище. При успехе
	// Version увеличивается, UpdatedAt проставляется.
	Update(ctx context.Context, contract *model.Contract) error
	// Все контракты, где пользователь клиент или исполнитель.
	ListByParticipant(ctx context.Context, userID uuid.UUID) ([]model.Contract, error)
	// Контракты в указанных статусах, старые первыми.
	ListByStatus(ctx context.Context, statuses ...model.ContractStatus) ([]model.Contract, error)
	// Есть ли у пары контракт в pending/offered/active.
	HasActiveOrPending(ctx context.Context, clientID, providerID uuid.UUID) (bool, error)
	// Самый свежий контракт между двумя пользователями (в любом статусе и порядке ролей).
	LatestBetween(ctx context.Context, user1, user2 uuid.UUID) (*model.Contract, error)
}

// Реализация на GORM.
type GormContractRepository struct {
	db *gorm.DB
}

func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

func (r *GormContractRepository) Create(ctx context.Context, contract *model.Contract) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open int64
		err := tx.Model(&model.Contract{}).
			Where("client_id = ? AND provider_id = ?", contract.ClientID, contract.ProviderID).
			Where("status IN ?", model.OpenContractStatuses).
			Count(&open).Error
		if err != nil {
			return err
		}
		if open > 0 {
			return ErrOpenContractExists
		}

		if contract.ID != uuid.Nil {
			var same int64
			if err := tx.Model(&model.Contract{}).Where("id = ?", contract.ID).Count(&same).Error; err != nil {
				return err
			}
			if same > 0 {
				return ErrContractExists
			}
		}

		if err := tx.Create(contract).Error; err != nil {
			// Гонку двух транзакций ловит частичный уникальный индекс.
			if isUniqueViolation(err) {
				return ErrOpenContractExists
			}
			return err
		}
		return nil
	})
}

func (r *GormContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var c model.Contract
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *GormContractRepository) Update(ctx context.Context, contract *model.Contract) error {
	now := r.db.NowFunc()
	update := map[string]any{
		"service_title":      contract.ServiceTitle,
		"service_rate":       contract.ServiceRate,
		"status":             contract.Status,
		"client_deposited":   contract.ClientDeposited,
		"client_action":      contract.ClientAction,
		"provider_action":    contract.ProviderAction,
		"dispute_resolution": contract.DisputeResolution,
		"version":            contract.Version + 1,
		"updated_at":         now,
	}

	res := r.db.WithContext(ctx).
		Model(&model.Contract{}).
		Where("id = ? AND version = ?", contract.ID, contract.Version).
		Updates(update)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := r.db.WithContext(ctx).Model(&model.Contract{}).Where("id = ?", contract.ID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrContractNotFound
		}
		return ErrConcurrentUpdate
	}

	contract.Version++
	contract.UpdatedAt = now
	return nil
}

func (r *GormContractRepository) ListByParticipant(ctx context.Context, userID uuid.UUID) ([]model.Contract, error) {
	var contracts []model.Contract
	err := r.db.WithContext(ctx).
		Where("client_id = ? OR provider_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *GormContractRepository) ListByStatus(ctx context.Context, statuses ...model.ContractStatus) ([]model.Contract, error) {
	if len(statuses) == 0 {
		return []model.Contract{}, nil
	}
	var contracts []model.Contract
	err := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("created_at ASC").
		Find(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *GormContractRepository) HasActiveOrPending(ctx context.Context, clientID, providerID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Contract{}).
		Where("client_id = ? AND provider_id = ?", clientID, providerID).
		Where("status IN ?", activeOrPendingStatuses).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormContractRepository) LatestBetween(ctx context.Context, user1, user2 uuid.UUID) (*model.Contract, error) {
	var c model.Contract
	err := r.db.WithContext(ctx).
		Where("(client_id = ? AND provider_id = ?) OR (client_id = ? AND provider_id = ?)", user1, user2, user2, user1).
		Order("created_at DESC").
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, err
	}
	return &c, nil
}

// isUniqueViolation распознаёт нарушение уникальности для Postgres и SQLite.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "sqlstate 23505")
}
