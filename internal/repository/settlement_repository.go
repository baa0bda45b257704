package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/services-marketplace/internal/model"
)

var (
	ErrSettlementNotFound = errors.New("settlement not found")
	ErrSettlementExists   = errors.New("contract is already settled")
)

// SettlementRepository: журнал симулированных выплат.
type SettlementRepository interface {
	Create(ctx context.Context, s *model.Settlement) error
	GetByContractID(ctx context.Context, contractID uuid.UUID) (*model.Settlement, error)
}

type GormSettlementRepository struct {
	db *gorm.DB
}

func NewGormSettlementRepository(db *gorm.DB) *GormSettlementRepository {
	return &GormSettlementRepository{db: db}
}

func (r *GormSettlementRepository) Create(ctx context.Context, s *model.Settlement) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrSettlementExists
		}
		return err
	}
	return nil
}

func (r *GormSettlementRepository) GetByContractID(ctx context.Context, contractID uuid.UUID) (*model.Settlement, error) {
	var s model.Settlement
	if err := r.db.WithContext(ctx).Where("contract_id = ?", contractID).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettlementNotFound
		}
		return nil, err
	}
	return &s, nil
}
