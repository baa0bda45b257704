package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SettlementKind — по какому поводу произошла (симулированная) выплата.
type SettlementKind string

const (
	SettlementKindFinalized         SettlementKind = "finalized"
	SettlementKindDisputeToProvider SettlementKind = "dispute_to_provider"
	SettlementKindDisputeToClient   SettlementKind = "dispute_to_client"
)

// settlements — одна запись на закрытый с движением денег контракт.
type Settlement struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	ContractID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	Kind       SettlementKind `gorm:"type:varchar(32);not null"`

	ProviderAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	ClientRefund       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PlatformCommission decimal.Decimal `gorm:"type:numeric(12,2);not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (s *Settlement) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
