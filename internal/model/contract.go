package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Статус контракта (жизненный цикл сделки клиент–исполнитель).
type ContractStatus string

const (
	ContractStatusPending            ContractStatus = "pending"
	ContractStatusOffered            ContractStatus = "offered"
	ContractStatusActive             ContractStatus = "active"
	ContractStatusDisputed           ContractStatus = "disputed"
	ContractStatusFinalized          ContractStatus = "finalized"
	ContractStatusCancelled          ContractStatus = "cancelled"
	ContractStatusFinalizedByDispute ContractStatus = "finalized_by_dispute"
)

// OpenContractStatuses — нетерминальные статусы; на пару клиент/исполнитель
// допускается не более одного контракта в любом из них.
var OpenContractStatuses = []ContractStatus{
	ContractStatusPending,
	ContractStatusOffered,
	ContractStatusActive,
	ContractStatusDisputed,
}

// IsTerminal сообщает, что контракт закрыт навсегда.
func (s ContractStatus) IsTerminal() bool {
	switch s {
	case ContractStatusFinalized, ContractStatusCancelled, ContractStatusFinalizedByDispute:
		return true
	default:
		return false
	}
}

func (s ContractStatus) IsValid() bool {
	switch s {
	case ContractStatusPending, ContractStatusOffered, ContractStatusActive, ContractStatusDisputed,
		ContractStatusFinalized, ContractStatusCancelled, ContractStatusFinalizedByDispute:
		return true
	default:
		return false
	}
}

// Последнее заявленное намерение стороны.
type PartyAction string

const (
	PartyActionNone        PartyAction = "none"
	PartyActionAcceptOffer PartyAction = "accept_offer"
	PartyActionMakeOffer   PartyAction = "make_offer"
	PartyActionFinalize    PartyAction = "finalize"
	PartyActionCancel      PartyAction = "cancel"
	PartyActionDispute     PartyAction = "dispute"
)

// IsFinal — значение слота, которое сторона уже не может перезаписать.
func (a PartyAction) IsFinal() bool {
	return a == PartyActionFinalize || a == PartyActionCancel || a == PartyActionDispute
}

// Кому администратор отдал спорные средства.
type DisputeResolution string

const (
	DisputeResolutionToClient   DisputeResolution = "to_client"
	DisputeResolutionToProvider DisputeResolution = "to_provider"
)

// DefaultCommissionRate — доля платформы с выплаты исполнителю.
var DefaultCommissionRate = decimal.RequireFromString("0.10")

// contracts
type Contract struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	ClientID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProviderID uuid.UUID `gorm:"type:uuid;not null;index"`

	// Копируется из карточки исполнителя, меняется только через оффер.
	ServiceTitle string          `gorm:"type:varchar(255);not null"`
	ServiceRate  decimal.Decimal `gorm:"type:numeric(12,2);not null"`

	Status          ContractStatus `gorm:"type:varchar(32);not null;index"`
	ClientDeposited bool           `gorm:"not null;default:false"`

	ClientAction   PartyAction `gorm:"type:varchar(32);not null;default:'none'"`
	ProviderAction PartyAction `gorm:"type:varchar(32);not null;default:'none'"`

	CommissionRate decimal.Decimal `gorm:"type:numeric(5,4);not null"`

	// Заполняется только при разрешении спора администратором.
	DisputeResolution *DisputeResolution `gorm:"type:varchar(32)"`

	// Версия для оптимистичной блокировки, растёт на каждой записи.
	Version int64 `gorm:"not null;default:1"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (c *Contract) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Version == 0 {
		c.Version = 1
	}
	return nil
}

// IsParticipant — пользователь является клиентом или исполнителем по контракту.
func (c *Contract) IsParticipant(userID uuid.UUID) bool {
	return userID != uuid.Nil && (c.ClientID == userID || c.ProviderID == userID)
}

// Counterparty возвращает вторую сторону сделки.
func (c *Contract) Counterparty(userID uuid.UUID) uuid.UUID {
	if c.ClientID == userID {
		return c.ProviderID
	}
	return c.ClientID
}

// Clone — глубокая копия, чтобы изменения не утекали в хранилище до записи.
func (c *Contract) Clone() *Contract {
	if c == nil {
		return nil
	}
	cp := *c
	if c.DisputeResolution != nil {
		r := *c.DisputeResolution
		cp.DisputeResolution = &r
	}
	return &cp
}
