package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Тип события аудита.
type EventType string

const (
	EventTypeContractCreated EventType = "contract_created"
	EventTypeOfferMade       EventType = "offer_made"
	EventTypeFundsDeposited  EventType = "funds_deposited"
	EventTypeActionRecorded  EventType = "action_recorded"
	EventTypeStatusChanged   EventType = "status_changed"
	EventTypeDisputeResolved EventType = "dispute_resolved"
)

// events — события аудита
type Event struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	EventType EventType `gorm:"type:varchar(64);not null;index"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`

	// Кто совершил действие (nil — система).
	UserID     *uuid.UUID `gorm:"type:uuid;index"`
	ContractID *uuid.UUID `gorm:"type:uuid;index"`

	// Произвольные детали в JSON (статусы до/после, суммы и т.п.).
	Details datatypes.JSON `gorm:"type:jsonb"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
