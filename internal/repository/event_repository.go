package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Leganyst/services-marketplace/internal/model"
)

// EventRepository: журнал аудита по контрактам.
type EventRepository interface {
	// Record сохраняет событие; details сериализуется в JSON.
	Record(ctx context.Context, eventType model.EventType, userID, contractID *uuid.UUID, details any) error
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.Event, error)
}

type GormEventRepository struct {
	db *gorm.DB
}

func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) Record(ctx context.Context, eventType model.EventType, userID, contractID *uuid.UUID, details any) error {
	var raw datatypes.JSON
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return err
		}
		raw = datatypes.JSON(b)
	}
	ev := model.Event{
		EventType:  eventType,
		UserID:     userID,
		ContractID: contractID,
		Details:    raw,
	}
	return r.db.WithContext(ctx).Create(&ev).Error
}

func (r *GormEventRepository) ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.Event, error) {
	var out []model.Event
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
