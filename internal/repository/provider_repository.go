package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/services-marketplace/internal/model"
)

var ErrProviderNotFound = errors.New("provider listing not found")

type ProviderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Provider, error)
	// Карточка исполнителя по пользователю.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Provider, error)
	// Создать или обновить карточку пользователя (одна на пользователя).
	Upsert(ctx context.Context, p *model.Provider) error
	List(ctx context.Context) ([]model.Provider, error)
}

type GormProviderRepository struct {
	db *gorm.DB
}

func NewGormProviderRepository(db *gorm.DB) *GormProviderRepository {
	return &GormProviderRepository{db: db}
}

func (r *GormProviderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	var p model.Provider
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, mapProviderErr(err)
	}
	return &p, nil
}

func (r *GormProviderRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Provider, error) {
	var p model.Provider
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, mapProviderErr(err)
	}
	return &p, nil
}

func (r *GormProviderRepository) Upsert(ctx context.Context, p *model.Provider) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur model.Provider
		err := tx.Where("user_id = ?", p.UserID).First(&cur).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(p).Error
		}
		if err != nil {
			return err
		}

		now := tx.NowFunc()
		err = tx.Model(&model.Provider{}).Where("id = ?", cur.ID).Updates(map[string]any{
			"display_name":  p.DisplayName,
			"service_title": p.ServiceTitle,
			"service_rate":  p.ServiceRate,
			"description":   p.Description,
			"updated_at":    now,
		}).Error
		if err != nil {
			return err
		}
		p.ID = cur.ID
		p.CreatedAt = cur.CreatedAt
		p.UpdatedAt = now
		return nil
	})
}

func (r *GormProviderRepository) List(ctx context.Context) ([]model.Provider, error) {
	var out []model.Provider
	if err := r.db.WithContext(ctx).Order("display_name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func mapProviderErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrProviderNotFound
	}
	return err
}
