package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/services-marketplace/internal/model"
)

// MessageRepository: append-only журнал переписки пары пользователей.
type MessageRepository interface {
	Append(ctx context.Context, msg *model.Message) error
	// Переписка пары, старые сообщения первыми.
	ListConversation(ctx context.Context, user1, user2 uuid.UUID) ([]model.Message, error)
	// Удаляет всю переписку пары, возвращает число удалённых сообщений.
	ClearConversation(ctx context.Context, user1, user2 uuid.UUID) (int64, error)
}

type GormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Append(ctx context.Context, msg *model.Message) error {
	msg.PairKey = model.PairKey(msg.SenderID, msg.RecipientID)
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *GormMessageRepository) ListConversation(ctx context.Context, user1, user2 uuid.UUID) ([]model.Message, error) {
	var out []model.Message
	err := r.db.WithContext(ctx).
		Where("pair_key = ?", model.PairKey(user1, user2)).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormMessageRepository) ClearConversation(ctx context.Context, user1, user2 uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("pair_key = ?", model.PairKey(user1, user2)).
		Delete(&model.Message{})
	return res.RowsAffected, res.Error
}
