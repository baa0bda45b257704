package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// messages — append-only переписка двух пользователей.
type Message struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	// Ключ неупорядоченной пары, см. PairKey.
	PairKey string `gorm:"type:varchar(80);not null;index"`

	SenderID    uuid.UUID `gorm:"type:uuid;not null"`
	RecipientID uuid.UUID `gorm:"type:uuid;not null"`

	Body string `gorm:"type:text;not null"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// PairKey не зависит от порядка пользователей.
func PairKey(a, b uuid.UUID) string {
	as, bs := a.String(), b.String()
	if as > bs {
		as, bs = bs, as
	}
	return as + ":" + bs
}
