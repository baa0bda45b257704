package notify

import (
	"time"

	"github.com/google/uuid"
)

// Kind: тип всплывающего уведомления в клиенте.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Notification адресована одному пользователю.
type Notification struct {
	UserID     uuid.UUID  `json:"user_id"`
	Kind       Kind       `json:"kind"`
	Message    string     `json:"message"`
	ContractID *uuid.UUID `json:"contract_id,omitempty"`
	Status     string     `json:"status,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Sink доставляет уведомление конкретным транспортом.
type Sink interface {
	Deliver(n Notification) error
}

// Notifier: fire-and-forget отправка; ошибки доставки вызывающего не касаются.
type Notifier interface {
	Notify(ns ...Notification)
}

// Nop ничего не отправляет.
type Nop struct{}

func (Nop) Notify(...Notification) {}
