package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Leganyst/services-marketplace/internal/identity"
	"github.com/Leganyst/services-marketplace/internal/model"
	"github.com/Leganyst/services-marketplace/internal/notify"
	"github.com/Leganyst/services-marketplace/internal/repository"
)

const maxMessageLen = 4000

// MessagingService: переписка двух пользователей.
type MessagingService struct {
	messages repository.MessageRepository
	users    identity.UserStore
	notifier notify.Notifier
}

func NewMessagingService(messages repository.MessageRepository, users identity.UserStore, notifier notify.Notifier) *MessagingService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &MessagingService{messages: messages, users: users, notifier: notifier}
}

// Send добавляет сообщение в переписку и уведомляет получателя.
func (s *MessagingService) Send(ctx context.Context, senderID, recipientID uuid.UUID, body string) (*model.Message, error) {
	if senderID == uuid.Nil || recipientID == uuid.Nil {
		return nil, ErrInvalidUserID
	}
	if senderID == recipientID {
		return nil, fmt.Errorf("%w: cannot message yourself", ErrInvalidInput)
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: empty message", ErrInvalidInput)
	}
	if utf8.RuneCountInString(body) > maxMessageLen {
		return nil, fmt.Errorf("%w: message longer than %d characters", ErrInvalidInput, maxMessageLen)
	}
	if _, err := s.users.FindByID(ctx, recipientID); err != nil {
		return nil, err
	}

	msg := &model.Message{SenderID: senderID, RecipientID: recipientID, Body: body}
	if err := s.messages.Append(ctx, msg); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	s.notifier.Notify(notify.Notification{UserID: recipientID, Kind: notify.KindInfo, Message: "New message"})
	return msg, nil
}

// Conversation: переписка пользователя с собеседником, старые первыми.
func (s *MessagingService) Conversation(ctx context.Context, userID, otherID uuid.UUID) ([]model.Message, error) {
	if userID == uuid.Nil || otherID == uuid.Nil {
		return nil, ErrInvalidUserID
	}
	return s.messages.ListConversation(ctx, userID, otherID)
}

// ClearConversation удаляет переписку пары.
func (s *MessagingService) ClearConversation(ctx context.Context, user1, user2 uuid.UUID) (int64, error) {
	return s.messages.ClearConversation(ctx, user1, user2)
}
