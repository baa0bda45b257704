package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Leganyst/services-marketplace/internal/model"
	"github.com/Leganyst/services-marketplace/internal/repository"
)

// Ошибки проверки пользователя, от имени которого выполняется действие.
var (
	ErrInvalidUserID = errors.New("invalid user id")
	ErrUserNotFound  = repository.ErrUserNotFound
	ErrNotAdmin      = errors.New("user is not an admin")
)

// Источник данных о пользователях.
// В реале это репозиторий поверх БД, в тестах — мок.
type UserStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetRole(ctx context.Context, userID uuid.UUID) (string, error)
}

// Actor — проверенный пользователь с ролью в системе.
// Role пустой, если роль ещё не назначена.
type Actor struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
	Role        string
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == model.RoleCodeAdmin
}

// ResolveActor:
//   - проверяет идентификатор;
//   - вытаскивает пользователя из хранилища;
//   - подтягивает роль (отсутствие роли — не ошибка).
func ResolveActor(ctx context.Context, store UserStore, id uuid.UUID) (*Actor, error) {
	if id == uuid.Nil {
		return nil, ErrInvalidUserID
	}

	u, err := store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	role, err := store.GetRole(ctx, u.ID)
	if err != nil {
		role = ""
	}

	return &Actor{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        role,
	}, nil
}

// RequireAdmin — ResolveActor плюс проверка роли admin.
// Роль перечитывается из хранилища на каждый вызов.
func RequireAdmin(ctx context.Context, store UserStore, id uuid.UUID) (*Actor, error) {
	a, err := ResolveActor(ctx, store, id)
	if err != nil {
		return nil, err
	}
	if !a.IsAdmin() {
		return nil, ErrNotAdmin
	}
	return a, nil
}
