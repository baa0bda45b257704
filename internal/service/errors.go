package service

import (
	"errors"
	"fmt"

	"github.com/Leganyst/services-marketplace/internal/identity"
	"github.com/Leganyst/services-marketplace/internal/lifecycle"
	"github.com/Leganyst/services-marketplace/internal/repository"
)

// Ошибки, которые видит вызывающий. Проверять через errors.Is.
var (
	ErrUnauthorized      = lifecycle.ErrUnauthorized
	ErrInvalidState      = lifecycle.ErrInvalidState
	ErrRepeatedAction    = lifecycle.ErrRepeatedAction
	ErrNotResolvable     = lifecycle.ErrNotResolvable
	ErrInvalidRate       = lifecycle.ErrInvalidRate
	ErrInvalidAction     = lifecycle.ErrInvalidAction
	ErrInvalidResolution = lifecycle.ErrInvalidResolution

	ErrContractNotFound = repository.ErrContractNotFound
	ErrConcurrentUpdate = repository.ErrConcurrentUpdate
	ErrUserNotFound     = repository.ErrUserNotFound
	ErrEmailTaken       = repository.ErrEmailTaken
	ErrProviderNotFound = repository.ErrProviderNotFound

	// У пары уже есть незакрытый контракт.
	ErrDuplicateEngagement = errors.New("an open contract already exists between this client and provider")
	ErrInvalidParties      = errors.New("client and provider must be two different users")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidRole         = errors.New("unknown role")
	ErrNotProvider         = errors.New("user is not a provider")
	ErrNotClient           = fmt.Errorf("%w: user is not a client", ErrUnauthorized)
	// admin выдаёт только администратор или конфиг при старте.
	ErrAdminGrantDenied = fmt.Errorf("%w: admin role can only be granted by an admin", ErrUnauthorized)
	ErrInvalidUserID       = identity.ErrInvalidUserID
)
