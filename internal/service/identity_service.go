package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Leganyst/services-marketplace/internal/identity"
	"github.com/Leganyst/services-marketplace/internal/logger"
	"github.com/Leganyst/services-marketplace/internal/model"
	"github.com/Leganyst/services-marketplace/internal/repository"
)

// Profile: пользователь вместе с ролью и (для исполнителя) карточкой услуги.
type Profile struct {
	User    model.User
	Role    string
	Listing *model.Provider
}

// IdentityService: справочник пользователей: регистрация, роли, карточки исполнителей.
type IdentityService struct {
	userRepo     repository.UserRepository
	providerRepo repository.ProviderRepository
}

func NewIdentityService(userRepo repository.UserRepository, providerRepo repository.ProviderRepository) *IdentityService {
	return &IdentityService{userRepo: userRepo, providerRepo: providerRepo}
}

// RegisterUser создаёт пользователя и назначает роль (по умолчанию client).
func (s *IdentityService) RegisterUser(ctx context.Context, email, displayName, contactPhone, roleCode string) (*Profile, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("%w: bad email %q", ErrInvalidInput, email)
	}
	if roleCode == "" {
		roleCode = model.RoleCodeClient
	}
	if !model.IsKnownRole(roleCode) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, roleCode)
	}
	if roleCode == model.RoleCodeAdmin {
		return nil, ErrAdminGrantDenied
	}

	u, err := s.userRepo.CreateUser(ctx, addr.Address, displayName, contactPhone)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetRole(ctx, u.ID, roleCode); err != nil {
		return nil, fmt.Errorf("set role: %w", err)
	}

	logger.With(zap.String("user_id", u.ID.String()), zap.String("role", roleCode)).Info("user registered")
	return &Profile{User: *u, Role: roleCode}, nil
}

// UpdateContacts обновляет отображаемое имя и телефон; пустые поля не трогаются.
func (s *IdentityService) UpdateContacts(ctx context.Context, userID uuid.UUID, displayName, contactPhone string) (*Profile, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidUserID
	}
	if _, err := s.userRepo.UpdateContacts(ctx, userID, displayName, contactPhone); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

// SetRole назначает роль пользователю (одна роль на пользователя).
// Себе можно выбрать client или provider. Чужую роль и роль admin
// меняет только администратор.
func (s *IdentityService) SetRole(ctx context.Context, actorID, userID uuid.UUID, roleCode string) (*Profile, error) {
	if userID == uuid.Nil || actorID == uuid.Nil {
		return nil, ErrInvalidUserID
	}
	if !model.IsKnownRole(roleCode) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, roleCode)
	}
	if actorID != userID || roleCode == model.RoleCodeAdmin {
		if _, err := identity.RequireAdmin(ctx, s.userRepo, actorID); err != nil {
			if errors.Is(err, identity.ErrNotAdmin) {
				if roleCode == model.RoleCodeAdmin {
					return nil, ErrAdminGrantDenied
				}
				return nil, fmt.Errorf("%w: cannot change another user's role", ErrUnauthorized)
			}
			return nil, err
		}
	}
	if err := s.userRepo.SetRole(ctx, userID, roleCode); err != nil {
		return nil, err
	}
	logger.With(
		zap.String("user_id", userID.String()),
		zap.String("actor_id", actorID.String()),
		zap.String("role", roleCode),
	).Info("role changed")
	return s.GetProfile(ctx, userID)
}

// EnsureAdmin заводит администратора при старте: находит пользователя по
// email (или регистрирует) и выдаёт ему роль admin в обход проверок.
func (s *IdentityService) EnsureAdmin(ctx context.Context, email, displayName string) (*Profile, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("%w: bad email %q", ErrInvalidInput, email)
	}
	u, err := s.userRepo.FindByEmail(ctx, addr.Address)
	if errors.Is(err, repository.ErrUserNotFound) {
		u, err = s.userRepo.CreateUser(ctx, addr.Address, displayName, "")
	}
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetRole(ctx, u.ID, model.RoleCodeAdmin); err != nil {
		return nil, fmt.Errorf("set role: %w", err)
	}
	logger.With(zap.String("user_id", u.ID.String())).Info("admin ensured")
	return s.GetProfile(ctx, u.ID)
}

// GetProfile возвращает профиль по ID.
func (s *IdentityService) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidUserID
	}
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, u), nil
}

// FindByEmail: поиск профиля по email (без учёта регистра).
func (s *IdentityService) FindByEmail(ctx context.Context, email string) (*Profile, error) {
	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, u), nil
}

// UpsertListing создаёт или обновляет карточку исполнителя.
func (s *IdentityService) UpsertListing(ctx context.Context, userID uuid.UUID, title string, rate decimal.Decimal, description string) (*model.Provider, error) {
	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.Role != model.RoleCodeProvider {
		return nil, ErrNotProvider
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: service title is required", ErrInvalidInput)
	}
	if rate.IsNegative() {
		return nil, ErrInvalidRate
	}

	name := p.User.DisplayName
	if name == "" {
		name = p.User.Email
	}
	listing := &model.Provider{
		UserID:       userID,
		DisplayName:  name,
		ServiceTitle: title,
		ServiceRate:  rate.Round(2),
		Description:  strings.TrimSpace(description),
	}
	if err := s.providerRepo.Upsert(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// ListProviders: все карточки исполнителей.
func (s *IdentityService) ListProviders(ctx context.Context) ([]model.Provider, error) {
	return s.providerRepo.List(ctx)
}

func (s *IdentityService) profile(ctx context.Context, u *model.User) *Profile {
	// роль может отсутствовать; игнорируем ошибку
	roleCode, _ := s.userRepo.GetRole(ctx, u.ID)
	p := &Profile{User: *u, Role: roleCode}
	if roleCode == model.RoleCodeProvider {
		if listing, err := s.providerRepo.GetByUserID(ctx, u.ID); err == nil {
			p.Listing = listing
		}
	}
	return p
}
