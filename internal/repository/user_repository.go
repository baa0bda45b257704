package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/services-marketplace/internal/model"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrRoleNotSet   = errors.New("user has no role")
	ErrEmailTaken   = errors.New("email is already registered")
)

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByPhone(ctx context.Context, phone string) (*model.User, error)
	// Создать пользователя; email уникален без учёта регистра.
	CreateUser(ctx context.Context, email, displayName, contactPhone string) (*model.User, error)
	UpdateContacts(ctx context.Context, id uuid.UUID, displayName, contactPhone string) (*model.User, error)
	SetRole(ctx context.Context, userID uuid.UUID, roleCode string) error
	GetRole(ctx context.Context, userID uuid.UUID) (string, error)
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	// Только цифры, форматирование отбрасываем.
	b := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		c := phone[i]
		if c >= '0' && c <= '9' {
			b = append(b, c)
		}
	}
	return string(b)
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, mapUserErr(err)
	}
	return &u, nil
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	e := normalizeEmail(email)
	if e == "" {
		return nil, ErrUserNotFound
	}
	var u model.User
	if err := r.db.WithContext(ctx).Where("email = ?", e).First(&u).Error; err != nil {
		return nil, mapUserErr(err)
	}
	return &u, nil
}

func (r *GormUserRepository) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	n := normalizePhone(phone)
	if n == "" {
		return nil, ErrUserNotFound
	}

	var u model.User
	// Сначала нормализованный номер, потом как есть (старые записи).
	q := r.db.WithContext(ctx).Model(&model.User{}).
		Where("contact_phone = ?", n)
	if strings.TrimSpace(phone) != n {
		q = q.Or("contact_phone = ?", strings.TrimSpace(phone))
	}
	if err := q.First(&u).Error; err != nil {
		return nil, mapUserErr(err)
	}
	return &u, nil
}

func (r *GormUserRepository) CreateUser(ctx context.Context, email, displayName, contactPhone string) (*model.User, error) {
	u := model.User{
		Email:        normalizeEmail(email),
		DisplayName:  strings.TrimSpace(displayName),
		ContactPhone: normalizePhone(contactPhone),
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.User{}).Where("email = ?", u.Email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrEmailTaken
		}
		if err := tx.Create(&u).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrEmailTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormUserRepository) UpdateContacts(ctx context.Context, id uuid.UUID, displayName, contactPhone string) (*model.User, error) {
	updates := map[string]any{}
	if displayName != "" {
		updates["display_name"] = strings.TrimSpace(displayName)
	}
	if contactPhone != "" {
		updates["contact_phone"] = normalizePhone(contactPhone)
	}
	if len(updates) == 0 {
		// обновлять нечего
		return r.FindByID(ctx, id)
	}
	updates["updated_at"] = r.db.NowFunc()

	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *GormUserRepository) SetRole(ctx context.Context, userID uuid.UUID, roleCode string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.User{}).Where("id = ?", userID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrUserNotFound
		}

		// роль заводим при первом использовании
		var role model.Role
		if err := tx.Where("code = ?", roleCode).First(&role).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			role.Code = roleCode
			role.Name = roleCode
			if err := tx.Create(&role).Error; err != nil {
				return err
			}
		}

		// single role policy: старые роли удаляем
		if err := tx.Where("user_id = ?", userID).Delete(&model.UserRole{}).Error; err != nil {
			return err
		}
		return tx.Create(&model.UserRole{RoleID: role.ID, UserID: userID}).Error
	})
}

func (r *GormUserRepository) GetRole(ctx context.Context, userID uuid.UUID) (string, error) {
	var ur model.UserRole
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&ur).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrRoleNotSet
		}
		return "", err
	}
	var role model.Role
	if err := r.db.WithContext(ctx).First(&role, "id = ?", ur.RoleID).Error; err != nil {
		return "", err
	}
	return role.Code, nil
}

func mapUserErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}
