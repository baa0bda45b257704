package model

import "github.com/google/uuid"

// Коды ролей. У пользователя одна роль (single role policy).
const (
	RoleCodeClient   = "client"
	RoleCodeProvider = "provider"
	RoleCodeAdmin    = "admin"
)

// IsKnownRole проверяет, что код роли поддерживается.
func IsKnownRole(code string) bool {
	switch code {
	case RoleCodeClient, RoleCodeProvider, RoleCodeAdmin:
		return true
	default:
		return false
	}
}

// roles
type Role struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Code string `gorm:"type:varchar(32);not null;uniqueIndex"`
	Name string `gorm:"type:varchar(255)"`
}

// user_roles — связывает пользователей и роли (комбинированный PK)
type UserRole struct {
	RoleID int64     `gorm:"primaryKey;index"`
	UserID uuid.UUID `gorm:"type:uuid;primaryKey;index"`

	Role *Role `gorm:"foreignKey:RoleID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
