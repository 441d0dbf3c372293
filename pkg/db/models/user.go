package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/procureflow-backend/pkg/enums"
)

// User is a directory entry. Each user holds exactly one workflow role.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Email        string     `gorm:"type:text;not null;uniqueIndex"`
	Name         string     `gorm:"column:name;type:text;not null"`
	Role         enums.Role `gorm:"column:role;type:text;not null;index"`
	Department   string     `gorm:"column:department;type:text"`
	PasswordHash string     `gorm:"column:password_hash;type:text;not null"`
	IsActive     bool       `gorm:"column:is_active;not null"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
