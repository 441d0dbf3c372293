package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/procureflow-backend/pkg/types"
)

type NotificationPreference struct {
	UserID       uuid.UUID        `gorm:"column:user_id;type:uuid;primaryKey"`
	EmailEnabled bool             `gorm:"column:email_enabled;not null"`
	InAppEnabled bool             `gorm:"column:in_app_enabled;not null"`
	SoundEnabled bool             `gorm:"column:sound_enabled;not null"`
	MutedEvents  types.StringList `gorm:"column:muted_events;type:jsonb;not null"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (NotificationPreference) TableName() string { return "notification_preferences" }
