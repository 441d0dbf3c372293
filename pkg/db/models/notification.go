package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/procureflow-backend/pkg/enums"
)

// Notification is one in-app feed entry produced by a notification rule for a
// single recipient. (event_id, recipient_id, rule_index) is unique.
type Notification struct {
	ID          uuid.UUID                  `gorm:"type:uuid;primaryKey"`
	RecipientID uuid.UUID                  `gorm:"column:recipient_id;type:uuid;not null;index;uniqueIndex:ux_notifications_event_recipient_rule,priority:2"`
	EventID     uuid.UUID                  `gorm:"column:event_id;type:uuid;not null;uniqueIndex:ux_notifications_event_recipient_rule,priority:1"`
	RuleIndex   int                        `gorm:"column:rule_index;not null;uniqueIndex:ux_notifications_event_recipient_rule,priority:3"`
	EventType   enums.EventType            `gorm:"column:event_type;type:text;not null"`
	Type        enums.NotificationType     `gorm:"column:type;type:text;not null"`
	Priority    enums.NotificationPriority `gorm:"column:priority;type:text;not null"`
	Title       string                     `gorm:"column:title;type:text;not null"`
	Message     string                     `gorm:"column:message;type:text;not null"`
	Link        *string                    `gorm:"column:link;type:text"`
	Payload     map[string]string          `gorm:"column:payload;type:jsonb;serializer:json"`
	ReadAt      *time.Time                 `gorm:"column:read_at"`
	CreatedAt   time.Time                  `gorm:"column:created_at;index"`
}

func (Notification) TableName() string { return "notifications" }

func (n *Notification) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	return nil
}
