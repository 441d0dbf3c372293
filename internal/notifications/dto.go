package notifications

import (
	"time"

	"github.com/angelmondragon/procureflow-backend/pkg/db/models"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	"github.com/google/uuid"
)

// NotificationDTO is a feed entry as returned to its recipient.
type NotificationDTO struct {
	ID        uuid.UUID                  `json:"id"`
	EventType enums.EventType            `json:"eventType"`
	Type      enums.NotificationType     `json:"type"`
	Priority  enums.NotificationPriority `json:"priority"`
	Title     string                     `json:"title"`
	Message   string                     `json:"message"`
	Link      *string                    `json:"link,omitempty"`
	Payload   map[string]string          `json:"payload,omitempty"`
	Read      bool                       `json:"read"`
	ReadAt    *time.Time                 `json:"readAt,omitempty"`
	CreatedAt time.Time                  `json:"createdAt"`
}

// FeedDTO wraps a feed page with its unread count.
type FeedDTO struct {
	Notifications []NotificationDTO `json:"notifications"`
	UnreadCount   int               `json:"unreadCount"`
}

func NewFeedDTO(rows []models.Notification) FeedDTO {
	feed := FeedDTO{Notifications: make([]NotificationDTO, 0, len(rows))}
	for _, row := range rows {
		if row.ReadAt == nil {
			feed.UnreadCount++
		}
		feed.Notifications = append(feed.Notifications, NotificationDTO{
			ID:        row.ID,
			EventType: row.EventType,
			Type:      row.Type,
			Priority:  row.Priority,
			Title:     row.Title,
			Message:   row.Message,
			Link:      row.Link,
			Payload:   row.Payload,
			Read:      row.ReadAt != nil,
			ReadAt:    row.ReadAt,
			CreatedAt: row.CreatedAt,
		})
	}
	return feed
}
