package enums

import "fmt"

// NotificationType maps to the notification_type column and is derived from
// the priority of the rule that produced the notification.
type NotificationType string

const (
	NotificationTypeActionRequired NotificationType = "action_required"
	NotificationTypeUpdate         NotificationType = "update"
	NotificationTypeInfo           NotificationType = "info"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeActionRequired,
	NotificationTypeUpdate,
	NotificationTypeInfo,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}

type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "low"
	NotificationPriorityMedium NotificationPriority = "medium"
	NotificationPriorityHigh   NotificationPriority = "high"
)

func (p NotificationPriority) IsValid() bool {
	switch p {
	case NotificationPriorityLow, NotificationPriorityMedium, NotificationPriorityHigh:
		return true
	}
	return false
}

// NotificationType returns the feed type shown for a notification of this priority.
func (p NotificationPriority) NotificationType() NotificationType {
	switch p {
	case NotificationPriorityHigh:
		return NotificationTypeActionRequired
	case NotificationPriorityMedium:
		return NotificationTypeUpdate
	default:
		return NotificationTypeInfo
	}
}
