package domain

import "time"

// NotificationType categorizes in-app notifications.
type NotificationType string

const (
	NotificationTypeRequest NotificationType = "request"
	NotificationTypeBooking NotificationType = "booking"
	NotificationTypeSystem  NotificationType = "system"
)

// Notification is an in-app message delivered on ride lifecycle events.
type Notification struct {
	ID            string
	UserID        string
	Message       string
	Type          NotificationType
	RelatedRideID string
	Read          bool
	CreatedAt     time.Time
}
