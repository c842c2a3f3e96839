package repository

import (
	"context"

	"campusride/internal/domain"
)

// NotificationRepository defines the persistence operations for in-app
// notifications.
type NotificationRepository interface {
	// Create persists a new notification.
	Create(ctx context.Context, n *domain.Notification) error

	// GetByUserID retrieves a user's notifications, most recent first.
	GetByUserID(ctx context.Context, userID string) ([]*domain.Notification, error)

	// MarkRead marks one of the user's notifications as read.
	MarkRead(ctx context.Context, id, userID string) error

	// MarkAllRead marks all of the user's notifications as read.
	MarkAllRead(ctx context.Context, userID string) error
}
