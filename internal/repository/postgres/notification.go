package postgres

import (
	"context"
	"database/sql"

	"campusride/internal/domain"
	"campusride/internal/repository"
)

// NotificationRepository is a PostgreSQL implementation of
// repository.NotificationRepository.
type NotificationRepository struct {
	q Querier
}

// NewNotificationRepository creates a new PostgreSQL notification repository.
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{q: db}
}

// Create persists a new notification.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, message, type, related_ride_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var relatedRideID sql.NullString
	if n.RelatedRideID != "" {
		relatedRideID = sql.NullString{String: n.RelatedRideID, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		n.ID,
		n.UserID,
		n.Message,
		n.Type,
		relatedRideID,
		n.Read,
		n.CreatedAt,
	)

	return err
}

// GetByUserID retrieves a user's notifications, most recent first.
func (r *NotificationRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.Notification, error) {
	query := `
		SELECT id, user_id, message, type, related_ride_id, read, created_at
		FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT 100
	`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		var relatedRideID sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Type, &relatedRideID, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.RelatedRideID = relatedRideID.String
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

// MarkRead marks one of the user's notifications as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// MarkAllRead marks all of the user's notifications as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`,
		userID)
	return err
}
