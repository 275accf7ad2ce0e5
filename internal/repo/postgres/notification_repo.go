package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iru21/datingapp/backend/internal/domain/enums"
	"github.com/iru21/datingapp/backend/internal/domain/model"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

func (r *NotificationRepo) Insert(ctx context.Context, userID int64, ntype enums.NotificationType, message string, relatedUserID, relatedEntityID *int64, now time.Time) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || message == "" {
		return 0, fmt.Errorf("invalid notification payload")
	}

	var notificationID int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO notifications (
	user_id,
	type,
	message,
	related_user_id,
	related_entity_id,
	is_read,
	created_at
) VALUES ($1, $2, $3, $4, $5, FALSE, $6)
RETURNING id
`, userID, string(ntype), message, relatedUserID, relatedEntityID, now).Scan(&notificationID)
	if err != nil {
		return 0, fmt.Errorf("insert notification: %w", err)
	}

	return notificationID, nil
}

func (r *NotificationRepo) ListForUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]model.Notification, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 50
	}
	if r.pool == nil {
		return []model.Notification{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, type, message, related_user_id, related_entity_id, is_read, created_at
FROM notifications
WHERE user_id = $1 AND ($2 = FALSE OR is_read = FALSE)
ORDER BY created_at DESC, id DESC
LIMIT $3
`, userID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	items := make([]model.Notification, 0, limit)
	for rows.Next() {
		var item model.Notification
		var ntype string
		if err := rows.Scan(
			&item.ID,
			&item.UserID,
			&ntype,
			&item.Message,
			&item.RelatedUserID,
			&item.RelatedEntityID,
			&item.IsRead,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		item.Type = enums.NotificationType(ntype)
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate notifications: %w", rows.Err())
	}

	return items, nil
}

func (r *NotificationRepo) CountUnread(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return 0, nil
	}

	var count int64
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM notifications
WHERE user_id = $1 AND is_read = FALSE
`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}

	return count, nil
}

// MarkRead is scoped to the owner; a foreign notification id reports
// marked=false so callers can answer with not-found.
func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID, userID int64) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}
	if notificationID <= 0 || userID <= 0 {
		return false, fmt.Errorf("invalid mark read payload")
	}

	result, err := r.pool.Exec(ctx, `
UPDATE notifications
SET is_read = TRUE
WHERE id = $1 AND user_id = $2
`, notificationID, userID)
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}

	result, err := r.pool.Exec(ctx, `
UPDATE notifications
SET is_read = TRUE
WHERE user_id = $1 AND is_read = FALSE
`, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *NotificationRepo) DeleteByID(ctx context.Context, notificationID, userID int64) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}
	if notificationID <= 0 || userID <= 0 {
		return false, fmt.Errorf("invalid delete payload")
	}

	result, err := r.pool.Exec(ctx, `
DELETE FROM notifications
WHERE id = $1 AND user_id = $2
`, notificationID, userID)
	if err != nil {
		return false, fmt.Errorf("delete notification: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *NotificationRepo) DeleteForUser(ctx context.Context, userID int64) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}

	result, err := r.pool.Exec(ctx, `
DELETE FROM notifications
WHERE user_id = $1
`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete notifications for user: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *NotificationRepo) DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, nil
	}

	result, err := r.pool.Exec(ctx, `
DELETE FROM notifications
WHERE is_read = TRUE AND created_at < $1
`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale notifications: %w", err)
	}

	return result.RowsAffected(), nil
}
