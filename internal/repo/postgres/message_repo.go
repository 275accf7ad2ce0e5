package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iru21/datingapp/backend/internal/domain/model"
)

var ErrMessageNotFound = errors.New("message not found")

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Insert(ctx context.Context, tx pgx.Tx, matchID, senderID, receiverID int64, content string, now time.Time) (model.Message, error) {
	if matchID <= 0 || senderID <= 0 || receiverID <= 0 || content == "" {
		return model.Message{}, fmt.Errorf("invalid message payload")
	}
	if tx == nil {
		return model.Message{}, fmt.Errorf("transaction is required")
	}

	var messageID int64
	err := tx.QueryRow(ctx, `
INSERT INTO messages (
	match_id,
	sender_id,
	receiver_id,
	content,
	sent_at,
	is_read
) VALUES ($1, $2, $3, $4, $5, FALSE)
RETURNING id
`, matchID, senderID, receiverID, content, now).Scan(&messageID)
	if err != nil {
		return model.Message{}, fmt.Errorf("insert message: %w", err)
	}

	return model.Message{
		ID:         messageID,
		MatchID:    matchID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		SentAt:     now,
		IsRead:     false,
	}, nil
}

// ListByMatch returns the full conversation ordered by sent_at ascending;
// insertion order breaks ties on equal timestamps.
func (r *MessageRepo) ListByMatch(ctx context.Context, tx pgx.Tx, matchID int64) ([]model.Message, error) {
	if matchID <= 0 {
		return nil, fmt.Errorf("invalid match id")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction is required")
	}

	rows, err := tx.Query(ctx, `
SELECT id, match_id, sender_id, receiver_id, content, sent_at, is_read
FROM messages
WHERE match_id = $1
ORDER BY sent_at ASC, id ASC
`, matchID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]model.Message, 0, 64)
	for rows.Next() {
		var msg model.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.MatchID,
			&msg.SenderID,
			&msg.ReceiverID,
			&msg.Content,
			&msg.SentAt,
			&msg.IsRead,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate messages: %w", rows.Err())
	}

	return messages, nil
}

// MarkReadForViewer flips every unread message addressed to the viewer in
// the match. Returns the number of flipped rows.
func (r *MessageRepo) MarkReadForViewer(ctx context.Context, tx pgx.Tx, matchID, viewerID int64) (int64, error) {
	if matchID <= 0 || viewerID <= 0 {
		return 0, fmt.Errorf("invalid mark read payload")
	}
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
UPDATE messages
SET is_read = TRUE
WHERE match_id = $1 AND receiver_id = $2 AND is_read = FALSE
`, matchID, viewerID)
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *MessageRepo) GetByID(ctx context.Context, messageID int64) (model.Message, error) {
	if r.pool == nil {
		return model.Message{}, fmt.Errorf("postgres pool is nil")
	}
	if messageID <= 0 {
		return model.Message{}, ErrMessageNotFound
	}

	var msg model.Message
	err := r.pool.QueryRow(ctx, `
SELECT id, match_id, sender_id, receiver_id, content, sent_at, is_read
FROM messages
WHERE id = $1
`, messageID).Scan(
		&msg.ID,
		&msg.MatchID,
		&msg.SenderID,
		&msg.ReceiverID,
		&msg.Content,
		&msg.SentAt,
		&msg.IsRead,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Message{}, ErrMessageNotFound
		}
		return model.Message{}, fmt.Errorf("find message by id: %w", err)
	}

	return msg, nil
}

func (r *MessageRepo) MarkRead(ctx context.Context, tx pgx.Tx, messageID int64) error {
	if messageID <= 0 {
		return fmt.Errorf("invalid message id")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	if _, err := tx.Exec(ctx, `
UPDATE messages
SET is_read = TRUE
WHERE id = $1
`, messageID); err != nil {
		return fmt.Errorf("mark message read: %w", err)
	}

	return nil
}

func (r *MessageRepo) DeleteByMatch(ctx context.Context, tx pgx.Tx, matchID int64) (int64, error) {
	if matchID <= 0 {
		return 0, fmt.Errorf("invalid match id")
	}
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
DELETE FROM messages
WHERE match_id = $1
`, matchID)
	if err != nil {
		return 0, fmt.Errorf("delete messages by match: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *MessageRepo) DeleteByID(ctx context.Context, tx pgx.Tx, messageID int64) (bool, error) {
	if messageID <= 0 {
		return false, fmt.Errorf("invalid message id")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
DELETE FROM messages
WHERE id = $1
`, messageID)
	if err != nil {
		return false, fmt.Errorf("delete message: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// CountUnreadForUser is recomputed on every read; there is no materialized
// unread counter to drift.
func (r *MessageRepo) CountUnreadForUser(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return 0, nil
	}

	var count int64
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM messages
WHERE receiver_id = $1 AND is_read = FALSE
`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}

	return count, nil
}
