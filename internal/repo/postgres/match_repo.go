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

var ErrMatchNotFound = errors.New("match not found")

type MatchRepo struct {
	pool *pgxpool.Pool
}

// MatchListRecord is a match rendered from one participant's perspective,
// joined with the other participant's profile fields.
type MatchListRecord struct {
	ID          int64
	OtherUserID int64
	FirstName   string
	LastName    string
	Age         int
	City        string
	IsActive    bool
	MatchedAt   time.Time
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

// CreateIfAbsent inserts an active match for the unordered pair. The pair is
// stored in canonical (min, max) order and guarded by a unique index, so a
// concurrent insert for the same pair resolves to a single row; the loser of
// the race gets created=false, never an error.
func (r *MatchRepo) CreateIfAbsent(ctx context.Context, tx pgx.Tx, userID, targetID int64, now time.Time) (int64, bool, error) {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return 0, false, fmt.Errorf("invalid match payload")
	}
	if tx == nil {
		return 0, false, fmt.Errorf("transaction is required")
	}

	userA, userB := canonicalPair(userID, targetID)

	var matchID int64
	err := tx.QueryRow(ctx, `
INSERT INTO matches (
	user_a_id,
	user_b_id,
	is_active,
	matched_at
) VALUES ($1, $2, TRUE, $3)
ON CONFLICT (user_a_id, user_b_id) DO NOTHING
RETURNING id
`, userA, userB, now).Scan(&matchID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("create match: %w", err)
	}

	return matchID, true, nil
}

func (r *MatchRepo) GetByID(ctx context.Context, matchID int64) (model.Match, error) {
	if r.pool == nil {
		return model.Match{}, fmt.Errorf("postgres pool is nil")
	}
	if matchID <= 0 {
		return model.Match{}, ErrMatchNotFound
	}

	return scanMatch(r.pool.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, is_active, matched_at
FROM matches
WHERE id = $1
`, matchID))
}

// GetByIDForUpdate locks the match row for the rest of the transaction.
// Used by the send and unmatch paths so the active-state check and the
// dependent writes see a single consistent row.
func (r *MatchRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, matchID int64) (model.Match, error) {
	if matchID <= 0 {
		return model.Match{}, ErrMatchNotFound
	}
	if tx == nil {
		return model.Match{}, fmt.Errorf("transaction is required")
	}

	return scanMatch(tx.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, is_active, matched_at
FROM matches
WHERE id = $1
FOR UPDATE
`, matchID))
}

func (r *MatchRepo) ExistsBetween(ctx context.Context, tx pgx.Tx, userID, otherID int64) (bool, error) {
	if userID <= 0 || otherID <= 0 {
		return false, fmt.Errorf("invalid match lookup payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	userA, userB := canonicalPair(userID, otherID)

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM matches
WHERE user_a_id = $1 AND user_b_id = $2
LIMIT 1
`, userA, userB).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup match between users: %w", err)
	}

	return true, nil
}

func (r *MatchRepo) FindBetween(ctx context.Context, userID, otherID int64) (model.Match, error) {
	if r.pool == nil {
		return model.Match{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || otherID <= 0 {
		return model.Match{}, ErrMatchNotFound
	}

	userA, userB := canonicalPair(userID, otherID)

	return scanMatch(r.pool.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, is_active, matched_at
FROM matches
WHERE user_a_id = $1 AND user_b_id = $2
`, userA, userB))
}

func (r *MatchRepo) ListForUser(ctx context.Context, userID int64, activeOnly bool, limit int) ([]MatchListRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []MatchListRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	m.id,
	CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END AS other_user_id,
	COALESCE(u.first_name, ''),
	COALESCE(u.last_name, ''),
	COALESCE(DATE_PART('year', AGE(NOW(), u.birthdate::timestamp))::int, 0),
	COALESCE(u.city, ''),
	m.is_active,
	m.matched_at
FROM matches m
JOIN users u ON u.id = CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END
WHERE
	(m.user_a_id = $1 OR m.user_b_id = $1)
	AND ($2 = FALSE OR m.is_active = TRUE)
ORDER BY m.matched_at DESC, m.id DESC
LIMIT $3
`, userID, activeOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	items := make([]MatchListRecord, 0, limit)
	for rows.Next() {
		var item MatchListRecord
		if err := rows.Scan(
			&item.ID,
			&item.OtherUserID,
			&item.FirstName,
			&item.LastName,
			&item.Age,
			&item.City,
			&item.IsActive,
			&item.MatchedAt,
		); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate matches: %w", rows.Err())
	}

	return items, nil
}

// Deactivate flips is_active to false. Deactivating an already-inactive
// match affects zero rows and reports deactivated=false; callers treat that
// as a no-op, not an error.
func (r *MatchRepo) Deactivate(ctx context.Context, tx pgx.Tx, matchID int64) (bool, error) {
	if matchID <= 0 {
		return false, fmt.Errorf("invalid match id")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
UPDATE matches
SET is_active = FALSE
WHERE id = $1 AND is_active = TRUE
`, matchID)
	if err != nil {
		return false, fmt.Errorf("deactivate match: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// HardDelete removes the match row. Dependent messages must already be gone;
// the matches service owns that ordering.
func (r *MatchRepo) HardDelete(ctx context.Context, tx pgx.Tx, matchID int64) (bool, error) {
	if matchID <= 0 {
		return false, fmt.Errorf("invalid match id")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
DELETE FROM matches
WHERE id = $1
`, matchID)
	if err != nil {
		return false, fmt.Errorf("delete match: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func canonicalPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

func scanMatch(row pgx.Row) (model.Match, error) {
	var match model.Match
	err := row.Scan(
		&match.ID,
		&match.UserAID,
		&match.UserBID,
		&match.IsActive,
		&match.MatchedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, ErrMatchNotFound
		}
		return model.Match{}, fmt.Errorf("scan match: %w", err)
	}
	return match, nil
}
