package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iru21/datingapp/backend/internal/domain/enums"
	"github.com/iru21/datingapp/backend/internal/domain/model"
)

var ErrRatingNotFound = errors.New("rating not found")

type RatingRepo struct {
	pool *pgxpool.Pool
}

func NewRatingRepo(pool *pgxpool.Pool) *RatingRepo {
	return &RatingRepo{pool: pool}
}

func (r *RatingRepo) Exists(ctx context.Context, tx pgx.Tx, raterID, ratedUserID int64) (bool, error) {
	if raterID <= 0 || ratedUserID <= 0 {
		return false, fmt.Errorf("invalid rating lookup payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM ratings
WHERE rater_id = $1 AND rated_user_id = $2
LIMIT 1
`, raterID, ratedUserID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup rating: %w", err)
	}

	return true, nil
}

// Create inserts the rating for the ordered (rater, rated) pair. The unique
// constraint on that pair makes a concurrent duplicate a silent no-op.
func (r *RatingRepo) Create(ctx context.Context, tx pgx.Tx, raterID, ratedUserID int64, ratingType enums.RatingType, now time.Time) (bool, error) {
	if raterID <= 0 || ratedUserID <= 0 || !ratingType.Valid() {
		return false, fmt.Errorf("invalid rating payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
INSERT INTO ratings (
	rater_id,
	rated_user_id,
	rating_type,
	created_at
) VALUES ($1, $2, $3, $4)
ON CONFLICT (rater_id, rated_user_id) DO NOTHING
`, raterID, ratedUserID, string(ratingType), now)
	if err != nil {
		return false, fmt.Errorf("create rating: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// FindReciprocal returns the rating in the opposite direction of the given
// (rater, rated) pair, if any.
func (r *RatingRepo) FindReciprocal(ctx context.Context, tx pgx.Tx, raterID, ratedUserID int64) (model.Rating, error) {
	if raterID <= 0 || ratedUserID <= 0 {
		return model.Rating{}, fmt.Errorf("invalid reciprocal lookup payload")
	}
	if tx == nil {
		return model.Rating{}, fmt.Errorf("transaction is required")
	}

	return scanRating(tx.QueryRow(ctx, `
SELECT id, rater_id, rated_user_id, rating_type, created_at
FROM ratings
WHERE rater_id = $1 AND rated_user_id = $2
`, ratedUserID, raterID))
}

func (r *RatingRepo) Find(ctx context.Context, raterID, ratedUserID int64) (model.Rating, error) {
	if r.pool == nil {
		return model.Rating{}, fmt.Errorf("postgres pool is nil")
	}
	if raterID <= 0 || ratedUserID <= 0 {
		return model.Rating{}, ErrRatingNotFound
	}

	return scanRating(r.pool.QueryRow(ctx, `
SELECT id, rater_id, rated_user_id, rating_type, created_at
FROM ratings
WHERE rater_id = $1 AND rated_user_id = $2
`, raterID, ratedUserID))
}

func (r *RatingRepo) Delete(ctx context.Context, tx pgx.Tx, raterID, ratedUserID int64) (bool, error) {
	if raterID <= 0 || ratedUserID <= 0 {
		return false, fmt.Errorf("invalid rating delete payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
DELETE FROM ratings
WHERE rater_id = $1 AND rated_user_id = $2
`, raterID, ratedUserID)
	if err != nil {
		return false, fmt.Errorf("delete rating: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *RatingRepo) ListRatedUserIDs(ctx context.Context, raterID int64) ([]int64, error) {
	if raterID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return []int64{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT rated_user_id
FROM ratings
WHERE rater_id = $1
`, raterID)
	if err != nil {
		return nil, fmt.Errorf("list rated user ids: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0, 64)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan rated user id: %w", err)
		}
		ids = append(ids, id)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate rated user ids: %w", rows.Err())
	}

	return ids, nil
}

func (r *RatingRepo) ExistsMutualLike(ctx context.Context, userID, otherID int64) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || otherID <= 0 {
		return false, fmt.Errorf("invalid mutual like payload")
	}

	var count int
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM ratings
WHERE
	rating_type = 'LIKE'
	AND ((rater_id = $1 AND rated_user_id = $2) OR (rater_id = $2 AND rated_user_id = $1))
`, userID, otherID).Scan(&count); err != nil {
		return false, fmt.Errorf("check mutual like: %w", err)
	}

	return count == 2, nil
}

func (r *RatingRepo) CountLikesReceived(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return 0, nil
	}

	var count int64
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM ratings
WHERE rated_user_id = $1 AND rating_type = 'LIKE'
`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count likes received: %w", err)
	}

	return count, nil
}

func scanRating(row pgx.Row) (model.Rating, error) {
	var rating model.Rating
	var ratingType string
	err := row.Scan(
		&rating.ID,
		&rating.RaterID,
		&rating.RatedUserID,
		&ratingType,
		&rating.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Rating{}, ErrRatingNotFound
		}
		return model.Rating{}, fmt.Errorf("scan rating: %w", err)
	}
	rating.Type = enums.RatingType(ratingType)
	return rating, nil
}
