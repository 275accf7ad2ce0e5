package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iru21/datingapp/backend/internal/domain/enums"
	"github.com/iru21/datingapp/backend/internal/domain/model"
)

var ErrPreferenceNotFound = errors.New("search preference not found")

type PreferenceRepo struct {
	pool *pgxpool.Pool
}

func NewPreferenceRepo(pool *pgxpool.Pool) *PreferenceRepo {
	return &PreferenceRepo{pool: pool}
}

func (r *PreferenceRepo) GetByUserID(ctx context.Context, userID int64) (model.SearchPreference, error) {
	if r.pool == nil {
		return model.SearchPreference{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return model.SearchPreference{}, ErrPreferenceNotFound
	}

	var pref model.SearchPreference
	var gender string
	err := r.pool.QueryRow(ctx, `
SELECT user_id, preferred_gender, min_age, max_age
FROM search_preferences
WHERE user_id = $1
`, userID).Scan(&pref.UserID, &gender, &pref.MinAge, &pref.MaxAge)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.SearchPreference{}, ErrPreferenceNotFound
		}
		return model.SearchPreference{}, fmt.Errorf("find search preference: %w", err)
	}
	pref.PreferredGender = enums.Gender(gender)

	return pref, nil
}

func (r *PreferenceRepo) Upsert(ctx context.Context, pref model.SearchPreference) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if pref.UserID <= 0 || pref.MinAge <= 0 || pref.MaxAge < pref.MinAge {
		return fmt.Errorf("invalid search preference payload")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO search_preferences (
	user_id,
	preferred_gender,
	min_age,
	max_age
) VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id) DO UPDATE SET
	preferred_gender = EXCLUDED.preferred_gender,
	min_age = EXCLUDED.min_age,
	max_age = EXCLUDED.max_age
`, pref.UserID, string(pref.PreferredGender), pref.MinAge, pref.MaxAge); err != nil {
		return fmt.Errorf("upsert search preference: %w", err)
	}

	return nil
}
