package suggestions

import (
	"context"
	"errors"
	"fmt"

	"github.com/iru21/datingapp/backend/internal/domain/enums"
	"github.com/iru21/datingapp/backend/internal/domain/model"
	pgrepo "github.com/iru21/datingapp/backend/internal/repo/postgres"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrDependenciesNil = errors.New("suggestions dependencies are not configured")
)

type UserStore interface {
	SearchProfiles(ctx context.Context, gender enums.Gender, minAge, maxAge int, excludeIDs []int64, limit int) ([]model.User, error)
	CountProfiles(ctx context.Context, gender enums.Gender, minAge, maxAge int, excludeIDs []int64) (int64, error)
}

type RatingStore interface {
	ListRatedUserIDs(ctx context.Context, raterID int64) ([]int64, error)
}

type PreferenceStore interface {
	GetByUserID(ctx context.Context, userID int64) (model.SearchPreference, error)
	Upsert(ctx context.Context, pref model.SearchPreference) error
}

type Config struct {
	DefaultMinAge int
	DefaultMaxAge int
	DefaultLimit  int
}

type Dependencies struct {
	UserStore       UserStore
	RatingStore     RatingStore
	PreferenceStore PreferenceStore
}

type Service struct {
	userStore       UserStore
	ratingStore     RatingStore
	preferenceStore PreferenceStore
	cfg             Config
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.DefaultMinAge <= 0 {
		cfg.DefaultMinAge = 18
	}
	if cfg.DefaultMaxAge < cfg.DefaultMinAge {
		cfg.DefaultMaxAge = 100
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 20
	}

	return &Service{
		userStore:       deps.UserStore,
		ratingStore:     deps.RatingStore,
		preferenceStore: deps.PreferenceStore,
		cfg:             cfg,
	}
}

// Suggestions returns candidate profiles matching the user's stored
// preferences, excluding the user and everyone they already rated.
func (s *Service) Suggestions(ctx context.Context, userID int64, limit int) ([]model.User, error) {
	if s.userStore == nil || s.ratingStore == nil {
		return nil, ErrDependenciesNil
	}
	if userID <= 0 {
		return nil, ErrValidation
	}
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}

	pref, err := s.Preferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	excludeIDs, err := s.excludedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	users, err := s.userStore.SearchProfiles(ctx, pref.PreferredGender, pref.MinAge, pref.MaxAge, excludeIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("search suggested profiles: %w", err)
	}

	return users, nil
}

func (s *Service) AvailableCount(ctx context.Context, userID int64) (int64, error) {
	if s.userStore == nil || s.ratingStore == nil {
		return 0, ErrDependenciesNil
	}
	if userID <= 0 {
		return 0, ErrValidation
	}

	pref, err := s.Preferences(ctx, userID)
	if err != nil {
		return 0, err
	}

	excludeIDs, err := s.excludedIDs(ctx, userID)
	if err != nil {
		return 0, err
	}

	count, err := s.userStore.CountProfiles(ctx, pref.PreferredGender, pref.MinAge, pref.MaxAge, excludeIDs)
	if err != nil {
		return 0, fmt.Errorf("count suggested profiles: %w", err)
	}

	return count, nil
}

// Preferences returns the stored search preference, falling back to the
// configured wide-open defaults when the user never saved one.
func (s *Service) Preferences(ctx context.Context, userID int64) (model.SearchPreference, error) {
	if s.preferenceStore == nil {
		return model.SearchPreference{}, ErrDependenciesNil
	}
	if userID <= 0 {
		return model.SearchPreference{}, ErrValidation
	}

	pref, err := s.preferenceStore.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPreferenceNotFound) {
			return model.SearchPreference{
				UserID:          userID,
				PreferredGender: enums.GenderAny,
				MinAge:          s.cfg.DefaultMinAge,
				MaxAge:          s.cfg.DefaultMaxAge,
			}, nil
		}
		return model.SearchPreference{}, fmt.Errorf("get search preference: %w", err)
	}

	return pref, nil
}

func (s *Service) UpdatePreferences(ctx context.Context, pref model.SearchPreference) error {
	if s.preferenceStore == nil {
		return ErrDependenciesNil
	}
	if pref.UserID <= 0 {
		return ErrValidation
	}
	if !pref.PreferredGender.ValidPreference() {
		return ErrValidation
	}
	if pref.MinAge < s.cfg.DefaultMinAge || pref.MaxAge < pref.MinAge {
		return ErrValidation
	}

	if err := s.preferenceStore.Upsert(ctx, pref); err != nil {
		return fmt.Errorf("save search preference: %w", err)
	}

	return nil
}

func (s *Service) excludedIDs(ctx context.Context, userID int64) ([]int64, error) {
	rated, err := s.ratingStore.ListRatedUserIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list rated users: %w", err)
	}

	return append(rated, userID), nil
}
