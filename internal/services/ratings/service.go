package ratings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iru21/datingapp/backend/internal/domain/enums"
	"github.com/iru21/datingapp/backend/internal/domain/model"
	pgrepo "github.com/iru21/datingapp/backend/internal/repo/postgres"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrSelfRating      = errors.New("users cannot rate themselves")
	ErrUserNotFound    = errors.New("user not found")
	ErrRatingNotFound  = errors.New("rating not found")
	ErrDependenciesNil = errors.New("ratings dependencies are not configured")
)

type TooFastError struct {
	RetryAfterSec int64
}

func (e TooFastError) Error() string {
	return "too fast"
}

func (e TooFastError) RetryAfter() int64 {
	if e.RetryAfterSec <= 0 {
		return 1
	}
	return e.RetryAfterSec
}

func IsTooFast(err error) (*TooFastError, bool) {
	var tf TooFastError
	if errors.As(err, &tf) {
		return &tf, true
	}
	return nil, false
}

type RatingStore interface {
	Exists(ctx context.Context, tx pgx.Tx, raterID, ratedUserID int64) (bool, error)
	Create(ctx context.Context, tx pgx.Tx, raterID, ratedUserID int64, ratingType enums.RatingType, now time.Time) (bool, error)
	FindReciprocal(ctx context.Context, tx pgx.Tx, raterID, ratedUserID int64) (model.Rating, error)
	Find(ctx context.Context, raterID, ratedUserID int64) (model.Rating, error)
	Delete(ctx context.Context, tx pgx.Tx, raterID, ratedUserID int64) (bool, error)
	ExistsMutualLike(ctx context.Context, userID, otherID int64) (bool, error)
	CountLikesReceived(ctx context.Context, userID int64) (int64, error)
}

type MatchStore interface {
	ExistsBetween(ctx context.Context, tx pgx.Tx, userID, otherID int64) (bool, error)
	CreateIfAbsent(ctx context.Context, tx pgx.Tx, userID, targetID int64, now time.Time) (int64, bool, error)
}

type UserStore interface {
	FindByID(ctx context.Context, userID int64) (model.User, error)
}

type Notifier interface {
	MatchCreated(ctx context.Context, userID, otherUserID, matchID int64) error
}

type RateLimiter interface {
	AllowRating(ctx context.Context, userID int64) (int64, bool, error)
}

type Dependencies struct {
	Pool        *pgxpool.Pool
	RatingStore RatingStore
	MatchStore  MatchStore
	UserStore   UserStore
	Notifier    Notifier
	RateLimiter RateLimiter
}

// RateResult reports what the rating actually did. A duplicate rating
// leaves both flags false and is not an error.
type RateResult struct {
	RatingCreated bool
	MatchCreated  bool
	MatchID       int64
}

type Service struct {
	ratingStore RatingStore
	matchStore  MatchStore
	userStore   UserStore
	notifier    Notifier
	rateLimiter RateLimiter
	runTx       func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
	now         func() time.Time
}

func NewService(deps Dependencies) *Service {
	return &Service{
		ratingStore: deps.RatingStore,
		matchStore:  deps.MatchStore,
		userStore:   deps.UserStore,
		notifier:    deps.Notifier,
		rateLimiter: deps.RateLimiter,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, deps.Pool, fn)
		},
		now: time.Now,
	}
}

// RateUser records raterID's verdict on ratedUserID. Repeated ratings of
// the same target are absorbed silently; a mutual LIKE forms the match,
// with the unique pair index deciding the winner under concurrency.
func (s *Service) RateUser(ctx context.Context, raterID, ratedUserID int64, ratingType enums.RatingType) (RateResult, error) {
	if s.ratingStore == nil || s.matchStore == nil || s.userStore == nil {
		return RateResult{}, ErrDependenciesNil
	}
	if raterID <= 0 || ratedUserID <= 0 {
		return RateResult{}, ErrValidation
	}
	if raterID == ratedUserID {
		return RateResult{}, ErrSelfRating
	}
	if !ratingType.Valid() {
		return RateResult{}, ErrValidation
	}

	if s.rateLimiter != nil {
		retryAfter, allowed, err := s.rateLimiter.AllowRating(ctx, raterID)
		if err != nil {
			return RateResult{}, fmt.Errorf("apply rate limiter: %w", err)
		}
		if !allowed {
			return RateResult{}, TooFastError{RetryAfterSec: retryAfter}
		}
	}

	for _, userID := range []int64{raterID, ratedUserID} {
		if _, err := s.userStore.FindByID(ctx, userID); err != nil {
			if errors.Is(err, pgrepo.ErrUserNotFound) {
				return RateResult{}, ErrUserNotFound
			}
			return RateResult{}, fmt.Errorf("resolve user %d: %w", userID, err)
		}
	}

	now := s.now().UTC()
	result := RateResult{}
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		exists, err := s.ratingStore.Exists(txCtx, tx, raterID, ratedUserID)
		if err != nil {
			return fmt.Errorf("check existing rating: %w", err)
		}
		if exists {
			return nil
		}

		created, err := s.ratingStore.Create(txCtx, tx, raterID, ratedUserID, ratingType, now)
		if err != nil {
			return fmt.Errorf("create rating: %w", err)
		}
		if !created {
			return nil
		}
		result.RatingCreated = true

		if ratingType != enums.RatingTypeLike {
			return nil
		}

		reciprocal, err := s.ratingStore.FindReciprocal(txCtx, tx, raterID, ratedUserID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrRatingNotFound) {
				return nil
			}
			return fmt.Errorf("find reciprocal rating: %w", err)
		}
		if reciprocal.Type != enums.RatingTypeLike {
			return nil
		}

		matched, err := s.matchStore.ExistsBetween(txCtx, tx, raterID, ratedUserID)
		if err != nil {
			return fmt.Errorf("check existing match: %w", err)
		}
		if matched {
			return nil
		}

		matchID, matchCreated, err := s.matchStore.CreateIfAbsent(txCtx, tx, raterID, ratedUserID, now)
		if err != nil {
			return fmt.Errorf("create match: %w", err)
		}
		if matchCreated {
			result.MatchCreated = true
			result.MatchID = matchID
		}

		return nil
	}); err != nil {
		return RateResult{}, err
	}

	if result.MatchCreated && s.notifier != nil {
		// Notifications ride outside the transaction; the match stands
		// even if delivery fails.
		_ = s.notifier.MatchCreated(ctx, raterID, ratedUserID, result.MatchID)
		_ = s.notifier.MatchCreated(ctx, ratedUserID, raterID, result.MatchID)
	}

	return result, nil
}

func (s *Service) GetRating(ctx context.Context, raterID, ratedUserID int64) (model.Rating, error) {
	if s.ratingStore == nil {
		return model.Rating{}, ErrDependenciesNil
	}
	if raterID <= 0 || ratedUserID <= 0 {
		return model.Rating{}, ErrValidation
	}

	rating, err := s.ratingStore.Find(ctx, raterID, ratedUserID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrRatingNotFound) {
			return model.Rating{}, ErrRatingNotFound
		}
		return model.Rating{}, fmt.Errorf("find rating: %w", err)
	}

	return rating, nil
}

func (s *Service) HasMutualLike(ctx context.Context, userID, otherID int64) (bool, error) {
	if s.ratingStore == nil {
		return false, ErrDependenciesNil
	}
	if userID <= 0 || otherID <= 0 || userID == otherID {
		return false, ErrValidation
	}

	mutual, err := s.ratingStore.ExistsMutualLike(ctx, userID, otherID)
	if err != nil {
		return false, fmt.Errorf("check mutual like: %w", err)
	}

	return mutual, nil
}

// DeleteRating removes the rater's verdict. An existing match is left
// untouched; unmatch is a separate operation.
func (s *Service) DeleteRating(ctx context.Context, raterID, ratedUserID int64) error {
	if s.ratingStore == nil {
		return ErrDependenciesNil
	}
	if raterID <= 0 || ratedUserID <= 0 {
		return ErrValidation
	}

	return s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		deleted, err := s.ratingStore.Delete(txCtx, tx, raterID, ratedUserID)
		if err != nil {
			return fmt.Errorf("delete rating: %w", err)
		}
		if !deleted {
			return ErrRatingNotFound
		}
		return nil
	})
}

func (s *Service) LikesReceivedCount(ctx context.Context, userID int64) (int64, error) {
	if s.ratingStore == nil {
		return 0, ErrDependenciesNil
	}
	if userID <= 0 {
		return 0, ErrValidation
	}

	count, err := s.ratingStore.CountLikesReceived(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count likes received: %w", err)
	}

	return count, nil
}
