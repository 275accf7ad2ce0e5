package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iru21/datingapp/backend/internal/domain/model"
	pgrepo "github.com/iru21/datingapp/backend/internal/repo/postgres"
)

const defaultListLimit = 100

var (
	ErrValidation      = errors.New("validation error")
	ErrMatchNotFound   = errors.New("match not found")
	ErrDependenciesNil = errors.New("matches dependencies are not configured")
)

type MatchStore interface {
	GetByID(ctx context.Context, matchID int64) (model.Match, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, matchID int64) (model.Match, error)
	FindBetween(ctx context.Context, userID, otherID int64) (model.Match, error)
	ListForUser(ctx context.Context, userID int64, activeOnly bool, limit int) ([]pgrepo.MatchListRecord, error)
	Deactivate(ctx context.Context, tx pgx.Tx, matchID int64) (bool, error)
	HardDelete(ctx context.Context, tx pgx.Tx, matchID int64) (bool, error)
}

type MessageStore interface {
	DeleteByMatch(ctx context.Context, tx pgx.Tx, matchID int64) (int64, error)
}

type Dependencies struct {
	Pool         *pgxpool.Pool
	MatchStore   MatchStore
	MessageStore MessageStore
}

type Service struct {
	matchStore   MatchStore
	messageStore MessageStore
	runTx        func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
	now          func() time.Time
}

func NewService(deps Dependencies) *Service {
	return &Service{
		matchStore:   deps.MatchStore,
		messageStore: deps.MessageStore,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, deps.Pool, fn)
		},
		now: time.Now,
	}
}

func (s *Service) List(ctx context.Context, userID int64, activeOnly bool, limit int) ([]pgrepo.MatchListRecord, error) {
	if s.matchStore == nil {
		return nil, ErrDependenciesNil
	}
	if userID <= 0 {
		return nil, ErrValidation
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	items, err := s.matchStore.ListForUser(ctx, userID, activeOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	return items, nil
}

// GetByID returns the match when userID participates in it. Foreign
// matches answer not-found, never forbidden.
func (s *Service) GetByID(ctx context.Context, userID, matchID int64) (model.Match, error) {
	if s.matchStore == nil {
		return model.Match{}, ErrDependenciesNil
	}
	if userID <= 0 || matchID <= 0 {
		return model.Match{}, ErrValidation
	}

	match, err := s.matchStore.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return model.Match{}, ErrMatchNotFound
		}
		return model.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !match.HasParticipant(userID) {
		return model.Match{}, ErrMatchNotFound
	}

	return match, nil
}

func (s *Service) FindBetween(ctx context.Context, userID, otherID int64) (model.Match, error) {
	if s.matchStore == nil {
		return model.Match{}, ErrDependenciesNil
	}
	if userID <= 0 || otherID <= 0 || userID == otherID {
		return model.Match{}, ErrValidation
	}

	match, err := s.matchStore.FindBetween(ctx, userID, otherID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return model.Match{}, ErrMatchNotFound
		}
		return model.Match{}, fmt.Errorf("find match between users: %w", err)
	}

	return match, nil
}

// Unmatch wipes the conversation and deactivates the match in one
// transaction. Unmatching an already inactive match is a no-op.
func (s *Service) Unmatch(ctx context.Context, userID, matchID int64) error {
	if s.matchStore == nil || s.messageStore == nil {
		return ErrDependenciesNil
	}
	if userID <= 0 || matchID <= 0 {
		return ErrValidation
	}

	return s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		match, err := s.matchStore.GetByIDForUpdate(txCtx, tx, matchID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return fmt.Errorf("lock match: %w", err)
		}
		if !match.HasParticipant(userID) {
			return ErrMatchNotFound
		}
		if !match.IsActive {
			return nil
		}

		if _, err := s.messageStore.DeleteByMatch(txCtx, tx, matchID); err != nil {
			return fmt.Errorf("delete match messages: %w", err)
		}
		if _, err := s.matchStore.Deactivate(txCtx, tx, matchID); err != nil {
			return fmt.Errorf("deactivate match: %w", err)
		}

		return nil
	})
}

// Delete removes the match row entirely, messages first.
func (s *Service) Delete(ctx context.Context, userID, matchID int64) error {
	if s.matchStore == nil || s.messageStore == nil {
		return ErrDependenciesNil
	}
	if userID <= 0 || matchID <= 0 {
		return ErrValidation
	}

	return s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		match, err := s.matchStore.GetByIDForUpdate(txCtx, tx, matchID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return fmt.Errorf("lock match: %w", err)
		}
		if !match.HasParticipant(userID) {
			return ErrMatchNotFound
		}

		if _, err := s.messageStore.DeleteByMatch(txCtx, tx, matchID); err != nil {
			return fmt.Errorf("delete match messages: %w", err)
		}
		if _, err := s.matchStore.HardDelete(txCtx, tx, matchID); err != nil {
			return fmt.Errorf("delete match: %w", err)
		}

		return nil
	})
}
