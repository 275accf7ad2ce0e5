package messages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iru21/datingapp/backend/internal/domain/model"
	pgrepo "github.com/iru21/datingapp/backend/internal/repo/postgres"
	ratingsvc "github.com/iru21/datingapp/backend/internal/services/ratings"
)

const maxContentLen = 2000

var (
	ErrValidation      = errors.New("validation error")
	ErrMatchNotFound   = errors.New("match not found")
	ErrMatchNotActive  = errors.New("match is not active")
	ErrMessageNotFound = errors.New("message not found")
	ErrDependenciesNil = errors.New("messages dependencies are not configured")
)

type MatchStore interface {
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, matchID int64) (model.Match, error)
}

type MessageStore interface {
	Insert(ctx context.Context, tx pgx.Tx, matchID, senderID, receiverID int64, content string, now time.Time) (model.Message, error)
	ListByMatch(ctx context.Context, tx pgx.Tx, matchID int64) ([]model.Message, error)
	MarkReadForViewer(ctx context.Context, tx pgx.Tx, matchID, viewerID int64) (int64, error)
	GetByID(ctx context.Context, messageID int64) (model.Message, error)
	MarkRead(ctx context.Context, tx pgx.Tx, messageID int64) error
	DeleteByMatch(ctx context.Context, tx pgx.Tx, matchID int64) (int64, error)
	DeleteByID(ctx context.Context, tx pgx.Tx, messageID int64) (bool, error)
	CountUnreadForUser(ctx context.Context, userID int64) (int64, error)
}

type Notifier interface {
	MessageSent(ctx context.Context, receiverID, senderID, messageID int64) error
}

type RateLimiter interface {
	AllowMessage(ctx context.Context, userID int64) (int64, bool, error)
}

type Dependencies struct {
	Pool         *pgxpool.Pool
	MatchStore   MatchStore
	MessageStore MessageStore
	Notifier     Notifier
	RateLimiter  RateLimiter
}

type Service struct {
	matchStore   MatchStore
	messageStore MessageStore
	notifier     Notifier
	rateLimiter  RateLimiter
	runTx        func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
	now          func() time.Time
}

func NewService(deps Dependencies) *Service {
	return &Service{
		matchStore:   deps.MatchStore,
		messageStore: deps.MessageStore,
		notifier:     deps.Notifier,
		rateLimiter:  deps.RateLimiter,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, deps.Pool, fn)
		},
		now: time.Now,
	}
}

// Send delivers a message inside an active match. Inactive matches
// reject sends; match membership failures surface as not-found.
func (s *Service) Send(ctx context.Context, senderID, matchID int64, content string) (model.Message, error) {
	if s.matchStore == nil || s.messageStore == nil {
		return model.Message{}, ErrDependenciesNil
	}
	if senderID <= 0 || matchID <= 0 {
		return model.Message{}, ErrValidation
	}
	content = strings.TrimSpace(content)
	if content == "" || len(content) > maxContentLen {
		return model.Message{}, ErrValidation
	}

	if s.rateLimiter != nil {
		retryAfter, allowed, err := s.rateLimiter.AllowMessage(ctx, senderID)
		if err != nil {
			return model.Message{}, fmt.Errorf("apply rate limiter: %w", err)
		}
		if !allowed {
			return model.Message{}, ratingsvc.TooFastError{RetryAfterSec: retryAfter}
		}
	}

	now := s.now().UTC()
	var message model.Message
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		match, err := s.matchStore.GetByIDForUpdate(txCtx, tx, matchID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return fmt.Errorf("lock match: %w", err)
		}
		if !match.HasParticipant(senderID) {
			return ErrMatchNotFound
		}
		if !match.IsActive {
			return ErrMatchNotActive
		}

		message, err = s.messageStore.Insert(txCtx, tx, matchID, senderID, match.OtherParticipant(senderID), content, now)
		if err != nil {
			return fmt.Errorf("insert message: %w", err)
		}

		return nil
	}); err != nil {
		return model.Message{}, err
	}

	if s.notifier != nil {
		// Delivery failure never unwinds a sent message.
		_ = s.notifier.MessageSent(ctx, message.ReceiverID, senderID, message.ID)
	}

	return message, nil
}

// History returns the conversation in send order and marks everything
// addressed to the viewer as read in the same transaction. Inactive
// matches stay readable.
func (s *Service) History(ctx context.Context, viewerID, matchID int64) ([]model.Message, error) {
	if s.matchStore == nil || s.messageStore == nil {
		return nil, ErrDependenciesNil
	}
	if viewerID <= 0 || matchID <= 0 {
		return nil, ErrValidation
	}

	var history []model.Message
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		match, err := s.matchStore.GetByIDForUpdate(txCtx, tx, matchID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return fmt.Errorf("lock match: %w", err)
		}
		if !match.HasParticipant(viewerID) {
			return ErrMatchNotFound
		}

		history, err = s.messageStore.ListByMatch(txCtx, tx, matchID)
		if err != nil {
			return fmt.Errorf("list messages: %w", err)
		}
		if _, err := s.messageStore.MarkReadForViewer(txCtx, tx, matchID, viewerID); err != nil {
			return fmt.Errorf("mark messages read: %w", err)
		}

		return nil
	}); err != nil {
		return nil, err
	}

	// The returned snapshot reflects the read flip just committed.
	for i := range history {
		if history[i].ReceiverID == viewerID {
			history[i].IsRead = true
		}
	}

	return history, nil
}

func (s *Service) DeleteConversation(ctx context.Context, userID, matchID int64) (int64, error) {
	if s.matchStore == nil || s.messageStore == nil {
		return 0, ErrDependenciesNil
	}
	if userID <= 0 || matchID <= 0 {
		return 0, ErrValidation
	}

	var deleted int64
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
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

		deleted, err = s.messageStore.DeleteByMatch(txCtx, tx, matchID)
		if err != nil {
			return fmt.Errorf("delete conversation: %w", err)
		}

		return nil
	}); err != nil {
		return 0, err
	}

	return deleted, nil
}

// DeleteMessage removes a single message; only its sender may do so.
func (s *Service) DeleteMessage(ctx context.Context, userID, messageID int64) error {
	if s.messageStore == nil {
		return ErrDependenciesNil
	}
	if userID <= 0 || messageID <= 0 {
		return ErrValidation
	}

	message, err := s.messageStore.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMessageNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("get message: %w", err)
	}
	if message.SenderID != userID {
		return ErrMessageNotFound
	}

	return s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		deleted, err := s.messageStore.DeleteByID(txCtx, tx, messageID)
		if err != nil {
			return fmt.Errorf("delete message: %w", err)
		}
		if !deleted {
			return ErrMessageNotFound
		}
		return nil
	})
}

// MarkRead flags a single message; only its receiver may do so.
func (s *Service) MarkRead(ctx context.Context, userID, messageID int64) error {
	if s.messageStore == nil {
		return ErrDependenciesNil
	}
	if userID <= 0 || messageID <= 0 {
		return ErrValidation
	}

	message, err := s.messageStore.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMessageNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("get message: %w", err)
	}
	if message.ReceiverID != userID {
		return ErrMessageNotFound
	}
	if message.IsRead {
		return nil
	}

	return s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		if err := s.messageStore.MarkRead(txCtx, tx, messageID); err != nil {
			return fmt.Errorf("mark message read: %w", err)
		}
		return nil
	})
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	if s.messageStore == nil {
		return 0, ErrDependenciesNil
	}
	if userID <= 0 {
		return 0, ErrValidation
	}

	count, err := s.messageStore.CountUnreadForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}

	return count, nil
}
