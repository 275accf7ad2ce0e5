package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/iru21/datingapp/backend/internal/domain/model"
	pgrepo "github.com/iru21/datingapp/backend/internal/repo/postgres"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrUserNotFound    = errors.New("user not found")
	ErrDependenciesNil = errors.New("users dependencies are not configured")
)

type UserStore interface {
	FindByID(ctx context.Context, userID int64) (model.User, error)
	SetTelegramChatID(ctx context.Context, userID int64, chatID *int64) error
}

type Service struct {
	store UserStore
}

func NewService(store UserStore) *Service {
	return &Service{store: store}
}

func (s *Service) GetProfile(ctx context.Context, userID int64) (model.User, error) {
	if s.store == nil {
		return model.User{}, ErrDependenciesNil
	}
	if userID <= 0 {
		return model.User{}, ErrValidation
	}

	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("find user: %w", err)
	}

	return user, nil
}

// LinkTelegramChat attaches the chat used for push notifications.
func (s *Service) LinkTelegramChat(ctx context.Context, userID, chatID int64) error {
	if s.store == nil {
		return ErrDependenciesNil
	}
	if userID <= 0 || chatID == 0 {
		return ErrValidation
	}

	if err := s.store.SetTelegramChatID(ctx, userID, &chatID); err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("link telegram chat: %w", err)
	}

	return nil
}

func (s *Service) UnlinkTelegramChat(ctx context.Context, userID int64) error {
	if s.store == nil {
		return ErrDependenciesNil
	}
	if userID <= 0 {
		return ErrValidation
	}

	if err := s.store.SetTelegramChatID(ctx, userID, nil); err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("unlink telegram chat: %w", err)
	}

	return nil
}
