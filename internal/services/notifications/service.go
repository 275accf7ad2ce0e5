package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iru21/datingapp/backend/internal/domain/enums"
	"github.com/iru21/datingapp/backend/internal/domain/model"
)

const defaultListLimit = 50

var (
	ErrValidation           = errors.New("validation error")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrDependenciesNil      = errors.New("notifications dependencies are not configured")
)

type NotificationStore interface {
	Insert(ctx context.Context, userID int64, ntype enums.NotificationType, message string, relatedUserID, relatedEntityID *int64, now time.Time) (int64, error)
	ListForUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]model.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, notificationID, userID int64) (bool, error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	DeleteByID(ctx context.Context, notificationID, userID int64) (bool, error)
	DeleteForUser(ctx context.Context, userID int64) (int64, error)
}

type UserStore interface {
	FindByID(ctx context.Context, userID int64) (model.User, error)
}

// Pusher delivers a copy of the notification to an external channel.
// Delivery is best effort; failures never fail the calling operation.
type Pusher interface {
	Push(ctx context.Context, chatID int64, text string)
}

type Dependencies struct {
	Store  NotificationStore
	Users  UserStore
	Pusher Pusher
}

type Service struct {
	store  NotificationStore
	users  UserStore
	pusher Pusher
	now    func() time.Time
}

func NewService(deps Dependencies) *Service {
	return &Service{
		store:  deps.Store,
		users:  deps.Users,
		pusher: deps.Pusher,
		now:    time.Now,
	}
}

// MatchCreated records a new-match notification for userID about otherUserID.
func (s *Service) MatchCreated(ctx context.Context, userID, otherUserID, matchID int64) error {
	if s.store == nil || s.users == nil {
		return ErrDependenciesNil
	}
	if userID <= 0 || otherUserID <= 0 || matchID <= 0 {
		return ErrValidation
	}

	other, err := s.users.FindByID(ctx, otherUserID)
	if err != nil {
		return fmt.Errorf("find matched user: %w", err)
	}

	text := fmt.Sprintf("You have a new match with %s!", displayName(other))
	if _, err := s.store.Insert(ctx, userID, enums.NotificationTypeNewMatch, text, &otherUserID, &matchID, s.now().UTC()); err != nil {
		return fmt.Errorf("insert match notification: %w", err)
	}

	s.push(ctx, userID, text)
	return nil
}

// MessageSent records a new-message notification for the receiver.
func (s *Service) MessageSent(ctx context.Context, receiverID, senderID, messageID int64) error {
	if s.store == nil || s.users == nil {
		return ErrDependenciesNil
	}
	if receiverID <= 0 || senderID <= 0 || messageID <= 0 {
		return ErrValidation
	}

	sender, err := s.users.FindByID(ctx, senderID)
	if err != nil {
		return fmt.Errorf("find message sender: %w", err)
	}

	text := fmt.Sprintf("New message from %s", displayName(sender))
	if _, err := s.store.Insert(ctx, receiverID, enums.NotificationTypeNewMessage, text, &senderID, &messageID, s.now().UTC()); err != nil {
		return fmt.Errorf("insert message notification: %w", err)
	}

	s.push(ctx, receiverID, text)
	return nil
}

func (s *Service) List(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]model.Notification, error) {
	if s.store == nil {
		return nil, ErrDependenciesNil
	}
	if userID <= 0 {
		return nil, ErrValidation
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	items, err := s.store.ListForUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return items, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	if s.store == nil {
		return 0, ErrDependenciesNil
	}
	if userID <= 0 {
		return 0, ErrValidation
	}

	count, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}

	return count, nil
}

// MarkRead marks the user's own notification as read. A notification
// owned by someone else reports not-found.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID int64) error {
	if s.store == nil {
		return ErrDependenciesNil
	}
	if userID <= 0 || notificationID <= 0 {
		return ErrValidation
	}

	marked, err := s.store.MarkRead(ctx, notificationID, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if !marked {
		return ErrNotificationNotFound
	}

	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	if s.store == nil {
		return 0, ErrDependenciesNil
	}
	if userID <= 0 {
		return 0, ErrValidation
	}

	marked, err := s.store.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}

	return marked, nil
}

func (s *Service) Delete(ctx context.Context, userID, notificationID int64) error {
	if s.store == nil {
		return ErrDependenciesNil
	}
	if userID <= 0 || notificationID <= 0 {
		return ErrValidation
	}

	deleted, err := s.store.DeleteByID(ctx, notificationID, userID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if !deleted {
		return ErrNotificationNotFound
	}

	return nil
}

func (s *Service) DeleteAll(ctx context.Context, userID int64) (int64, error) {
	if s.store == nil {
		return 0, ErrDependenciesNil
	}
	if userID <= 0 {
		return 0, ErrValidation
	}

	deleted, err := s.store.DeleteForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("delete notifications: %w", err)
	}

	return deleted, nil
}

func (s *Service) push(ctx context.Context, userID int64, text string) {
	if s.pusher == nil || s.users == nil {
		return
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil || user.TelegramChatID == nil {
		return
	}

	s.pusher.Push(ctx, *user.TelegramChatID, text)
}

func displayName(user model.User) string {
	name := strings.TrimSpace(user.FirstName)
	if name == "" {
		name = user.Username
	}
	return name
}
