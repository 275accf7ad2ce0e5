package notifications

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/iru21/datingapp/backend/internal/domain/enums"
	"github.com/iru21/datingapp/backend/internal/domain/model"
	pgrepo "github.com/iru21/datingapp/backend/internal/repo/postgres"
)

type memNotificationStore struct {
	items  []model.Notification
	nextID int64
}

func (s *memNotificationStore) Insert(_ context.Context, userID int64, ntype enums.NotificationType, message string, relatedUserID, relatedEntityID *int64, now time.Time) (int64, error) {
	s.nextID++
	s.items = append(s.items, model.Notification{
		ID:              s.nextID,
		UserID:          userID,
		Type:            ntype,
		Message:         message,
		RelatedUserID:   relatedUserID,
		RelatedEntityID: relatedEntityID,
		CreatedAt:       now,
	})
	return s.nextID, nil
}

func (s *memNotificationStore) ListForUser(_ context.Context, userID int64, unreadOnly bool, limit int) ([]model.Notification, error) {
	out := []model.Notification{}
	for _, item := range s.items {
		if item.UserID != userID {
			continue
		}
		if unreadOnly && item.IsRead {
			continue
		}
		out = append(out, item)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *memNotificationStore) CountUnread(_ context.Context, userID int64) (int64, error) {
	var count int64
	for _, item := range s.items {
		if item.UserID == userID && !item.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *memNotificationStore) MarkRead(_ context.Context, notificationID, userID int64) (bool, error) {
	for i, item := range s.items {
		if item.ID == notificationID && item.UserID == userID {
			s.items[i].IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (s *memNotificationStore) MarkAllRead(_ context.Context, userID int64) (int64, error) {
	var marked int64
	for i, item := range s.items {
		if item.UserID == userID && !item.IsRead {
			s.items[i].IsRead = true
			marked++
		}
	}
	return marked, nil
}

func (s *memNotificationStore) DeleteByID(_ context.Context, notificationID, userID int64) (bool, error) {
	for i, item := range s.items {
		if item.ID == notificationID && item.UserID == userID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *memNotificationStore) DeleteForUser(_ context.Context, userID int64) (int64, error) {
	kept := s.items[:0]
	var deleted int64
	for _, item := range s.items {
		if item.UserID == userID {
			deleted++
			continue
		}
		kept = append(kept, item)
	}
	s.items = kept
	return deleted, nil
}

type stubUserStore struct {
	users map[int64]model.User
}

func (s *stubUserStore) FindByID(_ context.Context, userID int64) (model.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return user, nil
}

type recordingPusher struct {
	pushed []string
}

func (p *recordingPusher) Push(_ context.Context, chatID int64, text string) {
	p.pushed = append(p.pushed, text)
}

func newNotificationsForTest() (*Service, *memNotificationStore, *recordingPusher) {
	chatID := int64(9000)
	store := &memNotificationStore{}
	pusher := &recordingPusher{}
	users := &stubUserStore{users: map[int64]model.User{
		1: {ID: 1, Username: "alice", FirstName: "Alice", TelegramChatID: &chatID},
		2: {ID: 2, Username: "bob"},
	}}

	svc := NewService(Dependencies{Store: store, Users: users, Pusher: pusher})
	return svc, store, pusher
}

func TestMatchCreatedRecordsAndPushes(t *testing.T) {
	svc, store, pusher := newNotificationsForTest()
	ctx := context.Background()

	if err := svc.MatchCreated(ctx, 1, 2, 33); err != nil {
		t.Fatalf("match created: %v", err)
	}

	if len(store.items) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(store.items))
	}
	item := store.items[0]
	if item.Type != enums.NotificationTypeNewMatch || item.UserID != 1 {
		t.Fatalf("unexpected notification: %+v", item)
	}
	if !strings.Contains(item.Message, "bob") {
		t.Fatalf("expected matched user name in message, got %q", item.Message)
	}
	if len(pusher.pushed) != 1 {
		t.Fatalf("expected push to linked chat, got %d pushes", len(pusher.pushed))
	}
}

func TestMessageSentSkipsPushWithoutLinkedChat(t *testing.T) {
	svc, store, pusher := newNotificationsForTest()
	ctx := context.Background()

	if err := svc.MessageSent(ctx, 2, 1, 77); err != nil {
		t.Fatalf("message sent: %v", err)
	}

	if len(store.items) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(store.items))
	}
	if store.items[0].Type != enums.NotificationTypeNewMessage {
		t.Fatalf("unexpected notification type: %s", store.items[0].Type)
	}
	if len(pusher.pushed) != 0 {
		t.Fatalf("user 2 has no linked chat, expected no push, got %d", len(pusher.pushed))
	}
}

func TestMarkReadScopedToOwner(t *testing.T) {
	svc, _, _ := newNotificationsForTest()
	ctx := context.Background()

	if err := svc.MatchCreated(ctx, 1, 2, 33); err != nil {
		t.Fatalf("match created: %v", err)
	}

	if err := svc.MarkRead(ctx, 2, 1); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("foreign notification should be not found, got err=%v", err)
	}
	if err := svc.MarkRead(ctx, 1, 1); err != nil {
		t.Fatalf("owner mark read: %v", err)
	}

	count, err := svc.UnreadCount(ctx, 1)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 unread after mark read, got %d", count)
	}
}

func TestDeleteAllClearsOnlyOwnNotifications(t *testing.T) {
	svc, store, _ := newNotificationsForTest()
	ctx := context.Background()

	if err := svc.MatchCreated(ctx, 1, 2, 33); err != nil {
		t.Fatalf("match created for user 1: %v", err)
	}
	if err := svc.MatchCreated(ctx, 2, 1, 33); err != nil {
		t.Fatalf("match created for user 2: %v", err)
	}

	deleted, err := svc.DeleteAll(ctx, 1)
	if err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted, got %d", deleted)
	}
	if len(store.items) != 1 || store.items[0].UserID != 2 {
		t.Fatalf("user 2 notifications should survive, got %+v", store.items)
	}
}
