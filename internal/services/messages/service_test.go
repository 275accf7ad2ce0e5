package messages

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iru21/datingapp/backend/internal/domain/model"
	pgrepo "github.com/iru21/datingapp/backend/internal/repo/postgres"
	ratingsvc "github.com/iru21/datingapp/backend/internal/services/ratings"
)

type memMatchStore struct {
	matches map[int64]model.Match
}

func (s *memMatchStore) GetByIDForUpdate(_ context.Context, _ pgx.Tx, matchID int64) (model.Match, error) {
	match, ok := s.matches[matchID]
	if !ok {
		return model.Match{}, pgrepo.ErrMatchNotFound
	}
	return match, nil
}

type memMessageStore struct {
	messages map[int64]model.Message
	nextID   int64
}

func (s *memMessageStore) Insert(_ context.Context, _ pgx.Tx, matchID, senderID, receiverID int64, content string, now time.Time) (model.Message, error) {
	s.nextID++
	message := model.Message{
		ID:         s.nextID,
		MatchID:    matchID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		SentAt:     now,
	}
	s.messages[message.ID] = message
	return message, nil
}

func (s *memMessageStore) ListByMatch(_ context.Context, _ pgx.Tx, matchID int64) ([]model.Message, error) {
	out := []model.Message{}
	for id := int64(1); id <= s.nextID; id++ {
		if message, ok := s.messages[id]; ok && message.MatchID == matchID {
			out = append(out, message)
		}
	}
	return out, nil
}

func (s *memMessageStore) MarkReadForViewer(_ context.Context, _ pgx.Tx, matchID, viewerID int64) (int64, error) {
	var marked int64
	for id, message := range s.messages {
		if message.MatchID == matchID && message.ReceiverID == viewerID && !message.IsRead {
			message.IsRead = true
			s.messages[id] = message
			marked++
		}
	}
	return marked, nil
}

func (s *memMessageStore) GetByID(_ context.Context, messageID int64) (model.Message, error) {
	message, ok := s.messages[messageID]
	if !ok {
		return model.Message{}, pgrepo.ErrMessageNotFound
	}
	return message, nil
}

func (s *memMessageStore) MarkRead(_ context.Context, _ pgx.Tx, messageID int64) error {
	message, ok := s.messages[messageID]
	if !ok {
		return pgrepo.ErrMessageNotFound
	}
	message.IsRead = true
	s.messages[messageID] = message
	return nil
}

func (s *memMessageStore) DeleteByMatch(_ context.Context, _ pgx.Tx, matchID int64) (int64, error) {
	var deleted int64
	for id, message := range s.messages {
		if message.MatchID == matchID {
			delete(s.messages, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *memMessageStore) DeleteByID(_ context.Context, _ pgx.Tx, messageID int64) (bool, error) {
	if _, ok := s.messages[messageID]; !ok {
		return false, nil
	}
	delete(s.messages, messageID)
	return true, nil
}

func (s *memMessageStore) CountUnreadForUser(_ context.Context, userID int64) (int64, error) {
	var count int64
	for _, message := range s.messages {
		if message.ReceiverID == userID && !message.IsRead {
			count++
		}
	}
	return count, nil
}

type messageNotifierStub struct {
	receivers []int64
}

func (n *messageNotifierStub) MessageSent(_ context.Context, receiverID, _, _ int64) error {
	n.receivers = append(n.receivers, receiverID)
	return nil
}

func newMessagesForTest() (*Service, *memMessageStore, *messageNotifierStub) {
	matchStore := &memMatchStore{matches: map[int64]model.Match{
		10: {ID: 10, UserAID: 1, UserBID: 2, IsActive: true},
		11: {ID: 11, UserAID: 1, UserBID: 3, IsActive: false},
	}}
	messageStore := &memMessageStore{messages: map[int64]model.Message{}}
	notifier := &messageNotifierStub{}

	svc := NewService(Dependencies{
		MatchStore:   matchStore,
		MessageStore: messageStore,
		Notifier:     notifier,
	})
	svc.runTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return fn(ctx, nil)
	}

	return svc, messageStore, notifier
}

func TestSendDeliversAndNotifiesReceiver(t *testing.T) {
	svc, _, notifier := newMessagesForTest()
	ctx := context.Background()

	message, err := svc.Send(ctx, 1, 10, "  hello there  ")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if message.ReceiverID != 2 || message.Content != "hello there" {
		t.Fatalf("unexpected message: %+v", message)
	}
	if len(notifier.receivers) != 1 || notifier.receivers[0] != 2 {
		t.Fatalf("receiver should be notified, got %v", notifier.receivers)
	}
}

func TestSendRejectsInactiveMatchAndOutsiders(t *testing.T) {
	svc, _, _ := newMessagesForTest()
	ctx := context.Background()

	if _, err := svc.Send(ctx, 1, 11, "hi"); !errors.Is(err, ErrMatchNotActive) {
		t.Fatalf("inactive match should reject sends, got err=%v", err)
	}
	if _, err := svc.Send(ctx, 5, 10, "hi"); !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("outsider send should be not-found, got err=%v", err)
	}
	if _, err := svc.Send(ctx, 1, 10, "   "); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank content should be rejected, got err=%v", err)
	}
}

func TestHistoryMarksViewerMessagesRead(t *testing.T) {
	svc, store, _ := newMessagesForTest()
	ctx := context.Background()

	if _, err := svc.Send(ctx, 1, 10, "first"); err != nil {
		t.Fatalf("send first: %v", err)
	}
	if _, err := svc.Send(ctx, 2, 10, "second"); err != nil {
		t.Fatalf("send second: %v", err)
	}

	history, err := svc.History(ctx, 2, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].Content != "first" || history[1].Content != "second" {
		t.Fatalf("history out of order: %+v", history)
	}
	if !history[0].IsRead {
		t.Fatalf("message addressed to viewer should be read in the returned history")
	}
	if history[1].IsRead {
		t.Fatalf("viewer's own outgoing message should stay unread")
	}

	count, err := svc.UnreadCount(ctx, 2)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 0 {
		t.Fatalf("viewing history should clear unread count, got %d", count)
	}
	if stored := store.messages[1]; !stored.IsRead {
		t.Fatalf("read flip should persist in the store")
	}

	again, err := svc.History(ctx, 2, 10)
	if err != nil {
		t.Fatalf("second history: %v", err)
	}
	if !again[0].IsRead {
		t.Fatalf("message should stay read on repeated history")
	}
	count, err = svc.UnreadCount(ctx, 2)
	if err != nil {
		t.Fatalf("unread count after second history: %v", err)
	}
	if count != 0 {
		t.Fatalf("repeated history should leave unread count at zero, got %d", count)
	}
}

func TestHistoryReadableOnInactiveMatch(t *testing.T) {
	svc, _, _ := newMessagesForTest()
	ctx := context.Background()

	if _, err := svc.History(ctx, 1, 11); err != nil {
		t.Fatalf("inactive match history should be readable: %v", err)
	}
	if _, err := svc.History(ctx, 5, 10); !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("outsider history should be not-found, got err=%v", err)
	}
}

func TestDeleteMessageSenderOnly(t *testing.T) {
	svc, store, _ := newMessagesForTest()
	ctx := context.Background()

	message, err := svc.Send(ctx, 1, 10, "to be removed")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if err := svc.DeleteMessage(ctx, 2, message.ID); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("receiver delete should be not-found, got err=%v", err)
	}
	if err := svc.DeleteMessage(ctx, 1, message.ID); err != nil {
		t.Fatalf("sender delete: %v", err)
	}
	if len(store.messages) != 0 {
		t.Fatalf("message should be gone, store has %d", len(store.messages))
	}
}

func TestMarkReadReceiverOnly(t *testing.T) {
	svc, store, _ := newMessagesForTest()
	ctx := context.Background()

	message, err := svc.Send(ctx, 1, 10, "unread")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if err := svc.MarkRead(ctx, 1, message.ID); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("sender mark-read should be not-found, got err=%v", err)
	}
	if err := svc.MarkRead(ctx, 2, message.ID); err != nil {
		t.Fatalf("receiver mark-read: %v", err)
	}
	if !store.messages[message.ID].IsRead {
		t.Fatalf("message should be read")
	}

	// Already-read messages are absorbed silently.
	if err := svc.MarkRead(ctx, 2, message.ID); err != nil {
		t.Fatalf("repeat mark-read: %v", err)
	}
}

func TestSendHonorsRateLimiter(t *testing.T) {
	svc, _, _ := newMessagesForTest()
	svc.rateLimiter = blockedLimiter{}

	_, err := svc.Send(context.Background(), 1, 10, "hi")
	if _, ok := ratingsvc.IsTooFast(err); !ok {
		t.Fatalf("expected too-fast error, got %v", err)
	}
}

type blockedLimiter struct{}

func (blockedLimiter) AllowMessage(_ context.Context, _ int64) (int64, bool, error) {
	return 3, false, nil
}
