package ratings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iru21/datingapp/backend/internal/domain/enums"
	"github.com/iru21/datingapp/backend/internal/domain/model"
	pgrepo "github.com/iru21/datingapp/backend/internal/repo/postgres"
)

type ratingKey struct {
	rater int64
	rated int64
}

type memRatingStore struct {
	ratings map[ratingKey]model.Rating
	nextID  int64
}

func newMemRatingStore() *memRatingStore {
	return &memRatingStore{ratings: map[ratingKey]model.Rating{}}
}

func (s *memRatingStore) Exists(_ context.Context, _ pgx.Tx, raterID, ratedUserID int64) (bool, error) {
	_, ok := s.ratings[ratingKey{raterID, ratedUserID}]
	return ok, nil
}

func (s *memRatingStore) Create(_ context.Context, _ pgx.Tx, raterID, ratedUserID int64, ratingType enums.RatingType, now time.Time) (bool, error) {
	key := ratingKey{raterID, ratedUserID}
	if _, ok := s.ratings[key]; ok {
		return false, nil
	}
	s.nextID++
	s.ratings[key] = model.Rating{
		ID:          s.nextID,
		RaterID:     raterID,
		RatedUserID: ratedUserID,
		Type:        ratingType,
		CreatedAt:   now,
	}
	return true, nil
}

func (s *memRatingStore) FindReciprocal(_ context.Context, _ pgx.Tx, raterID, ratedUserID int64) (model.Rating, error) {
	rating, ok := s.ratings[ratingKey{ratedUserID, raterID}]
	if !ok {
		return model.Rating{}, pgrepo.ErrRatingNotFound
	}
	return rating, nil
}

func (s *memRatingStore) Find(_ context.Context, raterID, ratedUserID int64) (model.Rating, error) {
	rating, ok := s.ratings[ratingKey{raterID, ratedUserID}]
	if !ok {
		return model.Rating{}, pgrepo.ErrRatingNotFound
	}
	return rating, nil
}

func (s *memRatingStore) Delete(_ context.Context, _ pgx.Tx, raterID, ratedUserID int64) (bool, error) {
	key := ratingKey{raterID, ratedUserID}
	if _, ok := s.ratings[key]; !ok {
		return false, nil
	}
	delete(s.ratings, key)
	return true, nil
}

func (s *memRatingStore) ExistsMutualLike(_ context.Context, userID, otherID int64) (bool, error) {
	a, okA := s.ratings[ratingKey{userID, otherID}]
	b, okB := s.ratings[ratingKey{otherID, userID}]
	return okA && okB && a.Type == enums.RatingTypeLike && b.Type == enums.RatingTypeLike, nil
}

func (s *memRatingStore) CountLikesReceived(_ context.Context, userID int64) (int64, error) {
	var count int64
	for _, rating := range s.ratings {
		if rating.RatedUserID == userID && rating.Type == enums.RatingTypeLike {
			count++
		}
	}
	return count, nil
}

type memMatchStore struct {
	pairs  map[ratingKey]int64
	nextID int64
}

func newMemMatchStore() *memMatchStore {
	return &memMatchStore{pairs: map[ratingKey]int64{}}
}

func pairKey(a, b int64) ratingKey {
	if a > b {
		a, b = b, a
	}
	return ratingKey{a, b}
}

func (s *memMatchStore) ExistsBetween(_ context.Context, _ pgx.Tx, userID, otherID int64) (bool, error) {
	_, ok := s.pairs[pairKey(userID, otherID)]
	return ok, nil
}

func (s *memMatchStore) CreateIfAbsent(_ context.Context, _ pgx.Tx, userID, targetID int64, _ time.Time) (int64, bool, error) {
	key := pairKey(userID, targetID)
	if id, ok := s.pairs[key]; ok {
		return id, false, nil
	}
	s.nextID++
	s.pairs[key] = s.nextID
	return s.nextID, true, nil
}

type fixedUserStore struct {
	ids map[int64]bool
}

func (s *fixedUserStore) FindByID(_ context.Context, userID int64) (model.User, error) {
	if !s.ids[userID] {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return model.User{ID: userID}, nil
}

type matchNotifierStub struct {
	notified []int64
}

func (n *matchNotifierStub) MatchCreated(_ context.Context, userID, _, _ int64) error {
	n.notified = append(n.notified, userID)
	return nil
}

func newRatingsForTest(userIDs ...int64) (*Service, *memRatingStore, *memMatchStore, *matchNotifierStub) {
	ids := map[int64]bool{}
	for _, id := range userIDs {
		ids[id] = true
	}

	ratingStore := newMemRatingStore()
	matchStore := newMemMatchStore()
	notifier := &matchNotifierStub{}
	svc := NewService(Dependencies{
		RatingStore: ratingStore,
		MatchStore:  matchStore,
		UserStore:   &fixedUserStore{ids: ids},
		Notifier:    notifier,
	})
	svc.runTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return fn(ctx, nil)
	}

	return svc, ratingStore, matchStore, notifier
}

func TestMutualLikeFormsMatchAndNotifiesBoth(t *testing.T) {
	svc, _, matchStore, notifier := newRatingsForTest(1, 2)
	ctx := context.Background()

	res, err := svc.RateUser(ctx, 1, 2, enums.RatingTypeLike)
	if err != nil {
		t.Fatalf("first like: %v", err)
	}
	if !res.RatingCreated || res.MatchCreated {
		t.Fatalf("one-sided like should not match: %+v", res)
	}

	res, err = svc.RateUser(ctx, 2, 1, enums.RatingTypeLike)
	if err != nil {
		t.Fatalf("reciprocal like: %v", err)
	}
	if !res.MatchCreated || res.MatchID == 0 {
		t.Fatalf("mutual like should form a match: %+v", res)
	}
	if len(matchStore.pairs) != 1 {
		t.Fatalf("expected exactly one match, got %d", len(matchStore.pairs))
	}
	if len(notifier.notified) != 2 {
		t.Fatalf("both participants should be notified, got %v", notifier.notified)
	}
}

func TestDuplicateRatingIsSilentNoOp(t *testing.T) {
	svc, ratingStore, _, _ := newRatingsForTest(1, 2)
	ctx := context.Background()

	if _, err := svc.RateUser(ctx, 1, 2, enums.RatingTypeLike); err != nil {
		t.Fatalf("first rating: %v", err)
	}

	res, err := svc.RateUser(ctx, 1, 2, enums.RatingTypeDislike)
	if err != nil {
		t.Fatalf("repeat rating should not error: %v", err)
	}
	if res.RatingCreated || res.MatchCreated {
		t.Fatalf("repeat rating should be absorbed: %+v", res)
	}

	stored, err := svc.GetRating(ctx, 1, 2)
	if err != nil {
		t.Fatalf("get rating: %v", err)
	}
	if stored.Type != enums.RatingTypeLike {
		t.Fatalf("original rating must win, got %s", stored.Type)
	}
	if len(ratingStore.ratings) != 1 {
		t.Fatalf("expected a single stored rating, got %d", len(ratingStore.ratings))
	}
}

func TestDislikeNeverFormsMatch(t *testing.T) {
	svc, _, matchStore, _ := newRatingsForTest(1, 2)
	ctx := context.Background()

	if _, err := svc.RateUser(ctx, 1, 2, enums.RatingTypeLike); err != nil {
		t.Fatalf("like: %v", err)
	}
	res, err := svc.RateUser(ctx, 2, 1, enums.RatingTypeDislike)
	if err != nil {
		t.Fatalf("dislike: %v", err)
	}
	if res.MatchCreated || len(matchStore.pairs) != 0 {
		t.Fatalf("dislike against a like must not match: %+v", res)
	}
}

func TestRateUserRejectsSelfAndUnknownUsers(t *testing.T) {
	svc, _, _, _ := newRatingsForTest(1, 2)
	ctx := context.Background()

	if _, err := svc.RateUser(ctx, 1, 1, enums.RatingTypeLike); !errors.Is(err, ErrSelfRating) {
		t.Fatalf("self rating should be rejected, got err=%v", err)
	}
	if _, err := svc.RateUser(ctx, 1, 99, enums.RatingTypeLike); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown target should be rejected, got err=%v", err)
	}
	if _, err := svc.RateUser(ctx, 1, 2, enums.RatingType("MAYBE")); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown rating type should be rejected, got err=%v", err)
	}
}

func TestDeleteRatingLeavesMatchIntact(t *testing.T) {
	svc, _, matchStore, _ := newRatingsForTest(1, 2)
	ctx := context.Background()

	if _, err := svc.RateUser(ctx, 1, 2, enums.RatingTypeLike); err != nil {
		t.Fatalf("like: %v", err)
	}
	if _, err := svc.RateUser(ctx, 2, 1, enums.RatingTypeLike); err != nil {
		t.Fatalf("reciprocal like: %v", err)
	}

	if err := svc.DeleteRating(ctx, 1, 2); err != nil {
		t.Fatalf("delete rating: %v", err)
	}
	if len(matchStore.pairs) != 1 {
		t.Fatalf("match should survive rating deletion")
	}

	if err := svc.DeleteRating(ctx, 1, 2); !errors.Is(err, ErrRatingNotFound) {
		t.Fatalf("second delete should be not found, got err=%v", err)
	}
}

func TestRateUserHonorsRateLimiter(t *testing.T) {
	svc, _, _, _ := newRatingsForTest(1, 2)
	svc.rateLimiter = blockedLimiter{}

	_, err := svc.RateUser(context.Background(), 1, 2, enums.RatingTypeLike)
	tf, ok := IsTooFast(err)
	if !ok {
		t.Fatalf("expected too-fast error, got %v", err)
	}
	if tf.RetryAfter() != 7 {
		t.Fatalf("expected retry_after=7, got %d", tf.RetryAfter())
	}
}

type blockedLimiter struct{}

func (blockedLimiter) AllowRating(_ context.Context, _ int64) (int64, bool, error) {
	return 7, false, nil
}
