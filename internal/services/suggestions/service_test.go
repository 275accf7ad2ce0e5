package suggestions

import (
	"context"
	"errors"
	"testing"

	"github.com/iru21/datingapp/backend/internal/domain/enums"
	"github.com/iru21/datingapp/backend/internal/domain/model"
	pgrepo "github.com/iru21/datingapp/backend/internal/repo/postgres"
)

type memUserStore struct {
	users []model.User
}

func (s *memUserStore) matches(user model.User, gender enums.Gender, minAge, maxAge int, excludeIDs []int64) bool {
	if gender != enums.GenderAny && user.Gender != gender {
		return false
	}
	if user.Age < minAge || user.Age > maxAge {
		return false
	}
	for _, id := range excludeIDs {
		if user.ID == id {
			return false
		}
	}
	return true
}

func (s *memUserStore) SearchProfiles(_ context.Context, gender enums.Gender, minAge, maxAge int, excludeIDs []int64, limit int) ([]model.User, error) {
	out := []model.User{}
	for _, user := range s.users {
		if s.matches(user, gender, minAge, maxAge, excludeIDs) {
			out = append(out, user)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (s *memUserStore) CountProfiles(_ context.Context, gender enums.Gender, minAge, maxAge int, excludeIDs []int64) (int64, error) {
	var count int64
	for _, user := range s.users {
		if s.matches(user, gender, minAge, maxAge, excludeIDs) {
			count++
		}
	}
	return count, nil
}

type memRatingStore struct {
	rated map[int64][]int64
}

func (s *memRatingStore) ListRatedUserIDs(_ context.Context, raterID int64) ([]int64, error) {
	return s.rated[raterID], nil
}

type memPreferenceStore struct {
	prefs map[int64]model.SearchPreference
}

func (s *memPreferenceStore) GetByUserID(_ context.Context, userID int64) (model.SearchPreference, error) {
	pref, ok := s.prefs[userID]
	if !ok {
		return model.SearchPreference{}, pgrepo.ErrPreferenceNotFound
	}
	return pref, nil
}

func (s *memPreferenceStore) Upsert(_ context.Context, pref model.SearchPreference) error {
	s.prefs[pref.UserID] = pref
	return nil
}

func newSuggestionsForTest() (*Service, *memPreferenceStore) {
	users := &memUserStore{users: []model.User{
		{ID: 1, Username: "me", Gender: enums.GenderMale, Age: 30},
		{ID: 2, Username: "anna", Gender: enums.GenderFemale, Age: 25},
		{ID: 3, Username: "kate", Gender: enums.GenderFemale, Age: 40},
		{ID: 4, Username: "mark", Gender: enums.GenderMale, Age: 28},
	}}
	ratings := &memRatingStore{rated: map[int64][]int64{1: {3}}}
	prefs := &memPreferenceStore{prefs: map[int64]model.SearchPreference{}}

	svc := NewService(Dependencies{
		UserStore:       users,
		RatingStore:     ratings,
		PreferenceStore: prefs,
	}, Config{})

	return svc, prefs
}

func TestSuggestionsExcludeSelfAndRated(t *testing.T) {
	svc, _ := newSuggestionsForTest()
	ctx := context.Background()

	users, err := svc.Suggestions(ctx, 1, 0)
	if err != nil {
		t.Fatalf("suggestions: %v", err)
	}

	for _, user := range users {
		if user.ID == 1 {
			t.Fatalf("own profile must never be suggested")
		}
		if user.ID == 3 {
			t.Fatalf("already rated profile must not be suggested")
		}
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(users))
	}
}

func TestSuggestionsHonorStoredPreference(t *testing.T) {
	svc, prefs := newSuggestionsForTest()
	ctx := context.Background()

	prefs.prefs[1] = model.SearchPreference{
		UserID:          1,
		PreferredGender: enums.GenderFemale,
		MinAge:          20,
		MaxAge:          30,
	}

	users, err := svc.Suggestions(ctx, 1, 0)
	if err != nil {
		t.Fatalf("suggestions: %v", err)
	}
	if len(users) != 1 || users[0].Username != "anna" {
		t.Fatalf("expected only anna to match, got %+v", users)
	}

	count, err := svc.AvailableCount(ctx, 1)
	if err != nil {
		t.Fatalf("available count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected count 1, got %d", count)
	}
}

func TestPreferencesFallBackToDefaults(t *testing.T) {
	svc, _ := newSuggestionsForTest()

	pref, err := svc.Preferences(context.Background(), 1)
	if err != nil {
		t.Fatalf("preferences: %v", err)
	}
	if pref.PreferredGender != enums.GenderAny || pref.MinAge != 18 || pref.MaxAge != 100 {
		t.Fatalf("unexpected defaults: %+v", pref)
	}
}

func TestUpdatePreferencesValidates(t *testing.T) {
	svc, prefs := newSuggestionsForTest()
	ctx := context.Background()

	err := svc.UpdatePreferences(ctx, model.SearchPreference{
		UserID:          1,
		PreferredGender: enums.Gender("ROBOT"),
		MinAge:          20,
		MaxAge:          30,
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("bad gender should fail validation, got err=%v", err)
	}

	err = svc.UpdatePreferences(ctx, model.SearchPreference{
		UserID:          1,
		PreferredGender: enums.GenderAny,
		MinAge:          30,
		MaxAge:          20,
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("inverted age window should fail validation, got err=%v", err)
	}

	err = svc.UpdatePreferences(ctx, model.SearchPreference{
		UserID:          1,
		PreferredGender: enums.GenderFemale,
		MinAge:          21,
		MaxAge:          35,
	})
	if err != nil {
		t.Fatalf("valid preference: %v", err)
	}
	if prefs.prefs[1].MinAge != 21 {
		t.Fatalf("preference was not stored: %+v", prefs.prefs[1])
	}
}
