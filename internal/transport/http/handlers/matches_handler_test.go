package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/iru21/datingapp/backend/internal/services/auth"
	matchsvc "github.com/iru21/datingapp/backend/internal/services/matches"
)

func authedRequest(method, target string, userID int64) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	ctx := authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID: userID,
		SID:    "sid-test",
		Role:   "user",
	})
	return req.WithContext(ctx)
}

func TestMatchesHandlerRequiresIdentity(t *testing.T) {
	h := NewMatchesHandler(matchsvc.NewService(matchsvc.Dependencies{}), nil)

	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/v1/matches", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestMatchesHandlerRejectsBadMatchID(t *testing.T) {
	h := NewMatchesHandler(matchsvc.NewService(matchsvc.Dependencies{}), nil)

	r := chi.NewRouter()
	r.Get("/v1/matches/{matchID}", func(w http.ResponseWriter, req *http.Request) {
		h.GetByID(w, req)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(http.MethodGet, "/v1/matches/abc", 1))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestMatchesHandlerNilServiceIsInternal(t *testing.T) {
	h := NewMatchesHandler(nil, nil)

	rr := httptest.NewRecorder()
	h.List(rr, authedRequest(http.MethodGet, "/v1/matches", 1))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}
