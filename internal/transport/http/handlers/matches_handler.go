package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	authsvc "github.com/iru21/datingapp/backend/internal/services/auth"
	matchsvc "github.com/iru21/datingapp/backend/internal/services/matches"
	"github.com/iru21/datingapp/backend/internal/transport/http/dto"
	httperrors "github.com/iru21/datingapp/backend/internal/transport/http/errors"
)

type MatchesHandler struct {
	matches *matchsvc.Service
	log     *zap.Logger
}

func NewMatchesHandler(matches *matchsvc.Service, log *zap.Logger) *MatchesHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MatchesHandler{matches: matches, log: log}
}

func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.matches == nil {
		writeInternal(w)
		return
	}

	activeOnly := r.URL.Query().Get("active_only") == "true"
	limit := parseIntOrDefault(r.URL.Query().Get("limit"), 0)

	items, err := h.matches.List(r.Context(), identity.UserID, activeOnly, limit)
	if err != nil {
		h.handleMatchesError(w, err)
		return
	}

	resp := dto.MatchesResponse{Items: make([]dto.MatchItemResponse, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, dto.MatchItemResponse{
			ID:          item.ID,
			OtherUserID: item.OtherUserID,
			FirstName:   item.FirstName,
			LastName:    item.LastName,
			Age:         item.Age,
			City:        item.City,
			IsActive:    item.IsActive,
			MatchedAt:   item.MatchedAt,
		})
	}
	httperrors.Write(w, http.StatusOK, resp)
}

func (h *MatchesHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.matches == nil {
		writeInternal(w)
		return
	}

	matchID, err := parseID(r, "matchID")
	if err != nil {
		writeBadRequest(w, "invalid match id")
		return
	}

	match, err := h.matches.GetByID(r.Context(), identity.UserID, matchID)
	if err != nil {
		h.handleMatchesError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.MatchResponse{
		ID:          match.ID,
		OtherUserID: match.OtherParticipant(identity.UserID),
		IsActive:    match.IsActive,
		MatchedAt:   match.MatchedAt,
	})
}

func (h *MatchesHandler) Unmatch(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.matches == nil {
		writeInternal(w)
		return
	}

	matchID, err := parseID(r, "matchID")
	if err != nil {
		writeBadRequest(w, "invalid match id")
		return
	}

	if err := h.matches.Unmatch(r.Context(), identity.UserID, matchID); err != nil {
		h.handleMatchesError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *MatchesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.matches == nil {
		writeInternal(w)
		return
	}

	matchID, err := parseID(r, "matchID")
	if err != nil {
		writeBadRequest(w, "invalid match id")
		return
	}

	if err := h.matches.Delete(r.Context(), identity.UserID, matchID); err != nil {
		h.handleMatchesError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *MatchesHandler) handleMatchesError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, matchsvc.ErrValidation):
		writeBadRequest(w, "invalid match request")
	case errors.Is(err, matchsvc.ErrMatchNotFound):
		writeNotFound(w, "match not found")
	default:
		h.log.Error("matches request failed", zap.Error(err))
		writeInternal(w)
	}
}
