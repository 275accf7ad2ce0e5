package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/iru21/datingapp/backend/internal/domain/enums"
	"github.com/iru21/datingapp/backend/internal/domain/model"
	authsvc "github.com/iru21/datingapp/backend/internal/services/auth"
	suggestsvc "github.com/iru21/datingapp/backend/internal/services/suggestions"
	"github.com/iru21/datingapp/backend/internal/transport/http/dto"
	httperrors "github.com/iru21/datingapp/backend/internal/transport/http/errors"
)

type SuggestionsHandler struct {
	suggestions *suggestsvc.Service
	log         *zap.Logger
}

func NewSuggestionsHandler(suggestions *suggestsvc.Service, log *zap.Logger) *SuggestionsHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SuggestionsHandler{suggestions: suggestions, log: log}
}

func (h *SuggestionsHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.suggestions == nil {
		writeInternal(w)
		return
	}

	limit := parseIntOrDefault(r.URL.Query().Get("limit"), 0)

	items, err := h.suggestions.Suggestions(r.Context(), identity.UserID, limit)
	if err != nil {
		h.handleSuggestionsError(w, err)
		return
	}

	resp := dto.SuggestionsResponse{Items: make([]dto.ProfileResponse, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, profileResponse(item))
	}
	httperrors.Write(w, http.StatusOK, resp)
}

func (h *SuggestionsHandler) AvailableCount(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.suggestions == nil {
		writeInternal(w)
		return
	}

	count, err := h.suggestions.AvailableCount(r.Context(), identity.UserID)
	if err != nil {
		h.handleSuggestionsError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.CountResponse{Count: count})
}

func (h *SuggestionsHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.suggestions == nil {
		writeInternal(w)
		return
	}

	pref, err := h.suggestions.Preferences(r.Context(), identity.UserID)
	if err != nil {
		h.handleSuggestionsError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.PreferenceResponse{
		PreferredGender: string(pref.PreferredGender),
		MinAge:          pref.MinAge,
		MaxAge:          pref.MaxAge,
	})
}

func (h *SuggestionsHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.suggestions == nil {
		writeInternal(w)
		return
	}

	var req dto.UpdatePreferenceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}

	err := h.suggestions.UpdatePreferences(r.Context(), model.SearchPreference{
		UserID:          identity.UserID,
		PreferredGender: enums.Gender(req.PreferredGender),
		MinAge:          req.MinAge,
		MaxAge:          req.MaxAge,
	})
	if err != nil {
		h.handleSuggestionsError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *SuggestionsHandler) handleSuggestionsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, suggestsvc.ErrValidation):
		writeBadRequest(w, "invalid suggestions request")
	default:
		h.log.Error("suggestions request failed", zap.Error(err))
		writeInternal(w)
	}
}

func profileResponse(u model.User) dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Gender:    string(u.Gender),
		Age:       u.Age,
		City:      u.City,
	}
}
