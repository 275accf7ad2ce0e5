package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	authsvc "github.com/iru21/datingapp/backend/internal/services/auth"
	usersvc "github.com/iru21/datingapp/backend/internal/services/users"
	"github.com/iru21/datingapp/backend/internal/transport/http/dto"
	httperrors "github.com/iru21/datingapp/backend/internal/transport/http/errors"
)

type UsersHandler struct {
	users *usersvc.Service
	log   *zap.Logger
}

func NewUsersHandler(users *usersvc.Service, log *zap.Logger) *UsersHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &UsersHandler{users: users, log: log}
}

func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.users == nil {
		writeInternal(w)
		return
	}

	user, err := h.users.GetProfile(r.Context(), identity.UserID)
	if err != nil {
		h.handleUsersError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, profileResponse(user))
}

func (h *UsersHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.users == nil {
		writeInternal(w)
		return
	}

	userID, err := parseID(r, "userID")
	if err != nil {
		writeBadRequest(w, "invalid user id")
		return
	}

	user, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		h.handleUsersError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, profileResponse(user))
}

func (h *UsersHandler) LinkTelegram(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.users == nil {
		writeInternal(w)
		return
	}

	var req dto.LinkTelegramRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}

	if err := h.users.LinkTelegramChat(r.Context(), identity.UserID, req.ChatID); err != nil {
		h.handleUsersError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *UsersHandler) UnlinkTelegram(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.users == nil {
		writeInternal(w)
		return
	}

	if err := h.users.UnlinkTelegramChat(r.Context(), identity.UserID); err != nil {
		h.handleUsersError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *UsersHandler) handleUsersError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usersvc.ErrValidation):
		writeBadRequest(w, "invalid user request")
	case errors.Is(err, usersvc.ErrUserNotFound):
		writeNotFound(w, "user not found")
	default:
		h.log.Error("users request failed", zap.Error(err))
		writeInternal(w)
	}
}
