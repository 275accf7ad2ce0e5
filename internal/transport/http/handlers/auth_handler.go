package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/iru21/datingapp/backend/internal/domain/enums"
	authsvc "github.com/iru21/datingapp/backend/internal/services/auth"
	"github.com/iru21/datingapp/backend/internal/transport/http/dto"
	httperrors "github.com/iru21/datingapp/backend/internal/transport/http/errors"
)

type AuthHandler struct {
	auth *authsvc.Service
	log  *zap.Logger
}

func NewAuthHandler(auth *authsvc.Service, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{auth: auth, log: log}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		writeInternal(w)
		return
	}

	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}
	birthdate, err := time.Parse("2006-01-02", req.Birthdate)
	if err != nil {
		writeBadRequest(w, "birthdate must be YYYY-MM-DD")
		return
	}

	result, err := h.auth.Register(r.Context(), authsvc.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Gender:    enums.Gender(req.Gender),
		Birthdate: birthdate,
		City:      req.City,
	})
	if err != nil {
		h.handleAuthError(w, err)
		return
	}
	httperrors.Write(w, http.StatusCreated, tokensResponse(result))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		writeInternal(w)
		return
	}

	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}

	result, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.handleAuthError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, tokensResponse(result))
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		writeInternal(w)
		return
	}

	var req dto.RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}

	result, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.handleAuthError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, tokensResponse(result))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.auth == nil {
		writeInternal(w)
		return
	}

	if err := h.auth.Logout(r.Context(), identity.SID); err != nil {
		h.handleAuthError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.auth == nil {
		writeInternal(w)
		return
	}

	if err := h.auth.LogoutAll(r.Context(), identity.UserID); err != nil {
		h.handleAuthError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *AuthHandler) handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authsvc.ErrInvalidInput):
		writeBadRequest(w, "invalid input")
	case errors.Is(err, authsvc.ErrInvalidCredentials):
		writeUnauthorized(w, "invalid username or password")
	case errors.Is(err, authsvc.ErrUsernameTaken):
		writeConflict(w, "username already taken")
	case errors.Is(err, authsvc.ErrUnauthorized),
		errors.Is(err, authsvc.ErrSessionNotFound),
		errors.Is(err, authsvc.ErrRefreshNotFound):
		writeUnauthorized(w, "unauthorized")
	default:
		h.log.Error("auth request failed", zap.Error(err))
		writeInternal(w)
	}
}

func tokensResponse(result authsvc.AuthResult) dto.AuthTokensResponse {
	return dto.AuthTokensResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresInSec: maxInt64(0, int64(time.Until(result.AccessExpires).Seconds())),
		Me: dto.AuthMeResponse{
			ID:       result.Me.ID,
			Username: result.Me.Username,
			Role:     result.Me.Role,
		},
	}
}
