package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/iru21/datingapp/backend/internal/domain/enums"
	authsvc "github.com/iru21/datingapp/backend/internal/services/auth"
	ratingsvc "github.com/iru21/datingapp/backend/internal/services/ratings"
	"github.com/iru21/datingapp/backend/internal/transport/http/dto"
	httperrors "github.com/iru21/datingapp/backend/internal/transport/http/errors"
)

type RatingsHandler struct {
	ratings *ratingsvc.Service
	log     *zap.Logger
}

func NewRatingsHandler(ratings *ratingsvc.Service, log *zap.Logger) *RatingsHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RatingsHandler{ratings: ratings, log: log}
}

func (h *RatingsHandler) Rate(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.ratings == nil {
		writeInternal(w)
		return
	}

	var req dto.RateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}

	result, err := h.ratings.RateUser(r.Context(), identity.UserID, req.RatedUserID, enums.RatingType(req.Type))
	if err != nil {
		h.handleRatingsError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.RateResponse{
		RatingCreated: result.RatingCreated,
		MatchCreated:  result.MatchCreated,
		MatchID:       result.MatchID,
	})
}

func (h *RatingsHandler) GetRating(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.ratings == nil {
		writeInternal(w)
		return
	}

	ratedUserID, err := parseID(r, "userID")
	if err != nil {
		writeBadRequest(w, "invalid user id")
		return
	}

	rating, err := h.ratings.GetRating(r.Context(), identity.UserID, ratedUserID)
	if err != nil {
		h.handleRatingsError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.RatingResponse{
		ID:          rating.ID,
		RaterID:     rating.RaterID,
		RatedUserID: rating.RatedUserID,
		Type:        string(rating.Type),
		CreatedAt:   rating.CreatedAt,
	})
}

func (h *RatingsHandler) DeleteRating(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.ratings == nil {
		writeInternal(w)
		return
	}

	ratedUserID, err := parseID(r, "userID")
	if err != nil {
		writeBadRequest(w, "invalid user id")
		return
	}

	if err := h.ratings.DeleteRating(r.Context(), identity.UserID, ratedUserID); err != nil {
		h.handleRatingsError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *RatingsHandler) MutualLike(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.ratings == nil {
		writeInternal(w)
		return
	}

	otherID, err := parseID(r, "userID")
	if err != nil {
		writeBadRequest(w, "invalid user id")
		return
	}

	mutual, err := h.ratings.HasMutualLike(r.Context(), identity.UserID, otherID)
	if err != nil {
		h.handleRatingsError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.MutualLikeResponse{Mutual: mutual})
}

func (h *RatingsHandler) LikesReceived(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.ratings == nil {
		writeInternal(w)
		return
	}

	count, err := h.ratings.LikesReceivedCount(r.Context(), identity.UserID)
	if err != nil {
		h.handleRatingsError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.CountResponse{Count: count})
}

func (h *RatingsHandler) handleRatingsError(w http.ResponseWriter, err error) {
	if tooFast, ok := ratingsvc.IsTooFast(err); ok {
		writeTooMany(w, tooFast.RetryAfter())
		return
	}
	switch {
	case errors.Is(err, ratingsvc.ErrValidation), errors.Is(err, ratingsvc.ErrSelfRating):
		writeBadRequest(w, "invalid rating request")
	case errors.Is(err, ratingsvc.ErrUserNotFound):
		writeNotFound(w, "user not found")
	case errors.Is(err, ratingsvc.ErrRatingNotFound):
		writeNotFound(w, "rating not found")
	default:
		h.log.Error("ratings request failed", zap.Error(err))
		writeInternal(w)
	}
}
