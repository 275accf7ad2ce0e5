package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/iru21/datingapp/backend/internal/transport/http/errors"
)

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{
		Code:    "bad_request",
		Message: message,
	})
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{
		Code:    "unauthorized",
		Message: message,
	})
}

func writeNotFound(w http.ResponseWriter, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{
		Code:    "not_found",
		Message: message,
	})
}

func writeConflict(w http.ResponseWriter, message string) {
	httperrors.Write(w, http.StatusConflict, httperrors.APIError{
		Code:    "conflict",
		Message: message,
	})
}

func writeInternal(w http.ResponseWriter) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{
		Code:    "internal_error",
		Message: "internal error",
	})
}

func writeTooMany(w http.ResponseWriter, retryAfterSec int64) {
	httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
		Code:          "too_many_requests",
		Message:       "too many requests",
		RetryAfterSec: retryAfterSec,
	})
}

func parseID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func parseIntOrDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
