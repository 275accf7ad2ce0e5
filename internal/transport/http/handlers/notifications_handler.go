package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	authsvc "github.com/iru21/datingapp/backend/internal/services/auth"
	notifysvc "github.com/iru21/datingapp/backend/internal/services/notifications"
	"github.com/iru21/datingapp/backend/internal/transport/http/dto"
	httperrors "github.com/iru21/datingapp/backend/internal/transport/http/errors"
)

type NotificationsHandler struct {
	notifications *notifysvc.Service
	log           *zap.Logger
}

func NewNotificationsHandler(notifications *notifysvc.Service, log *zap.Logger) *NotificationsHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &NotificationsHandler{notifications: notifications, log: log}
}

func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.notifications == nil {
		writeInternal(w)
		return
	}

	unreadOnly := r.URL.Query().Get("unread_only") == "true"
	limit := parseIntOrDefault(r.URL.Query().Get("limit"), 0)

	items, err := h.notifications.List(r.Context(), identity.UserID, unreadOnly, limit)
	if err != nil {
		h.handleNotificationsError(w, err)
		return
	}

	resp := dto.NotificationsResponse{Items: make([]dto.NotificationResponse, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, dto.NotificationResponse{
			ID:              item.ID,
			Type:            string(item.Type),
			Message:         item.Message,
			RelatedUserID:   item.RelatedUserID,
			RelatedEntityID: item.RelatedEntityID,
			IsRead:          item.IsRead,
			CreatedAt:       item.CreatedAt,
		})
	}
	httperrors.Write(w, http.StatusOK, resp)
}

func (h *NotificationsHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.notifications == nil {
		writeInternal(w)
		return
	}

	count, err := h.notifications.UnreadCount(r.Context(), identity.UserID)
	if err != nil {
		h.handleNotificationsError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.CountResponse{Count: count})
}

func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.notifications == nil {
		writeInternal(w)
		return
	}

	notificationID, err := parseID(r, "notificationID")
	if err != nil {
		writeBadRequest(w, "invalid notification id")
		return
	}

	if err := h.notifications.MarkRead(r.Context(), identity.UserID, notificationID); err != nil {
		h.handleNotificationsError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *NotificationsHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.notifications == nil {
		writeInternal(w)
		return
	}

	marked, err := h.notifications.MarkAllRead(r.Context(), identity.UserID)
	if err != nil {
		h.handleNotificationsError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.MarkedResponse{Marked: marked})
}

func (h *NotificationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.notifications == nil {
		writeInternal(w)
		return
	}

	notificationID, err := parseID(r, "notificationID")
	if err != nil {
		writeBadRequest(w, "invalid notification id")
		return
	}

	if err := h.notifications.Delete(r.Context(), identity.UserID, notificationID); err != nil {
		h.handleNotificationsError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *NotificationsHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.notifications == nil {
		writeInternal(w)
		return
	}

	deleted, err := h.notifications.DeleteAll(r.Context(), identity.UserID)
	if err != nil {
		h.handleNotificationsError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.DeletedResponse{Deleted: deleted})
}

func (h *NotificationsHandler) handleNotificationsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, notifysvc.ErrValidation):
		writeBadRequest(w, "invalid notification request")
	case errors.Is(err, notifysvc.ErrNotificationNotFound):
		writeNotFound(w, "notification not found")
	default:
		h.log.Error("notifications request failed", zap.Error(err))
		writeInternal(w)
	}
}
