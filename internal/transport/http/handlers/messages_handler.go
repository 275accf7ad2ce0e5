package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/iru21/datingapp/backend/internal/domain/model"
	authsvc "github.com/iru21/datingapp/backend/internal/services/auth"
	messagesvc "github.com/iru21/datingapp/backend/internal/services/messages"
	ratingsvc "github.com/iru21/datingapp/backend/internal/services/ratings"
	"github.com/iru21/datingapp/backend/internal/transport/http/dto"
	httperrors "github.com/iru21/datingapp/backend/internal/transport/http/errors"
)

type MessagesHandler struct {
	messages *messagesvc.Service
	log      *zap.Logger
}

func NewMessagesHandler(messages *messagesvc.Service, log *zap.Logger) *MessagesHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MessagesHandler{messages: messages, log: log}
}

func (h *MessagesHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.messages == nil {
		writeInternal(w)
		return
	}

	matchID, err := parseID(r, "matchID")
	if err != nil {
		writeBadRequest(w, "invalid match id")
		return
	}

	var req dto.SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}

	message, err := h.messages.Send(r.Context(), identity.UserID, matchID, req.Content)
	if err != nil {
		h.handleMessagesError(w, err)
		return
	}
	httperrors.Write(w, http.StatusCreated, messageResponse(message))
}

func (h *MessagesHandler) History(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.messages == nil {
		writeInternal(w)
		return
	}

	matchID, err := parseID(r, "matchID")
	if err != nil {
		writeBadRequest(w, "invalid match id")
		return
	}

	items, err := h.messages.History(r.Context(), identity.UserID, matchID)
	if err != nil {
		h.handleMessagesError(w, err)
		return
	}

	resp := dto.MessagesResponse{Items: make([]dto.MessageResponse, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, messageResponse(item))
	}
	httperrors.Write(w, http.StatusOK, resp)
}

func (h *MessagesHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.messages == nil {
		writeInternal(w)
		return
	}

	matchID, err := parseID(r, "matchID")
	if err != nil {
		writeBadRequest(w, "invalid match id")
		return
	}

	deleted, err := h.messages.DeleteConversation(r.Context(), identity.UserID, matchID)
	if err != nil {
		h.handleMessagesError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.DeletedResponse{Deleted: deleted})
}

func (h *MessagesHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.messages == nil {
		writeInternal(w)
		return
	}

	messageID, err := parseID(r, "messageID")
	if err != nil {
		writeBadRequest(w, "invalid message id")
		return
	}

	if err := h.messages.DeleteMessage(r.Context(), identity.UserID, messageID); err != nil {
		h.handleMessagesError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *MessagesHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.messages == nil {
		writeInternal(w)
		return
	}

	messageID, err := parseID(r, "messageID")
	if err != nil {
		writeBadRequest(w, "invalid message id")
		return
	}

	if err := h.messages.MarkRead(r.Context(), identity.UserID, messageID); err != nil {
		h.handleMessagesError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *MessagesHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if h.messages == nil {
		writeInternal(w)
		return
	}

	count, err := h.messages.UnreadCount(r.Context(), identity.UserID)
	if err != nil {
		h.handleMessagesError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.CountResponse{Count: count})
}

func (h *MessagesHandler) handleMessagesError(w http.ResponseWriter, err error) {
	if tooFast, ok := ratingsvc.IsTooFast(err); ok {
		writeTooMany(w, tooFast.RetryAfter())
		return
	}
	switch {
	case errors.Is(err, messagesvc.ErrValidation):
		writeBadRequest(w, "invalid message request")
	case errors.Is(err, messagesvc.ErrMatchNotFound):
		writeNotFound(w, "match not found")
	case errors.Is(err, messagesvc.ErrMessageNotFound):
		writeNotFound(w, "message not found")
	case errors.Is(err, messagesvc.ErrMatchNotActive):
		writeConflict(w, "match is not active")
	default:
		h.log.Error("messages request failed", zap.Error(err))
		writeInternal(w)
	}
}

func messageResponse(m model.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:         m.ID,
		MatchID:    m.MatchID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		SentAt:     m.SentAt,
		IsRead:     m.IsRead,
	}
}
