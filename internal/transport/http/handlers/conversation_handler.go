package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lestercardoz11/haven/internal/domain/model"
	authsvc "github.com/lestercardoz11/haven/internal/services/auth"
	messagingsvc "github.com/lestercardoz11/haven/internal/services/messaging"
	"github.com/lestercardoz11/haven/internal/transport/http/dto"
	httperrors "github.com/lestercardoz11/haven/internal/transport/http/errors"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type MessageSubscriber interface {
	SubscribeMessages(ctx context.Context, conversationID int64) (<-chan model.Message, func(), error)
}

type ConversationHandler struct {
	service    *messagingsvc.Service
	subscriber MessageSubscriber
	logger     *zap.Logger
}

func NewConversationHandler(service *messagingsvc.Service, subscriber MessageSubscriber, logger *zap.Logger) *ConversationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversationHandler{
		service:    service,
		subscriber: subscriber,
		logger:     logger,
	}
}

func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGING_SERVICE_UNAVAILABLE", "messaging service is unavailable")
		return
	}

	limit := parseIntOrDefault(r.URL.Query().Get("limit"), 100)
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var (
		items []messagingsvc.ConversationItem
		err   error
	)
	if query != "" {
		items, err = h.service.SearchConversations(r.Context(), identity.UserID, query, limit)
	} else {
		items, err = h.service.ListConversations(r.Context(), identity.UserID, limit)
	}
	if err != nil {
		switch {
		case errors.Is(err, messagingsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid conversations request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load conversations")
		}
		return
	}

	responseItems := make([]dto.ConversationItemResponse, 0, len(items))
	for _, item := range items {
		responseItems = append(responseItems, dto.ConversationItemResponse{
			ID:                 item.ID,
			OtherUserID:        item.OtherUserID,
			OtherDisplayName:   item.OtherDisplayName,
			LastMessageAt:      item.LastMessageAt,
			LastMessagePreview: item.LastMessagePreview,
			UnreadCount:        item.UnreadCount,
			CreatedAt:          item.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.ConversationsResponse{Items: responseItems})
}

func (h *ConversationHandler) Messages(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGING_SERVICE_UNAVAILABLE", "messaging service is unavailable")
		return
	}

	conversationID, ok := conversationIDParam(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid conversation id")
		return
	}

	items, err := h.service.ListMessages(r.Context(), identity.UserID, conversationID,
		parseIntOrDefault(r.URL.Query().Get("limit"), 200))
	if err != nil {
		writeMessagingError(w, err, "failed to load messages")
		return
	}

	responseItems := make([]dto.MessageResponse, 0, len(items))
	for _, item := range items {
		responseItems = append(responseItems, toMessageResponse(item))
	}

	httperrors.Write(w, http.StatusOK, dto.MessagesResponse{Items: responseItems})
}

func (h *ConversationHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGING_SERVICE_UNAVAILABLE", "messaging service is unavailable")
		return
	}

	conversationID, ok := conversationIDParam(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid conversation id")
		return
	}

	var req dto.SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	msg, err := h.service.Send(r.Context(), identity.UserID, conversationID, req.Text, req.ImageKey)
	if err != nil {
		writeMessagingError(w, err, "failed to send message")
		return
	}

	httperrors.Write(w, http.StatusCreated, toMessageResponse(msg))
}

func (h *ConversationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGING_SERVICE_UNAVAILABLE", "messaging service is unavailable")
		return
	}

	conversationID, ok := conversationIDParam(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid conversation id")
		return
	}

	marked, err := h.service.MarkRead(r.Context(), identity.UserID, conversationID)
	if err != nil {
		writeMessagingError(w, err, "failed to mark conversation read")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MarkReadResponse{OK: true, MarkedRead: marked})
}

func (h *ConversationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGING_SERVICE_UNAVAILABLE", "messaging service is unavailable")
		return
	}

	count, err := h.service.UnreadCount(r.Context(), identity.UserID)
	if err != nil {
		writeMessagingError(w, err, "failed to count unread messages")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UnreadCountResponse{UnreadCount: count})
}

// Subscribe upgrades to a websocket and streams new messages for one
// conversation until the client disconnects.
func (h *ConversationHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil || h.subscriber == nil {
		writeInternal(w, "MESSAGING_SERVICE_UNAVAILABLE", "messaging service is unavailable")
		return
	}

	conversationID, ok := conversationIDParam(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid conversation id")
		return
	}

	// Participant check before the upgrade so unauthorized callers get a
	// plain HTTP error instead of a dropped socket.
	if _, err := h.service.ListMessages(r.Context(), identity.UserID, conversationID, 1); err != nil {
		writeMessagingError(w, err, "failed to open message stream")
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	events, stop, err := h.subscriber.SubscribeMessages(ctx, conversationID)
	if err != nil {
		h.logger.Warn("subscribe conversation failed",
			zap.Int64("conversation_id", conversationID), zap.Error(err))
		return
	}
	defer stop()

	// Drain client frames so pings are answered and closes are noticed.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, open := <-events:
			if !open {
				return
			}
			if err := conn.WriteJSON(toMessageResponse(msg)); err != nil {
				return
			}
		}
	}
}

func conversationIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func writeMessagingError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, messagingsvc.ErrValidation),
		errors.Is(err, messagingsvc.ErrEmptyMessage),
		errors.Is(err, messagingsvc.ErrMessageTooLong):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid message request")
	case errors.Is(err, messagingsvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "conversation not found")
	case errors.Is(err, messagingsvc.ErrInvalidParticipant):
		writeForbidden(w, "INVALID_PARTICIPANT", "user is not a participant of this conversation")
	case errors.Is(err, messagingsvc.ErrRateLimited):
		writeRateLimited(w, err, "too many messages, slow down")
	default:
		writeInternal(w, "INTERNAL_ERROR", fallback)
	}
}

func toMessageResponse(msg model.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		ReceiverID:     msg.ReceiverID,
		Text:           msg.Text,
		Type:           string(msg.Type),
		ImageURL:       msg.ImageURL,
		IsRead:         msg.IsRead,
		ReadAt:         msg.ReadAt,
		CreatedAt:      msg.CreatedAt,
	}
}
