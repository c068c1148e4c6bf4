package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/relaydesk/support-inbox/internal/middleware"
	"github.com/relaydesk/support-inbox/internal/model"
	"github.com/relaydesk/support-inbox/internal/service"
	"github.com/relaydesk/support-inbox/internal/store"
	"github.com/relaydesk/support-inbox/pkg/logger"
)

// MessageHandler handles message endpoints.
type MessageHandler struct {
	messageService      *service.MessageService
	conversationService *service.ConversationService
	logger              *logger.Logger
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(
	msgSvc *service.MessageService,
	convSvc *service.ConversationService,
	log *logger.Logger,
) *MessageHandler {
	return &MessageHandler{
		messageService:      msgSvc,
		conversationService: convSvc,
		logger:              log,
	}
}

// List handles GET /api/v1/conversations/{id}/messages
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")
	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.conversationService.Get(r.Context(), conversationID); err != nil {
		writeError(w, r, http.StatusNotFound, "conversation not found")
		return
	}

	page, err := h.messageService.GetMessages(r.Context(), conversationID, r.URL.Query().Get("nextBefore"))
	if err != nil {
		h.logger.Error("failed to get messages")
		writeError(w, r, http.StatusInternalServerError, "failed to get messages")
		return
	}

	writeData(w, r, http.StatusOK, page.Messages, page.Meta)
}

// Send handles POST /api/v1/conversations/{id}/messages
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID := chi.URLParam(r, "id")
	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	conv, err := h.conversationService.Get(ctx, conversationID)
	if err != nil {
		writeError(w, r, http.StatusNotFound, "conversation not found")
		return
	}

	var req model.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateMessageText(req.Text); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateClientMessageID(req.ClientMessageID); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	// Sender identity: the authenticated agent, falling back to the
	// conversation's assignee.
	agentID := middleware.GetAgentID(ctx)
	if agentID == "" && conv.Assignee != nil {
		agentID = conv.Assignee.ID
	}

	msg, err := h.messageService.Send(ctx, conversationID, agentID, &req)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "conversation not found")
			return
		}
		h.logger.Error("failed to send message")
		writeError(w, r, http.StatusInternalServerError, "failed to send message")
		return
	}

	writeData(w, r, http.StatusCreated, msg, nil)
}
