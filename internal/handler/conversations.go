// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/relaydesk/support-inbox/internal/middleware"
	"github.com/relaydesk/support-inbox/internal/model"
	"github.com/relaydesk/support-inbox/internal/service"
	"github.com/relaydesk/support-inbox/internal/store"
	"github.com/relaydesk/support-inbox/pkg/logger"
)

// ConversationHandler handles conversation endpoints.
type ConversationHandler struct {
	service *service.ConversationService
	logger  *logger.Logger
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(svc *service.ConversationService, log *logger.Logger) *ConversationHandler {
	return &ConversationHandler{
		service: svc,
		logger:  log,
	}
}

// parseListParams maps query parameters to listing params. Malformed values
// fall back to defaults; unknown enum values constrain nothing.
func parseListParams(r *http.Request) model.ListConversationsParams {
	q := r.URL.Query()
	params := model.ListConversationsParams{
		Page:     1,
		PageSize: 20,
		Query:    q.Get("q"),
		Sort:     model.SortUpdatedDesc,
	}

	if v := q.Get("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 1 {
			params.Page = parsed
		}
	}
	if v := q.Get("pageSize"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 1 && parsed <= 100 {
			params.PageSize = parsed
		}
	}
	if s := model.Status(q.Get("status")); model.ValidStatus(s) {
		params.Status = s
	}
	switch c := model.Channel(q.Get("channel")); c {
	case model.ChannelWeb, model.ChannelEmail, model.ChannelLine, model.ChannelFB, model.ChannelIG, model.ChannelOther:
		params.Channel = c
	}
	params.AssigneeID = q.Get("assigneeId")
	if v := q.Get("unread"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			params.UnreadOnly = parsed
		}
	}
	if q.Get("sort") == string(model.SortUpdatedAsc) {
		params.Sort = model.SortUpdatedAsc
	}
	if v := q.Get("updatedAfter"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			params.UpdatedAfter = &t
		}
	}

	return params
}

// List handles GET /api/v1/conversations
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), parseListParams(r))
	if err != nil {
		h.logger.Error("failed to list conversations")
		writeError(w, r, http.StatusInternalServerError, "failed to list conversations")
		return
	}

	writeData(w, r, http.StatusOK, page.Conversations, page.Meta)
}

// Get handles GET /api/v1/conversations/{id}
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")
	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	conv, err := h.service.Get(r.Context(), conversationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "conversation not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "failed to get conversation")
		return
	}

	writeData(w, r, http.StatusOK, conv, nil)
}

// UpdateStatus handles PUT /api/v1/conversations/{id}/status
func (h *ConversationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")
	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req model.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if !model.ValidStatus(req.Status) {
		writeError(w, r, http.StatusBadRequest, "invalid status")
		return
	}

	conv, err := h.service.UpdateStatus(r.Context(), conversationID, req.Status)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "conversation not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "failed to update status")
		return
	}

	writeData(w, r, http.StatusOK, conv, nil)
}

// MarkRead handles POST /api/v1/conversations/{id}/read
func (h *ConversationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")
	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.MarkRead(r.Context(), conversationID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "conversation not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "failed to mark conversation read")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Agents handles GET /api/v1/agents
func (h *ConversationHandler) Agents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.service.Agents(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to list agents")
		return
	}

	writeData(w, r, http.StatusOK, agents, nil)
}
