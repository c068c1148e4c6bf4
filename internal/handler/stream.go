package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/relaydesk/support-inbox/internal/middleware"
	"github.com/relaydesk/support-inbox/internal/model"
	"github.com/relaydesk/support-inbox/internal/realtime"
	"github.com/relaydesk/support-inbox/internal/service"
	"github.com/relaydesk/support-inbox/pkg/logger"
	"github.com/relaydesk/support-inbox/pkg/metrics"
)

// StreamHandler exposes the live update simulator over SSE.
type StreamHandler struct {
	simulator           *realtime.Simulator
	conversationService *service.ConversationService
	logger              *logger.Logger
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(sim *realtime.Simulator, convSvc *service.ConversationService, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		simulator:           sim,
		conversationService: convSvc,
		logger:              log,
	}
}

// Stream handles GET /api/v1/conversations/{id}/stream
// One conversation is watched at a time; a new stream replaces the previous
// one, mirroring a single agent moving between conversation views.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID := chi.URLParam(r, "id")

	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.conversationService.Get(ctx, conversationID); err != nil {
		writeError(w, r, http.StatusNotFound, "conversation not found")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "streaming not supported")
		return
	}

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	h.logger.Info("stream connected",
		zap.String("conversation_id", conversationID),
		zap.String("agent_id", middleware.GetAgentID(ctx)),
		zap.String("agent_name", middleware.GetAgentName(ctx)),
	)

	// The callback runs on the simulator's timeline; hand messages to the
	// response goroutine over a buffered channel.
	msgCh := make(chan model.Message, 16)
	h.simulator.Connect(conversationID, func(msg model.Message) {
		select {
		case msgCh <- msg:
		default:
		}
	})
	defer h.simulator.Disconnect()

	sendSSEEvent(w, flusher, "connected", map[string]string{
		"conversationId": conversationID,
	})

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("SSE client disconnected")
			return
		case msg := <-msgCh:
			sendSSEEvent(w, flusher, "message", msg)
		case <-heartbeat.C:
			sendSSEEvent(w, flusher, "heartbeat", map[string]string{
				"ts": time.Now().UTC().Format(time.RFC3339),
			})
		}
	}
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()

	return nil
}
