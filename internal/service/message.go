package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/relaydesk/support-inbox/internal/model"
	"github.com/relaydesk/support-inbox/internal/realtime"
	"github.com/relaydesk/support-inbox/internal/store"
	"github.com/relaydesk/support-inbox/pkg/logger"
	"github.com/relaydesk/support-inbox/pkg/metrics"
)

// MessageService handles message pagination and the send pipeline.
type MessageService struct {
	store    *store.Store
	bus      *realtime.Bus
	pageSize int
	logger   *logger.Logger
}

// NewMessageService creates a new message service. pageSize is the fixed
// message page size; values below 1 fall back to 10.
func NewMessageService(st *store.Store, bus *realtime.Bus, pageSize int, log *logger.Logger) *MessageService {
	if pageSize < 1 {
		pageSize = 10
	}
	return &MessageService{
		store:    st,
		bus:      bus,
		pageSize: pageSize,
		logger:   log,
	}
}

// GetMessages returns one reverse-chronological page of a conversation's
// messages. before is an opaque cursor matching a message id or creation
// timestamp; the page starts immediately after the matched message. A cursor
// that matches nothing restarts from the newest message rather than erroring.
func (s *MessageService) GetMessages(ctx context.Context, conversationID string, before string) (*model.MessagePage, error) {
	msgs, err := s.store.Messages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}

	// Newest first; append order breaks ties so the sort must be stable.
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[j].CreatedAt.Before(msgs[i].CreatedAt)
	})

	start := 0
	if before != "" {
		for i, m := range msgs {
			if m.ID == before || m.CreatedAt.Format(time.RFC3339) == before {
				start = i + 1
				break
			}
		}
	}

	end := start + s.pageSize
	if end > len(msgs) {
		end = len(msgs)
	}
	page := msgs[start:end]

	hasMore := start+s.pageSize < len(msgs)
	var nextBefore *string
	if hasMore && len(page) > 0 {
		id := page[len(page)-1].ID
		nextBefore = &id
	}

	return &model.MessagePage{
		Messages: page,
		Meta: model.MessagesMeta{
			HasMore:    hasMore,
			NextBefore: nextBefore,
		},
	}, nil
}

// Send appends an outgoing agent message to the conversation and publishes
// the stored message on the bus. When the request carries a client token that
// was already used, the stored message is returned unchanged and nothing is
// appended or published.
func (s *MessageService) Send(ctx context.Context, conversationID, agentID string, req *model.SendMessageRequest) (*model.Message, error) {
	if req.ClientMessageID != "" {
		if existing, ok := s.store.MessageByToken(req.ClientMessageID); ok {
			metrics.IdempotentReplaysTotal.Inc()
			s.logger.Debug("send replayed from idempotency index",
				zap.String("conversation_id", conversationID),
				zap.String("client_message_id", req.ClientMessageID),
			)
			return &existing, nil
		}
	}

	attachments := req.Attachments
	if attachments == nil {
		attachments = []model.Attachment{}
	}

	msgType := model.MessageText
	if len(attachments) > 0 {
		msgType = model.MessageFile
	}

	text := req.Text
	if text == "" && len(attachments) > 0 {
		names := make([]string, len(attachments))
		for i, a := range attachments {
			names[i] = a.FileName
		}
		text = strings.Join(names, ", ")
	}
	var textPtr *string
	if text != "" {
		textPtr = &text
	}

	var token *string
	if req.ClientMessageID != "" {
		t := req.ClientMessageID
		token = &t
	}

	now := time.Now().UTC()
	msg := model.Message{
		ID:              s.store.NextMessageID(),
		SenderType:      model.SenderAgent,
		SenderID:        &agentID,
		Type:            msgType,
		Text:            textPtr,
		Attachments:     attachments,
		ClientMessageID: token,
		CreatedAt:       now,
		ReadAt:          now,
	}

	if err := s.store.AppendMessage(ctx, conversationID, msg); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	metrics.MessagesTotal.WithLabelValues(string(model.SenderAgent)).Inc()
	s.bus.PublishMessage(conversationID, msg)
	s.logger.Info("message sent",
		zap.String("conversation_id", conversationID),
		zap.String("message_id", msg.ID),
		zap.String("agent_id", agentID),
	)

	return &msg, nil
}
