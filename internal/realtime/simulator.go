package realtime

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/relaydesk/support-inbox/internal/model"
	"github.com/relaydesk/support-inbox/internal/store"
	"github.com/relaydesk/support-inbox/pkg/logger"
	"github.com/relaydesk/support-inbox/pkg/metrics"
)

// cannedReplies are the texts the simulator picks from for synthesized
// inbound messages.
var cannedReplies = []string{
	"Thanks for the update!",
	"That sounds good, I'll wait.",
	"Can you provide more details?",
	"I have another question...",
}

// Simulator synthesizes inbound customer messages for a watched conversation
// on a fixed interval, standing in for a real push connection. One
// conversation is watched at a time; reconnecting replaces the previous watch.
type Simulator struct {
	store    *store.Store
	bus      *Bus
	interval time.Duration
	logger   *logger.Logger

	mu   sync.Mutex
	conn *connection
}

// connection is one connect/disconnect cycle. Ticks deliver while holding mu,
// so once close returns no further callback can be observed.
type connection struct {
	mu             sync.Mutex
	closed         bool
	conversationID string
	callback       func(model.Message)
	done           chan struct{}
}

func (c *connection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.done)
	}
}

// NewSimulator creates a simulator delivering on the given interval.
func NewSimulator(st *store.Store, bus *Bus, interval time.Duration, log *logger.Logger) *Simulator {
	return &Simulator{
		store:    st,
		bus:      bus,
		interval: interval,
		logger:   log,
	}
}

// Connect starts watching conversationID, delivering each synthesized message
// to callback. A previous connection is torn down first, so delivery is never
// duplicated across reconnects.
func (s *Simulator) Connect(conversationID string, callback func(model.Message)) {
	c := &connection{
		conversationID: conversationID,
		callback:       callback,
		done:           make(chan struct{}),
	}

	s.mu.Lock()
	prev := s.conn
	s.conn = c
	s.mu.Unlock()

	if prev != nil {
		prev.close()
	}

	s.logger.Debug("simulator connected", zap.String("conversation_id", conversationID))
	go s.run(c)
}

// Disconnect stops the current connection. Idempotent; when it returns no
// further callback invocation for that connection will be observed.
func (s *Simulator) Disconnect() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		conn.close()
		s.logger.Debug("simulator disconnected", zap.String("conversation_id", conn.conversationID))
	}
}

// IsConnected reports whether a conversation is currently watched.
func (s *Simulator) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

func (s *Simulator) run(c *connection) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			s.tick(c)
		}
	}
}

// tick synthesizes one inbound message, appends it, and fans out: first the
// per-connection callback, then every global bus subscriber. A tick that can
// no longer deliver silently no-ops.
func (s *Simulator) tick(c *connection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	ctx := context.Background()
	conv, err := s.store.GetConversation(ctx, c.conversationID)
	if err != nil {
		return
	}

	now := time.Now().UTC()
	text := cannedReplies[rand.Intn(len(cannedReplies))]
	customerID := conv.Customer.ID
	msg := model.Message{
		ID:          s.store.NextMessageID(),
		SenderType:  model.SenderCustomer,
		SenderID:    &customerID,
		Type:        model.MessageText,
		Text:        &text,
		Attachments: []model.Attachment{},
		CreatedAt:   now,
		ReadAt:      now,
	}

	if err := s.store.AppendMessage(ctx, c.conversationID, msg); err != nil {
		return
	}

	metrics.SimulatedDeliveriesTotal.Inc()
	metrics.MessagesTotal.WithLabelValues(string(model.SenderCustomer)).Inc()

	c.callback(msg)
	s.bus.Publish(c.conversationID)
	s.bus.PublishMessage(c.conversationID, msg)
}
