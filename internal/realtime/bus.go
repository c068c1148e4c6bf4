// Package realtime provides the in-process live update machinery: a
// process-wide notification bus and a timer-driven inbound message simulator.
package realtime

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/relaydesk/support-inbox/internal/model"
	"github.com/relaydesk/support-inbox/pkg/logger"
)

// Bus is a process-wide event bus for conversation activity. Notice
// subscribers receive "conversation got a new inbound message" signals;
// message subscribers receive every stored message, inbound or outgoing.
// Subscriptions live until their unsubscribe handle is called; there is no
// implicit teardown.
type Bus struct {
	mu      sync.RWMutex
	subs    map[string]func(conversationID string)
	msgSubs map[string]func(conversationID string, msg model.Message)
	logger  *logger.Logger
}

// NewBus creates an empty bus.
func NewBus(log *logger.Logger) *Bus {
	return &Bus{
		subs:    make(map[string]func(string)),
		msgSubs: make(map[string]func(string, model.Message)),
		logger:  log,
	}
}

// Subscribe registers fn for every published notification and returns the
// handle that removes it. Calling the handle more than once is a no-op.
func (b *Bus) Subscribe(fn func(conversationID string)) (unsubscribe func()) {
	id := uuid.New().String()

	b.mu.Lock()
	b.subs[id] = fn
	b.mu.Unlock()

	b.logger.Debug("bus subscriber added", zap.String("sub_id", id))

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// SubscribeMessages registers fn for every stored message published on the
// bus and returns the handle that removes it.
func (b *Bus) SubscribeMessages(fn func(conversationID string, msg model.Message)) (unsubscribe func()) {
	id := uuid.New().String()

	b.mu.Lock()
	b.msgSubs[id] = fn
	b.mu.Unlock()

	b.logger.Debug("bus message subscriber added", zap.String("sub_id", id))

	return func() {
		b.mu.Lock()
		delete(b.msgSubs, id)
		b.mu.Unlock()
	}
}

// Publish notifies every notice subscriber that conversationID received an
// inbound message.
func (b *Bus) Publish(conversationID string) {
	b.mu.RLock()
	targets := make([]func(string), 0, len(b.subs))
	for _, fn := range b.subs {
		targets = append(targets, fn)
	}
	b.mu.RUnlock()

	for _, fn := range targets {
		fn(conversationID)
	}
}

// PublishMessage hands a stored message to every message subscriber. Notice
// subscribers are not invoked; outgoing sends must not raise unread deltas.
func (b *Bus) PublishMessage(conversationID string, msg model.Message) {
	b.mu.RLock()
	targets := make([]func(string, model.Message), 0, len(b.msgSubs))
	for _, fn := range b.msgSubs {
		targets = append(targets, fn)
	}
	b.mu.RUnlock()

	for _, fn := range targets {
		fn(conversationID, msg)
	}
}
