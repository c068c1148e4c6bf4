package service

import (
	"sync"

	"github.com/relaydesk/support-inbox/pkg/metrics"
)

// UnreadLedger tracks unread increments raised by the live update simulator
// that have not yet been acknowledged by opening the conversation. Deltas are
// purely additive and layered on top of the stored unread count.
type UnreadLedger struct {
	mu     sync.RWMutex
	deltas map[string]int
}

// NewUnreadLedger creates an empty ledger.
func NewUnreadLedger() *UnreadLedger {
	return &UnreadLedger{
		deltas: make(map[string]int),
	}
}

// Increment adds 1 to the conversation's delta, creating the entry if absent.
func (l *UnreadLedger) Increment(conversationID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deltas[conversationID]++
	metrics.UnreadDeltas.Set(float64(len(l.deltas)))
}

// Clear removes the conversation's entry entirely. No-op when absent.
func (l *UnreadLedger) Clear(conversationID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.deltas, conversationID)
	metrics.UnreadDeltas.Set(float64(len(l.deltas)))
}

// Get returns the conversation's current delta, or 0.
func (l *UnreadLedger) Get(conversationID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.deltas[conversationID]
}
