// Package store holds the canonical in-memory conversation and message
// collections. All other components read and mutate through it.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/relaydesk/support-inbox/internal/model"
)

// ErrNotFound is returned when a required entity does not exist.
var ErrNotFound = errors.New("not found")

// Store is the process-wide entity store. Mutations never interleave
// mid-operation: every operation takes the lock for its full duration.
type Store struct {
	mu       sync.RWMutex
	order    []string
	convs    map[string]*model.Conversation
	msgs     map[string][]model.Message
	byToken  map[string]model.Message
	nextID   int
	latency  time.Duration
}

// New creates an empty store. latency is the simulated backend suspension
// applied at the top of each operation; zero disables it.
func New(latency time.Duration) *Store {
	return &Store{
		convs:   make(map[string]*model.Conversation),
		msgs:    make(map[string][]model.Message),
		byToken: make(map[string]model.Message),
		nextID:  95000,
		latency: latency,
	}
}

// suspend models network latency before an operation resumes with its result.
// Suspensions are bounded and honor context cancellation.
func (s *Store) suspend(ctx context.Context) error {
	if s.latency <= 0 {
		return nil
	}
	select {
	case <-time.After(s.latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PutConversation inserts or replaces a conversation. Used by seeding and tests.
func (s *Store) PutConversation(conv model.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.convs[conv.ID]; !exists {
		s.order = append(s.order, conv.ID)
	}
	c := conv
	s.convs[conv.ID] = &c
}

// ListConversations returns a snapshot of all conversations in insertion order.
func (s *Store) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	if err := s.suspend(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Conversation, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.convs[id])
	}
	return out, nil
}

// GetConversation returns one conversation by id.
func (s *Store) GetConversation(ctx context.Context, id string) (model.Conversation, error) {
	if err := s.suspend(ctx); err != nil {
		return model.Conversation{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, exists := s.convs[id]
	if !exists {
		return model.Conversation{}, fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}
	return *conv, nil
}

// UpdateStatus changes a conversation's status and bumps its updatedAt.
func (s *Store) UpdateStatus(ctx context.Context, id string, status model.Status) (model.Conversation, error) {
	if err := s.suspend(ctx); err != nil {
		return model.Conversation{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conv, exists := s.convs[id]
	if !exists {
		return model.Conversation{}, fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}
	conv.Status = status
	conv.UpdatedAt = time.Now().UTC()
	return *conv, nil
}

// MarkRead resets a conversation's unread count to zero. This is the only
// operation that resets it; listing never does.
func (s *Store) MarkRead(ctx context.Context, id string) error {
	if err := s.suspend(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conv, exists := s.convs[id]
	if !exists {
		return fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}
	conv.UnreadCount = 0
	return nil
}

// Messages returns a snapshot of a conversation's timeline in append order.
// An unknown conversation yields an empty slice, not an error.
func (s *Store) Messages(ctx context.Context, conversationID string) ([]model.Message, error) {
	if err := s.suspend(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.msgs[conversationID]
	out := make([]model.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// MessageCount returns the number of stored messages for a conversation.
func (s *Store) MessageCount(conversationID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.msgs[conversationID])
}

// AppendMessage appends a message to a conversation's timeline and refreshes
// the conversation's last-message summary and updatedAt. Timelines are
// append-only; insertion order breaks creation-time ties.
func (s *Store) AppendMessage(ctx context.Context, conversationID string, msg model.Message) error {
	if err := s.suspend(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conv, exists := s.convs[conversationID]
	if !exists {
		return fmt.Errorf("conversation %s: %w", conversationID, ErrNotFound)
	}

	s.msgs[conversationID] = append(s.msgs[conversationID], msg)
	conv.LastMessage = msg.Summary()
	conv.UpdatedAt = msg.CreatedAt

	if msg.ClientMessageID != nil {
		s.byToken[*msg.ClientMessageID] = msg
	}
	return nil
}

// SeedMessage appends a message without touching the conversation projection.
// Used only while loading fixtures.
func (s *Store) SeedMessage(conversationID string, msg model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs[conversationID] = append(s.msgs[conversationID], msg)
}

// MessageByToken looks up a previously stored message by its client
// idempotency token. The index lives for the lifetime of the process.
func (s *Store) MessageByToken(token string) (model.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.byToken[token]
	return msg, ok
}

// NextMessageID allocates a new message id.
func (s *Store) NextMessageID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return fmt.Sprintf("m_%d", s.nextID)
}

// Agents returns the distinct assignees present in the store.
func (s *Store) Agents(ctx context.Context) ([]model.Agent, error) {
	if err := s.suspend(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var agents []model.Agent
	for _, id := range s.order {
		a := s.convs[id].Assignee
		if a == nil || seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		agents = append(agents, *a)
	}
	return agents, nil
}
