// Package service provides business logic for the support inbox.
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/relaydesk/support-inbox/internal/model"
	"github.com/relaydesk/support-inbox/internal/store"
	"github.com/relaydesk/support-inbox/pkg/logger"
)

const defaultPageSize = 20

// ConversationService answers conversation queries and mutations.
type ConversationService struct {
	store  *store.Store
	unread *UnreadLedger
	logger *logger.Logger
}

// NewConversationService creates a new conversation service.
func NewConversationService(st *store.Store, unread *UnreadLedger, log *logger.Logger) *ConversationService {
	return &ConversationService{
		store:  st,
		unread: unread,
		logger: log,
	}
}

// fold layers the conversation's outstanding unread delta on top of its
// stored count. The stored count itself is untouched; only MarkRead resets it.
func (s *ConversationService) fold(conv model.Conversation) model.Conversation {
	conv.UnreadCount += s.unread.Get(conv.ID)
	return conv
}

// List returns the page of conversations matching params, with the total
// match count. Filters are conjunctive; absent filters constrain nothing, and
// an empty result is a success with correct totals.
func (s *ConversationService) List(ctx context.Context, params model.ListConversationsParams) (*model.ConversationPage, error) {
	all, err := s.store.ListConversations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	list := make([]model.Conversation, 0, len(all))
	for _, conv := range all {
		list = append(list, s.fold(conv))
	}

	filtered := make([]model.Conversation, 0, len(list))
	q := strings.ToLower(params.Query)
	for _, c := range list {
		if params.Status != "" && c.Status != params.Status {
			continue
		}
		if params.Channel != "" && c.Channel != params.Channel {
			continue
		}
		if params.AssigneeID != "" && (c.Assignee == nil || c.Assignee.ID != params.AssigneeID) {
			continue
		}
		if params.UnreadOnly && c.UnreadCount == 0 {
			continue
		}
		if q != "" && !matchesQuery(c, q) {
			continue
		}
		if params.UpdatedAfter != nil && c.UpdatedAt.Before(*params.UpdatedAfter) {
			continue
		}
		filtered = append(filtered, c)
	}

	asc := params.Sort == model.SortUpdatedAsc
	sort.SliceStable(filtered, func(i, j int) bool {
		if asc {
			return filtered[i].UpdatedAt.Before(filtered[j].UpdatedAt)
		}
		return filtered[j].UpdatedAt.Before(filtered[i].UpdatedAt)
	})

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	total := len(filtered)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return &model.ConversationPage{
		Conversations: filtered[start:end],
		Meta: model.PageMeta{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// matchesQuery reports whether the lowercased query is a substring of the
// customer name, the custom alias, or the last-message excerpt.
func matchesQuery(c model.Conversation, q string) bool {
	if strings.Contains(strings.ToLower(c.Customer.Name), q) {
		return true
	}
	if strings.Contains(strings.ToLower(c.Customer.CustomName), q) {
		return true
	}
	if c.LastMessage != nil && strings.Contains(strings.ToLower(c.LastMessage.Text), q) {
		return true
	}
	return false
}

// Get retrieves one conversation by id.
func (s *ConversationService) Get(ctx context.Context, id string) (*model.Conversation, error) {
	conv, err := s.store.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	folded := s.fold(conv)
	return &folded, nil
}

// UpdateStatus changes a conversation's status.
func (s *ConversationService) UpdateStatus(ctx context.Context, id string, status model.Status) (*model.Conversation, error) {
	conv, err := s.store.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.logger.Info("conversation status updated",
		zap.String("conversation_id", id),
		zap.String("status", string(status)),
	)

	folded := s.fold(conv)
	return &folded, nil
}

// MarkRead acknowledges a conversation: the stored unread count resets to
// zero and the ledger delta is cleared.
func (s *ConversationService) MarkRead(ctx context.Context, id string) error {
	if err := s.store.MarkRead(ctx, id); err != nil {
		return err
	}
	s.unread.Clear(id)
	return nil
}

// Agents returns the assignee options present in the store.
func (s *ConversationService) Agents(ctx context.Context) ([]model.Agent, error) {
	return s.store.Agents(ctx)
}
