package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaydesk/support-inbox/internal/model"
	"github.com/relaydesk/support-inbox/internal/store"
	"github.com/relaydesk/support-inbox/pkg/logger"
)

func newConversationService(t *testing.T) (*ConversationService, *UnreadLedger) {
	t.Helper()
	unread := NewUnreadLedger()
	svc := NewConversationService(store.Seeded(0), unread, logger.NewNop())
	return svc, unread
}

func listAll(t *testing.T, svc *ConversationService, params model.ListConversationsParams) []model.Conversation {
	t.Helper()
	params.Page = 1
	params.PageSize = 1000
	page, err := svc.List(context.Background(), params)
	require.NoError(t, err)
	return page.Conversations
}

func TestListNoFilters(t *testing.T) {
	svc, _ := newConversationService(t)

	page, err := svc.List(context.Background(), model.ListConversationsParams{})
	require.NoError(t, err)
	assert.Equal(t, 25, page.Meta.Total)
	assert.Equal(t, 1, page.Meta.Page)
	assert.Equal(t, 20, page.Meta.PageSize)
	assert.Equal(t, 2, page.Meta.TotalPages)
	assert.Len(t, page.Conversations, 20)

	// Default sort is updatedAt descending.
	for i := 1; i < len(page.Conversations); i++ {
		assert.False(t, page.Conversations[i-1].UpdatedAt.Before(page.Conversations[i].UpdatedAt))
	}
}

func TestListFiltersAreConjunctive(t *testing.T) {
	svc, _ := newConversationService(t)

	got := listAll(t, svc, model.ListConversationsParams{
		Status:  model.StatusOpen,
		Channel: model.ChannelWeb,
	})
	require.NotEmpty(t, got)
	for _, c := range got {
		assert.Equal(t, model.StatusOpen, c.Status)
		assert.Equal(t, model.ChannelWeb, c.Channel)
	}
}

func TestListOpenUnreadOnly(t *testing.T) {
	svc, _ := newConversationService(t)

	// Seed contains open conversations both with and without unread messages.
	got := listAll(t, svc, model.ListConversationsParams{
		Status:     model.StatusOpen,
		UnreadOnly: true,
	})
	require.NotEmpty(t, got)
	ids := make(map[string]bool)
	for _, c := range got {
		assert.Equal(t, model.StatusOpen, c.Status)
		assert.Greater(t, c.UnreadCount, 0)
		ids[c.ID] = true
	}
	assert.True(t, ids["c_10001"])
	assert.False(t, ids["c_10002"], "open conversation with zero unread must be excluded")
}

func TestListAssigneeFilter(t *testing.T) {
	svc, _ := newConversationService(t)

	got := listAll(t, svc, model.ListConversationsParams{AssigneeID: "u_001"})
	require.NotEmpty(t, got)
	for _, c := range got {
		require.NotNil(t, c.Assignee)
		assert.Equal(t, "u_001", c.Assignee.ID)
	}

	// Unassigned conversations never match an assignee filter.
	none := listAll(t, svc, model.ListConversationsParams{AssigneeID: "u_404"})
	assert.Empty(t, none)
}

func TestListFreeTextQuery(t *testing.T) {
	svc, _ := newConversationService(t)

	byName := listAll(t, svc, model.ListConversationsParams{Query: "sarah"})
	require.Len(t, byName, 1)
	assert.Equal(t, "c_10002", byName[0].ID)

	byAlias := listAll(t, svc, model.ListConversationsParams{Query: "emma w."})
	require.Len(t, byAlias, 1)
	assert.Equal(t, "c_10004", byAlias[0].ID)

	byExcerpt := listAll(t, svc, model.ListConversationsParams{Query: "warranty"})
	require.Len(t, byExcerpt, 1)
	assert.Equal(t, "c_10005", byExcerpt[0].ID)
}

func TestListUpdatedAfter(t *testing.T) {
	svc, _ := newConversationService(t)

	threshold := time.Date(2026, 1, 24, 0, 0, 0, 0, time.UTC)
	got := listAll(t, svc, model.ListConversationsParams{UpdatedAfter: &threshold})
	require.NotEmpty(t, got)
	for _, c := range got {
		assert.False(t, c.UpdatedAt.Before(threshold))
	}

	// The boundary is inclusive: a conversation updated exactly at the
	// threshold is kept.
	exact := time.Date(2026, 1, 24, 10, 30, 0, 0, time.UTC)
	atBoundary := listAll(t, svc, model.ListConversationsParams{UpdatedAfter: &exact})
	ids := make(map[string]bool)
	for _, c := range atBoundary {
		ids[c.ID] = true
	}
	assert.True(t, ids["c_10001"])
}

func TestListNoMatchesIsEmptyPageNotError(t *testing.T) {
	svc, _ := newConversationService(t)

	page, err := svc.List(context.Background(), model.ListConversationsParams{
		Query: "definitely-not-a-customer",
	})
	require.NoError(t, err)
	assert.Empty(t, page.Conversations)
	assert.Equal(t, 0, page.Meta.Total)
	assert.Equal(t, 1, page.Meta.TotalPages)
}

func TestListPaginationIsExhaustiveAndNonOverlapping(t *testing.T) {
	svc, _ := newConversationService(t)
	ctx := context.Background()

	full := listAll(t, svc, model.ListConversationsParams{})

	var collected []model.Conversation
	pageSize := 7
	for page := 1; ; page++ {
		got, err := svc.List(ctx, model.ListConversationsParams{Page: page, PageSize: pageSize})
		require.NoError(t, err)
		assert.Equal(t, len(full), got.Meta.Total)
		if len(got.Conversations) == 0 {
			break
		}
		collected = append(collected, got.Conversations...)
		if page >= got.Meta.TotalPages {
			break
		}
	}

	require.Len(t, collected, len(full))
	for i := range full {
		assert.Equal(t, full[i].ID, collected[i].ID)
	}
}

func TestListSortAscending(t *testing.T) {
	svc, _ := newConversationService(t)

	got := listAll(t, svc, model.ListConversationsParams{Sort: model.SortUpdatedAsc})
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].UpdatedAt.Before(got[i-1].UpdatedAt))
	}
}

func TestListClampsPagination(t *testing.T) {
	svc, _ := newConversationService(t)

	page, err := svc.List(context.Background(), model.ListConversationsParams{Page: 0, PageSize: -5})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Meta.Page)
	assert.Equal(t, 20, page.Meta.PageSize)
}

func TestListPageBeyondEnd(t *testing.T) {
	svc, _ := newConversationService(t)

	page, err := svc.List(context.Background(), model.ListConversationsParams{Page: 99, PageSize: 20})
	require.NoError(t, err)
	assert.Empty(t, page.Conversations)
	assert.Equal(t, 25, page.Meta.Total)
	assert.Equal(t, 2, page.Meta.TotalPages)
}

func TestListFoldsUnreadDelta(t *testing.T) {
	svc, unread := newConversationService(t)

	unread.Increment("c_10002")
	unread.Increment("c_10002")

	conv, err := svc.Get(context.Background(), "c_10002")
	require.NoError(t, err)
	assert.Equal(t, 2, conv.UnreadCount)

	// Folding is a projection: the delta shows up in unread-only listings
	// but the stored count is untouched.
	got := listAll(t, svc, model.ListConversationsParams{UnreadOnly: true})
	found := false
	for _, c := range got {
		if c.ID == "c_10002" {
			found = true
			assert.Equal(t, 2, c.UnreadCount)
		}
	}
	assert.True(t, found)

	unread.Clear("c_10002")
	conv, err = svc.Get(context.Background(), "c_10002")
	require.NoError(t, err)
	assert.Equal(t, 0, conv.UnreadCount)
}

func TestListingNeverResetsUnread(t *testing.T) {
	svc, _ := newConversationService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.List(ctx, model.ListConversationsParams{})
		require.NoError(t, err)
	}

	conv, err := svc.Get(ctx, "c_10001")
	require.NoError(t, err)
	assert.Equal(t, 2, conv.UnreadCount)
}

func TestMarkReadClearsStoredCountAndDelta(t *testing.T) {
	svc, unread := newConversationService(t)
	ctx := context.Background()

	unread.Increment("c_10001")
	require.NoError(t, svc.MarkRead(ctx, "c_10001"))

	conv, err := svc.Get(ctx, "c_10001")
	require.NoError(t, err)
	assert.Equal(t, 0, conv.UnreadCount)
	assert.Equal(t, 0, unread.Get("c_10001"))
}

func TestGetNotFound(t *testing.T) {
	svc, _ := newConversationService(t)

	_, err := svc.Get(context.Background(), "c_00000")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateStatusBumpsUpdatedAt(t *testing.T) {
	svc, _ := newConversationService(t)
	ctx := context.Background()

	before, err := svc.Get(ctx, "c_10003")
	require.NoError(t, err)

	conv, err := svc.UpdateStatus(ctx, "c_10003", model.StatusClosed)
	require.NoError(t, err)
	assert.Equal(t, model.StatusClosed, conv.Status)
	assert.True(t, conv.UpdatedAt.After(before.UpdatedAt))

	_, err = svc.UpdateStatus(ctx, "c_00000", model.StatusClosed)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
