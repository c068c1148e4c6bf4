package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaydesk/support-inbox/internal/model"
	"github.com/relaydesk/support-inbox/internal/realtime"
	"github.com/relaydesk/support-inbox/internal/service"
	"github.com/relaydesk/support-inbox/internal/store"
	"github.com/relaydesk/support-inbox/pkg/logger"
)

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	st := store.Seeded(0)
	unread := service.NewUnreadLedger()
	log := logger.NewNop()
	bus := realtime.NewBus(log)
	convSvc := service.NewConversationService(st, unread, log)
	msgSvc := service.NewMessageService(st, bus, 10, log)

	convHandler := NewConversationHandler(convSvc, log)
	msgHandler := NewMessageHandler(msgSvc, convSvc, log)

	r := chi.NewRouter()
	r.Get("/agents", convHandler.Agents)
	r.Route("/conversations", func(r chi.Router) {
		r.Get("/", convHandler.List)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", convHandler.Get)
			r.Put("/status", convHandler.UpdateStatus)
			r.Post("/read", convHandler.MarkRead)
			r.Get("/messages", msgHandler.List)
			r.Post("/messages", msgHandler.Send)
		})
	})
	return r
}

func doRequest(t *testing.T, r chi.Router, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type listEnvelope struct {
	Data []model.Conversation `json:"data"`
	Meta model.PageMeta       `json:"meta"`
}

func TestListConversationsEndpoint(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodGet, "/conversations", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp listEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 20)
	assert.Equal(t, 25, resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.TotalPages)
}

func TestListConversationsUnknownFilterValueIsNoConstraint(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodGet, "/conversations?status=banana&channel=morse", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp listEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 25, resp.Meta.Total)
}

func TestListConversationsFilterEndpoint(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodGet, "/conversations?status=open&unread=true&pageSize=50", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp listEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data)
	for _, c := range resp.Data {
		assert.Equal(t, model.StatusOpen, c.Status)
		assert.Greater(t, c.UnreadCount, 0)
	}
}

func TestGetConversationEndpoint(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodGet, "/conversations/c_10001", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data model.Conversation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "c_10001", resp.Data.ID)
	assert.Equal(t, "王小明", resp.Data.Customer.Name)
}

func TestGetConversationNotFound(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodGet, "/conversations/c_00000", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "conversation not found", resp.Error)
}

func TestMessagesEndpointPagination(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodGet, "/conversations/c_10001/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []model.Message    `json:"data"`
		Meta model.MessagesMeta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 8)
	assert.False(t, resp.Meta.HasMore)
	assert.Nil(t, resp.Meta.NextBefore)
	assert.Equal(t, "m_90008", resp.Data[0].ID)
}

func TestMessagesEndpointUnknownConversation(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodGet, "/conversations/c_00000/messages", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendMessageEndpoint(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodPost, "/conversations/c_10001/messages", model.SendMessageRequest{
		Text: "hello",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data model.Message `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.SenderAgent, resp.Data.SenderType)
	require.NotNil(t, resp.Data.SenderID)
	// No auth middleware in this router: sender falls back to the assignee.
	assert.Equal(t, "u_001", *resp.Data.SenderID)
}

func TestSendMessageEndpointIdempotent(t *testing.T) {
	r := newTestRouter(t)

	body := model.SendMessageRequest{Text: "hello", ClientMessageID: "tok-1"}

	first := doRequest(t, r, http.MethodPost, "/conversations/c_10001/messages", body)
	require.Equal(t, http.StatusCreated, first.Code)
	second := doRequest(t, r, http.MethodPost, "/conversations/c_10001/messages", body)
	require.Equal(t, http.StatusCreated, second.Code)

	var a, b struct {
		Data model.Message `json:"data"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
	assert.Equal(t, a.Data.ID, b.Data.ID)

	rec := doRequest(t, r, http.MethodGet, "/conversations/c_10001/messages", nil)
	var resp struct {
		Data []model.Message `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 9, "duplicate send must store exactly one message")
}

func TestUpdateStatusEndpoint(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodPut, "/conversations/c_10003/status", model.UpdateStatusRequest{
		Status: model.StatusClosed,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data model.Conversation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.StatusClosed, resp.Data.Status)

	bad := doRequest(t, r, http.MethodPut, "/conversations/c_10003/status", map[string]string{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestMarkReadEndpoint(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodPost, "/conversations/c_10001/read", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	get := doRequest(t, r, http.MethodGet, "/conversations/c_10001", nil)
	var resp struct {
		Data model.Conversation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(get.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Data.UnreadCount)
}

func TestAgentsEndpoint(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, http.MethodGet, "/agents", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []model.Agent `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "u_001", resp.Data[0].ID)
}
