package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/relaydesk/support-inbox/internal/model"
	"github.com/relaydesk/support-inbox/pkg/logger"
	"github.com/relaydesk/support-inbox/pkg/metrics"
)

const (
	// StreamName is the name of the inbox events stream.
	StreamName = "INBOX"

	// SubjectPrefix is the prefix for all inbox subjects.
	SubjectPrefix = "inbox"
)

// Bridge republishes in-process inbox events to JetStream so external
// consumers can observe them. The core never depends on it; the server runs
// fine without a broker.
type Bridge struct {
	client *Client
	logger *logger.Logger
}

// NewBridge creates a bridge over an established NATS connection.
func NewBridge(client *Client, log *logger.Logger) *Bridge {
	return &Bridge{client: client, logger: log}
}

// EnsureStream ensures the inbox stream exists.
func (b *Bridge) EnsureStream(ctx context.Context) error {
	js := b.client.JetStream()

	if _, err := js.Stream(ctx, StreamName); err == nil {
		return nil
	}

	_, err := js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      7 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Description: "Inbox message and notification events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// MessageSubject returns the subject for a stored message.
func MessageSubject(conversationID string, sender model.SenderType) string {
	return fmt.Sprintf("%s.%s.msg.%s", SubjectPrefix, conversationID, sender)
}

// NoticeSubject returns the subject for a new-message notification.
func NoticeSubject(conversationID string) string {
	return fmt.Sprintf("%s.%s.notice", SubjectPrefix, conversationID)
}

// PublishMessage publishes a stored message.
func (b *Bridge) PublishMessage(ctx context.Context, conversationID string, msg *model.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if _, err := b.client.JetStream().Publish(ctx, MessageSubject(conversationID, msg.SenderType), data); err != nil {
		metrics.BridgePublishesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to publish message: %w", err)
	}
	metrics.BridgePublishesTotal.WithLabelValues("ok").Inc()
	return nil
}

// RepublishMessage publishes a stored message. Shaped to be subscribed
// directly to the in-process bus; failures are logged, never surfaced.
func (b *Bridge) RepublishMessage(conversationID string, msg model.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := b.PublishMessage(ctx, conversationID, &msg); err != nil {
		b.logger.Warn("bridge message publish failed",
			zap.String("conversation_id", conversationID),
			zap.String("message_id", msg.ID),
			zap.Error(err),
		)
	}
}

// NotifyNewMessage publishes a new-message notification for a conversation.
// Shaped to be subscribed directly to the in-process bus; failures are logged,
// never surfaced.
func (b *Bridge) NotifyNewMessage(conversationID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	payload, _ := json.Marshal(map[string]string{"conversationId": conversationID})
	if _, err := b.client.JetStream().Publish(ctx, NoticeSubject(conversationID), payload); err != nil {
		metrics.BridgePublishesTotal.WithLabelValues("error").Inc()
		b.logger.Warn("bridge publish failed",
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
		return
	}
	metrics.BridgePublishesTotal.WithLabelValues("ok").Inc()
}
