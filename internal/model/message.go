package model

import (
	"time"
)

// SenderType identifies who authored a message.
type SenderType string

const (
	SenderCustomer SenderType = "customer"
	SenderAgent    SenderType = "agent"
	SenderSystem   SenderType = "system"
)

// MessageType is the content type of a message.
type MessageType string

const (
	MessageText   MessageType = "text"
	MessageFile   MessageType = "file"
	MessageImage  MessageType = "image"
	MessageSystem MessageType = "system"
)

// Attachment is a file attached to a message. Attachments arrive already
// validated and URL-resolved by the upload step.
type Attachment struct {
	FileID   string  `json:"fileId"`
	FileName string  `json:"fileName"`
	MimeType *string `json:"mimeType"`
	Size     *int64  `json:"size"`
	URL      *string `json:"url"`
}

// Message is one entry in a conversation's timeline. The wire key "readedAt"
// matches the upstream API contract.
type Message struct {
	ID              string       `json:"id"`
	SenderType      SenderType   `json:"senderType"`
	SenderID        *string      `json:"senderId"`
	Type            MessageType  `json:"type"`
	Text            *string      `json:"text"`
	Attachments     []Attachment `json:"attachments"`
	ClientMessageID *string      `json:"clientMessageId"`
	CreatedAt       time.Time    `json:"createdAt"`
	ReadAt          time.Time    `json:"readedAt"`
}

// Summary returns the denormalized projection of the message used as a
// conversation's last-message excerpt.
func (m *Message) Summary() *MessageSummary {
	text := ""
	if m.Text != nil {
		text = *m.Text
	}
	return &MessageSummary{
		ID:        m.ID,
		Type:      m.Type,
		Text:      text,
		CreatedAt: m.CreatedAt,
	}
}

// SendMessageRequest is the payload to send an outgoing message.
type SendMessageRequest struct {
	Text            string       `json:"text,omitempty"`
	Attachments     []Attachment `json:"attachments,omitempty"`
	ClientMessageID string       `json:"clientMessageId,omitempty"`
}

// MessagesMeta is the continuation metadata for a page of messages.
type MessagesMeta struct {
	HasMore    bool    `json:"hasMore"`
	NextBefore *string `json:"nextBefore"`
}

// MessagePage is one reverse-chronological page of a conversation's messages.
type MessagePage struct {
	Messages []Message
	Meta     MessagesMeta
}
