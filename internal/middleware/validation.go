package middleware

import (
	"errors"
	"unicode/utf8"
)

// ValidateConversationID validates a conversation id.
func ValidateConversationID(id string) error {
	if id == "" {
		return errors.New("conversation ID cannot be empty")
	}
	if len(id) > 64 {
		return errors.New("conversation ID exceeds maximum length")
	}
	return nil
}

// ValidateMessageText validates outgoing message text.
func ValidateMessageText(text string) error {
	if len(text) > 100000 {
		return errors.New("text exceeds maximum length")
	}
	if !utf8.ValidString(text) {
		return errors.New("text must be valid UTF-8")
	}
	return nil
}

// ValidateClientMessageID validates a client idempotency token. The token is
// opaque; only its size is bounded.
func ValidateClientMessageID(id string) error {
	if len(id) > 128 {
		return errors.New("clientMessageId exceeds maximum length")
	}
	return nil
}
