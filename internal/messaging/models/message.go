package models

import (
	"strings"
	"time"
	"unicode/utf8"

	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
)

// MaxBodyLength bounds a message body in runes, counted after sanitizing.
const MaxBodyLength = 4000

// Conversation page sizes.
const (
	DefaultConversationLimit = 50
	MaxConversationLimit     = 200
)

// Message is a private message between two connected profiles.
type Message struct {
	ID          id.MessageID `json:"id"`
	SenderID    id.ProfileID `json:"sender_id"`
	RecipientID id.ProfileID `json:"recipient_id"`
	Body        string       `json:"body"`
	SentAt      time.Time    `json:"sent_at"`
}

// NewMessage validates a message whose body has already been sanitized.
func NewMessage(messageID id.MessageID, sender, recipient id.ProfileID, body string, now time.Time) (*Message, error) {
	if sender.IsNil() || recipient.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "sender and recipient are required")
	}
	if sender == recipient {
		return nil, dErrors.New(dErrors.CodeValidation, "cannot message yourself")
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "message body is required")
	}
	if utf8.RuneCountInString(body) > MaxBodyLength {
		return nil, dErrors.New(dErrors.CodeValidation, "message body is too long")
	}
	return &Message{
		ID:          messageID,
		SenderID:    sender,
		RecipientID: recipient,
		Body:        body,
		SentAt:      now,
	}, nil
}

// ClampLimit maps a caller page size onto 1..MaxConversationLimit; zero or
// negative means the default.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultConversationLimit
	case limit > MaxConversationLimit:
		return MaxConversationLimit
	}
	return limit
}
