package domain

import "time"

// Priority classifies an outgoing notification. High-priority notifications
// are pushed immediately; Medium and Low go through the merge window.
// Low is reserved for digest-only content and is never emitted by the
// current message paths.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	}
	return "unknown"
}

// PendingNotification is one aggregated batch entry for a recipient's
// conversation. Entries live only in the pending store (in-process map or
// Redis), never in DynamoDB; the JSON tags are the Redis wire format.
//
// Invariants: at most one entry per (recipient, conversation); new messages
// for an already-pending conversation increment MessageCount in place.
// FirstMessageTime is immutable after creation and anchors the flush check.
type PendingNotification struct {
	RecipientID      string    `json:"recipient_id"`
	ConversationID   string    `json:"conversation_id"`
	SenderName       string    `json:"sender_name"` // logging only, never rendered
	MessageCount     int       `json:"message_count"`
	FirstMessageTime time.Time `json:"first_message_time"`
	LastMessageTime  time.Time `json:"last_message_time"`
	Priority         Priority  `json:"priority"`
	MessagePreview   string    `json:"message_preview,omitempty"`
}
