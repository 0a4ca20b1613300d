package domain

import "time"

// Message is one chat message. MessageID is a ULID, so the conversation's
// messages sort by send time under the composite key.
type Message struct {
	ConversationID string    `json:"conversation_id" dynamodbav:"conversation_id"`
	MessageID      string    `json:"id" dynamodbav:"message_id"`
	SenderID       string    `json:"sender_id" dynamodbav:"sender_id"`
	Content        string    `json:"content" dynamodbav:"content"`
	SentAt         time.Time `json:"sent_at" dynamodbav:"sent_at"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}
