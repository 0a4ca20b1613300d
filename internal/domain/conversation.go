package domain

import "time"

// Conversation is one buyer/seller thread about a single listing.
// ListingTitle is denormalized so chat and notification paths don't need a
// listing lookup on every message.
type Conversation struct {
	ConversationID string    `json:"id" dynamodbav:"conversation_id"`
	ListingID      string    `json:"listing_id" dynamodbav:"listing_id"`
	ListingTitle   string    `json:"listing_title" dynamodbav:"listing_title"`
	BuyerID        string    `json:"buyer_id" dynamodbav:"buyer_id"`
	SellerID       string    `json:"seller_id" dynamodbav:"seller_id"`
	LastMessageAt  time.Time `json:"last_message_at" dynamodbav:"last_message_at"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updated" dynamodbav:"updated_at"`
}

type StartConversationRequest struct {
	ListingID string `json:"listing_id" validate:"required"`
}

// Other returns the participant that is not userID. Returns "" when userID
// is not a participant.
func (c *Conversation) Other(userID string) string {
	switch userID {
	case c.BuyerID:
		return c.SellerID
	case c.SellerID:
		return c.BuyerID
	}
	return ""
}
