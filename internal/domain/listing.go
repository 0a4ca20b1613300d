package domain

import "time"

// Listing status values.
const (
	ListingActive   = "active"
	ListingReserved = "reserved"
	ListingSold     = "sold"
)

type Listing struct {
	ListingID   string     `json:"id" dynamodbav:"listing_id"`
	SellerID    string     `json:"seller_id" dynamodbav:"seller_id"`
	Title       string     `json:"title" dynamodbav:"title"`
	Description string     `json:"description" dynamodbav:"description"`
	Price       int64      `json:"price" dynamodbav:"price"` // NT$, whole dollars
	Category    string     `json:"category" dynamodbav:"category"`
	Status      string     `json:"status" dynamodbav:"listing_status"`
	BuyerID     *string    `json:"buyer_id,omitempty" dynamodbav:"buyer_id,omitempty"`
	SoldAt      *time.Time `json:"sold_at,omitempty" dynamodbav:"sold_at"`
	Enable      bool       `json:"enable" dynamodbav:"enable"`
	CreatedAt   time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type CreateListingRequest struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description" validate:"max=2000"`
	Price       int64  `json:"price" validate:"required,gt=0"`
	Category    string `json:"category" validate:"required"`
}

type UpdateListingRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Price       *int64  `json:"price" validate:"omitempty,gt=0"`
	Category    *string `json:"category"`
}

// SetListingStatusRequest moves a listing between active/reserved/sold.
// ConversationID identifies the buyer when reserving or selling.
type SetListingStatusRequest struct {
	Status         string `json:"status" validate:"required,oneof=active reserved sold"`
	ConversationID string `json:"conversation_id"`
}

// ListingQuery holds search filters. Empty fields are not applied.
type ListingQuery struct {
	Keyword  string
	Category string
	Status   string
	SellerID string
	Limit    int32
	Cursor   string
}
