package domain

import "time"

type Review struct {
	ReviewID   string    `json:"id" dynamodbav:"review_id"`
	ListingID  string    `json:"listing_id" dynamodbav:"listing_id"`
	ReviewerID string    `json:"reviewer_id" dynamodbav:"reviewer_id"`
	RevieweeID string    `json:"reviewee_id" dynamodbav:"reviewee_id"`
	Rating     int       `json:"rating" dynamodbav:"rating"`
	Comment    string    `json:"comment" dynamodbav:"comment"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
}

type CreateReviewRequest struct {
	ListingID string `json:"listing_id" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"max=500"`
}
