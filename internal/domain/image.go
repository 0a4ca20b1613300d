package domain

import "time"

// Image is a listing photo stored in S3; Object is the S3 key.
type Image struct {
	ImageID          string    `json:"id" dynamodbav:"image_id"`
	ListingID        string    `json:"listing_id" dynamodbav:"listing_id"`
	Object           string    `json:"-" dynamodbav:"object"`
	Size             int64     `json:"size" dynamodbav:"size"`
	Type             string    `json:"type" dynamodbav:"type"`
	Hash             string    `json:"hash" dynamodbav:"hash"`
	UploadedByUserID string    `json:"uploaded_by_user_id" dynamodbav:"uploaded_by_user_id"`
	Enable           bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt        time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time `json:"updated" dynamodbav:"updated_at"`
}
