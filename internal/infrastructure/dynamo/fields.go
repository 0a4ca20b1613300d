package dynamo

// DynamoDB attribute names used in update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldEnable           = "enable"
	fieldDeletedAt        = "deleted_at"
	fieldRefreshToken     = "refresh_token"
	fieldRefreshExpiresAt = "refresh_expires_at"
	fieldLineUserID       = "line_user_id"
	fieldListingStatus    = "listing_status"
	fieldBuyerID          = "buyer_id"
	fieldSoldAt           = "sold_at"
	fieldLastMessageAt    = "last_message_at"
)
