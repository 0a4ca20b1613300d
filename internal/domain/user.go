package domain

import "time"

// Notification preference values. The setter rejects anything outside 1-4;
// the notification core never reinterprets out-of-range values.
const (
	NotifyInstant       = 1
	NotifyDigest        = 2
	NotifyImportantOnly = 3
	NotifyDisabled      = 4
)

type User struct {
	UserID       string `json:"id" dynamodbav:"user_id"`
	Username     string `json:"username" dynamodbav:"username"`
	Email        string `json:"email" dynamodbav:"email"`
	PasswordHash string `json:"-" dynamodbav:"password_hash"`
	Role         string `json:"role" dynamodbav:"role"`
	Nickname     string `json:"nickname" dynamodbav:"nickname"`
	District     string `json:"district" dynamodbav:"district"`
	// LineUserID is the bound LINE push identity. Absent (nil) means the user
	// never linked their LINE account and receives no push notifications.
	LineUserID             *string    `json:"line_user_id,omitempty" dynamodbav:"line_user_id,omitempty"`
	NotificationPreference int        `json:"notification_preference" dynamodbav:"notification_preference"`
	Enable                 bool       `json:"enable" dynamodbav:"enable"`
	DeletedAt              *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at"`
	CreatedAt              time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt              time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Email    string `json:"email" validate:"required,email"`
	Nickname string `json:"nickname" validate:"max=30"`
	District string `json:"district" validate:"max=50"`
}

type UpdateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Nickname *string `json:"nickname"`
	District *string `json:"district"`
	Role     *string `json:"role"`
}
