package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-market-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AuthEnvelope wraps login/register/refresh responses.
type AuthEnvelope struct {
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	SessionID    string    `json:"session_id,omitempty"`
	User         *SafeUser `json:"user,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// SessionEnvelope wraps current-session responses.
type SessionEnvelope struct {
	SessionID string    `json:"session_id"`
	User      *SafeUser `json:"user,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// PagedEnvelope wraps cursor-paginated list responses.
type PagedEnvelope struct {
	Data       interface{} `json:"data"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// SafeUser is the user's own view of their account: no password hash,
// includes notification settings.
type SafeUser struct {
	UserID                 string    `json:"id"`
	Username               string    `json:"username"`
	Email                  string    `json:"email"`
	Role                   string    `json:"role"`
	Nickname               string    `json:"nickname"`
	District               string    `json:"district"`
	LineBound              bool      `json:"line_bound"`
	NotificationPreference int       `json:"notification_preference"`
	CreatedAt              time.Time `json:"created"`
}

// PublicUser is what other users see: display identity only.
type PublicUser struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	District string `json:"district"`
}

func toSafeUser(u *domain.User) *SafeUser {
	if u == nil {
		return nil
	}
	return &SafeUser{
		UserID:                 u.UserID,
		Username:               u.Username,
		Email:                  u.Email,
		Role:                   u.Role,
		Nickname:               u.Nickname,
		District:               u.District,
		LineBound:              u.LineUserID != nil && *u.LineUserID != "",
		NotificationPreference: u.NotificationPreference,
		CreatedAt:              u.CreatedAt,
	}
}

func toPublicUser(u *domain.User) *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		UserID:   u.UserID,
		Username: u.Username,
		Nickname: u.Nickname,
		District: u.District,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps domain sentinel errors to HTTP status codes.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
