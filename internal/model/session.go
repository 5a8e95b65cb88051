package model

import "time"

// SessionData is the payload stored in Redis for an active session token.
type SessionData struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
