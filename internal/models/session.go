package models

import "time"

// Session is the server-side state behind a session cookie.
type Session struct {
	Token        string    `json:"-"`
	UserID       int64     `json:"user_id"`
	Username     string    `json:"username"`
	ExpiresAt    time.Time `json:"expires_at"`
	LastActivity time.Time `json:"last_activity"`

	// Renewed is set when resolving the session extended its expiry.
	Renewed bool `json:"-"`
}
