package domain

import (
	"time"
)

// Admin is an administrator account. PasswordHash is a bcrypt hash, never plaintext.
type Admin struct {
	AdminID      int64  `json:"admin_id"`
	Email        string `json:"Email"`
	PasswordHash string `json:"-"`
}

// Session binds an opaque bearer token to an authenticated admin.
type Session struct {
	Token     string    `json:"-"`
	AdminID   int64     `json:"admin_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session has outlived ttl. A ttl of zero or less never expires.
func (s Session) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return !now.Before(s.CreatedAt.Add(ttl))
}
