// Package domain contains the core entities and rules for keyportal.
package domain

import (
	"math"
	"time"
)

const (
	// APIKeyBytes is the amount of random entropy behind an issued API key (64 hex chars).
	APIKeyBytes = 32
	// SessionTokenBytes is the amount of random entropy behind an admin session token (48 hex chars).
	SessionTokenBytes = 24

	// DefaultCredentialTTL is the validity window assigned to a credential at issuance.
	DefaultCredentialTTL = 30 * 24 * time.Hour

	// ActiveWindowDays bounds the day count used by CredentialStatus.
	ActiveWindowDays = 30
)

// Status is the derived state of a credential. It is never persisted.
type Status string

const (
	StatusActive    Status = "active"
	StatusNonActive Status = "non-active"
)

// Credential is one issued API key, stored in the API table.
type Credential struct {
	KeyID     int64     `json:"key_id"`
	APIKey    string    `json:"ApiKey"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"OutOfDate"`
}

// User is the owner of exactly one Credential.
type User struct {
	UserID    int64  `json:"user_id"`
	FirstName string `json:"FirstName"`
	LastName  string `json:"LastName"`
	Email     string `json:"Email"`
	KeyID     int64  `json:"key_id"`
}

// UserSubmission is the payload a user sends to claim a generated key.
type UserSubmission struct {
	FirstName string `json:"FirstName"`
	LastName  string `json:"LastName"`
	Email     string `json:"Email"`
	APIKey    string `json:"apiKey"`
}

// UserCredential is a joined User/Credential row as shown to administrators.
type UserCredential struct {
	UserID    int64     `json:"user_id"`
	FirstName string    `json:"FirstName"`
	LastName  string    `json:"LastName"`
	Email     string    `json:"Email"`
	APIKey    string    `json:"ApiKey"`
	ExpiresAt time.Time `json:"OutOfDate"`
	KeyID     int64     `json:"key_id"`
	Status    Status    `json:"status"`
}

// CredentialStatus counts whole days elapsed since expiresAt (floored, so an
// expiry in the future gives a negative count) and reports active while that
// count is at most ActiveWindowDays.
func CredentialStatus(expiresAt, now time.Time) Status {
	days := math.Floor(now.Sub(expiresAt).Hours() / 24)
	if days <= ActiveWindowDays {
		return StatusActive
	}
	return StatusNonActive
}
