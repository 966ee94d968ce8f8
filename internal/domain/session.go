package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is a live device binding. Only the sha256 hash of the opaque
// session token is stored; the raw value is handed to the client exactly
// once, at creation or rotation. Deleting the row is the sole revocation
// mechanism.
type Session struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	TokenHash string    `json:"-" db:"token_hash"`
	UserAgent string    `json:"user_agent,omitempty" db:"user_agent"`
	IPAddress string    `json:"ip_address,omitempty" db:"ip_address"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Expired reports whether the session has lapsed at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
