package domain

import "time"

// TokenKind discriminates the three single-use token flows that share one
// table and one lifecycle.
type TokenKind string

const (
	TokenKindVerification  TokenKind = "verification"
	TokenKindPasswordReset TokenKind = "password_reset"
	TokenKindMagicLink     TokenKind = "magic_link"
)

// SingleUseToken is an opaque one-time credential owned by an email address
// rather than a user id, since the user may not exist yet for some flows.
// At most one live token of a given kind exists per email: issuing a new
// one supersedes prior rows, and consumption deletes the row.
type SingleUseToken struct {
	Kind      TokenKind `db:"kind"`
	Email     string    `db:"email"`
	Token     string    `db:"token"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

// Expired reports whether the token has lapsed at the given instant.
func (t *SingleUseToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
