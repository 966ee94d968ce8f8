package repository

import (
	"context"

	"github.com/solivar-dev/auth-sessions/internal/domain"
)

// TokenRepository persists single-use tokens. The two operations mirror the
// two lifecycle transitions: supersede-and-issue, and destroy-on-use.
type TokenRepository interface {
	// Replace deletes any existing tokens of the same kind for the same
	// email and inserts the new one, all within one transaction, so a
	// concurrent issuer cannot resurrect a deleted row.
	Replace(ctx context.Context, token *domain.SingleUseToken) error
	// Consume deletes the matching row and returns it. ErrNotFound when no
	// row matches; an expired row is still removed and returned so the
	// caller can distinguish expiry from absence. Consumption is atomic:
	// two callers racing on the same value succeed at most once.
	Consume(ctx context.Context, kind domain.TokenKind, token string) (*domain.SingleUseToken, error)
}
