package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/solivar-dev/auth-sessions/internal/domain"
)

// SessionRepository persists live sessions. Every mutation is a single
// atomic statement; correctness under concurrent revocation and creation
// for the same user relies on that, not on caller-side locking.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	// ListByUserID returns all unexpired sessions for a user, newest first.
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Session, error)
	// Renew slides the expiry of the session identified by token hash.
	Renew(ctx context.Context, tokenHash string, expiresAt time.Time) error
	// Rotate atomically swaps the token hash and slides the expiry. The old
	// hash stops resolving the moment the statement commits.
	Rotate(ctx context.Context, oldHash, newHash string, expiresAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	// DeleteByUserID removes every session of a user, optionally sparing
	// one. Returns the number of sessions removed.
	DeleteByUserID(ctx context.Context, userID uuid.UUID, exceptID *uuid.UUID) (int64, error)
}
