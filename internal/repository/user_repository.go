package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/solivar-dev/auth-sessions/internal/domain"
)

type UserRepository interface {
	// Create inserts a new user. Returns ErrDuplicate when the email is
	// already taken.
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// GetByEmail looks a user up by normalized (lowercased) email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// UpdateName changes the display name.
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	// UpdatePassword sets the password hash.
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	// MarkEmailVerified records the verification timestamp.
	MarkEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}
