package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/solivar-dev/auth-sessions/internal/domain"
)

type SettingsRepository interface {
	// Get returns the stored settings, or ErrNotFound when the user never
	// saved any.
	Get(ctx context.Context, userID uuid.UUID) (*domain.Settings, error)
	// Upsert creates or updates the settings row.
	Upsert(ctx context.Context, settings *domain.Settings) error
}
