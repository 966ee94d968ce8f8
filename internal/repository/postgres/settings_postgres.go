package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/solivar-dev/auth-sessions/internal/domain"
	"github.com/solivar-dev/auth-sessions/internal/repository"
)

type settingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository creates a new PostgreSQL settings repository
func NewSettingsRepository(db *sqlx.DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context, userID uuid.UUID) (*domain.Settings, error) {
	query := `
		SELECT user_id, theme, notifications_enabled, updated_at
		FROM user_settings
		WHERE user_id = $1`

	var settings domain.Settings
	err := r.db.GetContext(ctx, &settings, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	return &settings, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, settings *domain.Settings) error {
	query := `
		INSERT INTO user_settings (user_id, theme, notifications_enabled, updated_at)
		VALUES (:user_id, :theme, :notifications_enabled, :updated_at)
		ON CONFLICT (user_id) DO UPDATE SET
			theme = EXCLUDED.theme,
			notifications_enabled = EXCLUDED.notifications_enabled,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.NamedExecContext(ctx, query, settings)
	if err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}

	return nil
}
