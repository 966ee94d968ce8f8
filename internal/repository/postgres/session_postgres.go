package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/solivar-dev/auth-sessions/internal/domain"
	"github.com/solivar-dev/auth-sessions/internal/repository"
)

type sessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *sqlx.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (
			id, user_id, token_hash, user_agent,
			ip_address, expires_at, created_at
		) VALUES (
			:id, :user_id, :token_hash, :user_agent,
			:ip_address, :expires_at, :created_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, session)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	query := `
		SELECT id, user_id, token_hash, user_agent,
			   ip_address, expires_at, created_at
		FROM sessions
		WHERE id = $1`

	var session domain.Session
	err := r.db.GetContext(ctx, &session, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	return &session, nil
}

func (r *sessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	query := `
		SELECT id, user_id, token_hash, user_agent,
			   ip_address, expires_at, created_at
		FROM sessions
		WHERE token_hash = $1`

	var session domain.Session
	err := r.db.GetContext(ctx, &session, query, tokenHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session by token: %w", err)
	}

	return &session, nil
}

func (r *sessionRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Session, error) {
	query := `
		SELECT id, user_id, token_hash, user_agent,
			   ip_address, expires_at, created_at
		FROM sessions
		WHERE user_id = $1 AND expires_at > $2
		ORDER BY created_at DESC`

	var sessions []*domain.Session
	err := r.db.SelectContext(ctx, &sessions, query, userID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions by user id: %w", err)
	}

	return sessions, nil
}

func (r *sessionRepository) Renew(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	query := `UPDATE sessions SET expires_at = $1 WHERE token_hash = $2`

	result, err := r.db.ExecContext(ctx, query, expiresAt, tokenHash)
	if err != nil {
		return fmt.Errorf("failed to renew session: %w", err)
	}

	return requireRow(result)
}

func (r *sessionRepository) Rotate(ctx context.Context, oldHash, newHash string, expiresAt time.Time) error {
	// Single conditional UPDATE keyed on the old hash: the old token stops
	// resolving the instant this commits, closing the replay window.
	query := `UPDATE sessions SET token_hash = $1, expires_at = $2 WHERE token_hash = $3`

	result, err := r.db.ExecContext(ctx, query, newHash, expiresAt, oldHash)
	if err != nil {
		return fmt.Errorf("failed to rotate session: %w", err)
	}

	return requireRow(result)
}

func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM sessions WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return requireRow(result)
}

func (r *sessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	query := `DELETE FROM sessions WHERE token_hash = $1`

	result, err := r.db.ExecContext(ctx, query, tokenHash)
	if err != nil {
		return fmt.Errorf("failed to delete session by token: %w", err)
	}

	return requireRow(result)
}

func (r *sessionRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID, exceptID *uuid.UUID) (int64, error) {
	var (
		result sql.Result
		err    error
	)

	if exceptID != nil {
		query := `DELETE FROM sessions WHERE user_id = $1 AND id <> $2`
		result, err = r.db.ExecContext(ctx, query, userID, *exceptID)
	} else {
		query := `DELETE FROM sessions WHERE user_id = $1`
		result, err = r.db.ExecContext(ctx, query, userID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to delete sessions by user id: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}
