package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/solivar-dev/auth-sessions/internal/domain"
	"github.com/solivar-dev/auth-sessions/internal/repository"
)

type tokenRepository struct {
	db *sqlx.DB
}

// NewTokenRepository creates a new PostgreSQL single-use token repository
func NewTokenRepository(db *sqlx.DB) repository.TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Replace(ctx context.Context, token *domain.SingleUseToken) error {
	// Delete-then-insert runs in one transaction so a concurrent issuer
	// cannot interleave and resurrect a superseded row.
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	deleteQuery := `DELETE FROM single_use_tokens WHERE kind = $1 AND email = $2`
	if _, err := tx.ExecContext(ctx, deleteQuery, token.Kind, token.Email); err != nil {
		return fmt.Errorf("failed to delete prior tokens: %w", err)
	}

	insertQuery := `
		INSERT INTO single_use_tokens (kind, email, token, expires_at, created_at)
		VALUES (:kind, :email, :token, :expires_at, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertQuery, token); err != nil {
		return fmt.Errorf("failed to insert token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit token replacement: %w", err)
	}

	return nil
}

func (r *tokenRepository) Consume(ctx context.Context, kind domain.TokenKind, token string) (*domain.SingleUseToken, error) {
	// Atomic delete-returning: racing consumers succeed at most once, and
	// an expired row is swept on lookup as a side effect.
	query := `
		DELETE FROM single_use_tokens
		WHERE kind = $1 AND token = $2
		RETURNING kind, email, token, expires_at, created_at`

	var record domain.SingleUseToken
	err := r.db.GetContext(ctx, &record, query, kind, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to consume token: %w", err)
	}

	return &record, nil
}
