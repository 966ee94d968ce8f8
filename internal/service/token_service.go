package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/solivar-dev/auth-sessions/internal/config"
	"github.com/solivar-dev/auth-sessions/internal/domain"
	"github.com/solivar-dev/auth-sessions/internal/repository"
	"github.com/solivar-dev/auth-sessions/pkg/cooldown"
	"github.com/solivar-dev/auth-sessions/pkg/token"
)

var (
	ErrTokenNotFound  = errors.New("token not found")
	ErrTokenExpired   = errors.New("token expired")
	ErrCooldownActive = errors.New("too many requests, try again later")
)

// TokenService runs the shared lifecycle of all single-use tokens:
// verification, password reset, and magic link. Issuing supersedes any
// prior live token of the same kind for the email; consuming destroys the
// row before the caller sees it, so no token is ever usable twice.
//
// Issue policy per kind: magic links sit behind a cooldown window and are
// rejected while it is held; verification and reset tokens always
// supersede.
type TokenService struct {
	tokens repository.TokenRepository
	guard  *cooldown.Guard
	cfg    config.AuthConfig
}

func NewTokenService(tokens repository.TokenRepository, guard *cooldown.Guard, cfg config.AuthConfig) *TokenService {
	return &TokenService{
		tokens: tokens,
		guard:  guard,
		cfg:    cfg,
	}
}

// TTL returns the lifetime of tokens of the given kind.
func (s *TokenService) TTL(kind domain.TokenKind) time.Duration {
	switch kind {
	case domain.TokenKindVerification:
		return s.cfg.VerificationTTL
	case domain.TokenKindPasswordReset:
		return s.cfg.PasswordResetTTL
	case domain.TokenKindMagicLink:
		return s.cfg.MagicLinkTTL
	default:
		return s.cfg.VerificationTTL
	}
}

// Issue creates a new token of the given kind for the email, invalidating
// any prior live token of that kind, and returns the opaque value for
// out-of-band delivery.
func (s *TokenService) Issue(ctx context.Context, email string, kind domain.TokenKind) (string, error) {
	if kind == domain.TokenKindMagicLink {
		if err := s.guard.Take(ctx, string(kind), email); err != nil {
			if errors.Is(err, cooldown.ErrActive) {
				return "", ErrCooldownActive
			}
			return "", err
		}
	}

	raw, err := token.Generate()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now()
	record := &domain.SingleUseToken{
		Kind:      kind,
		Email:     email,
		Token:     raw,
		ExpiresAt: now.Add(s.TTL(kind)),
		CreatedAt: now,
	}

	if err := s.tokens.Replace(ctx, record); err != nil {
		if kind == domain.TokenKindMagicLink {
			// Give the slot back so the failed request does not block the
			// retry for a whole window.
			if relErr := s.guard.Release(ctx, string(kind), email); relErr != nil {
				log.Printf("Failed to release cooldown for %s: %v", email, relErr)
			}
		}
		return "", err
	}

	return raw, nil
}

// Consume destroys the token and returns the email it belongs to. The row
// is gone even when the token turns out to be expired, so a retry with the
// same value always fails.
func (s *TokenService) Consume(ctx context.Context, kind domain.TokenKind, raw string) (string, error) {
	record, err := s.tokens.Consume(ctx, kind, raw)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrTokenNotFound
		}
		return "", err
	}

	if record.Expired(time.Now()) {
		return "", ErrTokenExpired
	}

	return record.Email, nil
}
