package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/solivar-dev/auth-sessions/internal/domain"
	"github.com/solivar-dev/auth-sessions/internal/repository"
	"github.com/solivar-dev/auth-sessions/pkg/token"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// ClientMeta is the optional device context recorded with a session.
type ClientMeta struct {
	UserAgent string
	IPAddress string
}

// SessionService owns the session lifecycle: creation, sliding renewal,
// rotation, and revocation. It never caches sessions; every resolution is
// a store round-trip, which is what makes revocation instant.
type SessionService struct {
	sessions repository.SessionRepository
	ttl      time.Duration
}

func NewSessionService(sessions repository.SessionRepository, ttl time.Duration) *SessionService {
	return &SessionService{
		sessions: sessions,
		ttl:      ttl,
	}
}

// TTL returns the session lifetime window.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Create mints a new session for the user and returns it together with the
// raw opaque token. Existing sessions for the same user are untouched:
// concurrent devices are allowed.
func (s *SessionService) Create(ctx context.Context, userID uuid.UUID, meta ClientMeta) (*domain.Session, string, error) {
	raw, err := token.Generate()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate session token: %w", err)
	}

	now := time.Now()
	session := &domain.Session{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: token.Hash(raw),
		UserAgent: meta.UserAgent,
		IPAddress: meta.IPAddress,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, "", err
	}

	return session, raw, nil
}

// Resolve maps a raw session token to its live session. A lapsed session is
// deleted on sight and reported as expired.
func (s *SessionService) Resolve(ctx context.Context, rawToken string) (*domain.Session, error) {
	session, err := s.sessions.GetByTokenHash(ctx, token.Hash(rawToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if session.Expired(time.Now()) {
		if err := s.sessions.Delete(ctx, session.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			log.Printf("Failed to delete expired session %s: %v", session.ID, err)
		}
		return nil, ErrSessionExpired
	}

	return session, nil
}

// Renew slides the session expiry forward to now + TTL.
func (s *SessionService) Renew(ctx context.Context, rawToken string) error {
	err := s.sessions.Renew(ctx, token.Hash(rawToken), time.Now().Add(s.ttl))
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSessionNotFound
	}
	return err
}

// Rotate atomically replaces the opaque token with a fresh value and slides
// the expiry. The old token, and any access token referencing it, stops
// resolving immediately. Returns the new raw token.
func (s *SessionService) Rotate(ctx context.Context, rawToken string) (string, error) {
	newRaw, err := token.Generate()
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	err = s.sessions.Rotate(ctx, token.Hash(rawToken), token.Hash(newRaw), time.Now().Add(s.ttl))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrSessionNotFound
		}
		return "", err
	}

	return newRaw, nil
}

// Revoke deletes the session identified by its raw token.
func (s *SessionService) Revoke(ctx context.Context, rawToken string) error {
	err := s.sessions.DeleteByTokenHash(ctx, token.Hash(rawToken))
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSessionNotFound
	}
	return err
}

// RevokeByID deletes one session by id.
func (s *SessionService) RevokeByID(ctx context.Context, id uuid.UUID) error {
	err := s.sessions.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSessionNotFound
	}
	return err
}

// RevokeAll deletes every session of a user, optionally sparing one.
// Returns the number of sessions revoked.
func (s *SessionService) RevokeAll(ctx context.Context, userID uuid.UUID, exceptID *uuid.UUID) (int64, error) {
	return s.sessions.DeleteByUserID(ctx, userID, exceptID)
}

// List returns the user's unexpired sessions, newest first.
func (s *SessionService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Session, error) {
	return s.sessions.ListByUserID(ctx, userID)
}

// Get returns one session by id.
func (s *SessionService) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}
