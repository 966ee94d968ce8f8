// Package memory provides mutex-guarded in-memory implementations of the
// store contracts. They back service and handler tests so the suite runs
// without Postgres; the semantics mirror the SQL implementations, including
// atomicity of each mutation under the store mutex.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/solivar-dev/auth-sessions/internal/domain"
	"github.com/solivar-dev/auth-sessions/internal/repository"
)

type UserRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[uuid.UUID]domain.User)}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) UpdateName(_ context.Context, id uuid.UUID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Name = name
	user.UpdatedAt = time.Now()
	r.users[id] = user
	return nil
}

func (r *UserRepository) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = &passwordHash
	user.UpdatedAt = time.Now()
	r.users[id] = user
	return nil
}

func (r *UserRepository) MarkEmailVerified(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.EmailVerifiedAt = &at
	user.UpdatedAt = time.Now()
	r.users[id] = user
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type SessionRepository struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]domain.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[uuid.UUID]domain.Session)}
}

func (r *SessionRepository) Create(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.ID] = *session
	return nil
}

func (r *SessionRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &session, nil
}

func (r *SessionRepository) GetByTokenHash(_ context.Context, tokenHash string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		if s.TokenHash == tokenHash {
			session := s
			return &session, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *SessionRepository) ListByUserID(_ context.Context, userID uuid.UUID) ([]*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	var sessions []*domain.Session
	for _, s := range r.sessions {
		if s.UserID == userID && s.ExpiresAt.After(now) {
			session := s
			sessions = append(sessions, &session)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

func (r *SessionRepository) Renew(_ context.Context, tokenHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sessions {
		if s.TokenHash == tokenHash {
			s.ExpiresAt = expiresAt
			r.sessions[id] = s
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *SessionRepository) Rotate(_ context.Context, oldHash, newHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sessions {
		if s.TokenHash == oldHash {
			s.TokenHash = newHash
			s.ExpiresAt = expiresAt
			r.sessions[id] = s
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *SessionRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *SessionRepository) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sessions {
		if s.TokenHash == tokenHash {
			delete(r.sessions, id)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *SessionRepository) DeleteByUserID(_ context.Context, userID uuid.UUID, exceptID *uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, s := range r.sessions {
		if s.UserID != userID {
			continue
		}
		if exceptID != nil && id == *exceptID {
			continue
		}
		delete(r.sessions, id)
		deleted++
	}
	return deleted, nil
}

type tokenKey struct {
	kind  domain.TokenKind
	token string
}

type TokenRepository struct {
	mu     sync.Mutex
	tokens map[tokenKey]domain.SingleUseToken
}

func NewTokenRepository() *TokenRepository {
	return &TokenRepository{tokens: make(map[tokenKey]domain.SingleUseToken)}
}

func (r *TokenRepository) Replace(_ context.Context, token *domain.SingleUseToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, t := range r.tokens {
		if t.Kind == token.Kind && t.Email == token.Email {
			delete(r.tokens, key)
		}
	}
	r.tokens[tokenKey{kind: token.Kind, token: token.Token}] = *token
	return nil
}

func (r *TokenRepository) Consume(_ context.Context, kind domain.TokenKind, token string) (*domain.SingleUseToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := tokenKey{kind: kind, token: token}
	record, ok := r.tokens[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(r.tokens, key)
	return &record, nil
}

type SettingsRepository struct {
	mu       sync.Mutex
	settings map[uuid.UUID]domain.Settings
}

func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{settings: make(map[uuid.UUID]domain.Settings)}
}

func (r *SettingsRepository) Get(_ context.Context, userID uuid.UUID) (*domain.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	settings, ok := r.settings[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &settings, nil
}

func (r *SettingsRepository) Upsert(_ context.Context, settings *domain.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.settings[settings.UserID] = *settings
	return nil
}
