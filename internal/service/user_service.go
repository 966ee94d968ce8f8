package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/solivar-dev/auth-sessions/internal/domain"
	"github.com/solivar-dev/auth-sessions/internal/repository"
)

// UserService covers the guarded account surface: profile, settings, and
// device management.
type UserService struct {
	users    repository.UserRepository
	settings repository.SettingsRepository
	sessions *SessionService
}

func NewUserService(
	users repository.UserRepository,
	settings repository.SettingsRepository,
	sessions *SessionService,
) *UserService {
	return &UserService{
		users:    users,
		settings: settings,
		sessions: sessions,
	}
}

type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required,min=2"`
}

type UpdateSettingsRequest struct {
	Theme                *domain.Theme `json:"theme" validate:"omitempty,oneof=light dark system"`
	NotificationsEnabled *bool         `json:"notifications_enabled"`
}

func (s *UserService) Profile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*domain.User, error) {
	if err := s.users.UpdateName(ctx, userID, req.Name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.Profile(ctx, userID)
}

// DeleteAccount removes the user and every session. Sessions go first so
// no live trust remains even if the user delete fails halfway.
func (s *UserService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.sessions.RevokeAll(ctx, userID, nil); err != nil {
		return err
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	return nil
}

func (s *UserService) Sessions(ctx context.Context, userID uuid.UUID) ([]*domain.Session, error) {
	return s.sessions.List(ctx, userID)
}

// RevokeSession removes one of the user's own sessions. A session that
// does not exist and a session owned by someone else are indistinguishable
// to the caller.
func (s *UserService) RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	if session.UserID != userID {
		return ErrSessionNotFound
	}

	return s.sessions.RevokeByID(ctx, sessionID)
}

// RevokeOtherSessions logs the user out everywhere except the current
// device. Returns the number of sessions revoked.
func (s *UserService) RevokeOtherSessions(ctx context.Context, userID, currentSessionID uuid.UUID) (int64, error) {
	return s.sessions.RevokeAll(ctx, userID, &currentSessionID)
}

func (s *UserService) Settings(ctx context.Context, userID uuid.UUID) (*domain.Settings, error) {
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.DefaultSettings(userID), nil
		}
		return nil, err
	}
	return settings, nil
}

// UpdateSettings applies the provided fields over the stored (or default)
// settings and persists the result.
func (s *UserService) UpdateSettings(ctx context.Context, userID uuid.UUID, req UpdateSettingsRequest) (*domain.Settings, error) {
	settings, err := s.Settings(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Theme != nil {
		settings.Theme = *req.Theme
	}
	if req.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *req.NotificationsEnabled
	}
	settings.UpdatedAt = time.Now()

	if err := s.settings.Upsert(ctx, settings); err != nil {
		return nil, err
	}

	return settings, nil
}
