package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/solivar-dev/auth-sessions/internal/config"
	"github.com/solivar-dev/auth-sessions/internal/domain"
	"github.com/solivar-dev/auth-sessions/internal/repository"
	"github.com/solivar-dev/auth-sessions/pkg/email"
	"github.com/solivar-dev/auth-sessions/pkg/hash"
	"github.com/solivar-dev/auth-sessions/pkg/jwt"
)

var (
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email address is not verified")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService drives every credential-issuing flow: signup, login, logout,
// magic link, email verification, password reset, and refresh. The guarded
// request path lives in the middleware; everything here runs before a
// session exists or mutates one.
type AuthService struct {
	users    repository.UserRepository
	sessions *SessionService
	tokens   *TokenService
	codec    *jwt.Codec
	sender   email.Sender
	baseURL  string
}

func NewAuthService(
	users repository.UserRepository,
	sessions *SessionService,
	tokens *TokenService,
	codec *jwt.Codec,
	sender email.Sender,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		codec:    codec,
		sender:   sender,
		baseURL:  strings.TrimRight(cfg.Server.BaseURL, "/"),
	}
}

type SignupRequest struct {
	Name  string `json:"name" validate:"required,min=2"`
	Email string `json:"email" validate:"required,email"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// LoginResult carries everything a successful authentication hands back:
// the short-lived access token and the opaque session token it references.
type LoginResult struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	SessionToken string       `json:"session_token"`
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates an unverified, passwordless account and issues a
// verification token. The link is delivered fire-and-forget.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*domain.User, error) {
	now := time.Now()
	user := &domain.User{
		ID:        uuid.New(),
		Email:     NormalizeEmail(req.Email),
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	raw, err := s.tokens.Issue(ctx, user.Email, domain.TokenKindVerification)
	if err != nil {
		// The account exists; the user can request a fresh token via
		// resend-verification.
		log.Printf("Failed to issue verification token for %s: %v", user.Email, err)
		return user, nil
	}

	s.deliver(ctx, domain.TokenKindVerification, user, raw)

	return user, nil
}

// Login authenticates with email and password and opens a new session.
// Unknown email, passwordless account, and wrong password all collapse to
// the same credential error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest, meta ClientMeta) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.HasPassword() {
		return nil, ErrInvalidCredentials
	}

	valid, err := hash.Verify(req.Password, *user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	if !user.Verified() {
		return nil, ErrEmailNotVerified
	}

	return s.openSession(ctx, user, meta)
}

// Logout revokes the session identified by its raw token.
func (s *AuthService) Logout(ctx context.Context, sessionToken string) error {
	return s.sessions.Revoke(ctx, sessionToken)
}

// RequestMagicLink issues a magic-link token for an existing account.
// Repeat requests inside the cooldown window fail with ErrCooldownActive.
func (s *AuthService) RequestMagicLink(ctx context.Context, rawEmail string) error {
	addr := NormalizeEmail(rawEmail)

	user, err := s.users.GetByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	raw, err := s.tokens.Issue(ctx, addr, domain.TokenKindMagicLink)
	if err != nil {
		return err
	}

	s.deliver(ctx, domain.TokenKindMagicLink, user, raw)

	return nil
}

// MagicCallback consumes a magic-link token and opens a session for the
// resolved account.
func (s *AuthService) MagicCallback(ctx context.Context, rawToken string, meta ClientMeta) (*LoginResult, error) {
	addr, err := s.tokens.Consume(ctx, domain.TokenKindMagicLink, rawToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return s.openSession(ctx, user, meta)
}

// ResendVerification re-issues a verification token, superseding any prior
// one. It reveals nothing about whether the email is registered: unknown
// and already-verified addresses return success without side effects.
func (s *AuthService) ResendVerification(ctx context.Context, rawEmail string) error {
	addr := NormalizeEmail(rawEmail)

	user, err := s.users.GetByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	if user.Verified() {
		return nil
	}

	raw, err := s.tokens.Issue(ctx, addr, domain.TokenKindVerification)
	if err != nil {
		return err
	}

	s.deliver(ctx, domain.TokenKindVerification, user, raw)

	return nil
}

// VerifyEmail consumes a verification token and marks the owning user
// verified.
func (s *AuthService) VerifyEmail(ctx context.Context, rawToken string) error {
	addr, err := s.tokens.Consume(ctx, domain.TokenKindVerification, rawToken)
	if err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if user.Verified() {
		return nil
	}

	return s.users.MarkEmailVerified(ctx, user.ID, time.Now())
}

// ForgetPassword issues a password-reset token for an existing account.
func (s *AuthService) ForgetPassword(ctx context.Context, rawEmail string) error {
	addr := NormalizeEmail(rawEmail)

	user, err := s.users.GetByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	raw, err := s.tokens.Issue(ctx, addr, domain.TokenKindPasswordReset)
	if err != nil {
		return err
	}

	s.deliver(ctx, domain.TokenKindPasswordReset, user, raw)

	return nil
}

// ResetPassword consumes a reset token, updates the password, and revokes
// every session of the user: a credential change invalidates all existing
// trust. Token validity is confirmed before any mutation.
func (s *AuthService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	addr, err := s.tokens.Consume(ctx, domain.TokenKindPasswordReset, req.Token)
	if err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	passwordHash, err := hash.Password(req.NewPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return err
	}

	if _, err := s.sessions.RevokeAll(ctx, user.ID, nil); err != nil {
		return fmt.Errorf("failed to revoke sessions after password reset: %w", err)
	}

	return nil
}

// Refresh rotates the opaque session token and mints a fresh access token
// bound to the new value. The old session token, and every access token
// referencing it, is dead the moment rotation commits.
func (s *AuthService) Refresh(ctx context.Context, sessionToken string) (*LoginResult, error) {
	session, err := s.sessions.Resolve(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	newToken, err := s.sessions.Rotate(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.codec.Issue(user.ID, newToken)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:         user,
		AccessToken:  accessToken,
		SessionToken: newToken,
	}, nil
}

func (s *AuthService) openSession(ctx context.Context, user *domain.User, meta ClientMeta) (*LoginResult, error) {
	_, sessionToken, err := s.sessions.Create(ctx, user.ID, meta)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.codec.Issue(user.ID, sessionToken)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:         user,
		AccessToken:  accessToken,
		SessionToken: sessionToken,
	}, nil
}

// deliver sends the link for a freshly issued token. Delivery failures are
// logged and swallowed: the notification sink is fire-and-forget.
func (s *AuthService) deliver(ctx context.Context, kind domain.TokenKind, user *domain.User, rawToken string) {
	var err error
	switch kind {
	case domain.TokenKindVerification:
		link := fmt.Sprintf("%s/auth/verify-email?token=%s", s.baseURL, rawToken)
		err = s.sender.SendVerificationLink(ctx, user.Email, user.Name, link)
	case domain.TokenKindPasswordReset:
		link := fmt.Sprintf("%s/auth/reset-password?token=%s", s.baseURL, rawToken)
		err = s.sender.SendPasswordResetLink(ctx, user.Email, user.Name, link)
	case domain.TokenKindMagicLink:
		link := fmt.Sprintf("%s/auth/magic/callback?token=%s", s.baseURL, rawToken)
		err = s.sender.SendMagicLink(ctx, user.Email, user.Name, link)
	}
	if err != nil {
		log.Printf("Failed to deliver %s link to %s: %v", kind, user.Email, err)
	}
}
