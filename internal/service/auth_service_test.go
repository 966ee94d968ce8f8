package service

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solivar-dev/auth-sessions/internal/config"
	"github.com/solivar-dev/auth-sessions/internal/repository/memory"
	"github.com/solivar-dev/auth-sessions/pkg/cooldown"
	"github.com/solivar-dev/auth-sessions/pkg/jwt"
)

// captureSender records the last delivered link per flow so tests can pull
// the raw token out of it.
type captureSender struct {
	verification string
	reset        string
	magic        string
}

func (s *captureSender) SendVerificationLink(_ context.Context, _, _, link string) error {
	s.verification = link
	return nil
}

func (s *captureSender) SendPasswordResetLink(_ context.Context, _, _, link string) error {
	s.reset = link
	return nil
}

func (s *captureSender) SendMagicLink(_ context.Context, _, _, link string) error {
	s.magic = link
	return nil
}

func linkToken(t *testing.T, link string) string {
	t.Helper()

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	tok := parsed.Query().Get("token")
	require.NotEmpty(t, tok)
	return tok
}

type authFixture struct {
	auth     *AuthService
	sessions *SessionService
	users    *memory.UserRepository
	sender   *captureSender
	codec    *jwt.Codec
	redis    *miniredis.Miniredis
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{
		Server: config.ServerConfig{BaseURL: "http://localhost:8080"},
		JWT: config.JWTConfig{
			Secret:       "test-secret",
			AccessExpiry: 15 * time.Minute,
			Issuer:       "auth-sessions-test",
		},
		Auth: testAuthConfig(),
	}

	codec, err := jwt.NewCodec(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.Issuer)
	require.NoError(t, err)

	users := memory.NewUserRepository()
	sessionService := NewSessionService(memory.NewSessionRepository(), cfg.Auth.SessionTTL)
	tokenService := NewTokenService(
		memory.NewTokenRepository(),
		cooldown.NewGuard(client, cfg.Auth.MagicLinkCooldown),
		cfg.Auth,
	)
	sender := &captureSender{}

	return &authFixture{
		auth:     NewAuthService(users, sessionService, tokenService, codec, sender, cfg),
		sessions: sessionService,
		users:    users,
		sender:   sender,
		codec:    codec,
		redis:    mr,
	}
}

// signupVerified walks a user through signup, email verification, and
// password reset so the account can log in with a password.
func (f *authFixture) signupVerified(t *testing.T, name, email, password string) {
	t.Helper()
	ctx := context.Background()

	_, err := f.auth.Signup(ctx, SignupRequest{Name: name, Email: email})
	require.NoError(t, err)

	require.NoError(t, f.auth.VerifyEmail(ctx, linkToken(t, f.sender.verification)))

	require.NoError(t, f.auth.ForgetPassword(ctx, email))
	require.NoError(t, f.auth.ResetPassword(ctx, ResetPasswordRequest{
		Token:       linkToken(t, f.sender.reset),
		NewPassword: password,
	}))
}

func TestSignup(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, err := f.auth.Signup(ctx, SignupRequest{Name: "Ada", Email: "A@X.com"})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	assert.False(t, user.Verified())
	assert.False(t, user.HasPassword())
	assert.NotEmpty(t, f.sender.verification)

	_, err = f.auth.Signup(ctx, SignupRequest{Name: "Other Ada", Email: "a@x.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginUnverified(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auth.Signup(ctx, SignupRequest{Name: "Ada", Email: "a@x.com"})
	require.NoError(t, err)

	// Give the unverified account a password directly; login must still be
	// refused until the email is verified.
	require.NoError(t, f.auth.ForgetPassword(ctx, "a@x.com"))
	require.NoError(t, f.auth.ResetPassword(ctx, ResetPasswordRequest{
		Token:       linkToken(t, f.sender.reset),
		NewPassword: "hunter2hunter2",
	}))

	_, err = f.auth.Login(ctx, LoginRequest{Email: "a@x.com", Password: "hunter2hunter2"}, ClientMeta{})
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.signupVerified(t, "Ada", "a@x.com", "hunter2hunter2")

	result, err := f.auth.Login(ctx, LoginRequest{Email: "a@x.com", Password: "hunter2hunter2"}, ClientMeta{UserAgent: "cli"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.SessionToken)

	// The access token references the session it was minted with.
	claims, err := f.codec.Verify(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.Equal(t, result.SessionToken, claims.SessionToken)

	session, err := f.sessions.Resolve(ctx, result.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, session.UserID)
}

func TestLoginBadCredentials(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.signupVerified(t, "Ada", "a@x.com", "hunter2hunter2")

	_, err := f.auth.Login(ctx, LoginRequest{Email: "a@x.com", Password: "wrong password"}, ClientMeta{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, LoginRequest{Email: "nobody@x.com", Password: "hunter2hunter2"}, ClientMeta{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginPasswordlessAccount(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auth.Signup(ctx, SignupRequest{Name: "Ada", Email: "a@x.com"})
	require.NoError(t, err)

	_, err = f.auth.Login(ctx, LoginRequest{Email: "a@x.com", Password: "anything at all"}, ClientMeta{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.signupVerified(t, "Ada", "a@x.com", "hunter2hunter2")
	result, err := f.auth.Login(ctx, LoginRequest{Email: "a@x.com", Password: "hunter2hunter2"}, ClientMeta{})
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(ctx, result.SessionToken))
	assert.ErrorIs(t, f.auth.Logout(ctx, result.SessionToken), ErrSessionNotFound)
}

func TestMagicLinkFlow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auth.Signup(ctx, SignupRequest{Name: "Ada", Email: "a@x.com"})
	require.NoError(t, err)

	require.NoError(t, f.auth.RequestMagicLink(ctx, "a@x.com"))

	result, err := f.auth.MagicCallback(ctx, linkToken(t, f.sender.magic), ClientMeta{})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", result.User.Email)

	_, err = f.sessions.Resolve(ctx, result.SessionToken)
	require.NoError(t, err)

	// Single use: replaying the link fails.
	_, err = f.auth.MagicCallback(ctx, linkToken(t, f.sender.magic), ClientMeta{})
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestMagicLinkUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	err := f.auth.RequestMagicLink(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMagicLinkCooldownBetweenRequests(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auth.Signup(ctx, SignupRequest{Name: "Bea", Email: "b@x.com"})
	require.NoError(t, err)

	require.NoError(t, f.auth.RequestMagicLink(ctx, "b@x.com"))
	assert.ErrorIs(t, f.auth.RequestMagicLink(ctx, "b@x.com"), ErrCooldownActive)

	f.redis.FastForward(61 * time.Second)
	require.NoError(t, f.auth.RequestMagicLink(ctx, "b@x.com"))
}

func TestResendVerificationIsGeneric(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	// Unknown address: no error, nothing sent.
	require.NoError(t, f.auth.ResendVerification(ctx, "nobody@x.com"))
	assert.Empty(t, f.sender.verification)

	_, err := f.auth.Signup(ctx, SignupRequest{Name: "Ada", Email: "a@x.com"})
	require.NoError(t, err)
	firstLink := f.sender.verification

	// Known unverified address: a fresh token supersedes the signup one.
	require.NoError(t, f.auth.ResendVerification(ctx, "a@x.com"))
	secondLink := f.sender.verification
	assert.NotEqual(t, firstLink, secondLink)

	err = f.auth.VerifyEmail(ctx, linkToken(t, firstLink))
	assert.ErrorIs(t, err, ErrTokenNotFound)

	require.NoError(t, f.auth.VerifyEmail(ctx, linkToken(t, secondLink)))

	// Already verified: success, no new token issued.
	f.sender.verification = ""
	require.NoError(t, f.auth.ResendVerification(ctx, "a@x.com"))
	assert.Empty(t, f.sender.verification)
}

func TestVerifyEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, err := f.auth.Signup(ctx, SignupRequest{Name: "Ada", Email: "a@x.com"})
	require.NoError(t, err)

	tok := linkToken(t, f.sender.verification)
	require.NoError(t, f.auth.VerifyEmail(ctx, tok))

	updated, err := f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, updated.Verified())

	// Consumption is destructive.
	assert.ErrorIs(t, f.auth.VerifyEmail(ctx, tok), ErrTokenNotFound)
}

func TestResetPasswordRevokesAllSessions(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.signupVerified(t, "Ada", "a@x.com", "hunter2hunter2")

	first, err := f.auth.Login(ctx, LoginRequest{Email: "a@x.com", Password: "hunter2hunter2"}, ClientMeta{})
	require.NoError(t, err)
	second, err := f.auth.Login(ctx, LoginRequest{Email: "a@x.com", Password: "hunter2hunter2"}, ClientMeta{})
	require.NoError(t, err)

	require.NoError(t, f.auth.ForgetPassword(ctx, "a@x.com"))
	require.NoError(t, f.auth.ResetPassword(ctx, ResetPasswordRequest{
		Token:       linkToken(t, f.sender.reset),
		NewPassword: "correct horse battery",
	}))

	// The credential change invalidated every existing session.
	_, err = f.sessions.Resolve(ctx, first.SessionToken)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.sessions.Resolve(ctx, second.SessionToken)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = f.auth.Login(ctx, LoginRequest{Email: "a@x.com", Password: "hunter2hunter2"}, ClientMeta{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, LoginRequest{Email: "a@x.com", Password: "correct horse battery"}, ClientMeta{})
	require.NoError(t, err)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.signupVerified(t, "Ada", "a@x.com", "hunter2hunter2")

	err := f.auth.ResetPassword(ctx, ResetPasswordRequest{
		Token:       "no-such-token",
		NewPassword: "irrelevant password",
	})
	assert.ErrorIs(t, err, ErrTokenNotFound)

	// The failed reset mutated nothing.
	_, err = f.auth.Login(ctx, LoginRequest{Email: "a@x.com", Password: "hunter2hunter2"}, ClientMeta{})
	require.NoError(t, err)
}

func TestRefreshRotatesSessionToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.signupVerified(t, "Ada", "a@x.com", "hunter2hunter2")
	login, err := f.auth.Login(ctx, LoginRequest{Email: "a@x.com", Password: "hunter2hunter2"}, ClientMeta{})
	require.NoError(t, err)

	refreshed, err := f.auth.Refresh(ctx, login.SessionToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.SessionToken, refreshed.SessionToken)
	assert.NotEmpty(t, refreshed.AccessToken)

	// The pre-rotation token is unusable for both refresh and resolution.
	_, err = f.auth.Refresh(ctx, login.SessionToken)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = f.sessions.Resolve(ctx, refreshed.SessionToken)
	require.NoError(t, err)
}

func TestRefreshUnknownSession(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.auth.Refresh(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
