package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solivar-dev/auth-sessions/internal/config"
	"github.com/solivar-dev/auth-sessions/internal/domain"
	"github.com/solivar-dev/auth-sessions/internal/repository/memory"
	"github.com/solivar-dev/auth-sessions/pkg/cooldown"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		SessionTTL:        7 * 24 * time.Hour,
		VerificationTTL:   time.Hour,
		PasswordResetTTL:  10 * time.Minute,
		MagicLinkTTL:      10 * time.Minute,
		MagicLinkCooldown: time.Minute,
	}
}

func newTestTokenService(t *testing.T) (*TokenService, *memory.TokenRepository, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := memory.NewTokenRepository()
	cfg := testAuthConfig()
	guard := cooldown.NewGuard(client, cfg.MagicLinkCooldown)

	return NewTokenService(repo, guard, cfg), repo, mr
}

func TestTokenIssueAndConsume(t *testing.T) {
	svc, _, _ := newTestTokenService(t)
	ctx := context.Background()

	raw, err := svc.Issue(ctx, "a@x.com", domain.TokenKindVerification)
	require.NoError(t, err)
	assert.Len(t, raw, 64)

	email, err := svc.Consume(ctx, domain.TokenKindVerification, raw)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", email)
}

func TestTokenConsumeIsDestructive(t *testing.T) {
	svc, _, _ := newTestTokenService(t)
	ctx := context.Background()

	raw, err := svc.Issue(ctx, "a@x.com", domain.TokenKindVerification)
	require.NoError(t, err)

	_, err = svc.Consume(ctx, domain.TokenKindVerification, raw)
	require.NoError(t, err)

	// The second attempt with the same value must fail: the row is gone.
	_, err = svc.Consume(ctx, domain.TokenKindVerification, raw)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenConsumeWrongKind(t *testing.T) {
	svc, _, _ := newTestTokenService(t)
	ctx := context.Background()

	raw, err := svc.Issue(ctx, "a@x.com", domain.TokenKindVerification)
	require.NoError(t, err)

	_, err = svc.Consume(ctx, domain.TokenKindPasswordReset, raw)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenConsumeExpired(t *testing.T) {
	svc, repo, _ := newTestTokenService(t)
	ctx := context.Background()

	record := &domain.SingleUseToken{
		Kind:      domain.TokenKindPasswordReset,
		Email:     "a@x.com",
		Token:     "stale-token",
		ExpiresAt: time.Now().Add(-time.Minute),
		CreatedAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, repo.Replace(ctx, record))

	_, err := svc.Consume(ctx, domain.TokenKindPasswordReset, "stale-token")
	assert.ErrorIs(t, err, ErrTokenExpired)

	// Expired rows are swept on lookup.
	_, err = svc.Consume(ctx, domain.TokenKindPasswordReset, "stale-token")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenIssueSupersedesPrior(t *testing.T) {
	svc, _, _ := newTestTokenService(t)
	ctx := context.Background()

	first, err := svc.Issue(ctx, "a@x.com", domain.TokenKindVerification)
	require.NoError(t, err)

	second, err := svc.Issue(ctx, "a@x.com", domain.TokenKindVerification)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// The superseded token is unusable even though it never expired.
	_, err = svc.Consume(ctx, domain.TokenKindVerification, first)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	_, err = svc.Consume(ctx, domain.TokenKindVerification, second)
	require.NoError(t, err)
}

func TestTokenIssueKindsAreIndependent(t *testing.T) {
	svc, _, _ := newTestTokenService(t)
	ctx := context.Background()

	verification, err := svc.Issue(ctx, "a@x.com", domain.TokenKindVerification)
	require.NoError(t, err)

	_, err = svc.Issue(ctx, "a@x.com", domain.TokenKindPasswordReset)
	require.NoError(t, err)

	// Issuing a reset token does not invalidate the verification token.
	_, err = svc.Consume(ctx, domain.TokenKindVerification, verification)
	require.NoError(t, err)
}

func TestMagicLinkCooldown(t *testing.T) {
	svc, _, mr := newTestTokenService(t)
	ctx := context.Background()

	_, err := svc.Issue(ctx, "a@x.com", domain.TokenKindMagicLink)
	require.NoError(t, err)

	_, err = svc.Issue(ctx, "a@x.com", domain.TokenKindMagicLink)
	assert.ErrorIs(t, err, ErrCooldownActive)

	// Another address is unaffected.
	_, err = svc.Issue(ctx, "b@x.com", domain.TokenKindMagicLink)
	require.NoError(t, err)

	mr.FastForward(61 * time.Second)

	_, err = svc.Issue(ctx, "a@x.com", domain.TokenKindMagicLink)
	require.NoError(t, err)
}

func TestTokenTTLPerKind(t *testing.T) {
	svc, _, _ := newTestTokenService(t)

	assert.Equal(t, time.Hour, svc.TTL(domain.TokenKindVerification))
	assert.Equal(t, 10*time.Minute, svc.TTL(domain.TokenKindPasswordReset))
	assert.Equal(t, 10*time.Minute, svc.TTL(domain.TokenKindMagicLink))
}
