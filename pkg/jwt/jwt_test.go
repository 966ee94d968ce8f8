package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func newTestCodec(t *testing.T, ttl time.Duration) *Codec {
	t.Helper()

	codec, err := NewCodec(testSecret, ttl, "auth-sessions-test")
	require.NoError(t, err)
	return codec
}

func TestNewCodecRequiresSecret(t *testing.T) {
	_, err := NewCodec("", time.Minute, "issuer")
	require.Error(t, err)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	codec := newTestCodec(t, 15*time.Minute)
	userID := uuid.New()

	signed, err := codec.Issue(userID, "opaque-session-token")
	require.NoError(t, err)

	claims, err := codec.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "opaque-session-token", claims.SessionToken)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestVerifyExpired(t *testing.T) {
	codec := newTestCodec(t, -time.Minute)

	signed, err := codec.Issue(uuid.New(), "opaque-session-token")
	require.NoError(t, err)

	_, err = codec.Verify(signed)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyTampered(t *testing.T) {
	codec := newTestCodec(t, 15*time.Minute)

	signed, err := codec.Issue(uuid.New(), "opaque-session-token")
	require.NoError(t, err)

	_, err = codec.Verify(signed + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	codec := newTestCodec(t, 15*time.Minute)

	other, err := NewCodec("different-secret", 15*time.Minute, "auth-sessions-test")
	require.NoError(t, err)

	signed, err := other.Issue(uuid.New(), "opaque-session-token")
	require.NoError(t, err)

	_, err = codec.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyMalformedPayload(t *testing.T) {
	codec := newTestCodec(t, 15*time.Minute)

	// A well-signed token missing the required claim fields.
	raw := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"exp": time.Now().Add(time.Minute).Unix(),
	})
	signed, err := raw.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = codec.Verify(signed)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestVerifyRejectsUnexpectedSigningMethod(t *testing.T) {
	codec := newTestCodec(t, 15*time.Minute)

	raw := gojwt.NewWithClaims(gojwt.SigningMethodNone, gojwt.MapClaims{
		"user_id":       uuid.New().String(),
		"session_token": "opaque-session-token",
		"exp":           time.Now().Add(time.Minute).Unix(),
	})
	signed, err := raw.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = codec.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
