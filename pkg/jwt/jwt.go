package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidSigningMethod = errors.New("unexpected signing method")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token expired")
	ErrMalformedPayload     = errors.New("malformed token payload")
)

// Claims binds a short-lived access token to the session it was minted
// from. Validity is signature + expiry + the referenced session still being
// alive; the last check belongs to the caller.
type Claims struct {
	jwt.RegisteredClaims
	UserID       uuid.UUID `json:"user_id"`
	SessionToken string    `json:"session_token"`
}

// Codec signs and verifies access tokens with a process-wide symmetric
// secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewCodec builds a Codec. An empty secret is a configuration error.
func NewCodec(secret string, ttl time.Duration, issuer string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("signing secret is required")
	}
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
	}, nil
}

// TTL returns the access-token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue mints a signed access token referencing the given session token.
func (c *Codec) Issue(userID uuid.UUID, sessionToken string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		UserID:       userID,
		SessionToken: sessionToken,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify checks signature and expiry and returns the embedded claims.
// Expiry, bad signatures, and missing claim fields map to distinct errors
// for observability; callers present all of them as one credential failure.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSigningMethod
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == uuid.Nil || claims.SessionToken == "" {
		return nil, ErrMalformedPayload
	}

	return claims, nil
}
