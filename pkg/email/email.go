package email

import "context"

// Sender is the notification sink the auth flows call fire-and-forget. A
// failed send never fails the request that triggered it.
type Sender interface {
	// SendVerificationLink delivers an email verification link.
	SendVerificationLink(ctx context.Context, to, name, link string) error

	// SendPasswordResetLink delivers a password reset link.
	SendPasswordResetLink(ctx context.Context, to, name, link string) error

	// SendMagicLink delivers a magic-link login link.
	SendMagicLink(ctx context.Context, to, name, link string) error
}

// Config holds delivery configuration for the Resend sender.
type Config struct {
	APIKey    string
	FromEmail string
	FromName  string
}
