package email

import (
	"context"
	"log"
)

// ConsoleSender logs links instead of delivering them. It is the default
// sink in development and in tests.
type ConsoleSender struct{}

func NewConsoleSender() *ConsoleSender {
	return &ConsoleSender{}
}

func (s *ConsoleSender) SendVerificationLink(_ context.Context, to, _, link string) error {
	log.Printf("[EMAIL] Verification link for %s: %s", to, link)
	return nil
}

func (s *ConsoleSender) SendPasswordResetLink(_ context.Context, to, _, link string) error {
	log.Printf("[EMAIL] Password reset link for %s: %s", to, link)
	return nil
}

func (s *ConsoleSender) SendMagicLink(_ context.Context, to, _, link string) error {
	log.Printf("[EMAIL] Magic link for %s: %s", to, link)
	return nil
}
