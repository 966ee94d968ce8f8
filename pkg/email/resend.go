package email

import (
	"context"
	"fmt"
	"log"

	"github.com/resend/resend-go/v2"
)

// ResendSender implements Sender using Resend
type ResendSender struct {
	client *resend.Client
	config *Config
}

// NewResendSender creates a new Resend-backed sender
func NewResendSender(config *Config) (*ResendSender, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}

	if config.FromEmail == "" {
		return nil, fmt.Errorf("from email is required")
	}

	client := resend.NewClient(config.APIKey)

	return &ResendSender{
		client: client,
		config: config,
	}, nil
}

func (s *ResendSender) SendVerificationLink(ctx context.Context, to, name, link string) error {
	return s.send(ctx, to, "Verify Your Email Address", VerificationEmailTemplate(name, link))
}

func (s *ResendSender) SendPasswordResetLink(ctx context.Context, to, name, link string) error {
	return s.send(ctx, to, "Reset Your Password", PasswordResetEmailTemplate(name, link))
}

func (s *ResendSender) SendMagicLink(ctx context.Context, to, name, link string) error {
	return s.send(ctx, to, "Your Login Link", MagicLinkEmailTemplate(name, link))
}

func (s *ResendSender) send(ctx context.Context, to, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail),
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		log.Printf("Failed to send %q email to %s: %v", subject, to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("Email %q sent to %s (ID: %s)", subject, to, sent.Id)
	return nil
}
