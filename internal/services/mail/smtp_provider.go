// File: internal/services/mail/smtp_provider.go
package mail

import (
	"context"
	"fmt"
	"strings"

	gomail "gopkg.in/gomail.v2"
)

// SMTPProvider delivers OTP mail over plain SMTP via gomail.
type SMTPProvider struct {
	config *Config
	dialer *gomail.Dialer
}

func NewSMTPProvider(config *Config) (*SMTPProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, &MailError{Type: ErrTypeConfig, Message: "invalid SMTP configuration", Cause: err}
	}
	return &SMTPProvider{
		config: config,
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
	}, nil
}

func (p *SMTPProvider) SendOTP(ctx context.Context, to, code string) error {
	if to == "" || !strings.Contains(to, "@") {
		return &MailError{Type: ErrTypeValidation, Message: "invalid recipient address"}
	}

	m := gomail.NewMessage()
	m.SetHeader("From", p.config.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your Teamly verification code")
	m.SetBody("text/plain", fmt.Sprintf(
		"Your verification code is %s.\n\nThe code expires in 10 minutes. If you did not request it, ignore this mail.", code))

	// gomail has no context support; honor cancellation before the dial and
	// accept that an in-flight send runs to completion.
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := p.dialer.DialAndSend(m); err != nil {
		return &MailError{Type: ErrTypeNetwork, Message: "SMTP send failed", Cause: err}
	}
	return nil
}

// service wraps a provider with retry behavior.
type service struct {
	provider Provider
	retry    *RetryConfig
}

// NewService builds the Service the auth flow consumes.
func NewService(provider Provider, retry *RetryConfig) Service {
	if retry == nil {
		retry = DefaultRetryConfig()
	}
	return &service{provider: provider, retry: retry}
}

func (s *service) SendOTP(ctx context.Context, to, code string) error {
	return retryWithBackoff(ctx, s.retry, func(ctx context.Context) error {
		return s.provider.SendOTP(ctx, to, code)
	})
}
