// Package notify delivers transactional email for the booking
// administration service.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"
)

// Sender delivers account-related messages to users.
type Sender interface {
	SendPasswordReset(ctx context.Context, to, resetLink string) error
}

// SMTPConfig holds mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	TLS      bool
	Username string
	Password string
	From     string
}

// EmailSender implements Sender over SMTP.
type EmailSender struct {
	config SMTPConfig
	client *mail.Client
}

// NewEmailSender creates a mail client for the given server.
func NewEmailSender(config SMTPConfig) (*EmailSender, error) {
	opts := []mail.Option{
		mail.WithPort(config.Port),
	}

	if config.Username != "" && config.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(config.Username),
			mail.WithPassword(config.Password),
		)
	}

	if config.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts,
			mail.WithTLSConfig(&tls.Config{InsecureSkipVerify: true}),
			mail.WithTLSPolicy(mail.NoTLS),
		)
	}

	client, err := mail.NewClient(config.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return &EmailSender{config: config, client: client}, nil
}

// SendPasswordReset emails a single-use reset link.
func (e *EmailSender) SendPasswordReset(ctx context.Context, to, resetLink string) error {
	msg := mail.NewMsg()
	if err := msg.From(e.config.From); err != nil {
		return fmt.Errorf("failed to set from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("failed to set to address: %w", err)
	}
	msg.Subject("Reset your password")
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"A password reset was requested for your account.\n\n"+
			"Open the link below to choose a new password. The link expires in one hour.\n\n%s\n\n"+
			"If you did not request this, you can ignore this message.\n", resetLink))

	if err := e.client.DialAndSendWithContext(ctx, msg); err != nil {
		slog.Error("Failed to send password reset email", "to", to, "err", err)
		return err
	}

	slog.Info("Password reset email sent", "to", to)
	return nil
}

// NoOpSender discards messages. Used in database-free development mode and
// in tests.
type NoOpSender struct{}

func (NoOpSender) SendPasswordReset(ctx context.Context, to, resetLink string) error {
	slog.Info("Password reset requested (email delivery disabled)", "to", to, "link", resetLink)
	return nil
}
