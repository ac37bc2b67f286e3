// Package mail dispatches the out-of-band notifications the auth flows need.
// Delivery is a collaborator, not a concern of this service: when no SMTP
// host is configured the mailer degrades to logging, which keeps development
// setups working without a relay.
package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"

	"smartcart/api/internal/config"
)

type Mailer struct {
	cfg config.MailConfig
	log zerolog.Logger
}

func New(cfg config.MailConfig, log zerolog.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

func (m *Mailer) SendPasswordReset(ctx context.Context, email string, resetToken string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", m.cfg.FrontendURL, resetToken)
	body := fmt.Sprintf(
		"We received a request to reset your password.\r\n\r\n"+
			"Open this link to choose a new one: %s\r\n\r\n"+
			"The link expires in one hour. If you did not ask for this, ignore this message.\r\n",
		resetURL,
	)
	return m.send(ctx, email, "Reset your Smart Cart password", body)
}

func (m *Mailer) SendWelcome(ctx context.Context, email string, firstName string) error {
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nWelcome to Smart Cart. Your account is ready.\r\n",
		firstName,
	)
	return m.send(ctx, email, "Welcome to Smart Cart", body)
}

func (m *Mailer) send(ctx context.Context, to string, subject string, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if m.cfg.Host == "" {
		m.log.Info().Str("to", to).Str("subject", subject).Msg("mail relay not configured, skipping send")
		return nil
	}

	msg := fmt.Sprintf("From: Smart Cart <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.cfg.From, to, subject, body)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
