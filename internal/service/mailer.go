package service

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-core/internal/config"
)

// Mailer delivers one email. A returned error means "not delivered"; the
// dispatcher's retry bookkeeping depends on it.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewMailer returns an SMTP mailer when an address is configured and a
// log-only mailer otherwise (development mode).
func NewMailer(cfg config.NotificationConfig, logger *zap.Logger) Mailer {
	if strings.TrimSpace(cfg.SMTPAddr) == "" {
		logger.Warn("NOTIFY_SMTP_ADDR not set; notifications will only be logged")
		return &logMailer{from: cfg.EmailFrom, logger: logger}
	}
	return &smtpMailer{
		addr:     cfg.SMTPAddr,
		from:     cfg.EmailFrom,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
	}
}

type smtpMailer struct {
	addr     string
	from     string
	user     string
	password string
}

func (m *smtpMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		m.from, to, subject, body)

	var auth smtp.Auth
	if m.user != "" {
		host := m.addr
		if idx := strings.LastIndex(host, ":"); idx >= 0 {
			host = host[:idx]
		}
		auth = smtp.PlainAuth("", m.user, m.password, host)
	}
	if err := smtp.SendMail(m.addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

type logMailer struct {
	from   string
	logger *zap.Logger
}

func (m *logMailer) Send(_ context.Context, to, subject, _ string) error {
	m.logger.Info("email delivery (log only)",
		zap.String("from", m.from),
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}
