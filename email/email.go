// Package email sends transactional mail over SMTP. Delivery is strictly
// best-effort: callers log failures and move on.
package email

import (
	"fmt"
	"log/slog"
	"net/smtp"

	"chirp/config"
)

// Mailer sends mail through a single SMTP server. A Mailer with no host
// configured silently drops messages, which keeps development environments
// working without an SMTP setup.
type Mailer struct {
	host     string
	port     string
	user     string
	password string
	from     string
	log      *slog.Logger
}

func NewMailer(cfg *config.Config, log *slog.Logger) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
		log:      log,
	}
}

// Send delivers a single plain-text message.
func (m *Mailer) Send(to, subject, body string) error {
	if m.host == "" {
		m.log.Info("smtp not configured, dropping mail", "to", to, "subject", subject)
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.from, to, subject, body)

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}

	addr := m.host + ":" + m.port
	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
}

// SendVerificationCode mails the 6-digit registration OTP. Runs in the
// caller's goroutine; callers should invoke it in the background.
func (m *Mailer) SendVerificationCode(to, code string) {
	body := fmt.Sprintf(
		"Welcome to Chirp!\n\nYour verification code is: %s\n\nThe code expires in 24 hours.\n", code)

	if err := m.Send(to, "Verify your Chirp account", body); err != nil {
		m.log.Error("verification mail failed", "to", to, "error", err)
	}
}
