package infra

import (
	"fmt"
	"net/smtp"

	"cafebook/internal/config"

	"github.com/jordan-wright/email"
)

// Message is one outbound email. Attachment is an optional file path.
type Message struct {
	To         string
	Subject    string
	Body       string
	Attachment string
}

// Mailer wraps SMTP configuration for sending OTP codes and receipts.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// Configured is false when SMTP_HOST is unset; callers skip sending.
func (m *Mailer) Configured() bool { return m.host != "" }

// Send delivers msg through the configured SMTP relay.
func (m *Mailer) Send(msg Message) error {
	if !m.Configured() {
		return fmt.Errorf("mailer: SMTP_HOST not configured")
	}
	e := email.NewEmail()
	e.From = fmt.Sprintf("%s <%s>", shopName, m.user)
	e.To = []string{msg.To}
	e.Subject = msg.Subject
	e.Text = []byte(msg.Body)

	if msg.Attachment != "" {
		if _, err := e.AttachFile(msg.Attachment); err != nil {
			return fmt.Errorf("mailer: attach %s: %w", msg.Attachment, err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return e.Send(m.addr, auth)
}
