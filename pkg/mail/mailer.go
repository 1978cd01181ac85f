package mail

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/ammargroup/storefront-backend/pkg/config"
)

// Message is a single outbound email.
type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Sender delivers messages. Satisfied by the SMTP mailer and by test stubs.
type Sender interface {
	Send(msg Message) error
}

// Mailer sends mail over authenticated SMTP with STARTTLS.
type Mailer struct {
	cfg  config.SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New validates the SMTP configuration and returns a mailer.
func New(cfg config.SMTPConfig) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("smtp credentials are required")
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &Mailer{cfg: cfg, send: smtp.SendMail}, nil
}

// Send delivers the message through the configured relay.
func (m *Mailer) Send(msg Message) error {
	if len(msg.To) == 0 {
		return errors.New("message has no recipients")
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)

	if err := m.send(addr, auth, m.cfg.From, msg.To, []byte(b.String())); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
}
