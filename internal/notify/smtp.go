package notify

import (
	"context"
	"fmt"
	netmail "net/mail"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds transport settings. Password arrives from the secrets
// layer, never from the config file.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // plain address or "Name <addr>"
	Timeout  time.Duration
}

// SMTPTransport sends over implicit-TLS SMTP (smtps, port 465 style).
type SMTPTransport struct {
	cfg SMTPConfig
}

func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SMTPTransport{cfg: cfg}
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()

	if addr, err := netmail.ParseAddress(t.cfg.From); err == nil && addr.Name != "" {
		if err := m.FromFormat(addr.Name, addr.Address); err != nil {
			return fmt.Errorf("smtp from %q: %w", t.cfg.From, err)
		}
	} else if err := m.From(t.cfg.From); err != nil {
		return fmt.Errorf("smtp from %q: %w", t.cfg.From, err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("smtp to %q: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.TextBody)
	if msg.HTMLBody != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTMLBody)
	}

	client, err := mail.NewClient(t.cfg.Host,
		mail.WithPort(t.cfg.Port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(t.cfg.Username),
		mail.WithPassword(t.cfg.Password),
		mail.WithTimeout(t.cfg.Timeout),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
