package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/isdelr/eventreg-be/internal/config"
	"github.com/wneessen/go-mail"
)

// ErrNotConfigured is returned by Send when no SMTP host is set.
var ErrNotConfigured = errors.New("smtp not configured")

// Message is a plain-text email.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Notifier delivers messages. Callers treat delivery as best-effort.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
	// Inbox is where messages addressed to the site itself go.
	Inbox() string
}

// SMTPNotifier sends mail through a single SMTP relay.
type SMTPNotifier struct {
	cfg config.SMTPConfig
}

// NewSMTPNotifier creates a notifier from configuration.
func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

// Inbox returns the configured sender address, which also receives site mail.
func (n *SMTPNotifier) Inbox() string {
	return n.cfg.From
}

// Send delivers msg. ctx bounds dialing and the whole SMTP conversation.
func (n *SMTPNotifier) Send(ctx context.Context, msg Message) error {
	if n.cfg.Host == "" {
		return ErrNotConfigured
	}

	m, err := buildMessage(n.cfg.From, msg)
	if err != nil {
		return err
	}
	client, err := n.newClient()
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (n *SMTPNotifier) newClient() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(n.cfg.Port),
		mail.WithTimeout(30 * time.Second),
	}
	switch n.cfg.TLS {
	case "tls":
		opts = append(opts, mail.WithSSL())
	case "none":
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if n.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.cfg.Username),
			mail.WithPassword(n.cfg.Password),
		)
	}
	return mail.NewClient(n.cfg.Host, opts...)
}

// buildMessage assembles a dated, identified plain-text message. Header
// values are encoded by go-mail; CR and LF are stripped from the subject first.
func buildMessage(from string, msg Message) (*mail.Msg, error) {
	if len(msg.To) == 0 {
		return nil, errors.New("message has no recipients")
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipients: %w", err)
	}
	m.Subject(sanitizeHeader(msg.Subject))
	m.SetDate()
	m.SetMessageID()
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	return m, nil
}

// sanitizeHeader strips CR/LF so user input cannot inject headers.
func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
