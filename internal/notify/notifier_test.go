package notify

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/isdelr/eventreg-be/internal/config"
)

func TestSendWithoutHostIsNotConfigured(t *testing.T) {
	n := NewSMTPNotifier(config.SMTPConfig{From: "site@example.com"})
	err := n.Send(context.Background(), Message{To: []string{"x@example.com"}, Subject: "hi"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if n.Inbox() != "site@example.com" {
		t.Fatalf("inbox = %q", n.Inbox())
	}
}

func TestSendFailsFastOnUnreachableHost(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, mode := range []string{"starttls", "tls", "none"} {
		n := NewSMTPNotifier(config.SMTPConfig{Host: "127.0.0.1", Port: 1, From: "site@example.com", TLS: mode})
		if err := n.Send(ctx, Message{To: []string{"x@example.com"}, Subject: "hi"}); err == nil {
			t.Fatalf("%s: expected dial error", mode)
		}
	}
}

func TestSendRejectsMissingRecipients(t *testing.T) {
	n := NewSMTPNotifier(config.SMTPConfig{Host: "127.0.0.1", Port: 1, From: "site@example.com"})
	if err := n.Send(context.Background(), Message{Subject: "hi"}); err == nil {
		t.Fatal("expected error without recipients")
	}
}

func render(t *testing.T, msg Message) string {
	t.Helper()
	m, err := buildMessage("site@example.com", msg)
	if err != nil {
		t.Fatalf("build message: %v", err)
	}
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		t.Fatalf("write message: %v", err)
	}
	return buf.String()
}

func TestBuildMessageHeaders(t *testing.T) {
	raw := render(t, Message{
		To:      []string{"site@example.com"},
		Subject: "Contact form: Zoë Ångström",
		Body:    "line one\nline two",
	})

	for _, header := range []string{"date", "message-id", "from", "to", "subject"} {
		if !regexp.MustCompile(`(?mi)^` + header + `: \S`).MatchString(raw) {
			t.Errorf("missing %s header in %q", header, raw)
		}
	}
	if !strings.Contains(strings.ToLower(raw), "=?utf-8?") {
		t.Errorf("non-ASCII subject not encoded: %q", raw)
	}
	if strings.Contains(raw, "Zoë") {
		t.Errorf("raw 8-bit subject in headers: %q", raw)
	}
}

func TestBuildMessageStripsHeaderInjection(t *testing.T) {
	raw := render(t, Message{
		To:      []string{"site@example.com"},
		Subject: "Hello\r\nBcc: victim@example.com",
		Body:    "hi",
	})
	if regexp.MustCompile(`(?mi)^bcc:`).MatchString(raw) {
		t.Fatalf("header injection survived: %q", raw)
	}
}

func TestBuildMessageRejectsBadSender(t *testing.T) {
	if _, err := buildMessage("not an address", Message{To: []string{"x@example.com"}}); err == nil {
		t.Fatal("expected invalid sender error")
	}
}
