package email

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDevSink_WritesEML(t *testing.T) {
	dir := t.TempDir()
	s := NewDevSink(dir)

	id, err := s.Send(context.Background(), &Message{
		From:    "noreply@learn2grow.example",
		To:      "ana@x.com",
		Subject: "hello",
		HTML:    "<p>hi</p>",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty message id")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 file, got %d", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasSuffix(name, ".eml") || !strings.Contains(name, id) {
		t.Fatalf("unexpected file name: %s", name)
	}

	raw, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	body := string(raw)
	for _, want := range []string{"To: ana@x.com", "Subject: hello", "<p>hi</p>"} {
		if !strings.Contains(body, want) {
			t.Fatalf("eml missing %q:\n%s", want, body)
		}
	}
}

func TestDevSink_CancelledContext(t *testing.T) {
	s := NewDevSink(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Send(ctx, &Message{To: "a@b.c"}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestNewSender_Switch(t *testing.T) {
	if _, err := NewSender(SenderConfig{Provider: "dev"}); err != nil {
		t.Fatalf("dev provider: %v", err)
	}
	s, err := NewSender(SenderConfig{Provider: "smtp", Host: "mail.example", Port: 587})
	if err != nil {
		t.Fatalf("smtp provider: %v", err)
	}
	if _, ok := s.(*SMTPSender); !ok {
		t.Fatalf("expected *SMTPSender, got %T", s)
	}
	if _, err := NewSender(SenderConfig{Provider: "carrier-pigeon"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if _, err := NewSender(SenderConfig{Provider: "smtp"}); err == nil {
		t.Fatal("expected error for smtp without host")
	}
}
