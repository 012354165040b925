package email

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/learn2grow/internal/observability/logger"
)

// DevSink es un Sender de desarrollo: escribe cada mensaje como un archivo
// .eml en Dir y reporta éxito. Permite ejercitar el pipeline completo de
// notificaciones sin credenciales SMTP reales.
type DevSink struct {
	Dir string
}

func NewDevSink(dir string) *DevSink {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "learn2grow-outbox")
	}
	return &DevSink{Dir: dir}
}

func (s *DevSink) Send(ctx context.Context, msg *Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &MailError{Code: CodeTransport, Temporary: true, Err: err}
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", &MailError{Code: CodeTransport, Err: fmt.Errorf("create outbox dir: %w", err)}
	}

	id := uuid.NewString()
	now := time.Now().UTC()

	var b strings.Builder
	fmt.Fprintf(&b, "Message-ID: <%s@dev>\r\n", id)
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	fmt.Fprintf(&b, "From: %s\r\n", msg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)

	name := fmt.Sprintf("%s-%s.eml", now.Format("20060102T150405"), id)
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", &MailError{Code: CodeTransport, Err: fmt.Errorf("write eml: %w", err)}
	}

	logger.From(ctx).Debug("email written to dev sink",
		logger.String("path", path),
		logger.Email(msg.To),
	)
	return id, nil
}
