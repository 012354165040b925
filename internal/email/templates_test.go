package email

import (
	"strings"
	"testing"

	"github.com/dropDatabas3/learn2grow/internal/domain/repository"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer("Learn2Grow", "https://learn2grow.example")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

func TestRender_TotalOverKinds(t *testing.T) {
	r := newTestRenderer(t)
	kinds := []repository.EmailKind{
		repository.KindAdminNotification,
		repository.KindConfirmation,
		repository.KindVerification,
		repository.KindApproval,
		repository.KindRejection,
		repository.KindFollowUp,
	}
	for _, k := range kinds {
		out, err := r.Render(k, Vars{Name: "Ana", Email: "ana@x.com"})
		if err != nil {
			t.Fatalf("Render(%s): %v", k, err)
		}
		if out.Subject == "" || out.HTML == "" || out.Text == "" {
			t.Fatalf("Render(%s): empty output: %+v", k, out)
		}
	}
}

func TestRender_UnknownKind(t *testing.T) {
	r := newTestRenderer(t)
	_, err := r.Render(repository.EmailKind("newsletter"), Vars{Email: "a@b.c"})
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if !strings.Contains(err.Error(), "unknown notification kind") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRender_InjectsSiteDefaults(t *testing.T) {
	r := newTestRenderer(t)
	out, err := r.Render(repository.KindApproval, Vars{Name: "Ana", Email: "ana@x.com"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out.Subject, "Learn2Grow") {
		t.Fatalf("subject missing site name: %q", out.Subject)
	}
	if !strings.Contains(out.HTML, "https://learn2grow.example/login") {
		t.Fatalf("html missing site url: %q", out.HTML)
	}
}

func TestRender_FallsBackToEmailWhenNameEmpty(t *testing.T) {
	r := newTestRenderer(t)
	out, err := r.Render(repository.KindConfirmation, Vars{Email: "ana@x.com"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out.HTML, "ana@x.com") {
		t.Fatalf("expected email fallback in body: %q", out.HTML)
	}
}

func TestRender_EscapesHTMLButNotText(t *testing.T) {
	r := newTestRenderer(t)
	out, err := r.Render(repository.KindRejection, Vars{
		Name:  "Ana",
		Email: "ana@x.com",
		Notes: `missing <b>documents</b>`,
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(out.HTML, "<b>documents</b>") {
		t.Fatalf("html body not escaped: %q", out.HTML)
	}
	if !strings.Contains(out.Text, "missing <b>documents</b>") {
		t.Fatalf("text body should keep raw notes: %q", out.Text)
	}
}

func TestRender_AdminNotificationIncludesRequestID(t *testing.T) {
	r := newTestRenderer(t)
	out, err := r.Render(repository.KindAdminNotification, Vars{
		Name:      "Ana",
		Email:     "ana@x.com",
		RequestID: "req-123",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out.HTML, "req-123") || !strings.Contains(out.Text, "req-123") {
		t.Fatalf("request id missing from bodies")
	}
}
