package requests

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/learn2grow/internal/domain/repository"
	"github.com/dropDatabas3/learn2grow/internal/email"
	"github.com/dropDatabas3/learn2grow/internal/notify"
	"github.com/dropDatabas3/learn2grow/internal/security/password"
	"github.com/dropDatabas3/learn2grow/internal/store/adapters/memory"
)

type captureSender struct {
	mu   sync.Mutex
	sent []email.Message
}

func (s *captureSender) Send(ctx context.Context, msg *email.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, *msg)
	return "msg-1", nil
}

func (s *captureSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func newTestService(t *testing.T) (*Service, repository.RequestRepository, *captureSender) {
	t.Helper()
	repo := memory.NewConnection().Requests()
	sender := &captureSender{}
	renderer, err := email.NewRenderer("Learn2Grow", "https://learn2grow.test")
	require.NoError(t, err)

	engine := notify.NewEngine(repo, sender, renderer, notify.Config{
		FromAddress:  "noreply@learn2grow.test",
		AdminAddress: "admin@learn2grow.test",
	})
	svc := New(Deps{
		Repo:   repo,
		Engine: engine,
		Policy: password.Policy{MinLength: 8},
	})
	return svc, repo, sender
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestRegister_CreatesPendingAndNotifies(t *testing.T) {
	svc, repo, sender := newTestService(t)
	ctx := context.Background()

	req, err := svc.Register(ctx, RegisterInput{
		Name:     "Ana",
		Email:    "Ana@Example.org",
		Password: "correcthorse",
	})
	require.NoError(t, err)
	require.Equal(t, repository.StatusPending, req.Status)
	require.Equal(t, "ana@example.org", req.Email, "email debe normalizarse")

	// El envío corre en background: admin + confirmación.
	waitFor(t, func() bool { return sender.count() == 2 })

	persisted, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	waitFor(t, func() bool {
		persisted, _ = repo.GetByID(ctx, req.ID)
		return persisted.EmailsSent.Confirmation
	})
}

func TestRegister_WeakPassword(t *testing.T) {
	svc, _, sender := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ana",
		Email:    "ana@example.org",
		Password: "corta",
	})
	require.ErrorIs(t, err, ErrWeakPassword)
	require.Zero(t, sender.count())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@example.org", Password: "correcthorse"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Name: "Otra", Email: "ana@example.org", Password: "correcthorse"})
	require.ErrorIs(t, err, ErrEmailInUse)
}

func TestRegister_NeverFailsOnEmailOutage(t *testing.T) {
	repo := memory.NewConnection().Requests()
	renderer, err := email.NewRenderer("", "")
	require.NoError(t, err)

	// Sender que siempre falla: el alta igual debe salir bien.
	engine := notify.NewEngine(repo, failingSender{}, renderer, notify.Config{
		AdminAddress: "admin@learn2grow.test",
	})
	svc := New(Deps{Repo: repo, Engine: engine, Policy: password.Policy{MinLength: 8}})

	req, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ana",
		Email:    "ana@example.org",
		Password: "correcthorse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, req.ID)
}

type failingSender struct{}

func (failingSender) Send(ctx context.Context, msg *email.Message) (string, error) {
	return "", &email.MailError{Code: email.CodeTransport, Temporary: true}
}

func TestReview_ApprovedSendsApprovalEmail(t *testing.T) {
	svc, repo, sender := newTestService(t)
	ctx := context.Background()

	req, err := repo.Create(ctx, repository.CreateRequestInput{
		Name: "Ana", Email: "ana@example.org", PasswordHash: "x",
	})
	require.NoError(t, err)

	out, err := svc.Review(ctx, req.ID, ReviewInput{
		Status:     repository.StatusApproved,
		ReviewedBy: "admin-1",
	})
	require.NoError(t, err)
	require.Equal(t, repository.StatusApproved, out.Request.Status)
	require.True(t, out.Email.Sent())
	require.Equal(t, 1, sender.count())

	persisted, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.True(t, persisted.EmailsSent.Approval)
	require.Equal(t, "admin-1", persisted.ReviewedBy)
}

func TestReview_RejectedSendsVerificationWithNotes(t *testing.T) {
	svc, repo, sender := newTestService(t)
	ctx := context.Background()

	req, err := repo.Create(ctx, repository.CreateRequestInput{
		Name: "Ana", Email: "ana@example.org", PasswordHash: "x",
	})
	require.NoError(t, err)

	out, err := svc.Review(ctx, req.ID, ReviewInput{
		Status: repository.StatusRejected,
		Notes:  "falta constancia de ingresos",
	})
	require.NoError(t, err)
	require.True(t, out.Email.Sent())

	require.Equal(t, 1, sender.count())
	require.Contains(t, sender.sent[0].Text, "falta constancia de ingresos")

	persisted, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.True(t, persisted.EmailsSent.Verification)
}

func TestReview_InvalidStatus(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	req, err := repo.Create(ctx, repository.CreateRequestInput{
		Name: "Ana", Email: "ana@example.org", PasswordHash: "x",
	})
	require.NoError(t, err)

	_, err = svc.Review(ctx, req.ID, ReviewInput{Status: repository.StatusPending})
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestResend_ForceAdvancesTimestamp(t *testing.T) {
	svc, repo, sender := newTestService(t)
	ctx := context.Background()

	req, err := repo.Create(ctx, repository.CreateRequestInput{
		Name: "Ana", Email: "ana@example.org", PasswordHash: "x",
	})
	require.NoError(t, err)
	_, err = svc.Review(ctx, req.ID, ReviewInput{Status: repository.StatusApproved})
	require.NoError(t, err)

	// Sin force: idempotente, no se re-envía.
	res, err := svc.Resend(ctx, req.ID, repository.KindApproval, false)
	require.NoError(t, err)
	require.False(t, res.Sent())
	require.Equal(t, 1, sender.count())

	// Con force: sale de nuevo.
	res, err = svc.Resend(ctx, req.ID, repository.KindApproval, true)
	require.NoError(t, err)
	require.True(t, res.Sent())
	require.Equal(t, 2, sender.count())
}

func TestResend_UnknownKind(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	req, err := repo.Create(ctx, repository.CreateRequestInput{
		Name: "Ana", Email: "ana@example.org", PasswordHash: "x",
	})
	require.NoError(t, err)

	_, err = svc.Resend(ctx, req.ID, repository.EmailKind("newsletter"), false)
	require.ErrorIs(t, err, ErrInvalidKind)
}

func TestNotifyRun_AggregatesPasses(t *testing.T) {
	svc, repo, sender := newTestService(t)
	ctx := context.Background()

	for _, e := range []string{"a@example.org", "b@example.org"} {
		_, err := repo.Create(ctx, repository.CreateRequestInput{
			Name: "X", Email: e, PasswordHash: "x",
		})
		require.NoError(t, err)
	}

	out, err := svc.NotifyRun(ctx, false)
	require.NoError(t, err)
	require.Equal(t, 2, out.Pending.ConfirmationSent)
	require.Equal(t, 2, sender.count())

	// Segundo pase: todo ya flaggeado, cero envíos nuevos.
	out, err = svc.NotifyRun(ctx, false)
	require.NoError(t, err)
	require.Zero(t, out.Pending.ConfirmationSent)
	require.Equal(t, 2, sender.count())
}
