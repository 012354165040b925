package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dropDatabas3/learn2grow/internal/domain/repository"
	"github.com/dropDatabas3/learn2grow/internal/email"
	"github.com/dropDatabas3/learn2grow/internal/store/adapters/memory"
)

// fakeSender registra los mensajes enviados y permite inyectar fallos por
// destinatario y una demora artificial para forzar solapamiento.
type fakeSender struct {
	mu     sync.Mutex
	sent   []email.Message
	failTo map[string]error
	delay  time.Duration
}

func (s *fakeSender) Send(ctx context.Context, msg *email.Message) (string, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failTo[msg.To]; ok {
		return "", err
	}
	s.sent = append(s.sent, *msg)
	return "fake-msg-id", nil
}

func (s *fakeSender) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func (s *fakeSender) recipients() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.sent))
	for _, m := range s.sent {
		out = append(out, m.To)
	}
	return out
}

const adminAddr = "admin@learn2grow.example"

func newTestEngine(t *testing.T, sender email.Sender) (*Engine, repository.RequestRepository) {
	t.Helper()
	repo := memory.NewConnection().Requests()
	renderer, err := email.NewRenderer("Learn2Grow", "https://learn2grow.example")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	eng := NewEngine(repo, sender, renderer, Config{
		FromAddress:  "noreply@learn2grow.example",
		AdminAddress: adminAddr,
		SendTimeout:  5 * time.Second,
		Concurrency:  4,
	})
	return eng, repo
}

func mustCreate(t *testing.T, repo repository.RequestRepository, name, addr string) *repository.RecipientRequest {
	t.Helper()
	req, err := repo.Create(context.Background(), repository.CreateRequestInput{
		Name:  name,
		Email: addr,
	})
	if err != nil {
		t.Fatalf("Create(%s): %v", addr, err)
	}
	return req
}

func reviewAs(t *testing.T, repo repository.RequestRepository, id string, status repository.RequestStatus) *repository.RecipientRequest {
	t.Helper()
	ctx := context.Background()
	err := repo.Review(ctx, id, repository.ReviewInput{
		Status:     status,
		ReviewedBy: "admin",
		ReviewedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	req, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	return req
}

func TestProcessNewRequest_EndToEnd(t *testing.T) {
	sender := &fakeSender{}
	eng, repo := newTestEngine(t, sender)
	ctx := context.Background()

	req := mustCreate(t, repo, "Ana", "ana@x.com")
	res := eng.ProcessNewRequest(ctx, req, false)

	if !res.ConfirmationSent() {
		t.Fatalf("confirmation not sent: %+v", res.Confirmation)
	}
	if !res.AdminNotified() {
		t.Fatalf("admin not notified: %+v", res.AdminNotification)
	}

	got := sender.recipients()
	if len(got) != 2 {
		t.Fatalf("expected 2 sends, got %d: %v", len(got), got)
	}
	seen := map[string]bool{}
	for _, to := range got {
		seen[to] = true
	}
	if !seen[adminAddr] || !seen["ana@x.com"] {
		t.Fatalf("wrong recipients: %v", got)
	}

	after, err := repo.GetByID(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !after.EmailsSent.Confirmation {
		t.Fatal("confirmation flag not persisted")
	}
	if after.LastEmailSent == nil {
		t.Fatal("last_email_sent not persisted")
	}
}

func TestProcessNewRequest_SecondCallIsNoOp(t *testing.T) {
	sender := &fakeSender{}
	eng, repo := newTestEngine(t, sender)
	ctx := context.Background()

	req := mustCreate(t, repo, "Ana", "ana@x.com")
	eng.ProcessNewRequest(ctx, req, false)

	fresh, _ := repo.GetByID(ctx, req.ID)
	res := eng.ProcessNewRequest(ctx, fresh, false)
	if res.ConfirmationSent() || res.AdminNotified() {
		t.Fatalf("second call should be a no-op: %+v", res)
	}

	// Copia vieja sin flags: el admin tampoco se vuelve a notificar.
	stale := *req
	stale.EmailsSent = repository.EmailFlags{}
	res = eng.ProcessNewRequest(ctx, &stale, false)
	if res.ConfirmationSent() || res.AdminNotified() {
		t.Fatalf("stale copy should be a no-op: %+v", res)
	}

	if sender.calls() != 2 {
		t.Fatalf("expected 2 total sends, got %d", sender.calls())
	}
}

func TestProcessNewRequest_IndependentFailures(t *testing.T) {
	// La notificación al admin falla; la confirmación al usuario sale igual.
	sender := &fakeSender{failTo: map[string]error{adminAddr: errors.New("550 5.1.1 user unknown")}}
	eng, repo := newTestEngine(t, sender)
	ctx := context.Background()

	req := mustCreate(t, repo, "Ana", "ana@x.com")
	res := eng.ProcessNewRequest(ctx, req, false)

	if !res.ConfirmationSent() {
		t.Fatalf("confirmation should not be blocked by admin failure: %+v", res.Confirmation)
	}
	if res.AdminNotification.Outcome != OutcomeFailed {
		t.Fatalf("admin notification should fail: %+v", res.AdminNotification)
	}

	after, _ := repo.GetByID(ctx, req.ID)
	if !after.EmailsSent.Confirmation {
		t.Fatal("confirmation flag should be set despite admin failure")
	}
}

func TestProcessVerificationEmail_Idempotent(t *testing.T) {
	sender := &fakeSender{}
	eng, repo := newTestEngine(t, sender)
	ctx := context.Background()

	req := mustCreate(t, repo, "Ana", "ana@x.com")
	req = reviewAs(t, repo, req.ID, repository.StatusRejected)

	first := eng.ProcessVerificationEmail(ctx, req, "please send proof of eligibility", false)
	if !first.Sent() {
		t.Fatalf("first call should send: %+v", first)
	}

	fresh, _ := repo.GetByID(ctx, req.ID)
	second := eng.ProcessVerificationEmail(ctx, fresh, "please send proof of eligibility", false)
	if second.Outcome != OutcomeSkipped {
		t.Fatalf("second call should skip: %+v", second)
	}
	if !second.Satisfied() {
		t.Fatal("skip should report satisfied")
	}
	if sender.calls() != 1 {
		t.Fatalf("expected exactly 1 send, got %d", sender.calls())
	}
}

func TestProcessVerificationEmail_StaleCopyDoesNotResend(t *testing.T) {
	// Dos llamadas con el MISMO valor de solicitud: la segunda no puede
	// confiar en el flag en memoria (quedó viejo tras el primer envío) y
	// tiene que cortar contra el datastore.
	sender := &fakeSender{}
	eng, repo := newTestEngine(t, sender)
	ctx := context.Background()

	req := mustCreate(t, repo, "Ana", "ana@x.com")
	req = reviewAs(t, repo, req.ID, repository.StatusRejected)

	first := eng.ProcessVerificationEmail(ctx, req, "msg", false)
	if !first.Sent() {
		t.Fatalf("first call should send: %+v", first)
	}

	second := eng.ProcessVerificationEmail(ctx, req, "msg", false)
	if second.Outcome != OutcomeSkipped {
		t.Fatalf("second call with same value should skip: %+v", second)
	}

	// Copia vieja independiente (flag en false): tampoco debe reenviar.
	stale := *req
	stale.EmailsSent = repository.EmailFlags{}
	third := eng.ProcessVerificationEmail(ctx, &stale, "msg", false)
	if third.Outcome != OutcomeSkipped {
		t.Fatalf("stale independent copy should skip: %+v", third)
	}

	if sender.calls() != 1 {
		t.Fatalf("expected exactly 1 transport call, got %d", sender.calls())
	}
}

func TestConcurrentSends_AtMostOnePerKind(t *testing.T) {
	sender := &fakeSender{delay: 50 * time.Millisecond}
	eng, repo := newTestEngine(t, sender)
	ctx := context.Background()

	req := mustCreate(t, repo, "Ana", "ana@x.com")
	req = reviewAs(t, repo, req.ID, repository.StatusRejected)

	var wg sync.WaitGroup
	results := make([]SendResult, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = eng.ProcessVerificationEmail(ctx, req, "msg", false)
		}(i)
	}
	wg.Wait()

	if sender.calls() != 1 {
		t.Fatalf("expected exactly 1 transport call, got %d", sender.calls())
	}
	for i, r := range results {
		if !r.Satisfied() {
			t.Fatalf("result %d not satisfied: %+v", i, r)
		}
	}
}

func TestForceOverride_ResendsAndKeepsFlag(t *testing.T) {
	sender := &fakeSender{}
	eng, repo := newTestEngine(t, sender)
	ctx := context.Background()

	req := mustCreate(t, repo, "Ana", "ana@x.com")
	req = reviewAs(t, repo, req.ID, repository.StatusApproved)

	if r := eng.ProcessApprovalEmail(ctx, req, false); !r.Sent() {
		t.Fatalf("first approval send: %+v", r)
	}
	mid, _ := repo.GetByID(ctx, req.ID)
	firstAt := *mid.LastEmailSent

	time.Sleep(10 * time.Millisecond)
	if r := eng.ProcessApprovalEmail(ctx, mid, true); !r.Sent() {
		t.Fatalf("forced resend should send: %+v", r)
	}

	after, _ := repo.GetByID(ctx, req.ID)
	if !after.EmailsSent.Approval {
		t.Fatal("flag should remain true after forced resend")
	}
	if !after.LastEmailSent.After(firstAt) {
		t.Fatalf("timestamp should advance: %v vs %v", after.LastEmailSent, firstAt)
	}
	if sender.calls() != 2 {
		t.Fatalf("expected 2 sends, got %d", sender.calls())
	}
}

func TestProcessApprovalEmail_GatedByStatus(t *testing.T) {
	sender := &fakeSender{}
	eng, repo := newTestEngine(t, sender)

	req := mustCreate(t, repo, "Ana", "ana@x.com") // pending
	res := eng.ProcessApprovalEmail(context.Background(), req, false)
	if res.Outcome != OutcomeSkipped {
		t.Fatalf("approval for pending request should skip: %+v", res)
	}
	if sender.calls() != 0 {
		t.Fatalf("no email should go out, got %d", sender.calls())
	}
}

func TestSendEmailsByStatus_BatchIsolation(t *testing.T) {
	sender := &fakeSender{failTo: map[string]error{"b@x.com": errors.New("connection refused")}}
	eng, repo := newTestEngine(t, sender)
	ctx := context.Background()

	mustCreate(t, repo, "A", "a@x.com")
	mustCreate(t, repo, "B", "b@x.com")
	mustCreate(t, repo, "C", "c@x.com")

	res, err := eng.SendEmailsByStatus(ctx, repository.StatusPending, repository.KindConfirmation, false)
	if err != nil {
		t.Fatalf("SendEmailsByStatus: %v", err)
	}
	if res.Success != 2 || res.Failed != 1 {
		t.Fatalf("expected {success:2 failed:1}, got %+v", res)
	}
	if res.Attempted() != 3 {
		t.Fatalf("all three should be attempted, got %d", res.Attempted())
	}
}

func TestSendEmailsByStatus_RejectsFlaglessKind(t *testing.T) {
	eng, _ := newTestEngine(t, &fakeSender{})
	_, err := eng.SendEmailsByStatus(context.Background(), repository.StatusPending, repository.KindAdminNotification, false)
	if !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestWriteAfterConfirm_FlagStaysFalseOnFailure(t *testing.T) {
	sender := &fakeSender{failTo: map[string]error{"ana@x.com": errors.New("421 try again later")}}
	eng, repo := newTestEngine(t, sender)
	ctx := context.Background()

	req := mustCreate(t, repo, "Ana", "ana@x.com")
	req = reviewAs(t, repo, req.ID, repository.StatusRejected)

	res := eng.ProcessVerificationEmail(ctx, req, "msg", false)
	if res.Outcome != OutcomeFailed {
		t.Fatalf("expected failure: %+v", res)
	}

	after, _ := repo.GetByID(ctx, req.ID)
	if after.EmailsSent.Verification {
		t.Fatal("flag must stay false when transport fails")
	}
}

func TestSendVerificationFollowUps_Gating(t *testing.T) {
	sender := &fakeSender{}
	eng, repo := newTestEngine(t, sender)
	ctx := context.Background()

	old := mustCreate(t, repo, "Old", "old@x.com")
	reviewAs(t, repo, old.ID, repository.StatusRejected)
	if err := repo.MarkEmailSent(ctx, old.ID, repository.KindVerification, time.Now().UTC().AddDate(0, 0, -10)); err != nil {
		t.Fatalf("MarkEmailSent: %v", err)
	}

	recent := mustCreate(t, repo, "Recent", "recent@x.com")
	reviewAs(t, repo, recent.ID, repository.StatusRejected)
	if err := repo.MarkEmailSent(ctx, recent.ID, repository.KindVerification, time.Now().UTC().AddDate(0, 0, -3)); err != nil {
		t.Fatalf("MarkEmailSent: %v", err)
	}

	res, err := eng.SendVerificationFollowUps(ctx, 7)
	if err != nil {
		t.Fatalf("SendVerificationFollowUps: %v", err)
	}
	if res.Success != 1 || res.Failed != 0 {
		t.Fatalf("expected exactly one follow-up, got %+v", res)
	}
	if got := sender.recipients(); len(got) != 1 || got[0] != "old@x.com" {
		t.Fatalf("wrong follow-up recipient: %v", got)
	}

	after, _ := repo.GetByID(ctx, old.ID)
	if !after.EmailsSent.VerificationFollowUp {
		t.Fatal("follow-up flag not persisted")
	}

	// Segunda pasada: el candidato ya tiene follow-up, no se reenvía.
	res2, err := eng.SendVerificationFollowUps(ctx, 7)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if res2.Attempted() != 0 {
		t.Fatalf("second pass should find no candidates, got %+v", res2)
	}
}

func TestProcessPendingEmails_AggregatesPasses(t *testing.T) {
	sender := &fakeSender{}
	eng, repo := newTestEngine(t, sender)
	ctx := context.Background()

	mustCreate(t, repo, "P", "p@x.com") // pending → confirmation
	ap := mustCreate(t, repo, "A", "a@x.com")
	reviewAs(t, repo, ap.ID, repository.StatusApproved) // → approval
	rj := mustCreate(t, repo, "R", "r@x.com")
	reviewAs(t, repo, rj.ID, repository.StatusRejected) // → verification

	res, err := eng.ProcessPendingEmails(ctx, false)
	if err != nil {
		t.Fatalf("ProcessPendingEmails: %v", err)
	}
	if res.ConfirmationSent != 1 || res.ApprovalSent != 1 || res.VerificationSent != 1 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	if res.Total != 3 || res.Errors != 0 {
		t.Fatalf("unexpected totals: %+v", res)
	}

	// Segunda corrida: todo flaggeado, nada nuevo sale.
	res2, err := eng.ProcessPendingEmails(ctx, false)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if res2.ConfirmationSent != 0 || res2.ApprovalSent != 0 || res2.VerificationSent != 0 {
		t.Fatalf("second run should send nothing: %+v", res2)
	}
	if sender.calls() != 3 {
		t.Fatalf("expected 3 total sends, got %d", sender.calls())
	}
}

func TestProcessDueEmail_PicksKindByStatus(t *testing.T) {
	sender := &fakeSender{}
	eng, repo := newTestEngine(t, sender)
	ctx := context.Background()

	req := mustCreate(t, repo, "Ana", "ana@x.com")
	if r := eng.ProcessDueEmail(ctx, req, false); !r.Sent() {
		t.Fatalf("pending due email: %+v", r)
	}
	after, _ := repo.GetByID(ctx, req.ID)
	if !after.EmailsSent.Confirmation {
		t.Fatal("pending status should send confirmation")
	}

	req = reviewAs(t, repo, req.ID, repository.StatusApproved)
	if r := eng.ProcessDueEmail(ctx, req, false); !r.Sent() {
		t.Fatalf("approved due email: %+v", r)
	}
	after, _ = repo.GetByID(ctx, req.ID)
	if !after.EmailsSent.Approval {
		t.Fatal("approved status should send approval")
	}
}
