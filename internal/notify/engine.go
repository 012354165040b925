package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/learn2grow/internal/domain/repository"
	"github.com/dropDatabas3/learn2grow/internal/email"
	"github.com/dropDatabas3/learn2grow/internal/metrics"
	"github.com/dropDatabas3/learn2grow/internal/observability/logger"
)

// ErrInvalidKind indica un kind que no aplica a la operación pedida.
var ErrInvalidKind = errors.New("notify: kind not valid for this operation")

// Config parametriza el engine de notificaciones.
type Config struct {
	// FromAddress remitente de todos los emails.
	FromAddress string
	// AdminAddress destinatario fijo de las notificaciones al admin.
	AdminAddress string
	// SendTimeout acota cada llamada al transporte. Default 30s.
	SendTimeout time.Duration
	// Concurrency límite de envíos en paralelo en pasadas batch. Default 4.
	Concurrency int
}

func (c *Config) defaults() {
	if c.SendTimeout <= 0 {
		c.SendTimeout = 30 * time.Second
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
}

// Engine decide qué notificaciones corresponden a una solicitud (o a un
// batch filtrado por estado), las renderiza, las envía y persiste el
// resultado.
//
// Idempotencia por flag: un kind se considera entregado cuando cualquier
// intento para ese (solicitud, kind) tuvo éxito; las pasadas siguientes lo
// saltean. El flag se escribe estrictamente después de que el transporte
// confirma (write-after-confirm), nunca antes.
//
// Concurrencia: sf colapsa invocaciones simultáneas del mismo
// (solicitud, kind) en un único envío; el write condicional del repositorio
// cubre la carrera entre procesos — el perdedor queda en no-op.
type Engine struct {
	repo     repository.RequestRepository
	sender   email.Sender
	renderer *email.Renderer
	cfg      Config

	sf singleflight.Group
}

// NewEngine construye un Engine con dependencias explícitas.
func NewEngine(repo repository.RequestRepository, sender email.Sender, renderer *email.Renderer, cfg Config) *Engine {
	cfg.defaults()
	return &Engine{
		repo:     repo,
		sender:   sender,
		renderer: renderer,
		cfg:      cfg,
	}
}

// ProcessNewRequest envía la notificación al admin y la confirmación al
// usuario para una solicitud recién creada. Los dos envíos son
// independientes: el fallo de uno no bloquea ni revierte el otro. Nunca
// retorna error por un fallo de entrega individual.
//
// Precondición (salvo force): el flag de confirmación está en false. La
// notificación al admin no tiene flag propio; comparte la ventana de
// idempotencia de la confirmación.
func (e *Engine) ProcessNewRequest(ctx context.Context, req *repository.RecipientRequest, force bool) NewRequestResult {
	log := logger.From(ctx).With(
		logger.Component("notify.Engine"),
		logger.RecipientRequestID(req.ID),
	)

	var res NewRequestResult
	if !force {
		// La notificación al admin no tiene flag propio: su ventana de
		// idempotencia es el flag de confirmación, que hay que mirar en el
		// datastore porque la copia del caller puede estar vieja.
		already := req.EmailsSent.Sent(repository.KindConfirmation)
		if !already {
			if cur, err := e.repo.GetByID(ctx, req.ID); err == nil {
				already = cur.EmailsSent.Sent(repository.KindConfirmation)
			}
		}
		if already {
			res.Confirmation = skipped("confirmation already sent")
			res.AdminNotification = skipped("confirmation already sent")
			metrics.NotifyEmailsTotal.WithLabelValues(string(repository.KindConfirmation), string(OutcomeSkipped)).Inc()
			return res
		}
	}

	res.AdminNotification = e.deliver(ctx, req, repository.KindAdminNotification, "", force)
	res.Confirmation = e.deliver(ctx, req, repository.KindConfirmation, "", force)

	if !res.Confirmation.Satisfied() {
		log.Warn("confirmation email failed", logger.Err(res.Confirmation.Err))
	}
	if !res.AdminNotification.Satisfied() {
		log.Warn("admin notification failed", logger.Err(res.AdminNotification.Err))
	}
	return res
}

// ProcessVerificationEmail envía el pedido de información adicional con un
// mensaje libre. Idempotente: si el flag de verificación ya está seteado y
// no hay force, es un no-op que se reporta como satisfecho.
func (e *Engine) ProcessVerificationEmail(ctx context.Context, req *repository.RecipientRequest, message string, force bool) SendResult {
	return e.deliver(ctx, req, repository.KindVerification, message, force)
}

// ProcessApprovalEmail envía el email de aprobación. Gated por
// status == approved; idempotente por flag.
func (e *Engine) ProcessApprovalEmail(ctx context.Context, req *repository.RecipientRequest, force bool) SendResult {
	if req.Status != repository.StatusApproved {
		return skipped(fmt.Sprintf("status is %s, not %s", req.Status, repository.StatusApproved))
	}
	return e.deliver(ctx, req, repository.KindApproval, "", force)
}

// ProcessRejectionEmail envía el email de rechazo con las notas de la
// revisión. Gated por status == rejected. El rechazo no tiene flag propio:
// el flujo de revisión lo dispara una sola vez.
func (e *Engine) ProcessRejectionEmail(ctx context.Context, req *repository.RecipientRequest, force bool) SendResult {
	if req.Status != repository.StatusRejected {
		return skipped(fmt.Sprintf("status is %s, not %s", req.Status, repository.StatusRejected))
	}
	return e.deliver(ctx, req, repository.KindRejection, req.Notes, force)
}

// ProcessDueEmail decide el kind que corresponde al estado actual de la
// solicitud y lo envía: pending → confirmation, approved → approval,
// rejected → verification. Usado por el re-envío manual del mailer.
func (e *Engine) ProcessDueEmail(ctx context.Context, req *repository.RecipientRequest, force bool) SendResult {
	switch req.Status {
	case repository.StatusPending:
		return e.deliver(ctx, req, repository.KindConfirmation, "", force)
	case repository.StatusApproved:
		return e.deliver(ctx, req, repository.KindApproval, "", force)
	case repository.StatusRejected:
		return e.deliver(ctx, req, repository.KindVerification, req.Notes, force)
	default:
		return failed(fmt.Sprintf("unknown status %q", req.Status), nil)
	}
}

// SendEmailsByStatus ejecuta una pasada batch: toma todas las solicitudes
// con el estado dado cuyo flag para kind está en false (todas, con force) y
// intenta el envío correspondiente. Cada solicitud es independiente: un
// fallo no aborta la pasada. El error retornado es solo de infraestructura
// (datastore inaccesible).
func (e *Engine) SendEmailsByStatus(ctx context.Context, status repository.RequestStatus, kind repository.EmailKind, force bool) (BatchResult, error) {
	var res BatchResult
	if !kind.HasFlag() {
		return res, fmt.Errorf("%w: %s", ErrInvalidKind, kind)
	}
	metrics.NotifyBatchRuns.WithLabelValues(string(status) + ":" + string(kind)).Inc()

	var (
		reqs []repository.RecipientRequest
		err  error
	)
	if force {
		reqs, err = e.repo.FindByStatus(ctx, status)
	} else {
		reqs, err = e.repo.FindPendingEmail(ctx, status, kind)
	}
	if err != nil {
		return res, fmt.Errorf("query candidates: %w", err)
	}

	e.runBatch(ctx, reqs, &res, func(ctx context.Context, req *repository.RecipientRequest) SendResult {
		notes := ""
		if kind == repository.KindVerification {
			notes = req.Notes
		}
		return e.deliver(ctx, req, kind, notes, force)
	})

	logger.From(ctx).Info("batch pass finished",
		logger.Component("notify.Engine"),
		logger.RequestStatus(string(status)),
		logger.Kind(string(kind)),
		logger.Int("success", res.Success),
		logger.Int("failed", res.Failed),
		logger.Int("skipped", res.Skipped),
	)
	return res, nil
}

// SendVerificationFollowUps envía recordatorios a solicitudes cuya
// verificación salió hace más de daysThreshold días y todavía no tienen
// follow-up registrado.
func (e *Engine) SendVerificationFollowUps(ctx context.Context, daysThreshold int) (BatchResult, error) {
	var res BatchResult
	if daysThreshold <= 0 {
		return res, fmt.Errorf("daysThreshold must be positive, got %d", daysThreshold)
	}
	metrics.NotifyBatchRuns.WithLabelValues("follow_up").Inc()

	cutoff := time.Now().UTC().AddDate(0, 0, -daysThreshold)
	reqs, err := e.repo.FindFollowUpCandidates(ctx, cutoff)
	if err != nil {
		return res, fmt.Errorf("query follow-up candidates: %w", err)
	}

	e.runBatch(ctx, reqs, &res, func(ctx context.Context, req *repository.RecipientRequest) SendResult {
		return e.deliver(ctx, req, repository.KindFollowUp, req.Notes, false)
	})
	return res, nil
}

// ProcessPendingEmails corre las tres pasadas estándar en una sola llamada:
// confirmación para pending, aprobación para approved y verificación para
// rejected. Pensado para ejecución periódica. Un error en una pasada no
// aborta las siguientes; los errores de infraestructura se juntan en el
// error retornado para que el entry point pueda salir con código distinto
// de cero.
func (e *Engine) ProcessPendingEmails(ctx context.Context, force bool) (PendingResult, error) {
	var (
		res  PendingResult
		errs []error
	)

	passes := []struct {
		status repository.RequestStatus
		kind   repository.EmailKind
		count  *int
	}{
		{repository.StatusPending, repository.KindConfirmation, &res.ConfirmationSent},
		{repository.StatusApproved, repository.KindApproval, &res.ApprovalSent},
		{repository.StatusRejected, repository.KindVerification, &res.VerificationSent},
	}

	for _, p := range passes {
		br, err := e.SendEmailsByStatus(ctx, p.status, p.kind, force)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s/%s pass: %w", p.status, p.kind, err))
			res.Errors++
			continue
		}
		res.Total += br.Attempted()
		*p.count += br.Success
		res.Errors += br.Failed
	}

	return res, errors.Join(errs...)
}

// runBatch itera las solicitudes con concurrencia acotada acumulando en res.
// Los closures nunca retornan error: el aislamiento por solicitud es la
// política de la pasada.
func (e *Engine) runBatch(ctx context.Context, reqs []repository.RecipientRequest, res *BatchResult, send func(context.Context, *repository.RecipientRequest) SendResult) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)

	var mu sync.Mutex
	for i := range reqs {
		req := reqs[i]
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			r := send(gctx, &req)
			mu.Lock()
			res.add(r)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
}

// deliver es el camino único de envío: chequeo de idempotencia, render,
// transporte con timeout y persistencia del flag. Invocaciones simultáneas
// del mismo (solicitud, kind) colapsan en un único envío vía singleflight.
func (e *Engine) deliver(ctx context.Context, req *repository.RecipientRequest, kind repository.EmailKind, notes string, force bool) SendResult {
	if kind.HasFlag() && !force && req.EmailsSent.Sent(kind) {
		metrics.NotifyEmailsTotal.WithLabelValues(string(kind), string(OutcomeSkipped)).Inc()
		return skipped("already sent")
	}

	key := req.ID + "/" + string(kind)
	v, _, _ := e.sf.Do(key, func() (interface{}, error) {
		return e.sendAndPersist(ctx, req, kind, notes, force), nil
	})
	res := v.(SendResult)
	metrics.NotifyEmailsTotal.WithLabelValues(string(kind), string(res.Outcome)).Inc()
	return res
}

func (e *Engine) sendAndPersist(ctx context.Context, req *repository.RecipientRequest, kind repository.EmailKind, notes string, force bool) SendResult {
	log := logger.From(ctx).With(
		logger.Component("notify.Engine"),
		logger.RecipientRequestID(req.ID),
		logger.Kind(string(kind)),
	)

	// Releer antes de enviar: la copia del caller puede estar vieja si la
	// misma solicitud ya pasó por otra invocación. El flag del datastore es
	// la verdad; sin esta relectura dos llamadas con el mismo valor de
	// solicitud duplicarían la entrega.
	if kind.HasFlag() && !force {
		cur, err := e.repo.GetByID(ctx, req.ID)
		if err != nil {
			if repository.IsNotFound(err) {
				return skipped("request no longer exists")
			}
			log.Error("reload before send failed", logger.Err(err))
			return failed("reload", err)
		}
		if cur.EmailsSent.Sent(kind) {
			req.EmailsSent.Set(kind)
			return skipped("already sent")
		}
	}

	rendered, err := e.renderer.Render(kind, email.Vars{
		Name:      req.Name,
		Email:     req.Email,
		Notes:     notes,
		RequestID: req.ID,
	})
	if err != nil {
		// Kind desconocido es un error de programación; en producción se
		// contabiliza como fallo de entrega.
		log.Error("template render failed", logger.Err(err))
		return failed("template", err)
	}

	to := req.Email
	if kind == repository.KindAdminNotification {
		to = e.cfg.AdminAddress
	}

	sctx, cancel := context.WithTimeout(ctx, e.cfg.SendTimeout)
	defer cancel()

	start := time.Now()
	msgID, err := e.sender.Send(sctx, &email.Message{
		From:    e.cfg.FromAddress,
		To:      to,
		Subject: rendered.Subject,
		HTML:    rendered.HTML,
		Text:    rendered.Text,
	})
	metrics.NotifySendDuration.Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		me := email.Diagnose(err)
		log.Warn("delivery failed",
			logger.Email(to),
			logger.String("code", string(me.Code)),
			logger.Err(err),
		)
		return failed(string(me.Code), me)
	}

	// write-after-confirm: el flag recién se persiste con el transporte
	// confirmado.
	if kind.HasFlag() {
		now := time.Now().UTC()
		if force {
			err = e.repo.ForceTouchEmail(ctx, req.ID, kind, now)
		} else {
			err = e.repo.MarkEmailSent(ctx, req.ID, kind, now)
			if repository.IsAlreadySent(err) {
				// Carrera entre procesos perdida: otro pass ya marcó el
				// flag. El email salió igual; queda registrado como enviado.
				log.Warn("flag already set by concurrent pass")
				err = nil
			}
		}
		if err != nil {
			// El email salió pero el flag no quedó persistido: la próxima
			// pasada lo va a reintentar. Preferimos un posible duplicado a
			// marcar como enviado algo que no salió.
			log.Error("email sent but flag not persisted", logger.Err(err))
			return failed("persist", err)
		}
		// Mantener fresca la copia del caller: una llamada posterior con el
		// mismo valor corta en el chequeo en memoria.
		req.EmailsSent.Set(kind)
	}

	log.Info("email sent", logger.Email(to), logger.String("message_id", msgID))
	return sent(msgID)
}
