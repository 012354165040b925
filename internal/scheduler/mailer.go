// Package scheduler corre el motor de notificaciones en forma periódica.
// Es el corazón del daemon mailer: cada intervalo dispara un pase
// completo de pendientes y follow-ups.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dropDatabas3/learn2grow/internal/domain/repository"
	"github.com/dropDatabas3/learn2grow/internal/notify"
	"github.com/dropDatabas3/learn2grow/internal/observability/logger"
)

// Options configura el mailer.
type Options struct {
	// Interval entre pases. Default 60m.
	Interval time.Duration

	// Force re-envía ignorando los flags ya seteados.
	Force bool

	// TargetEmail limita el pase a una única solicitud (por email).
	TargetEmail string

	// FollowUpDays es la antigüedad mínima de la verificación para
	// disparar follow-up. Default 7.
	FollowUpDays int
}

// Mailer ejecuta pases del engine, puntuales o programados.
type Mailer struct {
	engine *notify.Engine
	repo   repository.RequestRepository
	opts   Options
}

// New crea el mailer.
func New(engine *notify.Engine, repo repository.RequestRepository, opts Options) *Mailer {
	if opts.Interval <= 0 {
		opts.Interval = 60 * time.Minute
	}
	if opts.FollowUpDays <= 0 {
		opts.FollowUpDays = 7
	}
	return &Mailer{engine: engine, repo: repo, opts: opts}
}

// RunOnce ejecuta un único pase y retorna error si hubo fallos de envío.
// Con TargetEmail procesa solo esa solicitud.
func (m *Mailer) RunOnce(ctx context.Context) error {
	if m.opts.TargetEmail != "" {
		return m.runTarget(ctx)
	}
	return m.runPass(ctx)
}

// Run ejecuta un pase inmediato y después se queda corriendo con el
// intervalo configurado hasta que ctx se cancele. Los fallos de un pase
// se loguean y no detienen el daemon.
func (m *Mailer) Run(ctx context.Context) error {
	log := logger.L().With(logger.Component("scheduler"))

	if err := m.runPass(ctx); err != nil {
		log.Warn("initial pass finished with errors", logger.Err(err))
	}

	c := cron.New()
	_, err := c.AddFunc(fmt.Sprintf("@every %s", m.opts.Interval), func() {
		if err := m.runPass(ctx); err != nil {
			log.Warn("scheduled pass finished with errors", logger.Err(err))
		}
	})
	if err != nil {
		return fmt.Errorf("scheduler: bad interval: %w", err)
	}

	log.Info("mailer daemon started", logger.String("interval", m.opts.Interval.String()))
	c.Start()
	<-ctx.Done()

	stopCtx := c.Stop()
	// Esperamos a que termine el pase en curso, con tope.
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		log.Warn("mailer stop timed out with a pass still running")
	}
	log.Info("mailer daemon stopped")
	return nil
}

func (m *Mailer) runTarget(ctx context.Context) error {
	log := logger.L().With(logger.Component("scheduler"), logger.Email(m.opts.TargetEmail))

	req, err := m.repo.GetByEmail(ctx, m.opts.TargetEmail)
	if err != nil {
		if repository.IsNotFound(err) {
			return fmt.Errorf("scheduler: no request for %s", m.opts.TargetEmail)
		}
		return err
	}

	res := m.engine.ProcessDueEmail(ctx, req, m.opts.Force)
	log.Info("targeted pass finished",
		logger.RecipientRequestID(req.ID),
		logger.String("outcome", string(res.Outcome)),
		logger.String("reason", res.Reason),
	)
	if !res.Satisfied() {
		if res.Err != nil {
			return res.Err
		}
		return fmt.Errorf("scheduler: send not satisfied: %s", res.Reason)
	}
	return nil
}

func (m *Mailer) runPass(ctx context.Context) error {
	log := logger.L().With(logger.Component("scheduler"))
	start := time.Now()

	pending, pendErr := m.engine.ProcessPendingEmails(ctx, m.opts.Force)
	followUps, fuErr := m.engine.SendVerificationFollowUps(ctx, m.opts.FollowUpDays)

	log.Info("pass finished",
		logger.Int("total", pending.Total),
		logger.Int("confirmation_sent", pending.ConfirmationSent),
		logger.Int("approval_sent", pending.ApprovalSent),
		logger.Int("verification_sent", pending.VerificationSent),
		logger.Int("follow_ups_sent", followUps.Success),
		logger.Int("errors", pending.Errors+followUps.Failed),
		logger.Duration(time.Since(start)),
	)

	if n := pending.Errors + followUps.Failed; n > 0 {
		// Fallos por mensaje: quedan en los contadores y se reintentan en
		// la próxima pasada. Solo los errores de infraestructura suben.
		log.Warn("pass had delivery failures", logger.Int("failed", n))
	}
	return errors.Join(pendErr, fuErr)
}
