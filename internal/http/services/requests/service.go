// Package requests implementa el ciclo de vida de las solicitudes de
// recipient: alta, revisión administrativa y re-envío de notificaciones.
package requests

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dropDatabas3/learn2grow/internal/domain/repository"
	"github.com/dropDatabas3/learn2grow/internal/notify"
	"github.com/dropDatabas3/learn2grow/internal/observability/logger"
	"github.com/dropDatabas3/learn2grow/internal/security/password"
)

// Errores del service
var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password does not meet policy")
	ErrEmailInUse         = errors.New("email already in use")
	ErrNotFound           = errors.New("request not found")
	ErrInvalidStatus      = errors.New("invalid review status")
	ErrInvalidKind        = errors.New("invalid notification kind")
	ErrStatusKindMismatch = errors.New("kind not applicable to current status")
)

// RegisterInput son los datos de alta de una solicitud.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// ReviewInput son los datos de una revisión administrativa.
type ReviewInput struct {
	Status     repository.RequestStatus
	Notes      string
	ReviewedBy string
}

// ReviewOutcome es el resultado de la revisión: la solicitud actualizada
// y el resultado del email disparado por el cambio de estado.
type ReviewOutcome struct {
	Request *repository.RecipientRequest
	Email   notify.SendResult
}

// NotifyRunOutcome agrega el pase completo de pendientes y follow-ups.
type NotifyRunOutcome struct {
	Pending   notify.PendingResult
	FollowUps notify.BatchResult
}

// Deps contiene las dependencias del service.
type Deps struct {
	Repo         repository.RequestRepository
	Engine       *notify.Engine
	Policy       password.Policy
	FollowUpDays int
}

// Service implementa las operaciones sobre solicitudes.
type Service struct {
	deps Deps
}

// New crea el service de solicitudes.
func New(deps Deps) *Service {
	if deps.FollowUpDays <= 0 {
		deps.FollowUpDays = 7
	}
	return &Service{deps: deps}
}

// Register crea la solicitud y dispara las notificaciones de alta en
// background. El registro NUNCA falla por errores de email: la entrega
// es best-effort y el engine la retoma en el próximo pase del mailer.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*repository.RecipientRequest, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("requests"),
		logger.Op("Register"),
	)

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}
	if !strings.Contains(in.Email, "@") {
		return nil, ErrInvalidEmail
	}
	if ok, reasons := s.deps.Policy.Validate(in.Password); !ok {
		log.Debug("password rejected by policy", logger.Any("reasons", reasons))
		return nil, ErrWeakPassword
	}

	hash, err := password.Hash(password.DefaultParams, in.Password)
	if err != nil {
		return nil, err
	}

	req, err := s.deps.Repo.Create(ctx, repository.CreateRequestInput{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if repository.IsConflict(err) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}

	log.Info("recipient request created",
		logger.RecipientRequestID(req.ID),
		logger.Email(req.Email),
	)

	// Entrega en background con contexto desacoplado: que el caller corte
	// la request HTTP no debe abortar el envío.
	go func() {
		bg := context.WithoutCancel(ctx)
		res := s.deps.Engine.ProcessNewRequest(bg, req, false)
		if !res.ConfirmationSent() && res.Confirmation.Err != nil {
			log.Warn("confirmation email failed, mailer will retry",
				logger.RecipientRequestID(req.ID),
				logger.Err(res.Confirmation.Err),
			)
		}
	}()

	return req, nil
}

// Review aplica la decisión administrativa y dispara el email que
// corresponde al nuevo estado. El fallo del email no revierte la
// revisión: queda reflejado en el SendResult y el mailer lo reintenta.
func (s *Service) Review(ctx context.Context, id string, in ReviewInput) (*ReviewOutcome, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("requests"),
		logger.Op("Review"),
		logger.RecipientRequestID(id),
	)

	if in.Status != repository.StatusApproved && in.Status != repository.StatusRejected {
		return nil, ErrInvalidStatus
	}

	err := s.deps.Repo.Review(ctx, id, repository.ReviewInput{
		Status:     in.Status,
		Notes:      in.Notes,
		ReviewedBy: in.ReviewedBy,
		ReviewedAt: time.Now().UTC(),
	})
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	req, err := s.deps.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var res notify.SendResult
	switch in.Status {
	case repository.StatusApproved:
		res = s.deps.Engine.ProcessApprovalEmail(ctx, req, false)
	case repository.StatusRejected:
		res = s.deps.Engine.ProcessVerificationEmail(ctx, req, in.Notes, false)
	}
	if !res.Satisfied() {
		log.Warn("review email not delivered",
			logger.RequestStatus(string(in.Status)),
			logger.Err(res.Err),
		)
	}

	log.Info("request reviewed",
		logger.RequestStatus(string(in.Status)),
		logger.String("reviewed_by", in.ReviewedBy),
	)
	return &ReviewOutcome{Request: req, Email: res}, nil
}

// Resend re-envía una notificación puntual. Con kind vacío decide según
// el estado actual de la solicitud; con force ignora el flag ya seteado.
func (s *Service) Resend(ctx context.Context, id string, kind repository.EmailKind, force bool) (notify.SendResult, error) {
	req, err := s.deps.Repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return notify.SendResult{}, ErrNotFound
		}
		return notify.SendResult{}, err
	}

	switch kind {
	case "":
		return s.deps.Engine.ProcessDueEmail(ctx, req, force), nil
	case repository.KindConfirmation:
		res := s.deps.Engine.ProcessNewRequest(ctx, req, force)
		return res.Confirmation, nil
	case repository.KindVerification:
		return s.deps.Engine.ProcessVerificationEmail(ctx, req, req.Notes, force), nil
	case repository.KindApproval:
		return s.deps.Engine.ProcessApprovalEmail(ctx, req, force), nil
	case repository.KindRejection:
		return s.deps.Engine.ProcessRejectionEmail(ctx, req, force), nil
	default:
		return notify.SendResult{}, ErrInvalidKind
	}
}

// NotifyRun ejecuta un pase completo: pendientes por estado y follow-ups
// de verificación. Los errores parciales no abortan el pase.
func (s *Service) NotifyRun(ctx context.Context, force bool) (*NotifyRunOutcome, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("requests"),
		logger.Op("NotifyRun"),
	)

	pending, pendErr := s.deps.Engine.ProcessPendingEmails(ctx, force)
	followUps, fuErr := s.deps.Engine.SendVerificationFollowUps(ctx, s.deps.FollowUpDays)

	if err := errors.Join(pendErr, fuErr); err != nil {
		log.Error("notify run finished with errors", logger.Err(err))
		return &NotifyRunOutcome{Pending: pending, FollowUps: followUps}, err
	}

	log.Info("notify run finished",
		logger.Int("total", pending.Total),
		logger.Int("errors", pending.Errors),
		logger.Int("follow_ups_sent", followUps.Success),
	)
	return &NotifyRunOutcome{Pending: pending, FollowUps: followUps}, nil
}

// Get busca una solicitud por ID.
func (s *Service) Get(ctx context.Context, id string) (*repository.RecipientRequest, error) {
	req, err := s.deps.Repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

// List lista solicitudes con paginación.
func (s *Service) List(ctx context.Context, filter repository.ListRequestsFilter) ([]repository.RecipientRequest, error) {
	if filter.Status != "" && !repository.ValidStatus(filter.Status) {
		return nil, ErrInvalidStatus
	}
	return s.deps.Repo.List(ctx, filter)
}

// Delete elimina una solicitud. Operación administrativa.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.deps.Repo.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
