// Package admin contiene los controllers del panel administrativo:
// revisión de solicitudes y disparo manual del motor de notificaciones.
package admin

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dropDatabas3/learn2grow/internal/domain/repository"
	"github.com/dropDatabas3/learn2grow/internal/http/dto"
	httperrors "github.com/dropDatabas3/learn2grow/internal/http/errors"
	"github.com/dropDatabas3/learn2grow/internal/http/helpers"
	"github.com/dropDatabas3/learn2grow/internal/http/middlewares"
	svc "github.com/dropDatabas3/learn2grow/internal/http/services/requests"
	"github.com/dropDatabas3/learn2grow/internal/notify"
	"github.com/dropDatabas3/learn2grow/internal/observability/logger"
)

// Controller maneja las operaciones administrativas sobre solicitudes.
type Controller struct {
	service *svc.Service
}

// New crea el controller administrativo.
func New(service *svc.Service) *Controller {
	return &Controller{service: service}
}

// Register monta las rutas administrativas.
func (c *Controller) Register(r chi.Router) {
	r.Get("/requests", c.List)
	r.Get("/requests/{id}", c.Get)
	r.Delete("/requests/{id}", c.Delete)
	r.Post("/requests/{id}/review", c.Review)
	r.Post("/requests/{id}/resend", c.Resend)
	r.Post("/notify/run", c.NotifyRun)
}

// List lista solicitudes con filtro opcional por estado.
// GET /api/v1/admin/requests?status=&limit=&offset=
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Admin.List"))

	q := r.URL.Query()
	filter := repository.ListRequestsFilter{
		Status: repository.RequestStatus(q.Get("status")),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("limit"))
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("offset"))
			return
		}
		filter.Offset = n
	}

	reqs, err := c.service.List(ctx, filter)
	if err != nil {
		c.handleError(w, err, log)
		return
	}

	out := dto.RequestListResponse{
		Requests: make([]dto.RequestResponse, 0, len(reqs)),
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}
	for i := range reqs {
		out.Requests = append(out.Requests, dto.NewRequestResponse(&reqs[i]))
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

// Get devuelve una solicitud.
// GET /api/v1/admin/requests/{id}
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Admin.Get"))

	req, err := c.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		c.handleError(w, err, log)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.NewRequestResponse(req))
}

// Delete elimina una solicitud.
// DELETE /api/v1/admin/requests/{id}
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Admin.Delete"))

	if err := c.service.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		c.handleError(w, err, log)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Review aplica la decisión administrativa sobre una solicitud.
// POST /api/v1/admin/requests/{id}/review
func (c *Controller) Review(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Admin.Review"))

	var in dto.ReviewRequest
	if err := helpers.DecodeJSON(w, r, &in); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	out, err := c.service.Review(ctx, chi.URLParam(r, "id"), svc.ReviewInput{
		Status:     repository.RequestStatus(in.Status),
		Notes:      in.Notes,
		ReviewedBy: middlewares.GetUserID(ctx),
	})
	if err != nil {
		c.handleError(w, err, log)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, struct {
		Request dto.RequestResponse    `json:"request"`
		Email   dto.SendResultResponse `json:"email"`
	}{
		Request: dto.NewRequestResponse(out.Request),
		Email:   sendResultResponse(out.Email),
	})
}

// Resend re-envía una notificación puntual.
// POST /api/v1/admin/requests/{id}/resend
func (c *Controller) Resend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Admin.Resend"))

	var in dto.ResendRequest
	if err := helpers.DecodeJSONOptional(w, r, &in); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	res, err := c.service.Resend(ctx, chi.URLParam(r, "id"), repository.EmailKind(in.Kind), in.Force)
	if err != nil {
		c.handleError(w, err, log)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, sendResultResponse(res))
}

// NotifyRun dispara un pase completo del motor de notificaciones.
// POST /api/v1/admin/notify/run
func (c *Controller) NotifyRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Admin.NotifyRun"))

	var in dto.NotifyRunRequest
	if err := helpers.DecodeJSONOptional(w, r, &in); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	out, err := c.service.NotifyRun(ctx, in.Force)
	if err != nil && out == nil {
		c.handleError(w, err, log)
		return
	}
	// Fallos parciales: el pase corrió pero hubo envíos que no salieron.
	// Se reportan en el body, no como error HTTP.
	if err != nil {
		log.Warn("notify run completed with partial failures", logger.Err(err))
	}

	helpers.WriteJSON(w, http.StatusOK, dto.NotifyRunResponse{
		Total:            out.Pending.Total,
		ConfirmationSent: out.Pending.ConfirmationSent,
		ApprovalSent:     out.Pending.ApprovalSent,
		VerificationSent: out.Pending.VerificationSent,
		Errors:           out.Pending.Errors,
		FollowUps: dto.BatchResultResponse{
			Success: out.FollowUps.Success,
			Failed:  out.FollowUps.Failed,
			Skipped: out.FollowUps.Skipped,
		},
	})
}

func sendResultResponse(r notify.SendResult) dto.SendResultResponse {
	return dto.SendResultResponse{
		Outcome:   string(r.Outcome),
		MessageID: r.MessageID,
		Reason:    r.Reason,
	}
}

func (c *Controller) handleError(w http.ResponseWriter, err error, log *zap.Logger) {
	switch err {
	case svc.ErrNotFound:
		httperrors.WriteError(w, httperrors.ErrNotFound)
	case svc.ErrInvalidStatus:
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("status"))
	case svc.ErrInvalidKind:
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("kind"))
	default:
		log.Error("unexpected admin error", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
	}
}
