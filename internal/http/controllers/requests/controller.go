// Package requests contiene el controller público de solicitudes.
package requests

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dropDatabas3/learn2grow/internal/http/dto"
	httperrors "github.com/dropDatabas3/learn2grow/internal/http/errors"
	"github.com/dropDatabas3/learn2grow/internal/http/helpers"
	svc "github.com/dropDatabas3/learn2grow/internal/http/services/requests"
	"github.com/dropDatabas3/learn2grow/internal/observability/logger"
)

// Controller maneja el alta pública de solicitudes de recipient.
type Controller struct {
	service *svc.Service
}

// New crea el controller público de solicitudes.
func New(service *svc.Service) *Controller {
	return &Controller{service: service}
}

// Register monta las rutas públicas del recurso.
func (c *Controller) Register(r chi.Router) {
	r.Post("/", c.Create)
	r.Get("/{id}/status", c.Status)
}

// Create maneja el alta de una solicitud.
// POST /api/v1/requests
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Requests.Create"))

	var in dto.RegisterRecipientRequest
	if err := helpers.DecodeJSON(w, r, &in); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	req, err := c.service.Register(ctx, svc.RegisterInput{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
	})
	if err != nil {
		c.handleError(w, err, log)
		return
	}

	w.Header().Set("Location", "/api/v1/admin/requests/"+req.ID)
	helpers.WriteJSON(w, http.StatusCreated, dto.NewRequestResponse(req))
}

// Status devuelve el estado de una solicitud. El id funciona como
// capability: lo conoce quien se registró (viene en la respuesta del alta).
// GET /api/v1/requests/{id}/status
func (c *Controller) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Requests.Status"))

	req, err := c.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		c.handleError(w, err, log)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.RequestStatusResponse{
		ID:        req.ID,
		Status:    string(req.Status),
		Notes:     req.Notes,
		CreatedAt: req.CreatedAt,
	})
}

func (c *Controller) handleError(w http.ResponseWriter, err error, log *zap.Logger) {
	switch err {
	case svc.ErrMissingFields:
		httperrors.WriteError(w, httperrors.ErrMissingFields)
	case svc.ErrInvalidEmail:
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("invalid email"))
	case svc.ErrWeakPassword:
		httperrors.WriteError(w, httperrors.ErrPasswordTooWeak)
	case svc.ErrEmailInUse:
		httperrors.WriteError(w, httperrors.ErrEmailAlreadyInUse)
	case svc.ErrNotFound:
		httperrors.WriteError(w, httperrors.ErrNotFound)
	default:
		log.Error("unexpected register error", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
	}
}
