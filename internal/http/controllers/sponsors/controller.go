// Package sponsors contiene el controller de sponsors.
package sponsors

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dropDatabas3/learn2grow/internal/http/dto"
	httperrors "github.com/dropDatabas3/learn2grow/internal/http/errors"
	"github.com/dropDatabas3/learn2grow/internal/http/helpers"
	svc "github.com/dropDatabas3/learn2grow/internal/http/services/sponsors"
	"github.com/dropDatabas3/learn2grow/internal/observability/logger"
)

// Controller maneja el alta y consulta de sponsors.
type Controller struct {
	service *svc.Service
}

// New crea el controller de sponsors.
func New(service *svc.Service) *Controller {
	return &Controller{service: service}
}

// Register monta las rutas del recurso.
func (c *Controller) Register(r chi.Router) {
	r.Post("/", c.Create)
	r.Get("/{id}", c.Get)
}

// Create da de alta un sponsor.
// POST /api/v1/sponsors
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Sponsors.Create"))

	var in dto.RegisterSponsorRequest
	if err := helpers.DecodeJSON(w, r, &in); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	sp, err := c.service.Register(ctx, svc.RegisterInput{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
	})
	if err != nil {
		c.handleError(w, err, log)
		return
	}

	helpers.WriteJSON(w, http.StatusCreated, dto.NewSponsorResponse(sp))
}

// Get devuelve un sponsor.
// GET /api/v1/sponsors/{id}
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Sponsors.Get"))

	sp, err := c.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		c.handleError(w, err, log)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.NewSponsorResponse(sp))
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
		log.Error("unexpected sponsor error", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
	}
}
