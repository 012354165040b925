// Package auth contiene el controller de autenticación.
package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dropDatabas3/learn2grow/internal/http/dto"
	httperrors "github.com/dropDatabas3/learn2grow/internal/http/errors"
	"github.com/dropDatabas3/learn2grow/internal/http/helpers"
	svc "github.com/dropDatabas3/learn2grow/internal/http/services/auth"
	"github.com/dropDatabas3/learn2grow/internal/observability/logger"
)

// Controller maneja login por password.
type Controller struct {
	service *svc.Service
}

// New crea el controller de autenticación.
func New(service *svc.Service) *Controller {
	return &Controller{service: service}
}

// Register monta las rutas de autenticación.
func (c *Controller) Register(r chi.Router) {
	r.Post("/login", c.Login)
}

// Login autentica por email/password.
// POST /api/v1/auth/login
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Auth.Login"))

	var in dto.LoginRequest
	if err := helpers.DecodeJSON(w, r, &in); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	res, err := c.service.Login(ctx, in.Email, in.Password)
	if err != nil {
		c.handleError(w, err, log)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.LoginResponse{
		AccessToken: res.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   res.ExpiresAt,
		Role:        string(res.Role),
	})
}

func (c *Controller) handleError(w http.ResponseWriter, err error, log *zap.Logger) {
	switch err {
	case svc.ErrMissingFields:
		httperrors.WriteError(w, httperrors.ErrMissingFields)
	case svc.ErrInvalidCredentials:
		httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
	case svc.ErrNotApproved:
		httperrors.WriteError(w, httperrors.ErrRequestNotApproved)
	default:
		log.Error("unexpected login error", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
	}
}
