// Package auth implementa login por password para los tres roles de la
// plataforma: admin (credencial de config), sponsor y recipient.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dropDatabas3/learn2grow/internal/domain/repository"
	"github.com/dropDatabas3/learn2grow/internal/observability/logger"
	"github.com/dropDatabas3/learn2grow/internal/security/password"
	"github.com/dropDatabas3/learn2grow/internal/security/token"
	"go.uber.org/zap"
)

// Errores de login
var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotApproved        = errors.New("recipient request not approved")
	ErrTokenIssueFailed   = errors.New("failed to issue token")
)

// AdminCredential es la credencial estática del administrador.
type AdminCredential struct {
	Email        string
	PasswordHash string // PHC argon2id
}

// Deps contiene las dependencias del service.
type Deps struct {
	Requests repository.RequestRepository
	Sponsors repository.SponsorRepository
	Issuer   *token.Issuer
	Admin    AdminCredential
}

// Result es el resultado interno de un login exitoso.
type Result struct {
	AccessToken string
	ExpiresAt   time.Time
	Role        token.Role
}

// Service resuelve logins contra config y repositorios.
type Service struct {
	deps Deps
}

// New crea el service de autenticación.
func New(deps Deps) *Service {
	return &Service{deps: deps}
}

// Login autentica por email/password. Prueba admin, sponsor y recipient
// en ese orden; un recipient sin aprobar recibe ErrNotApproved aunque la
// credencial sea válida.
func (s *Service) Login(ctx context.Context, email, plain string) (*Result, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth"),
		logger.Op("Login"),
	)

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || plain == "" {
		return nil, ErrMissingFields
	}

	// Admin: credencial estática de config.
	if s.deps.Admin.Email != "" && email == strings.ToLower(s.deps.Admin.Email) {
		if !password.Verify(plain, s.deps.Admin.PasswordHash) {
			return nil, ErrInvalidCredentials
		}
		return s.issue(log, "admin", email, token.RoleAdmin)
	}

	// Sponsor
	if sp, err := s.deps.Sponsors.GetByEmail(ctx, email); err == nil {
		if !password.Verify(plain, sp.PasswordHash) {
			return nil, ErrInvalidCredentials
		}
		return s.issue(log, sp.ID, email, token.RoleSponsor)
	} else if !repository.IsNotFound(err) {
		return nil, err
	}

	// Recipient: solo con solicitud aprobada.
	req, err := s.deps.Requests.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !password.Verify(plain, req.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if req.Status != repository.StatusApproved {
		log.Debug("recipient login blocked, request not approved",
			logger.RecipientRequestID(req.ID),
			logger.RequestStatus(string(req.Status)),
		)
		return nil, ErrNotApproved
	}
	return s.issue(log, req.ID, email, token.RoleRecipient)
}

func (s *Service) issue(log *zap.Logger, sub, email string, role token.Role) (*Result, error) {
	tok, exp, err := s.deps.Issuer.Issue(sub, email, role)
	if err != nil {
		log.Error("token issue failed", logger.Err(err))
		return nil, ErrTokenIssueFailed
	}
	log.Info("login ok", logger.Email(email), logger.String("role", string(role)))
	return &Result{AccessToken: tok, ExpiresAt: exp, Role: role}, nil
}
