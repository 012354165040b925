// Package sponsors implementa el alta y consulta de sponsors.
package sponsors

import (
	"context"
	"errors"
	"strings"

	"github.com/dropDatabas3/learn2grow/internal/domain/repository"
	"github.com/dropDatabas3/learn2grow/internal/observability/logger"
	"github.com/dropDatabas3/learn2grow/internal/security/password"
)

// Errores del service
var (
	ErrMissingFields = errors.New("missing required fields")
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrWeakPassword  = errors.New("password does not meet policy")
	ErrEmailInUse    = errors.New("email already in use")
	ErrNotFound      = errors.New("sponsor not found")
)

// RegisterInput son los datos de alta de un sponsor.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Deps contiene las dependencias del service.
type Deps struct {
	Repo   repository.SponsorRepository
	Policy password.Policy
}

// Service implementa las operaciones sobre sponsors.
type Service struct {
	deps Deps
}

// New crea el service de sponsors.
func New(deps Deps) *Service {
	return &Service{deps: deps}
}

// Register da de alta un sponsor. A diferencia de los recipients no hay
// revisión previa: el sponsor queda activo al crearse.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*repository.Sponsor, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("sponsors"),
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

	sp, err := s.deps.Repo.Create(ctx, repository.CreateSponsorInput{
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

	log.Info("sponsor created", logger.SponsorID(sp.ID), logger.Email(sp.Email))
	return sp, nil
}

// Get busca un sponsor por ID.
func (s *Service) Get(ctx context.Context, id string) (*repository.Sponsor, error) {
	sp, err := s.deps.Repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sp, nil
}
