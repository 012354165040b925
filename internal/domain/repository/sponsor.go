package repository

import (
	"context"
	"time"
)

// Sponsor representa un patrocinador registrado en la plataforma.
type Sponsor struct {
	ID           string
	Name         string
	Email        string // único
	PasswordHash string
	CreatedAt    time.Time
}

// CreateSponsorInput contiene los datos para registrar un sponsor.
type CreateSponsorInput struct {
	Name         string
	Email        string
	PasswordHash string
}

// SponsorRepository define operaciones sobre sponsors.
type SponsorRepository interface {
	// Create registra un sponsor. Retorna ErrConflict si el email ya existe.
	Create(ctx context.Context, input CreateSponsorInput) (*Sponsor, error)

	// GetByID busca un sponsor por ID. Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*Sponsor, error)

	// GetByEmail busca un sponsor por email. Retorna ErrNotFound si no existe.
	GetByEmail(ctx context.Context, email string) (*Sponsor, error)
}
