package dto

import (
	"time"

	"github.com/dropDatabas3/learn2grow/internal/domain/repository"
)

// RegisterSponsorRequest representa el alta de un sponsor.
type RegisterSponsorRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SponsorResponse es la vista pública de un sponsor.
type SponsorResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSponsorResponse mapea el modelo de dominio a la vista pública.
func NewSponsorResponse(s *repository.Sponsor) SponsorResponse {
	return SponsorResponse{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		CreatedAt: s.CreatedAt,
	}
}
