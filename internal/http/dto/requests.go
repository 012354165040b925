// Package dto contiene los tipos de request/response de la API.
package dto

import (
	"time"

	"github.com/dropDatabas3/learn2grow/internal/domain/repository"
)

// RegisterRecipientRequest representa el alta de una solicitud de recipient.
type RegisterRecipientRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ReviewRequest representa la decisión administrativa sobre una solicitud.
type ReviewRequest struct {
	Status string `json:"status"` // "approved" | "rejected"
	Notes  string `json:"notes,omitempty"`
}

// ResendRequest pide re-enviar una notificación puntual.
type ResendRequest struct {
	Kind  string `json:"kind,omitempty"` // vacío = según estado actual
	Force bool   `json:"force,omitempty"`
}

// NotifyRunRequest dispara un pase completo del motor de notificaciones.
type NotifyRunRequest struct {
	Force bool `json:"force,omitempty"`
}

// EmailFlagsResponse expone los flags de envío por kind.
type EmailFlagsResponse struct {
	Confirmation         bool `json:"confirmation"`
	Approval             bool `json:"approval"`
	Verification         bool `json:"verification"`
	VerificationFollowUp bool `json:"verification_follow_up"`
}

// RequestResponse es la vista pública de una solicitud.
type RequestResponse struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Email         string             `json:"email"`
	Status        string             `json:"status"`
	EmailsSent    EmailFlagsResponse `json:"emails_sent"`
	LastEmailSent *time.Time         `json:"last_email_sent,omitempty"`
	LastEmailType string             `json:"last_email_type,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	ReviewedBy    string             `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time         `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// NewRequestResponse mapea el modelo de dominio a la vista pública.
func NewRequestResponse(req *repository.RecipientRequest) RequestResponse {
	return RequestResponse{
		ID:     req.ID,
		Name:   req.Name,
		Email:  req.Email,
		Status: string(req.Status),
		EmailsSent: EmailFlagsResponse{
			Confirmation:         req.EmailsSent.Confirmation,
			Approval:             req.EmailsSent.Approval,
			Verification:         req.EmailsSent.Verification,
			VerificationFollowUp: req.EmailsSent.VerificationFollowUp,
		},
		LastEmailSent: req.LastEmailSent,
		LastEmailType: req.LastEmailType,
		Notes:         req.Notes,
		ReviewedBy:    req.ReviewedBy,
		ReviewedAt:    req.ReviewedAt,
		CreatedAt:     req.CreatedAt,
	}
}

// RequestStatusResponse es la vista reducida para la consulta pública de
// estado: el solicitante conoce su id (lo recibió al registrarse) y solo
// necesita saber en qué está su solicitud.
type RequestStatusResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RequestListResponse es la respuesta paginada del listado de solicitudes.
type RequestListResponse struct {
	Requests []RequestResponse `json:"requests"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

// SendResultResponse es el resultado de un envío puntual.
type SendResultResponse struct {
	Outcome   string `json:"outcome"` // "sent" | "skipped" | "failed"
	MessageID string `json:"message_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// BatchResultResponse es el resultado de un pase batch.
type BatchResultResponse struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// NotifyRunResponse agrega los resultados de un pase completo.
type NotifyRunResponse struct {
	Total            int                 `json:"total"`
	ConfirmationSent int                 `json:"confirmation_sent"`
	ApprovalSent     int                 `json:"approval_sent"`
	VerificationSent int                 `json:"verification_sent"`
	Errors           int                 `json:"errors"`
	FollowUps        BatchResultResponse `json:"follow_ups"`
}
