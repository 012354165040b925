package repository

import (
	"context"
	"time"
)

// RequestStatus es el estado de revisión de una solicitud de recipient.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// ValidStatus verifica que el estado sea uno de los conocidos.
func ValidStatus(s RequestStatus) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// EmailKind es la categoría de notificación por email.
// Renderer, transporte y flag-update consumen el mismo tipo.
type EmailKind string

const (
	KindAdminNotification EmailKind = "admin_notification"
	KindConfirmation      EmailKind = "confirmation"
	KindVerification      EmailKind = "verification"
	KindApproval          EmailKind = "approval"
	KindRejection         EmailKind = "rejection"
	KindFollowUp          EmailKind = "follow_up"
)

// ValidKind verifica que el kind sea uno de los conocidos.
func ValidKind(k EmailKind) bool {
	switch k {
	case KindAdminNotification, KindConfirmation, KindVerification,
		KindApproval, KindRejection, KindFollowUp:
		return true
	}
	return false
}

// HasFlag indica si el kind tiene flag de idempotencia en EmailFlags.
// admin_notification y rejection no lo tienen: el primero va siempre al
// admin junto con la confirmación, el segundo es una variante de wording
// del email de verificación.
func (k EmailKind) HasFlag() bool {
	switch k {
	case KindConfirmation, KindVerification, KindApproval, KindFollowUp:
		return true
	}
	return false
}

// EmailFlags es el estado de envío por kind. Los flags son monótonos:
// una vez true solo un override administrativo los resetea.
type EmailFlags struct {
	Confirmation         bool
	Approval             bool
	Verification         bool
	VerificationFollowUp bool
}

// Sent retorna el flag correspondiente al kind. Kinds sin flag retornan false.
func (f EmailFlags) Sent(kind EmailKind) bool {
	switch kind {
	case KindConfirmation:
		return f.Confirmation
	case KindApproval:
		return f.Approval
	case KindVerification:
		return f.Verification
	case KindFollowUp:
		return f.VerificationFollowUp
	}
	return false
}

// Set setea el flag correspondiente al kind (in place).
func (f *EmailFlags) Set(kind EmailKind) {
	switch kind {
	case KindConfirmation:
		f.Confirmation = true
	case KindApproval:
		f.Approval = true
	case KindVerification:
		f.Verification = true
	case KindFollowUp:
		f.VerificationFollowUp = true
	}
}

// RecipientRequest representa una solicitud de alta como recipient.
// El engine de notificaciones solo muta los campos de estado de email;
// status/notes/reviewed* los muta la revisión administrativa.
type RecipientRequest struct {
	ID           string
	Name         string
	Email        string // único
	PasswordHash string
	Status       RequestStatus
	EmailsSent   EmailFlags
	LastEmailSent *time.Time
	LastEmailType string // diagnóstico: último kind enviado con éxito
	Notes        string
	ReviewedBy   string
	ReviewedAt   *time.Time
	CreatedAt    time.Time
}

// CreateRequestInput contiene los datos para crear una solicitud.
type CreateRequestInput struct {
	Name         string
	Email        string
	PasswordHash string
}

// ReviewInput contiene los datos de una revisión administrativa.
type ReviewInput struct {
	Status     RequestStatus
	Notes      string
	ReviewedBy string
	ReviewedAt time.Time
}

// ListRequestsFilter opciones para listar solicitudes.
type ListRequestsFilter struct {
	Status RequestStatus // vacío = todas
	Limit  int           // Default 50, max 200
	Offset int
}

// RequestRepository define operaciones sobre solicitudes de recipient.
type RequestRepository interface {
	// Create crea una nueva solicitud en estado pending.
	// Retorna ErrConflict si el email ya existe.
	Create(ctx context.Context, input CreateRequestInput) (*RecipientRequest, error)

	// GetByID busca una solicitud por ID.
	// Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*RecipientRequest, error)

	// GetByEmail busca una solicitud por email.
	// Retorna ErrNotFound si no existe.
	GetByEmail(ctx context.Context, email string) (*RecipientRequest, error)

	// List lista solicitudes con paginación.
	List(ctx context.Context, filter ListRequestsFilter) ([]RecipientRequest, error)

	// FindByStatus retorna todas las solicitudes con el estado dado.
	FindByStatus(ctx context.Context, status RequestStatus) ([]RecipientRequest, error)

	// FindPendingEmail retorna las solicitudes con el estado dado cuyo flag
	// de envío para kind está en false. kind debe tener flag (HasFlag).
	FindPendingEmail(ctx context.Context, status RequestStatus, kind EmailKind) ([]RecipientRequest, error)

	// FindFollowUpCandidates retorna solicitudes rejected con verificación
	// enviada antes de olderThan y sin follow-up registrado.
	FindFollowUpCandidates(ctx context.Context, olderThan time.Time) ([]RecipientRequest, error)

	// Review actualiza status/notes/reviewed* de una solicitud.
	// Retorna ErrNotFound si no existe.
	Review(ctx context.Context, id string, input ReviewInput) error

	// MarkEmailSent setea el flag del kind de forma atómica y condicional
	// ("solo si está en false") y actualiza last_email_sent/last_email_type.
	// Retorna ErrAlreadySent si el flag ya estaba seteado (carrera perdida),
	// ErrNotFound si la solicitud no existe.
	MarkEmailSent(ctx context.Context, id string, kind EmailKind, at time.Time) error

	// ForceTouchEmail actualiza last_email_sent/last_email_type sin
	// condición y asegura el flag en true. Usado por re-envíos con force.
	ForceTouchEmail(ctx context.Context, id string, kind EmailKind, at time.Time) error

	// Delete elimina una solicitud. Operación administrativa/test-only:
	// el engine nunca borra.
	Delete(ctx context.Context, id string) error
}
