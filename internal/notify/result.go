package notify

// SendOutcome discrimina el resultado de un intento de envío.
type SendOutcome string

const (
	OutcomeSent    SendOutcome = "sent"
	OutcomeSkipped SendOutcome = "skipped"
	OutcomeFailed  SendOutcome = "failed"
)

// SendResult es el resultado taggeado de un envío individual.
// Exactamente uno de los campos acompañantes es significativo según Outcome:
// MessageID para sent, Reason para skipped, Err (+Reason) para failed.
type SendResult struct {
	Outcome   SendOutcome
	MessageID string
	Reason    string
	Err       error
}

func sent(messageID string) SendResult {
	return SendResult{Outcome: OutcomeSent, MessageID: messageID}
}

func skipped(reason string) SendResult {
	return SendResult{Outcome: OutcomeSkipped, Reason: reason}
}

func failed(reason string, err error) SendResult {
	return SendResult{Outcome: OutcomeFailed, Reason: reason, Err: err}
}

// Sent reporta si el envío salió por el transporte en esta llamada.
func (r SendResult) Sent() bool { return r.Outcome == OutcomeSent }

// Satisfied reporta si el kind quedó cubierto: salió ahora o ya estaba
// enviado (skip idempotente).
func (r SendResult) Satisfied() bool {
	return r.Outcome == OutcomeSent || r.Outcome == OutcomeSkipped
}

// NewRequestResult describe el resultado de procesar una solicitud nueva.
// Los dos envíos son independientes: el fallo de uno no afecta al otro.
type NewRequestResult struct {
	Confirmation      SendResult
	AdminNotification SendResult
}

// ConfirmationSent reporta si la confirmación al usuario salió en esta llamada.
func (r NewRequestResult) ConfirmationSent() bool { return r.Confirmation.Sent() }

// AdminNotified reporta si la notificación al admin salió en esta llamada.
func (r NewRequestResult) AdminNotified() bool { return r.AdminNotification.Sent() }

// BatchResult acumula resultados de una pasada batch.
type BatchResult struct {
	Success int
	Failed  int
	Skipped int
}

func (b *BatchResult) add(r SendResult) {
	switch r.Outcome {
	case OutcomeSent:
		b.Success++
	case OutcomeSkipped:
		b.Skipped++
	case OutcomeFailed:
		b.Failed++
	}
}

// Attempted retorna el total de solicitudes visitadas por la pasada.
func (b BatchResult) Attempted() int { return b.Success + b.Failed + b.Skipped }

// PendingResult agrega los contadores de las tres pasadas de
// ProcessPendingEmails.
type PendingResult struct {
	Total            int
	ConfirmationSent int
	ApprovalSent     int
	VerificationSent int
	Errors           int
}
