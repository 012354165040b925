package email

import "context"

// Message es un email listo para enviar.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender es la interfaz para enviar emails.
// Implementada por SMTPSender y DevSink.
type Sender interface {
	// Send envía un email y retorna el message id asignado.
	// El contexto acota la operación: deadline excedido = fallo de entrega.
	// Los fallos se reportan como *MailError cuando se pueden clasificar.
	Send(ctx context.Context, msg *Message) (string, error)
}
