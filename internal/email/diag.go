package email

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Diagnose analiza un error del proveedor y lo clasifica en un *MailError.
// Si err ya es *MailError lo retorna tal cual.
func Diagnose(err error) *MailError {
	if err == nil {
		return nil
	}
	if me, ok := AsMailError(err); ok {
		return me
	}

	s := strings.ToLower(err.Error())

	// timeouts (incluye deadline del contexto)
	if errors.Is(err, context.DeadlineExceeded) {
		return &MailError{Code: CodeTransport, Temporary: true, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &MailError{Code: CodeTransport, Temporary: true, Err: err}
	}
	if strings.Contains(s, "timeout") || strings.Contains(s, "i/o timeout") {
		return &MailError{Code: CodeTransport, Temporary: true, Err: err}
	}

	// dial/conn/dns
	if strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connectex:") || // windows
		strings.Contains(s, "no such host") ||
		strings.Contains(s, "dial tcp") {
		return &MailError{Code: CodeTransport, Temporary: true, Err: err}
	}

	// auth (credenciales/permiso)
	if strings.Contains(s, "5.7.8") || strings.Contains(s, "535") ||
		strings.Contains(s, "username and password not accepted") ||
		strings.Contains(s, "authentication failed") ||
		(strings.Contains(s, "auth") && strings.Contains(s, "failed")) {
		return &MailError{Code: CodeAuth, Temporary: false, Err: err}
	}

	// rate limit / throttling temporal (4.x.x)
	if strings.Contains(s, "4.7.0") ||
		strings.Contains(s, "rate limit") ||
		strings.Contains(s, "try again later") ||
		strings.Contains(s, "temporarily unavailable") ||
		strings.Contains(s, "451") || strings.Contains(s, "421") {
		return &MailError{Code: CodeRateLimited, Temporary: true, Err: err}
	}

	// destinatario inválido
	if strings.Contains(s, "5.1.1") || strings.Contains(s, "user unknown") ||
		strings.Contains(s, "mailbox not found") ||
		strings.Contains(s, "no recipient") {
		return &MailError{Code: CodeInvalidRecipient, Temporary: false, Err: err}
	}

	// políticas/DMARC/SPF/rechazos 5.7.1
	if strings.Contains(s, "5.7.1") ||
		strings.Contains(s, "message rejected") ||
		strings.Contains(s, "dmarc") || strings.Contains(s, "spf") {
		return &MailError{Code: CodeTransport, Temporary: false, Err: err}
	}

	// resto de errores de red
	if errors.As(err, &ne) {
		return &MailError{Code: CodeTransport, Temporary: true, Err: err}
	}
	return &MailError{Code: CodeTransport, Temporary: false, Err: err}
}
