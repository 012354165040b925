package email

import (
	"errors"
	"fmt"
)

// ErrorCode clasifica un fallo de entrega.
type ErrorCode string

const (
	CodeAuth             ErrorCode = "auth"
	CodeRateLimited      ErrorCode = "rate_limited"
	CodeInvalidRecipient ErrorCode = "invalid_recipient"
	CodeTransport        ErrorCode = "transport"
)

// MailError es un fallo de entrega tipado.
type MailError struct {
	Code      ErrorCode
	Temporary bool // si conviene reintentar
	Err       error
}

func (e *MailError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("email: %s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("email: %s", e.Code)
}

func (e *MailError) Unwrap() error { return e.Err }

// AsMailError extrae el *MailError de err, si lo hay.
func AsMailError(err error) (*MailError, bool) {
	var me *MailError
	if errors.As(err, &me) {
		return me, true
	}
	return nil, false
}

// CodeOf retorna el código del error, o CodeTransport si no está clasificado.
func CodeOf(err error) ErrorCode {
	if me, ok := AsMailError(err); ok {
		return me.Code
	}
	return CodeTransport
}
