package repository

import "errors"

var (
	// ErrNotFound indica que el recurso solicitado no existe.
	ErrNotFound = errors.New("not found")

	// ErrConflict indica un conflicto (ej: email duplicado, constraint violation).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indica que los datos de entrada son inválidos.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadySent indica que el flag de envío ya estaba seteado.
	// MarkEmailSent lo retorna cuando otro pase ganó la carrera: el caller
	// debe tratarlo como no-op, nunca como fallo de entrega.
	ErrAlreadySent = errors.New("email already marked sent")

	// ErrNoDatabase indica que no hay base de datos configurada.
	ErrNoDatabase = errors.New("no database configured")
)

// IsNotFound verifica si el error es ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict verifica si el error es ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsAlreadySent verifica si el error es ErrAlreadySent.
func IsAlreadySent(err error) bool {
	return errors.Is(err, ErrAlreadySent)
}
