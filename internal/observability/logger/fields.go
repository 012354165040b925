package logger

import (
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/learn2grow/internal/util"
)

// =================================================================================
// CAMPOS ESTÁNDAR - HTTP
// =================================================================================

// RequestID crea un campo para el ID del request HTTP.
func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

// Method crea un campo para el método HTTP.
func Method(v string) zap.Field {
	return zap.String("method", v)
}

// Path crea un campo para el path del request.
func Path(v string) zap.Field {
	return zap.String("path", v)
}

// Status crea un campo para el status code HTTP.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

// Duration crea un campo para la duración del request.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// ClientIP crea un campo para la IP del cliente.
func ClientIP(v string) zap.Field {
	return zap.String("client_ip", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - NEGOCIO
// =================================================================================

// RecipientRequestID crea un campo para el ID de una solicitud de recipient.
func RecipientRequestID(v string) zap.Field {
	return zap.String("recipient_request_id", v)
}

// SponsorID crea un campo para el ID de un sponsor.
func SponsorID(v string) zap.Field {
	return zap.String("sponsor_id", v)
}

// PostID crea un campo para el ID de un post.
func PostID(v string) zap.Field {
	return zap.String("post_id", v)
}

// Email crea un campo para una dirección de email, enmascarada.
func Email(v string) zap.Field {
	return zap.String("email", util.MaskEmail(v))
}

// Kind crea un campo para el tipo de notificación.
func Kind(v string) zap.Field {
	return zap.String("kind", v)
}

// RequestStatus crea un campo para el estado de una solicitud.
func RequestStatus(v string) zap.Field {
	return zap.String("request_status", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - TÉCNICOS
// =================================================================================

// Err crea un campo para un error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// Op crea un campo para la operación actual (ej: "Engine.ProcessNewRequest").
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Layer crea un campo para la capa (controller, service, store, engine).
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

// Component crea un campo para el componente.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Count crea un campo numérico genérico.
func Count(v int) zap.Field {
	return zap.Int("count", v)
}

// Re-exports de tipos comunes para no importar zap en los call sites.

// String crea un campo string.
func String(k, v string) zap.Field { return zap.String(k, v) }

// Int crea un campo int.
func Int(k string, v int) zap.Field { return zap.Int(k, v) }

// Bool crea un campo bool.
func Bool(k string, v bool) zap.Field { return zap.Bool(k, v) }

// Any crea un campo de tipo arbitrario.
func Any(k string, v any) zap.Field { return zap.Any(k, v) }
