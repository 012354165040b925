package middlewares

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dropDatabas3/learn2grow/internal/observability/logger"
)

// WithRequestID asigna un request ID (o respeta el entrante), lo propaga en
// el contexto y en el logger scoped, y lo expone en la respuesta.
func WithRequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := r.Header.Get("X-Request-ID")
			if rid == "" {
				rid = uuid.NewString()
			}

			ctx := setRequestID(r.Context(), rid)
			ctx = logger.ToContext(ctx, logger.L().With(logger.RequestID(rid)))

			w.Header().Set("X-Request-ID", rid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
