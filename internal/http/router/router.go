// Package router arma el árbol de rutas de la API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	adminctl "github.com/dropDatabas3/learn2grow/internal/http/controllers/admin"
	authctl "github.com/dropDatabas3/learn2grow/internal/http/controllers/auth"
	healthctl "github.com/dropDatabas3/learn2grow/internal/http/controllers/health"
	postsctl "github.com/dropDatabas3/learn2grow/internal/http/controllers/posts"
	requestsctl "github.com/dropDatabas3/learn2grow/internal/http/controllers/requests"
	sponsorsctl "github.com/dropDatabas3/learn2grow/internal/http/controllers/sponsors"
	httperrors "github.com/dropDatabas3/learn2grow/internal/http/errors"
	"github.com/dropDatabas3/learn2grow/internal/http/middlewares"
	"github.com/dropDatabas3/learn2grow/internal/rate"
	"github.com/dropDatabas3/learn2grow/internal/security/token"
)

// Deps contiene los controllers y colaboradores que el router monta.
type Deps struct {
	Health   *healthctl.Controller
	Auth     *authctl.Controller
	Requests *requestsctl.Controller
	Sponsors *sponsorsctl.Controller
	Posts    *postsctl.Controller
	Admin    *adminctl.Controller

	Issuer *token.Issuer

	// Limiters opcionales (nil = sin rate limit en ese grupo).
	RegisterLimiter rate.Limiter
	LoginLimiter    rate.Limiter

	// MetricsHandler opcional para GET /metrics.
	MetricsHandler http.Handler

	CORSAllowedOrigins []string
}

// New construye el router completo de la API.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Middlewares globales, de afuera hacia adentro.
	r.Use(func(next http.Handler) http.Handler {
		return middlewares.Chain(next,
			middlewares.WithRequestID(),
			middlewares.WithRecover(),
			middlewares.WithLogging(),
			middlewares.WithSecurityHeaders(),
			middlewares.WithCORS(deps.CORSAllowedOrigins),
		)
	})
	r.Use(middlewares.WithMetrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	deps.Health.Register(r)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/auth", func(g chi.Router) {
			g.Use(limit(deps.LoginLimiter))
			deps.Auth.Register(g)
		})

		api.Route("/requests", func(g chi.Router) {
			g.Use(limit(deps.RegisterLimiter))
			deps.Requests.Register(g)
		})

		api.Route("/sponsors", func(g chi.Router) {
			g.Use(limit(deps.RegisterLimiter))
			deps.Sponsors.Register(g)
		})

		api.Route("/posts", func(g chi.Router) {
			deps.Posts.RegisterPublic(g)
			g.Group(func(auth chi.Router) {
				auth.Use(middlewares.WithAuth(deps.Issuer))
				deps.Posts.RegisterAuthenticated(auth)
			})
		})

		api.Route("/admin", func(g chi.Router) {
			g.Use(middlewares.WithAuth(deps.Issuer))
			g.Use(middlewares.RequireRole(token.RoleAdmin))
			deps.Admin.Register(g)
		})
	})

	return r
}

// limit adapta un rate.Limiter opcional al formato de chi.Use.
func limit(l rate.Limiter) func(http.Handler) http.Handler {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middlewares.WithRateLimit(middlewares.RateLimitConfig{
		Limiter: l,
		KeyFunc: middlewares.IPAndPathRateKey,
	})
}
