// Package health expone los endpoints de liveness y readiness.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/learn2grow/internal/http/helpers"
)

// Pinger es lo mínimo que health necesita del storage.
type Pinger interface {
	Ping(ctx context.Context) error
	Name() string
}

// Controller maneja healthz/readyz.
type Controller struct {
	store Pinger
}

// New crea el controller de health.
func New(store Pinger) *Controller {
	return &Controller{store: store}
}

// Register monta los endpoints en el router raíz.
func (c *Controller) Register(r chi.Router) {
	r.Get("/healthz", c.Healthz)
	r.Get("/readyz", c.Readyz)
}

// Healthz es liveness: el proceso responde.
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz es readiness: storage alcanzable.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := c.store.Ping(ctx); err != nil {
		helpers.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"store":  c.store.Name(),
			"error":  err.Error(),
		})
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"store":  c.store.Name(),
	})
}
