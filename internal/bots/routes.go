package bots

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the bot endpoints on the given router. metrics may
// be nil.
func RegisterRoutes(r chi.Router, activities *ActivityHandler, metrics http.Handler) {
	r.Post("/api/messages", activities.HandleActivity)
	r.Get("/healthz", HandleHealth)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}
}
