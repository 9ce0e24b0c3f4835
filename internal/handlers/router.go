package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// NewRouter wires the REST endpoints. Paths are served with and without a
// trailing slash.
func NewRouter(devices *DeviceHandler, locations *LocationHandler, logger zerolog.Logger) http.Handler {
	router := chi.NewRouter()
	router.Use(hlog.NewHandler(logger))
	router.Use(RequestID)
	router.Use(hlog.AccessHandler(accessLog))
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)

	// Health check endpoints
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	router.Route("/api/devices", func(r chi.Router) {
		r.Get("/", devices.List)
		r.Post("/", devices.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", devices.Get)
			r.Put("/", devices.Update)
			r.Patch("/", devices.PartialUpdate)
			r.Delete("/", devices.Delete)
			r.Get("/last-location", locations.LastLocation)
		})
	})

	router.Route("/api/locations", func(r chi.Router) {
		r.Get("/", locations.List)
		r.Post("/", locations.Create)
		r.Get("/{id}", locations.Get)
	})

	return router
}
