package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(CORSAllowlist())

	r.Get("/health", healthHandler(cfg))
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Config, cfg.Logger))

		r.Post("/export", exportHandler(cfg))

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", listProjectsHandler(cfg))
			r.Post("/", createProjectHandler(cfg))
			r.Post("/import", importProjectHandler(cfg))

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", getProjectHandler(cfg))
				r.Delete("/", deleteProjectHandler(cfg))
				r.Patch("/", renameProjectHandler(cfg))
				r.Put("/settings", updateSettingsHandler(cfg))

				r.Post("/frames", addFrameHandler(cfg))
				r.Delete("/frames/{index}", deleteFrameHandler(cfg))
				r.Post("/frames/{index}/clear", clearFrameHandler(cfg))
				r.Post("/frames/{index}/duplicate", duplicateFrameHandler(cfg))
				r.Post("/frames/{index}/move", moveFrameHandler(cfg))
				r.Post("/frames/{index}/dots/{row}/{col}/toggle", toggleDotHandler(cfg))

				r.Get("/file", projectFileHandler(cfg))
				r.Get("/lottie", downloadLottieHandler(cfg))
				r.Post("/export", exportProjectHandler(cfg))
				r.Get("/exports", listExportsHandler(cfg))
				r.Get("/play", playHandler(cfg))
			})
		})
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		projects := 0
		if cfg.Studio != nil {
			projects, _ = cfg.Studio.CountProjects(r.Context())
		}
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Version:  cfg.Version,
			UptimeS:  uptime,
			Projects: projects,
		})
	}
}
