package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/mpetrov/screencast/internal/session"
)

func NewRouter(h *Handlers, sessions session.Provider, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestLogger(log))

	r.Get("/ping", PingHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Upload orchestration, owner required.
		r.Group(func(r chi.Router) {
			r.Use(session.Require(sessions))

			r.Post("/uploads/video-slot", h.VideoSlot)
			r.Post("/uploads/thumbnail-slot", h.ThumbnailSlot)
			r.Post("/uploads/finalize", h.Finalize)
			r.Get("/videos/{videoId}/status", h.GetProcessingStatus)
			r.Patch("/videos/{videoId}/visibility", h.ChangeVisibility)
			r.Delete("/videos/{videoId}", h.DeleteVideo)
		})

		// Public catalog; a session widens visibility when present.
		r.Group(func(r chi.Router) {
			r.Use(session.Optional(sessions))

			r.Get("/videos", h.ListVideos)
			r.Get("/videos/{videoId}", h.GetVideo)
			r.Get("/users/{userId}/videos", h.ListVideosByOwner)
		})

		r.Get("/videos/{videoId}/transcript", h.GetTranscript)
		r.Post("/videos/{videoId}/views", h.RecordView)
	})

	return r
}
