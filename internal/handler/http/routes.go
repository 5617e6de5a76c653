package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(withGZip)
	router.MethodNotAllowed(methodNotAllowed)

	router.Get("/api/version", h.getServerVersion)

	// every envelope route is scoped to one journal
	router.Route("/api/journals/{journalID}/envelopes", func(r chi.Router) {
		r.Use(h.withJournalID)
		r.With(middleware.RequestSize(h.maxBodySize), h.withContentHash).Post("/", h.uploadEnvelope)
		r.Get("/", h.listEnvelopes)
		r.Get("/{id}", h.getEnvelope)
		r.Delete("/{id}", h.deleteEnvelope)
	})

	return router
}
