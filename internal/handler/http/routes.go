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

	router.Get("/auth/login", h.login)
	router.Get("/auth/callback", h.callback)
	router.Post("/auth/logout", h.logout)

	router.Get("/r/{token}", h.redeemCapability)

	router.Route("/api/readings/{readingID}", func(r chi.Router) {
		r.Post("/unlock", h.unlockSection)
		r.Post("/resend", h.resendLink)
	})

	return router
}
