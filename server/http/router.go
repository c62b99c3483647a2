package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"po-service/internal/config"
	"po-service/internal/middleware"
	ordHnd "po-service/internal/order/handler"
	"po-service/internal/order/session"
	"po-service/server/http/handlers"
)

// order matters: recover -> requestID -> logging -> cors -> limit
func NewRouter(cfg config.Config, logger zerolog.Logger, store *session.Store) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	r.Get("/health", handlers.Health)

	h := ordHnd.New(cfg, logger, store)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", h.DeleteSession)
			r.Post("/order", h.GenerateOrder)
			r.Post("/order/lines/{n}/confirm-tokens", h.ConfirmTokens)
			r.Post("/order/lines/{n}/select", h.SelectCandidate)
			r.Patch("/po/lines/{n}", h.EditPOLine)
			r.Get("/po", h.GetPO)
			r.Get("/po/export", h.ExportPO)
		})
	})

	return r
}
