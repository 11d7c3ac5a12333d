package httpapi

import (
	"context"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"pairchat/internal/domain"
	"pairchat/internal/metrics"
	"pairchat/internal/transport/mailbox"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 8 * 1024

// Dispatcher is the application core as seen by the HTTP layer.
type Dispatcher interface {
	Handle(ctx context.Context, ev domain.Event) (string, error)
	Welcome(ctx context.Context, id domain.Identity) error
	Stats() domain.Stats
}

// NewRouter creates and configures the HTTP router.
func NewRouter(d Dispatcher, mbox *mailbox.Mailbox, m *metrics.Metrics, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(Metrics(m))
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(Logger(logger))
	r.Use(chimw.Recoverer)
	r.Use(MaxBodySize(maxBodyBytes))

	h := &Handler{app: d, mailbox: mbox, log: logger}

	r.Handle("/metrics", m.Handler())
	r.Get("/healthz", h.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/stats", h.Stats)
		r.Route("/users/{id}", func(r chi.Router) {
			r.Post("/start", h.Start)
			r.Post("/join", h.Join)
			r.Post("/leave", h.Leave)
			r.Post("/messages", h.SendMessage)
			r.Get("/inbox", h.Inbox)
			r.Post("/inbox/ack", h.Ack)
		})
	})
	return r
}
