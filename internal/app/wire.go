package app

import (
	"net/http"

	"github.com/rs/zerolog"

	"pairchat/internal/metrics"
	matchsvc "pairchat/internal/services/match"
	relaysvc "pairchat/internal/services/relay"
	"pairchat/internal/store"
	"pairchat/internal/transport/httpapi"
	"pairchat/internal/transport/mailbox"
)

// Wire bundles the store, services, transport and metrics of one server.
type Wire struct {
	Sessions *store.Sessions
	Metrics  *metrics.Metrics
	Mailbox  *mailbox.Mailbox
	App      *App
	Handler  http.Handler
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config, logger zerolog.Logger, opts ...matchsvc.Option) *Wire {
	// Shared state
	sessions := store.NewSessions()
	m := metrics.New(sessions.Snapshot)

	// Outbound transport
	mbox := mailbox.New(cfg.MailboxLimit, logger)

	// Services
	matchSvc := matchsvc.New(sessions, cfg.CipherMode, m, logger, opts...)
	relaySvc := relaysvc.New(sessions, cfg.CipherMode, m, logger)
	a := New(sessions, matchSvc, relaySvc, mbox, logger)

	return &Wire{
		Sessions: sessions,
		Metrics:  m,
		Mailbox:  mbox,
		App:      a,
		Handler:  httpapi.NewRouter(a, mbox, m, logger),
	}
}
