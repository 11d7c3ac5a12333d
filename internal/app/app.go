package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"pairchat/internal/domain"
	"pairchat/internal/services/match"
	"pairchat/internal/services/relay"
	"pairchat/internal/store"
)

// Outcomes reported for text messages.
const (
	OutcomeRelayed = "relayed"
	OutcomeDropped = "dropped"
)

// App routes inbound events to the match and relay services and hands the
// resulting messages to the transport.
type App struct {
	Sessions *store.Sessions
	Match    *match.Service
	Relay    *relay.Service
	Sender   domain.Sender

	log zerolog.Logger
}

// New assembles an App from its services.
func New(
	sessions *store.Sessions,
	matchSvc *match.Service,
	relaySvc *relay.Service,
	sender domain.Sender,
	log zerolog.Logger,
) *App {
	return &App{
		Sessions: sessions,
		Match:    matchSvc,
		Relay:    relaySvc,
		Sender:   sender,
		log:      log.With().Str("component", "app").Logger(),
	}
}

// Handle processes one inbound event and returns a short outcome label for
// the requester. Outbound messages are sent after the store transaction has
// completed; a failed send is logged and does not stop the others.
//
// Expected user states (already paired, already queued, nothing to leave)
// are outcomes, not errors. An error means the request failed internally;
// any state change that did happen is still reported to the users involved.
func (a *App) Handle(ctx context.Context, ev domain.Event) (string, error) {
	var (
		out     []domain.Outbound
		outcome string
		err     error
	)
	switch e := ev.(type) {
	case domain.JoinRequest:
		var res match.Result
		res, err = a.Match.Join(ctx, e.From)
		out, outcome = res.Outbound, res.Outcome.String()
	case domain.LeaveRequest:
		var res match.Result
		res, err = a.Match.Leave(ctx, e.From)
		out, outcome = res.Outbound, res.Outcome.String()
	case domain.TextMessage:
		var (
			msg domain.Outbound
			ok  bool
		)
		msg, ok, err = a.Relay.Forward(ctx, e.From, e.Body)
		outcome = OutcomeDropped
		if ok {
			out, outcome = []domain.Outbound{msg}, OutcomeRelayed
		}
	default:
		return "", fmt.Errorf("unsupported event %T", ev)
	}

	a.deliver(ctx, out)
	return outcome, err
}

// Welcome sends the greeting shown to a user who opens the chat.
func (a *App) Welcome(ctx context.Context, id domain.Identity) error {
	return a.Sender.Send(ctx, domain.Notice(id, domain.NoticeWelcome))
}

// Stats reports the current queue and pair counts.
func (a *App) Stats() domain.Stats { return a.Sessions.Snapshot() }

func (a *App) deliver(ctx context.Context, msgs []domain.Outbound) {
	// State has already changed; the notices must go out even if the
	// requester has gone away.
	ctx = context.WithoutCancel(ctx)
	for _, msg := range msgs {
		if err := a.Sender.Send(ctx, msg); err != nil {
			a.log.Warn().Err(err).Str("to", msg.To.String()).Str("kind", string(msg.Kind)).Msg("send failed")
		}
	}
}
