package relay

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"pairchat/internal/crypto"
	"pairchat/internal/domain"
	"pairchat/internal/metrics"
	"pairchat/internal/store"
)

// Service relays text between paired identities.
type Service struct {
	sessions *store.Sessions
	mode     domain.CipherMode
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// New constructs a relay Service.
func New(sessions *store.Sessions, mode domain.CipherMode, m *metrics.Metrics, log zerolog.Logger) *Service {
	return &Service{
		sessions: sessions,
		mode:     mode,
		metrics:  m,
		log:      log.With().Str("component", "relay").Logger(),
	}
}

// Forward builds the message that carries body from sender to its partner.
// It returns false when from has no active session; the message is then
// dropped without any notice.
//
// Cipher failures never surface as errors: the partner receives a
// placeholder instead. The error return is reserved for a canceled context.
func (s *Service) Forward(ctx context.Context, from domain.Identity, body string) (domain.Outbound, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Outbound{}, false, err
	}

	entry, ok := s.sessions.Partner(from)
	if !ok {
		s.metrics.MessagesRelayed.WithLabelValues(metrics.ResultNoSession).Inc()
		s.log.Debug().Str("from", from.String()).Msg("no session; message dropped")
		return domain.Outbound{}, false, nil
	}
	defer crypto.WipeKey(&entry.Key)

	msg := domain.Outbound{To: entry.Partner, Kind: domain.KindText}
	switch s.mode {
	case domain.ModeSealed:
		env, err := crypto.Seal(entry.Key, body)
		if err != nil {
			return s.fail(msg, from, err), true, nil
		}
		msg.Body, msg.Sealed = env, true
		s.metrics.MessagesRelayed.WithLabelValues(metrics.ResultSealed).Inc()
	default:
		text, err := crypto.RoundTrip(entry.Key, body)
		if err != nil {
			return s.fail(msg, from, err), true, nil
		}
		msg.Body = text
		s.metrics.MessagesRelayed.WithLabelValues(metrics.ResultDelivered).Inc()
	}
	return msg, true, nil
}

func (s *Service) fail(msg domain.Outbound, from domain.Identity, err error) domain.Outbound {
	result := metrics.ResultDecodeError
	if errors.Is(err, domain.ErrInvalidUTF8) {
		result = metrics.ResultInvalidUTF8
	}
	s.metrics.MessagesRelayed.WithLabelValues(result).Inc()
	s.log.Warn().Err(err).Str("from", from.String()).Str("to", msg.To.String()).Msg("relay decode failed")

	msg.Body = crypto.Placeholder(err)
	msg.Sealed = false
	return msg
}
