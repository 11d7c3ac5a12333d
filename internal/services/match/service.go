package match

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"pairchat/internal/crypto"
	"pairchat/internal/domain"
	"pairchat/internal/metrics"
	"pairchat/internal/store"
)

// Service pairs waiting identities and tears sessions down.
type Service struct {
	sessions *store.Sessions
	mode     domain.CipherMode
	metrics  *metrics.Metrics
	log      zerolog.Logger

	rand io.Reader
	now  func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithRand sets the source of session keys. The default is crypto/rand.
func WithRand(r io.Reader) Option { return func(s *Service) { s.rand = r } }

// WithClock sets the clock used to stamp pairs.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// New constructs a match Service over sessions.
func New(
	sessions *store.Sessions,
	mode domain.CipherMode,
	m *metrics.Metrics,
	log zerolog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		sessions: sessions,
		mode:     mode,
		metrics:  m,
		log:      log.With().Str("component", "match").Logger(),
		rand:     rand.Reader,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Join handles a search request from id.
//
// Steps, all inside one store transaction:
//  1. A requester with a session gets AlreadyPaired; one already waiting gets
//     AlreadyQueued. Neither changes state.
//  2. Otherwise the requester is appended to the queue.
//  3. If two identities are now waiting, the two oldest are removed and
//     paired under a fresh 32-byte key, and both are told a partner was
//     found.
//
// The Result is valid even when err is non-nil: a key generation failure
// leaves the requester queued, and the Result says so.
func (s *Service) Join(ctx context.Context, id domain.Identity) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var (
		res    Result
		a, b   domain.Identity
		key    domain.SessionKey
		formed bool
	)
	err := s.sessions.Update(func(tx *store.Tx) error {
		switch {
		case tx.IsPaired(id):
			res = result(AlreadyPaired, domain.Notice(id, domain.NoticeAlreadyPaired))
			return nil
		case tx.IsQueued(id):
			res = result(AlreadyQueued, domain.Notice(id, domain.NoticeAlreadyQueued))
			return nil
		}

		tx.Enqueue(id)
		res = result(Queued, domain.Notice(id, domain.NoticeQueued))
		if tx.QueueLen() < 2 {
			return nil
		}

		// Draw the key before touching the queue so a failure leaves both
		// waiting identities in place.
		if _, err := io.ReadFull(s.rand, key[:]); err != nil {
			return fmt.Errorf("generate session key: %w", err)
		}
		var ok bool
		if a, b, ok = tx.TryFormPair(); !ok {
			return nil
		}
		if err := tx.InsertPair(a, b, key, s.now()); err != nil {
			return err
		}
		formed = true
		res.Outcome = Paired
		res.Outbound = append(res.Outbound, s.partnerFound(a, key), s.partnerFound(b, key))
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Str("user", id.String()).Msg("join failed")
		return res, err
	}

	if formed {
		s.metrics.PairsFormed.Inc()
		s.log.Info().
			Str("a", a.String()).
			Str("b", b.String()).
			Str("key", crypto.Fingerprint(key)).
			Msg("pair formed")
		crypto.WipeKey(&key)
	} else {
		s.log.Debug().Str("user", id.String()).Stringer("outcome", res.Outcome).Msg("join")
	}
	return res, nil
}

// Leave handles a stop request from id: it ends id's session and notifies the
// partner, or removes id from the queue, or reports that there was nothing
// to leave.
//
// As with Join, the Result is valid even when err is non-nil.
func (s *Service) Leave(ctx context.Context, id domain.Identity) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var (
		res   Result
		ended domain.PairEntry
	)
	err := s.sessions.Update(func(tx *store.Tx) error {
		e, ok, err := tx.RemovePair(id)
		if ok {
			ended = e
			res = result(Ended,
				domain.Notice(e.Partner, domain.NoticePartnerLeft),
				domain.Notice(id, domain.NoticeYouLeft),
			)
			return err
		}
		if tx.RemoveFromQueue(id) {
			res = result(Dequeued, domain.Notice(id, domain.NoticeDequeued))
			return nil
		}
		res = result(NotInSession, domain.Notice(id, domain.NoticeNotInSession))
		return nil
	})

	if res.Outcome == Ended {
		crypto.WipeKey(&ended.Key)
		s.metrics.SessionsEnded.Inc()
		s.metrics.SessionDuration.Observe(s.now().Sub(ended.PairedAt).Seconds())
		s.log.Info().
			Str("user", id.String()).
			Str("partner", ended.Partner.String()).
			Msg("session ended")
	} else {
		s.log.Debug().Str("user", id.String()).Stringer("outcome", res.Outcome).Msg("leave")
	}
	if err != nil {
		s.log.Error().Err(err).Str("user", id.String()).Msg("leave failed")
	}
	return res, err
}

func (s *Service) partnerFound(to domain.Identity, key domain.SessionKey) domain.Outbound {
	msg := domain.Notice(to, domain.NoticePartnerFound)
	if s.mode == domain.ModeSealed {
		msg.Key = key.String()
	}
	return msg
}
