package match_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairchat/internal/domain"
	"pairchat/internal/metrics"
	"pairchat/internal/services/match"
	"pairchat/internal/store"
)

type fixture struct {
	sessions *store.Sessions
	metrics  *metrics.Metrics
	svc      *match.Service
}

func newFixture(t *testing.T, mode domain.CipherMode, opts ...match.Option) fixture {
	t.Helper()
	sessions := store.NewSessions()
	m := metrics.New(sessions.Snapshot)
	return fixture{
		sessions: sessions,
		metrics:  m,
		svc:      match.New(sessions, mode, m, zerolog.Nop(), opts...),
	}
}

func (f fixture) join(t *testing.T, id domain.Identity) match.Result {
	t.Helper()
	res, err := f.svc.Join(context.Background(), id)
	require.NoError(t, err)
	require.NoError(t, f.sessions.Verify())
	return res
}

func (f fixture) leave(t *testing.T, id domain.Identity) match.Result {
	t.Helper()
	res, err := f.svc.Leave(context.Background(), id)
	require.NoError(t, err)
	require.NoError(t, f.sessions.Verify())
	return res
}

func TestJoin_QueuesThenPairs(t *testing.T) {
	f := newFixture(t, domain.ModeParity)

	res := f.join(t, "U1")
	assert.Equal(t, match.Queued, res.Outcome)
	assert.Equal(t, []domain.Outbound{domain.Notice("U1", domain.NoticeQueued)}, res.Outbound)

	res = f.join(t, "U2")
	assert.Equal(t, match.Paired, res.Outcome)
	assert.Equal(t, []domain.Outbound{
		domain.Notice("U2", domain.NoticeQueued),
		domain.Notice("U1", domain.NoticePartnerFound),
		domain.Notice("U2", domain.NoticePartnerFound),
	}, res.Outbound)

	e1, ok := f.sessions.Partner("U1")
	require.True(t, ok)
	e2, ok := f.sessions.Partner("U2")
	require.True(t, ok)
	assert.Equal(t, domain.Identity("U2"), e1.Partner)
	assert.Equal(t, domain.Identity("U1"), e2.Partner)
	assert.Equal(t, e1.Key, e2.Key)
	assert.NotEqual(t, domain.SessionKey{}, e1.Key)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PairsFormed))
}

func TestJoin_FIFO(t *testing.T) {
	f := newFixture(t, domain.ModeParity)
	f.join(t, "A")
	f.join(t, "B")
	f.join(t, "C")
	f.join(t, "D")

	a, _ := f.sessions.Partner("A")
	c, _ := f.sessions.Partner("C")
	assert.Equal(t, domain.Identity("B"), a.Partner)
	assert.Equal(t, domain.Identity("D"), c.Partner)
}

func TestJoin_AlreadyQueued(t *testing.T) {
	f := newFixture(t, domain.ModeParity)
	f.join(t, "A")

	res := f.join(t, "A")
	assert.Equal(t, match.AlreadyQueued, res.Outcome)
	assert.ErrorIs(t, res.Outcome.Err(), domain.ErrAlreadyQueued)
	assert.Equal(t, []domain.Outbound{domain.Notice("A", domain.NoticeAlreadyQueued)}, res.Outbound)
	assert.Equal(t, domain.Stats{Queued: 1}, f.sessions.Snapshot())
}

func TestJoin_AlreadyPaired(t *testing.T) {
	f := newFixture(t, domain.ModeParity)
	f.join(t, "A")
	f.join(t, "B")

	res := f.join(t, "A")
	assert.Equal(t, match.AlreadyPaired, res.Outcome)
	assert.ErrorIs(t, res.Outcome.Err(), domain.ErrAlreadyPaired)
	assert.Equal(t, domain.Stats{Pairs: 1}, f.sessions.Snapshot())
}

func TestJoin_FreshKeyPerPair(t *testing.T) {
	f := newFixture(t, domain.ModeParity)
	for _, id := range []domain.Identity{"A", "B", "C", "D"} {
		f.join(t, id)
	}
	a, _ := f.sessions.Partner("A")
	c, _ := f.sessions.Partner("C")
	assert.NotEqual(t, a.Key, c.Key)
}

func TestJoin_SealedModeHandsOutKey(t *testing.T) {
	f := newFixture(t, domain.ModeSealed)
	f.join(t, "A")
	res := f.join(t, "B")

	e, _ := f.sessions.Partner("A")
	require.Len(t, res.Outbound, 3)
	for _, msg := range res.Outbound[1:] {
		assert.Equal(t, e.Key.String(), msg.Key)
	}
	assert.Empty(t, res.Outbound[0].Key, "queued notice carries no key")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestJoin_KeyFailureLeavesBothQueued(t *testing.T) {
	f := newFixture(t, domain.ModeParity, match.WithRand(failingReader{}))
	f.join(t, "A")

	res, err := f.svc.Join(context.Background(), "B")
	require.Error(t, err)
	assert.Equal(t, match.Queued, res.Outcome)
	assert.Equal(t, domain.Stats{Queued: 2}, f.sessions.Snapshot())
	require.NoError(t, f.sessions.View(func(r store.Reader) error {
		assert.True(t, r.IsQueued("A"))
		assert.True(t, r.IsQueued("B"))
		return nil
	}))
}

func TestJoin_CanceledContext(t *testing.T) {
	f := newFixture(t, domain.ModeParity)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Join(ctx, "A")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.Stats{}, f.sessions.Snapshot())
}

func TestLeave_EndsSessionSymmetrically(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := start
	f := newFixture(t, domain.ModeParity, match.WithClock(func() time.Time { return now }))
	f.join(t, "A")
	f.join(t, "B")

	now = start.Add(90 * time.Second)
	res := f.leave(t, "A")
	assert.Equal(t, match.Ended, res.Outcome)
	assert.Equal(t, []domain.Outbound{
		domain.Notice("B", domain.NoticePartnerLeft),
		domain.Notice("A", domain.NoticeYouLeft),
	}, res.Outbound)
	assert.Equal(t, domain.Stats{}, f.sessions.Snapshot())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.SessionsEnded))

	res = f.leave(t, "B")
	assert.Equal(t, match.NotInSession, res.Outcome, "partner was cleaned up too")
}

func TestLeave_FromQueue(t *testing.T) {
	f := newFixture(t, domain.ModeParity)
	f.join(t, "A")

	res := f.leave(t, "A")
	assert.Equal(t, match.Dequeued, res.Outcome)
	assert.Equal(t, []domain.Outbound{domain.Notice("A", domain.NoticeDequeued)}, res.Outbound)
	assert.Equal(t, domain.Stats{}, f.sessions.Snapshot())
}

func TestLeave_NothingToLeave(t *testing.T) {
	f := newFixture(t, domain.ModeParity)
	res := f.leave(t, "ghost")
	assert.Equal(t, match.NotInSession, res.Outcome)
	assert.ErrorIs(t, res.Outcome.Err(), domain.ErrNotInSession)
}

func TestJoin_Concurrent(t *testing.T) {
	for _, n := range []int{1, 2, 7, 100, 257} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			f := newFixture(t, domain.ModeParity)

			var (
				wg     sync.WaitGroup
				mu     sync.Mutex
				paired = map[domain.Identity]int{}
			)
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(id domain.Identity) {
					defer wg.Done()
					res, err := f.svc.Join(context.Background(), id)
					assert.NoError(t, err)
					mu.Lock()
					defer mu.Unlock()
					for _, msg := range res.Outbound {
						if msg.Body == domain.NoticePartnerFound {
							paired[msg.To]++
						}
					}
				}(domain.Identity(fmt.Sprintf("user-%03d", i)))
			}
			wg.Wait()

			require.NoError(t, f.sessions.Verify())
			assert.Equal(t, domain.Stats{Queued: n % 2, Pairs: n / 2}, f.sessions.Snapshot())
			assert.Len(t, paired, 2*(n/2))
			for id, count := range paired {
				assert.Equal(t, 1, count, "%s paired more than once", id)
			}
		})
	}
}

func TestJoinLeave_ConcurrentChurn(t *testing.T) {
	f := newFixture(t, domain.ModeParity)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id domain.Identity) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_, _ = f.svc.Join(ctx, id)
				_, _ = f.svc.Leave(ctx, id)
			}
		}(domain.Identity(fmt.Sprintf("churn-%02d", i)))
	}
	wg.Wait()

	require.NoError(t, f.sessions.Verify())
	assert.Equal(t, domain.Stats{}, f.sessions.Snapshot(), "every goroutine ends with a leave")
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "paired", match.Paired.String())
	assert.Equal(t, "unknown", match.Outcome(0).String())
	assert.NoError(t, match.Queued.Err())
}
