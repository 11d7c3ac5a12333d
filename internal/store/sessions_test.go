package store_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairchat/internal/domain"
	"pairchat/internal/store"
)

func key(b byte) domain.SessionKey {
	var k domain.SessionKey
	for i := range k {
		k[i] = b
	}
	return k
}

func TestTryFormPair_FIFO(t *testing.T) {
	s := store.NewSessions()
	err := s.Update(func(tx *store.Tx) error {
		for _, id := range []domain.Identity{"A", "B", "C", "D"} {
			tx.Enqueue(id)
		}
		a, b, ok := tx.TryFormPair()
		require.True(t, ok)
		assert.Equal(t, domain.Identity("A"), a)
		assert.Equal(t, domain.Identity("B"), b)
		assert.Equal(t, 2, tx.QueueLen())
		assert.True(t, tx.IsQueued("C"))
		assert.False(t, tx.IsQueued("A"))
		return nil
	})
	require.NoError(t, err)
}

func TestTryFormPair_NeedsTwo(t *testing.T) {
	s := store.NewSessions()
	require.NoError(t, s.Update(func(tx *store.Tx) error {
		_, _, ok := tx.TryFormPair()
		assert.False(t, ok)
		tx.Enqueue("A")
		_, _, ok = tx.TryFormPair()
		assert.False(t, ok)
		assert.True(t, tx.IsQueued("A"))
		return nil
	}))
}

func TestInsertPair_Symmetric(t *testing.T) {
	s := store.NewSessions()
	now := time.Now()
	require.NoError(t, s.Update(func(tx *store.Tx) error {
		return tx.InsertPair("A", "B", key(7), now)
	}))

	a, ok := s.Partner("A")
	require.True(t, ok)
	b, ok := s.Partner("B")
	require.True(t, ok)
	assert.Equal(t, domain.Identity("B"), a.Partner)
	assert.Equal(t, domain.Identity("A"), b.Partner)
	assert.Equal(t, a.Key, b.Key)
	assert.Equal(t, now, a.PairedAt)
	assert.NoError(t, s.Verify())
	assert.Equal(t, domain.Stats{Pairs: 1}, s.Snapshot())
}

func TestInsertPair_RejectsExisting(t *testing.T) {
	s := store.NewSessions()
	require.NoError(t, s.Update(func(tx *store.Tx) error {
		return tx.InsertPair("A", "B", key(1), time.Now())
	}))

	err := s.Update(func(tx *store.Tx) error {
		return tx.InsertPair("B", "C", key(2), time.Now())
	})
	require.ErrorIs(t, err, domain.ErrAlreadyPaired)

	c, ok := s.Partner("C")
	assert.False(t, ok, "failed insert must not leave a half pair: %+v", c)
	assert.NoError(t, s.Verify())
}

func TestInsertPair_RejectsQueued(t *testing.T) {
	s := store.NewSessions()
	err := s.Update(func(tx *store.Tx) error {
		tx.Enqueue("A")
		return tx.InsertPair("A", "B", key(1), time.Now())
	})
	require.ErrorIs(t, err, domain.ErrAlreadyQueued)
	assert.NoError(t, s.Verify())
}

func TestInsertPair_RejectsSelf(t *testing.T) {
	s := store.NewSessions()
	err := s.Update(func(tx *store.Tx) error {
		return tx.InsertPair("A", "A", key(1), time.Now())
	})
	require.ErrorIs(t, err, domain.ErrBrokenSymmetry)
}

func TestRemovePair_BothSides(t *testing.T) {
	s := store.NewSessions()
	require.NoError(t, s.Update(func(tx *store.Tx) error {
		return tx.InsertPair("A", "B", key(3), time.Now())
	}))

	require.NoError(t, s.Update(func(tx *store.Tx) error {
		e, ok, err := tx.RemovePair("A")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, domain.Identity("B"), e.Partner)
		assert.False(t, tx.IsPaired("A"))
		assert.False(t, tx.IsPaired("B"))

		_, ok, err = tx.RemovePair("A")
		assert.NoError(t, err)
		assert.False(t, ok, "second removal is a no-op")
		return nil
	}))
	assert.Equal(t, domain.Stats{}, s.Snapshot())
}

func TestRemoveFromQueue(t *testing.T) {
	s := store.NewSessions()
	require.NoError(t, s.Update(func(tx *store.Tx) error {
		tx.Enqueue("A")
		tx.Enqueue("B")
		tx.Enqueue("C")
		assert.True(t, tx.RemoveFromQueue("B"))
		assert.False(t, tx.RemoveFromQueue("B"))
		a, c, ok := tx.TryFormPair()
		require.True(t, ok)
		assert.Equal(t, domain.Identity("A"), a)
		assert.Equal(t, domain.Identity("C"), c)
		return nil
	}))
}

func TestView_ReadOnly(t *testing.T) {
	s := store.NewSessions()
	require.NoError(t, s.Update(func(tx *store.Tx) error {
		tx.Enqueue("A")
		return nil
	}))
	require.NoError(t, s.View(func(r store.Reader) error {
		assert.True(t, r.IsQueued("A"))
		assert.False(t, r.IsPaired("A"))
		assert.Equal(t, 1, r.QueueLen())
		return nil
	}))
}

func TestTx_UseAfterCompletionPanics(t *testing.T) {
	s := store.NewSessions()
	var leaked *store.Tx
	require.NoError(t, s.Update(func(tx *store.Tx) error {
		leaked = tx
		return nil
	}))
	assert.Panics(t, func() { leaked.Enqueue("A") })
}

func TestSessions_ConcurrentUpdates(t *testing.T) {
	s := store.NewSessions()
	const n = 64

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id domain.Identity) {
			defer wg.Done()
			_ = s.Update(func(tx *store.Tx) error {
				tx.Enqueue(id)
				if a, b, ok := tx.TryFormPair(); ok {
					return tx.InsertPair(a, b, key(byte(len(a))), time.Now())
				}
				return nil
			})
		}(domain.Identity(fmt.Sprintf("u%02d", i)))
	}
	wg.Wait()

	assert.Equal(t, domain.Stats{Queued: 0, Pairs: n / 2}, s.Snapshot())
	assert.NoError(t, s.Verify())
}
