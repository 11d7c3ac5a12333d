package store

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"pairchat/internal/domain"
)

// Sessions owns the waiting queue and the pair table. Every read and write
// happens under mu; multi-step protocols run inside a single Update so no
// other caller can observe an intermediate state.
type Sessions struct {
	mu    sync.RWMutex
	queue []domain.Identity
	pairs map[domain.Identity]domain.PairEntry
}

// NewSessions returns an empty store.
func NewSessions() *Sessions {
	return &Sessions{pairs: make(map[domain.Identity]domain.PairEntry)}
}

// Reader is the read-only view handed to View callbacks.
type Reader interface {
	IsQueued(id domain.Identity) bool
	IsPaired(id domain.Identity) bool
	Partner(id domain.Identity) (domain.PairEntry, bool)
	QueueLen() int
}

// Tx exposes the store primitives to a single Update callback. It must not
// be retained after the callback returns.
type Tx struct {
	s    *Sessions
	done bool
}

// Update runs fn with exclusive access to the store.
func (s *Sessions) Update(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{s: s}
	defer func() { tx.done = true }()
	return fn(tx)
}

// View runs fn with shared read access to the store.
func (s *Sessions) View(fn func(r Reader) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx := &Tx{s: s}
	defer func() { tx.done = true }()
	return fn(tx)
}

// Partner looks up the active session for id.
func (s *Sessions) Partner(id domain.Identity) (domain.PairEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.pairs[id]
	return e, ok
}

// Snapshot reports the current queue length and number of pairs.
func (s *Sessions) Snapshot() domain.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.Stats{Queued: len(s.queue), Pairs: len(s.pairs) / 2}
}

// Verify checks every store invariant and returns all violations found.
func (s *Sessions) Verify() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var errs []error
	seen := make(map[domain.Identity]struct{}, len(s.queue))
	for _, id := range s.queue {
		if _, dup := seen[id]; dup {
			errs = append(errs, fmt.Errorf("%s queued twice", id))
		}
		seen[id] = struct{}{}
		if _, paired := s.pairs[id]; paired {
			errs = append(errs, fmt.Errorf("%s both queued and paired", id))
		}
	}
	for id := range s.pairs {
		if err := s.checkPair(id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Sessions) checkPair(id domain.Identity) error {
	e, ok := s.pairs[id]
	if !ok {
		return nil
	}
	back, ok := s.pairs[e.Partner]
	switch {
	case e.Partner == id:
		return fmt.Errorf("%w: %s paired with itself", domain.ErrBrokenSymmetry, id)
	case !ok:
		return fmt.Errorf("%w: %s points at unpaired %s", domain.ErrBrokenSymmetry, id, e.Partner)
	case back.Partner != id:
		return fmt.Errorf("%w: %s -> %s -> %s", domain.ErrBrokenSymmetry, id, e.Partner, back.Partner)
	case back.Key != e.Key:
		return fmt.Errorf("%w: %s and %s hold different keys", domain.ErrBrokenSymmetry, id, e.Partner)
	}
	return nil
}

func (tx *Tx) store() *Sessions {
	if tx.done {
		panic("store: transaction used after completion")
	}
	return tx.s
}

// IsQueued reports whether id is waiting for a partner.
func (tx *Tx) IsQueued(id domain.Identity) bool {
	return slices.Contains(tx.store().queue, id)
}

// IsPaired reports whether id has an active session.
func (tx *Tx) IsPaired(id domain.Identity) bool {
	_, ok := tx.store().pairs[id]
	return ok
}

// Partner returns id's pair entry, if any.
func (tx *Tx) Partner(id domain.Identity) (domain.PairEntry, bool) {
	e, ok := tx.store().pairs[id]
	return e, ok
}

// QueueLen returns the number of waiting identities.
func (tx *Tx) QueueLen() int { return len(tx.store().queue) }

// Enqueue appends id to the back of the queue. Callers check that id is
// neither queued nor paired.
func (tx *Tx) Enqueue(id domain.Identity) {
	s := tx.store()
	s.queue = append(s.queue, id)
}

// TryFormPair removes and returns the two longest-waiting identities. It is
// the only place where the queue is drained for pairing.
func (tx *Tx) TryFormPair() (a, b domain.Identity, ok bool) {
	s := tx.store()
	if len(s.queue) < 2 {
		return "", "", false
	}
	a, b = s.queue[0], s.queue[1]
	s.queue = slices.Delete(s.queue, 0, 2)
	return a, b, true
}

// InsertPair records a session between a and b sharing key, started at.
func (tx *Tx) InsertPair(a, b domain.Identity, key domain.SessionKey, at time.Time) error {
	s := tx.store()
	if a == b {
		return fmt.Errorf("%w: cannot pair %s with itself", domain.ErrBrokenSymmetry, a)
	}
	for _, id := range []domain.Identity{a, b} {
		if _, ok := s.pairs[id]; ok {
			return fmt.Errorf("insert pair %s/%s: %s: %w", a, b, id, domain.ErrAlreadyPaired)
		}
		if slices.Contains(s.queue, id) {
			return fmt.Errorf("insert pair %s/%s: %s: %w", a, b, id, domain.ErrAlreadyQueued)
		}
	}

	s.pairs[a] = domain.PairEntry{Partner: b, Key: key, PairedAt: at}
	s.pairs[b] = domain.PairEntry{Partner: a, Key: key, PairedAt: at}
	return s.checkPair(a)
}

// RemovePair ends id's session, removing both sides. The returned entry is
// id's own, so its Partner can be notified. An absent id is a no-op.
//
// If the partner's entry does not point back at id, only id's side is
// removed and ErrBrokenSymmetry is returned alongside the entry.
func (tx *Tx) RemovePair(id domain.Identity) (domain.PairEntry, bool, error) {
	s := tx.store()
	e, ok := s.pairs[id]
	if !ok {
		return domain.PairEntry{}, false, nil
	}
	s.pairs[id] = domain.PairEntry{}
	delete(s.pairs, id)

	back, ok := s.pairs[e.Partner]
	if !ok || back.Partner != id {
		return e, true, fmt.Errorf("remove pair %s: %w", id, domain.ErrBrokenSymmetry)
	}
	s.pairs[e.Partner] = domain.PairEntry{}
	delete(s.pairs, e.Partner)
	return e, true, nil
}

// RemoveFromQueue drops id from the queue and reports whether it was there.
func (tx *Tx) RemoveFromQueue(id domain.Identity) bool {
	s := tx.store()
	i := slices.Index(s.queue, id)
	if i < 0 {
		return false
	}
	s.queue = slices.Delete(s.queue, i, i+1)
	return true
}
