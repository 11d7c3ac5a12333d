// Package mailbox is an in-memory store-and-forward outbox. It implements
// domain.Sender for the HTTP transport: outbound messages are queued per
// recipient until the recipient fetches and acknowledges them.
//
// All state is held in memory and lost on process exit.
package mailbox

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pairchat/internal/domain"
)

// Message is an outbound message waiting in a recipient's mailbox.
type Message struct {
	ID string `json:"id"`
	domain.Outbound
	Timestamp int64 `json:"ts"`
}

// Mailbox queues outbound messages per identity.
type Mailbox struct {
	mu    sync.Mutex
	boxes map[domain.Identity][]Message
	limit int
	now   func() time.Time
	log   zerolog.Logger
}

// New returns a Mailbox keeping at most limit undelivered messages per
// identity; older messages are dropped first.
func New(limit int, log zerolog.Logger) *Mailbox {
	return &Mailbox{
		boxes: make(map[domain.Identity][]Message),
		limit: limit,
		now:   time.Now,
		log:   log.With().Str("component", "mailbox").Logger(),
	}
}

// Send enqueues msg for msg.To.
func (m *Mailbox) Send(ctx context.Context, msg domain.Outbound) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entry := Message{ID: uuid.NewString(), Outbound: msg, Timestamp: m.now().Unix()}

	m.mu.Lock()
	defer m.mu.Unlock()

	box := append(m.boxes[msg.To], entry)
	if over := len(box) - m.limit; m.limit > 0 && over > 0 {
		m.log.Warn().Str("user", msg.To.String()).Int("dropped", over).Msg("mailbox full; dropping oldest")
		box = append(box[:0:0], box[over:]...)
	}
	m.boxes[msg.To] = box
	return nil
}

// Fetch returns up to limit queued messages for id, oldest first. A limit of
// zero or less returns everything.
func (m *Mailbox) Fetch(id domain.Identity, limit int) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	box := m.boxes[id]
	if limit <= 0 || limit > len(box) {
		limit = len(box)
	}
	out := make([]Message, limit)
	copy(out, box[:limit])
	return out
}

// Ack drops the first count queued messages for id and returns how many were
// dropped. A count beyond the queue length clears it.
func (m *Mailbox) Ack(id domain.Identity, count int) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	box := m.boxes[id]
	if count <= 0 {
		return 0
	}
	if count >= len(box) {
		delete(m.boxes, id)
		return len(box)
	}
	m.boxes[id] = append(box[:0:0], box[count:]...)
	return count
}

// Pending reports how many messages are queued for id.
func (m *Mailbox) Pending(id domain.Identity) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.boxes[id])
}

// Compile-time assertion that Mailbox implements domain.Sender.
var _ domain.Sender = (*Mailbox)(nil)
