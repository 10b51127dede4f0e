package app

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/drawstream/internal/domain"
)

// Mailbox is the per-connection hand-off between a handler and its worker.
//
// It holds at most one undelivered payload. Put overwrites an undelivered
// payload (latest wins) so a slow worker is never more than one payload
// behind the live edge. Once the Stop sentinel has been put, later puts are
// ignored.
//
// Put may be called from any goroutine. TryTake and Wait must be called from
// the single consumer goroutine.
type Mailbox struct {
	mu      sync.Mutex
	slot    domain.Payload
	full    bool
	closed  bool
	dropped uint64

	// notify holds at most one wake-up token.
	notify chan struct{}
}

// NewMailbox creates an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{notify: make(chan struct{}, 1)}
}

// Put stores p, replacing any undelivered payload.
// Returns true if an undelivered payload was overwritten.
func (m *Mailbox) Put(p domain.Payload) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}

	overwrote := m.full
	if overwrote {
		m.dropped++
	}
	m.slot = p
	m.full = true
	if p.Kind == domain.KindStop {
		m.closed = true
	}
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
	return overwrote
}

// TryTake removes and returns the pending payload without blocking.
func (m *Mailbox) TryTake() (domain.Payload, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.full {
		return domain.Payload{}, false
	}
	p := m.slot
	m.slot = domain.Payload{}
	m.full = false
	return p, true
}

// Wait blocks until a payload is pending, timeout elapses, or ctx is done.
// Returns true only if a payload is pending.
func (m *Mailbox) Wait(ctx context.Context, timeout time.Duration) bool {
	if m.pending() {
		return true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-m.notify:
			// The token may be stale if the payload was already taken.
			if m.pending() {
				return true
			}
		case <-timer.C:
			return m.pending()
		case <-ctx.Done():
			return false
		}
	}
}

// Dropped returns how many payloads were overwritten before delivery.
func (m *Mailbox) Dropped() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

func (m *Mailbox) pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.full
}
