package app

import (
	"sync/atomic"
	"time"

	"github.com/bft-labs/drawstream/internal/domain"
)

// Stats aggregates counters across all connections. All methods are safe for
// concurrent use.
type Stats struct {
	startedAt atomic.Int64

	active           atomic.Int64
	totalConns       atomic.Uint64
	framesReceived   atomic.Uint64
	controlsReceived atomic.Uint64
	controlsIgnored  atomic.Uint64
	framesDropped    atomic.Uint64
	framesDeduped    atomic.Uint64
	protocolErrors   atomic.Uint64
	inferences       atomic.Uint64
	failures         atomic.Uint64
	inferenceNanos   atomic.Int64
}

// NewStats creates zeroed statistics.
func NewStats() *Stats {
	return &Stats{}
}

// MarkStarted records the time the server started accepting.
func (s *Stats) MarkStarted(t time.Time) { s.startedAt.Store(t.UnixNano()) }

func (s *Stats) connOpened() {
	s.active.Add(1)
	s.totalConns.Add(1)
}

func (s *Stats) connClosed()      { s.active.Add(-1) }
func (s *Stats) frameReceived()   { s.framesReceived.Add(1) }
func (s *Stats) controlReceived() { s.controlsReceived.Add(1) }
func (s *Stats) controlIgnored()  { s.controlsIgnored.Add(1) }
func (s *Stats) dropped(n uint64) { s.framesDropped.Add(n) }
func (s *Stats) deduped()         { s.framesDeduped.Add(1) }
func (s *Stats) protocolError()   { s.protocolErrors.Add(1) }
func (s *Stats) transformFailed() { s.failures.Add(1) }

func (s *Stats) inferred(took time.Duration) {
	s.inferences.Add(1)
	s.inferenceNanos.Add(int64(took))
}

// Active returns the number of open connections.
func (s *Stats) Active() int64 { return s.active.Load() }

// Snapshot returns the current counters. State is left for the caller to fill.
func (s *Stats) Snapshot() domain.Status {
	st := domain.Status{
		UpdatedAt:         time.Now().UTC(),
		ActiveConnections: s.active.Load(),
		TotalConnections:  s.totalConns.Load(),
		FramesReceived:    s.framesReceived.Load(),
		ControlsReceived:  s.controlsReceived.Load(),
		ControlsIgnored:   s.controlsIgnored.Load(),
		FramesDropped:     s.framesDropped.Load(),
		FramesDeduped:     s.framesDeduped.Load(),
		ProtocolErrors:    s.protocolErrors.Load(),
		Inferences:        s.inferences.Load(),
		TransformFailures: s.failures.Load(),
		InferenceTime:     time.Duration(s.inferenceNanos.Load()),
	}
	if ns := s.startedAt.Load(); ns != 0 {
		st.StartedAt = time.Unix(0, ns).UTC()
	}
	return st
}
