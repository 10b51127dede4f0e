package app

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bft-labs/drawstream/internal/domain"
	"github.com/bft-labs/drawstream/internal/ports"
)

// mockLogger implements ports.Logger for testing.
type mockLogger struct{}

func (mockLogger) Debug(msg string, fields ...ports.Field) {}
func (mockLogger) Info(msg string, fields ...ports.Field)  {}
func (mockLogger) Warn(msg string, fields ...ports.Field)  {}
func (mockLogger) Error(msg string, fields ...ports.Field) {}

// makeFrame returns a valid frame whose first byte is tag.
func makeFrame(tag byte) domain.Frame {
	b := make([]byte, domain.FrameSize)
	b[0] = tag
	f, _ := domain.NewFrame(b)
	return f
}

func frameTag(f domain.Frame) byte {
	if f.Empty() {
		return 0
	}
	return f.Bytes()[0]
}

func paramUpdate(p domain.ParamSet) domain.Payload {
	return domain.ControlPayload(domain.ControlMessage{Type: domain.MsgParamUpdate, Params: p})
}

type readResult struct {
	p   domain.Payload
	err error
}

// fakeConn is a scripted ports.Conn.
type fakeConn struct {
	in     chan readResult
	writes chan domain.Frame

	closeOnce sync.Once
	closed    chan struct{}
	closes    atomic.Int32
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan readResult, 64),
		writes: make(chan domain.Frame, 64),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) send(p domain.Payload)   { c.in <- readResult{p: p} }
func (c *fakeConn) sendErr(err error)       { c.in <- readResult{err: err} }
func (c *fakeConn) RemoteAddr() string      { return "fake" }
func (c *fakeConn) isClosed() bool          { return c.closes.Load() > 0 }
func (c *fakeConn) waitClosed(t *testing.T) { waitChan(t, c.closed, "connection close") }

func (c *fakeConn) ReadPayload() (domain.Payload, error) {
	select {
	case r := <-c.in:
		return r.p, r.err
	case <-c.closed:
		return domain.Payload{}, net.ErrClosed
	}
}

func (c *fakeConn) WriteFrame(ctx context.Context, f domain.Frame) error {
	select {
	case <-c.closed:
		return net.ErrClosed
	default:
	}
	c.writes <- f
	return nil
}

func (c *fakeConn) Close() error {
	c.closes.Add(1)
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

// nextWrite waits for the next result frame.
func (c *fakeConn) nextWrite(t *testing.T) domain.Frame {
	t.Helper()
	select {
	case f := <-c.writes:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a result frame")
		return domain.Frame{}
	}
}

// noWrite asserts that no result frame arrives within d.
func (c *fakeConn) noWrite(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case f := <-c.writes:
		t.Fatalf("unexpected result frame with tag %d", frameTag(f))
	case <-time.After(d):
	}
}

type transformCall struct {
	input  domain.Frame
	params domain.ParamSet
}

// fakeEngine echoes its input and asserts it is never re-entered.
type fakeEngine struct {
	delay time.Duration
	err   error
	short bool

	// When set, each call signals started and waits for release.
	started chan struct{}
	release chan struct{}

	inFlight  atomic.Int32
	reentered atomic.Bool
	calls     atomic.Int32

	mu      sync.Mutex
	history []transformCall
}

func (e *fakeEngine) Transform(ctx context.Context, input domain.Frame, params domain.ParamSet) (domain.Frame, error) {
	if e.inFlight.Add(1) > 1 {
		e.reentered.Store(true)
	}
	defer e.inFlight.Add(-1)

	e.calls.Add(1)
	e.mu.Lock()
	e.history = append(e.history, transformCall{input: input, params: params})
	e.mu.Unlock()

	if e.started != nil {
		e.started <- struct{}{}
		<-e.release
	}
	if e.delay > 0 {
		time.Sleep(e.delay)
	}
	if e.err != nil {
		return domain.Frame{}, e.err
	}
	if e.short {
		return domain.Frame{}, nil
	}
	if input.Empty() {
		return makeFrame(0), nil
	}
	return input, nil
}

func (e *fakeEngine) Calls() []transformCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]transformCall{}, e.history...)
}

var errEngine = errors.New("engine exploded")

func waitChan(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, d time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v: %s", d, msg)
}
