package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bft-labs/drawstream/internal/domain"
)

type workerHarness struct {
	worker  *Worker
	mailbox *Mailbox
	conn    *fakeConn
	stats   *Stats
	cancel  context.CancelFunc
	done    chan error
}

func startWorker(t *testing.T, engine *fakeEngine, params domain.ParamSet, poll time.Duration) *workerHarness {
	t.Helper()

	h := &workerHarness{
		mailbox: NewMailbox(),
		conn:    newFakeConn(),
		stats:   NewStats(),
		done:    make(chan error, 1),
	}
	h.worker = NewWorker(h.mailbox, h.conn, engine, NewGate(), params, poll, h.stats, mockLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- h.worker.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		h.mailbox.Put(domain.StopPayload())
		<-h.done
	})
	return h
}

func (h *workerHarness) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-h.done:
		// Keep Cleanup from blocking on the already drained channel.
		h.done <- err
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not exit")
		return nil
	}
}

func TestWorker_TransformsFrames(t *testing.T) {
	engine := &fakeEngine{}
	h := startWorker(t, engine, domain.DefaultParams(), 50*time.Millisecond)

	h.mailbox.Put(domain.FramePayload(makeFrame(1)))
	if got := frameTag(h.conn.nextWrite(t)); got != 1 {
		t.Errorf("result tag = %d, want 1", got)
	}

	h.mailbox.Put(domain.FramePayload(makeFrame(2)))
	if got := frameTag(h.conn.nextWrite(t)); got != 2 {
		t.Errorf("result tag = %d, want 2", got)
	}

	if got := h.stats.Snapshot().Inferences; got != 2 {
		t.Errorf("Inferences = %d, want 2", got)
	}
}

func TestWorker_DedupsIdenticalFrames(t *testing.T) {
	engine := &fakeEngine{}
	h := startWorker(t, engine, domain.DefaultParams(), 50*time.Millisecond)

	h.mailbox.Put(domain.FramePayload(makeFrame(7)))
	h.conn.nextWrite(t)

	h.mailbox.Put(domain.FramePayload(makeFrame(7)))
	h.conn.noWrite(t, 100*time.Millisecond)

	if got := engine.calls.Load(); got != 1 {
		t.Errorf("engine called %d times, want 1", got)
	}
	if got := h.stats.Snapshot().FramesDeduped; got != 1 {
		t.Errorf("FramesDeduped = %d, want 1", got)
	}
}

func TestWorker_CatchesUpToLatestFrame(t *testing.T) {
	engine := &fakeEngine{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	h := startWorker(t, engine, domain.DefaultParams(), 50*time.Millisecond)

	h.mailbox.Put(domain.FramePayload(makeFrame(1)))
	waitChan(t, engine.started, "first transform")

	// Frames arriving during a transform overwrite each other.
	for tag := byte(2); tag <= 10; tag++ {
		h.mailbox.Put(domain.FramePayload(makeFrame(tag)))
	}
	engine.release <- struct{}{}
	if got := frameTag(h.conn.nextWrite(t)); got != 1 {
		t.Fatalf("first result tag = %d, want 1", got)
	}

	waitChan(t, engine.started, "second transform")
	engine.release <- struct{}{}
	if got := frameTag(h.conn.nextWrite(t)); got != 10 {
		t.Errorf("second result tag = %d, want 10", got)
	}

	h.conn.noWrite(t, 100*time.Millisecond)
	if got := engine.calls.Load(); got != 2 {
		t.Errorf("engine called %d times, want 2", got)
	}
	if got := h.mailbox.Dropped(); got != 8 {
		t.Errorf("Dropped() = %d, want 8", got)
	}
}

func TestWorker_ParamUpdateWithoutFrame(t *testing.T) {
	engine := &fakeEngine{}
	h := startWorker(t, engine, domain.DefaultParams(), 50*time.Millisecond)

	p := domain.DefaultParams()
	p.Seed = 9
	h.mailbox.Put(paramUpdate(p))
	h.conn.nextWrite(t)

	calls := engine.Calls()
	if len(calls) != 1 {
		t.Fatalf("engine called %d times, want 1", len(calls))
	}
	if !calls[0].input.Empty() {
		t.Error("param update without a prior frame should transform the empty frame")
	}
	if calls[0].params.Seed != 9 {
		t.Errorf("seed = %d, want 9", calls[0].params.Seed)
	}
}

func TestWorker_ParamUpdateRerendersLastFrame(t *testing.T) {
	engine := &fakeEngine{}
	h := startWorker(t, engine, domain.DefaultParams(), 50*time.Millisecond)

	h.mailbox.Put(domain.FramePayload(makeFrame(5)))
	h.conn.nextWrite(t)

	p := domain.DefaultParams()
	p.Prompt = "a cat"
	h.mailbox.Put(paramUpdate(p))
	if got := frameTag(h.conn.nextWrite(t)); got != 5 {
		t.Errorf("re-rendered tag = %d, want 5", got)
	}

	calls := engine.Calls()
	if len(calls) != 2 {
		t.Fatalf("engine called %d times, want 2", len(calls))
	}
	if calls[1].params.Prompt != "a cat" {
		t.Errorf("prompt = %q, want %q", calls[1].params.Prompt, "a cat")
	}

	// The same frame after a param update is still a duplicate.
	h.mailbox.Put(domain.FramePayload(makeFrame(5)))
	h.conn.noWrite(t, 100*time.Millisecond)
}

func TestWorker_NormalizesParams(t *testing.T) {
	tests := []struct {
		name         string
		steps        int
		strength     float64
		wantStrength float64
	}{
		{"single step", 1, 0.5, 1.0},
		{"product below one", 4, 0.1, 0.25},
		{"product above one", 4, 0.5, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{}
			h := startWorker(t, engine, domain.DefaultParams(), 50*time.Millisecond)

			p := domain.DefaultParams()
			p.Steps = tt.steps
			p.Strength = tt.strength
			h.mailbox.Put(paramUpdate(p))
			h.conn.nextWrite(t)

			got := engine.Calls()[0].params
			if got.Strength != tt.wantStrength {
				t.Errorf("strength = %v, want %v", got.Strength, tt.wantStrength)
			}
			if got.Steps != tt.steps {
				t.Errorf("steps = %d, want %d", got.Steps, tt.steps)
			}
		})
	}
}

func TestWorker_InitialParamsNormalized(t *testing.T) {
	engine := &fakeEngine{}
	initial := domain.DefaultParams()
	initial.Steps = 2
	initial.Strength = 0.1
	h := startWorker(t, engine, initial, 50*time.Millisecond)

	h.mailbox.Put(domain.FramePayload(makeFrame(1)))
	h.conn.nextWrite(t)

	if got := engine.Calls()[0].params.Strength; got != 0.5 {
		t.Errorf("strength = %v, want 0.5", got)
	}
}

func TestWorker_IgnoresUnknownControl(t *testing.T) {
	engine := &fakeEngine{}
	h := startWorker(t, engine, domain.DefaultParams(), 50*time.Millisecond)

	h.mailbox.Put(domain.ControlPayload(domain.ControlMessage{Type: 99}))
	h.conn.noWrite(t, 100*time.Millisecond)

	if got := engine.calls.Load(); got != 0 {
		t.Errorf("engine called %d times, want 0", got)
	}
}

func TestWorker_StopSentinel(t *testing.T) {
	h := startWorker(t, &fakeEngine{}, domain.DefaultParams(), time.Hour)

	h.mailbox.Put(domain.StopPayload())
	if err := h.wait(t); err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}
	if h.worker.State() != WorkerStopped {
		t.Errorf("state = %v, want Stopped", h.worker.State())
	}
}

func TestWorker_CancelWhileWaiting(t *testing.T) {
	poll := 50 * time.Millisecond
	h := startWorker(t, &fakeEngine{}, domain.DefaultParams(), poll)

	eventually(t, time.Second, func() bool { return h.worker.State() == WorkerWaiting }, "worker waiting")

	start := time.Now()
	h.cancel()
	if err := h.wait(t); err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}
	if elapsed := time.Since(start); elapsed > poll+500*time.Millisecond {
		t.Errorf("worker took %v to observe cancel", elapsed)
	}
}

func TestWorker_InFlightTransformCompletes(t *testing.T) {
	engine := &fakeEngine{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	h := startWorker(t, engine, domain.DefaultParams(), 50*time.Millisecond)

	h.mailbox.Put(domain.FramePayload(makeFrame(3)))
	waitChan(t, engine.started, "transform")
	if h.worker.State() != WorkerInferring {
		t.Errorf("state = %v, want Inferring", h.worker.State())
	}

	h.cancel()
	engine.release <- struct{}{}

	if err := h.wait(t); err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}
	if got := engine.calls.Load(); got != 1 {
		t.Errorf("engine called %d times, want 1", got)
	}
}

func TestWorker_TransformFailure(t *testing.T) {
	engine := &fakeEngine{err: errEngine}
	h := startWorker(t, engine, domain.DefaultParams(), 50*time.Millisecond)

	h.mailbox.Put(domain.FramePayload(makeFrame(1)))
	err := h.wait(t)
	if !errors.Is(err, domain.ErrTransform) {
		t.Errorf("Run() = %v, want ErrTransform", err)
	}
	if !errors.Is(err, errEngine) {
		t.Errorf("Run() = %v, want wrapped engine error", err)
	}
	if got := h.stats.Snapshot().TransformFailures; got != 1 {
		t.Errorf("TransformFailures = %d, want 1", got)
	}
}

func TestWorker_WrongSizeResult(t *testing.T) {
	engine := &fakeEngine{short: true}
	h := startWorker(t, engine, domain.DefaultParams(), 50*time.Millisecond)

	h.mailbox.Put(domain.FramePayload(makeFrame(1)))
	if err := h.wait(t); !errors.Is(err, domain.ErrTransform) {
		t.Errorf("Run() = %v, want ErrTransform", err)
	}
}

func TestWorker_SendFailure(t *testing.T) {
	engine := &fakeEngine{}
	h := startWorker(t, engine, domain.DefaultParams(), 50*time.Millisecond)
	h.conn.Close()

	h.mailbox.Put(domain.FramePayload(makeFrame(1)))
	err := h.wait(t)
	if err == nil {
		t.Fatal("Run() = nil, want send error")
	}
	if errors.Is(err, domain.ErrTransform) {
		t.Errorf("send failure reported as transform failure: %v", err)
	}
}

func TestWorkerState_String(t *testing.T) {
	tests := []struct {
		state WorkerState
		want  string
	}{
		{WorkerWaiting, "Waiting"},
		{WorkerDraining, "Draining"},
		{WorkerInferring, "Inferring"},
		{WorkerStopped, "Stopped"},
		{WorkerState(42), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
