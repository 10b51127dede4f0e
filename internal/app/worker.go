package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bft-labs/drawstream/internal/domain"
	"github.com/bft-labs/drawstream/internal/ports"
)

// DefaultPollInterval bounds how long a worker waits on an empty mailbox
// before re-checking its stop condition.
const DefaultPollInterval = time.Second

// WorkerState is the state of a ConnectionWorker.
type WorkerState int32

const (
	WorkerWaiting WorkerState = iota
	WorkerDraining
	WorkerInferring
	WorkerStopped
)

// String returns a human-readable representation of the state.
func (s WorkerState) String() string {
	switch s {
	case WorkerWaiting:
		return "Waiting"
	case WorkerDraining:
		return "Draining"
	case WorkerInferring:
		return "Inferring"
	case WorkerStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// FrameWriter sends result frames back to the client.
type FrameWriter interface {
	WriteFrame(ctx context.Context, frame domain.Frame) error
}

// Worker drains one connection's mailbox, applies the drop-stale and dedup
// policies, and runs the transform under the shared inference gate.
//
// Session state (params, lastFrame) is owned by the Run goroutine.
type Worker struct {
	mailbox      *Mailbox
	out          FrameWriter
	engine       ports.TransformEngine
	gate         ports.InferenceGate
	stats        *Stats
	logger       ports.Logger
	pollInterval time.Duration

	state     atomic.Int32
	params    domain.ParamSet
	lastFrame domain.Frame
}

// NewWorker creates a worker in WorkerWaiting with the given initial params.
func NewWorker(
	mailbox *Mailbox,
	out FrameWriter,
	engine ports.TransformEngine,
	gate ports.InferenceGate,
	params domain.ParamSet,
	pollInterval time.Duration,
	stats *Stats,
	logger ports.Logger,
) *Worker {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Worker{
		mailbox:      mailbox,
		out:          out,
		engine:       engine,
		gate:         gate,
		stats:        stats,
		logger:       logger,
		pollInterval: pollInterval,
		params:       params.Normalize(),
	}
}

// State returns the current state. Safe to call from any goroutine.
func (w *Worker) State() WorkerState {
	return WorkerState(w.state.Load())
}

func (w *Worker) setState(s WorkerState) {
	w.state.Store(int32(s))
}

// Run processes payloads until the Stop sentinel arrives, ctx is cancelled,
// or a transform or send fails. Returns nil on a cooperative stop and the
// failure otherwise. Cancellation is only observed between transforms.
func (w *Worker) Run(ctx context.Context) error {
	defer w.setState(WorkerStopped)

	for {
		if ctx.Err() != nil {
			return nil
		}

		w.setState(WorkerWaiting)
		if !w.mailbox.Wait(ctx, w.pollInterval) {
			continue
		}

		w.setState(WorkerDraining)
		p, ok := w.drain()
		if !ok {
			continue
		}

		switch p.Kind {
		case domain.KindStop:
			return nil

		case domain.KindControl:
			if !p.Control.Recognized() {
				continue
			}
			w.params = p.Control.Params.Normalize()
			w.logger.Debug("params updated",
				ports.Int("steps", w.params.Steps),
				ports.Float64("strength", w.params.Strength),
				ports.Int64("seed", w.params.Seed),
			)
			// Re-render the last frame with the new params.
			if err := w.infer(ctx, w.lastFrame); err != nil {
				return err
			}

		case domain.KindFrame:
			if p.Frame.Equal(w.lastFrame) {
				w.stats.deduped()
				continue
			}
			w.lastFrame = p.Frame
			if err := w.infer(ctx, p.Frame); err != nil {
				return err
			}
		}
	}
}

// drain takes payloads until the mailbox is empty and keeps the last one.
func (w *Worker) drain() (domain.Payload, bool) {
	var (
		last  domain.Payload
		taken uint64
	)
	for {
		p, ok := w.mailbox.TryTake()
		if !ok {
			break
		}
		last = p
		taken++
	}
	if taken > 1 {
		w.stats.dropped(taken - 1)
	}
	return last, taken > 0
}

// infer runs one transform under the gate and sends the result.
// A stop requested while waiting for the gate is not an error.
func (w *Worker) infer(ctx context.Context, input domain.Frame) error {
	if err := w.gate.Acquire(ctx); err != nil {
		return nil
	}

	w.setState(WorkerInferring)
	result, took, err := w.transform(ctx, input)
	if err != nil {
		w.stats.transformFailed()
		return fmt.Errorf("%w: %w", domain.ErrTransform, err)
	}
	if len(result.Bytes()) != domain.FrameSize {
		w.stats.transformFailed()
		return fmt.Errorf("%w: result has %d bytes, want %d", domain.ErrTransform, len(result.Bytes()), domain.FrameSize)
	}
	w.stats.inferred(took)
	w.logger.Debug("inference complete",
		ports.Duration("took", took),
		ports.Bool("empty_input", input.Empty()),
	)

	if err := w.out.WriteFrame(ctx, result); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("send result: %w", err)
	}
	return nil
}

// transform calls the engine while holding the gate. The gate is released
// even if the engine panics.
func (w *Worker) transform(ctx context.Context, input domain.Frame) (domain.Frame, time.Duration, error) {
	defer w.gate.Release()

	start := time.Now()
	// In-flight transforms are never aborted by a stop request.
	result, err := w.engine.Transform(context.WithoutCancel(ctx), input, w.params)
	return result, time.Since(start), err
}
