package app

import (
	"sync"
	"time"

	"github.com/bft-labs/drawstream/internal/domain"
	"github.com/bft-labs/drawstream/internal/ports"
)

// ShutdownTimeout is the default time allowed for open connections to drain
// after the listener has stopped accepting.
const ShutdownTimeout = 30 * time.Second

// State is the server lifecycle state.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

var stateNames = [...]string{
	StateStopped:  "Stopped",
	StateStarting: "Starting",
	StateRunning:  "Running",
	StateStopping: "Stopping",
	StateCrashed:  "Crashed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// idle reports whether the server holds no listener and no sessions.
func (s State) idle() bool {
	return s == StateStopped || s == StateCrashed
}

// next lists the states reachable from each state.
var next = map[State][]State{
	StateStopped:  {StateStarting},
	StateStarting: {StateRunning, StateStopping, StateCrashed},
	StateRunning:  {StateStopping, StateCrashed},
	StateStopping: {StateStopped, StateCrashed},
	StateCrashed:  {StateStarting},
}

func canMove(from, to State) bool {
	for _, s := range next[from] {
		if s == to {
			return true
		}
	}
	return false
}

// EventEmitter observes state changes. It is called outside the lock.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Lifecycle guards the server state and tracks the background goroutines
// (accept loop, coordinator, status writer) started for one run.
type Lifecycle struct {
	mu      sync.RWMutex
	state   State
	tasks   sync.WaitGroup
	logger  ports.Logger
	emitter EventEmitter
}

// NewLifecycle returns a Lifecycle in StateStopped. emitter may be nil.
func NewLifecycle(logger ports.Logger, emitter EventEmitter) *Lifecycle {
	return &Lifecycle{logger: logger, emitter: emitter}
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo moves to to. Moving out of an idle state to anything but
// Starting yields ErrNotRunning; any other illegal move yields
// ErrAlreadyRunning.
func (l *Lifecycle) TransitionTo(to State, reason string) error {
	l.mu.Lock()
	from := l.state
	if !canMove(from, to) {
		l.mu.Unlock()
		if from.idle() {
			return domain.ErrNotRunning
		}
		return domain.ErrAlreadyRunning
	}
	l.state = to
	l.mu.Unlock()

	if l.emitter != nil {
		l.emitter.OnStateChange(from, to, reason)
	}
	l.logger.Info("state transition",
		ports.String("from", from.String()),
		ports.String("to", to.String()),
		ports.String("reason", reason),
	)
	return nil
}

// CanStart reports whether Start may be called.
func (l *Lifecycle) CanStart() bool {
	return l.State().idle()
}

// CanStop reports whether Stop may be called.
func (l *Lifecycle) CanStop() bool {
	s := l.State()
	return s == StateStarting || s == StateRunning
}

// Go runs fn on a goroutine that WaitWithTimeout waits for.
func (l *Lifecycle) Go(fn func()) {
	l.tasks.Add(1)
	go func() {
		defer l.tasks.Done()
		fn()
	}()
}

// WaitWithTimeout blocks until every goroutine started with Go has returned.
// Returns ErrShutdownTimeout if that takes longer than timeout.
func (l *Lifecycle) WaitWithTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		l.tasks.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		l.logger.Warn("background tasks still running", ports.Duration("timeout", timeout))
		return domain.ErrShutdownTimeout
	}
}
