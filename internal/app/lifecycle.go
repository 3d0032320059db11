package app

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/camsim/internal/domain"
	"github.com/bft-labs/camsim/pkg/log"
)

// ShutdownTimeout is the maximum time to wait for device workers on stop.
const ShutdownTimeout = 5 * time.Second

// State represents the lifecycle state of a simulated device.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// transitions lists the states reachable from each state. The error is
// returned for any target not in the list.
var transitions = map[State]struct {
	to  []State
	err error
}{
	StateStopped:  {[]State{StateStarting}, domain.ErrNotRunning},
	StateStarting: {[]State{StateRunning, StateStopping, StateCrashed}, domain.ErrAlreadyRunning},
	StateRunning:  {[]State{StateStopping, StateCrashed}, domain.ErrAlreadyRunning},
	StateStopping: {[]State{StateStopped, StateCrashed}, domain.ErrAlreadyRunning},
	StateCrashed:  {[]State{StateStarting}, domain.ErrNotRunning},
}

// Lifecycle tracks the device state machine and the goroutines it owns.
type Lifecycle struct {
	mu           sync.RWMutex
	state        State
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	logger       log.Logger
	eventEmitter EventEmitter
}

// EventEmitter is called when lifecycle state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// NewLifecycle creates a new lifecycle manager.
func NewLifecycle(logger log.Logger, emitter EventEmitter) *Lifecycle {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Lifecycle{
		state:        StateStopped,
		logger:       logger,
		eventEmitter: emitter,
	}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo attempts to move to newState.
// Returns an error if the transition is not valid; the state is unchanged.
func (l *Lifecycle) TransitionTo(newState State, reason string) error {
	l.mu.Lock()
	oldState := l.state
	rule := transitions[oldState]
	allowed := false
	for _, s := range rule.to {
		if s == newState {
			allowed = true
			break
		}
	}
	if !allowed {
		l.mu.Unlock()
		return rule.err
	}
	l.state = newState
	l.mu.Unlock()

	// Emit outside of lock
	if l.eventEmitter != nil {
		l.eventEmitter.OnStateChange(oldState, newState, reason)
	}

	l.logger.Info("device state transition",
		log.String("from", oldState.String()),
		log.String("to", newState.String()),
		log.String("reason", reason),
	)
	return nil
}

// CanStart reports whether the device may be started.
func (l *Lifecycle) CanStart() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateStopped || l.state == StateCrashed
}

// CanStop reports whether the device may be stopped.
func (l *Lifecycle) CanStop() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateRunning || l.state == StateStarting
}

// SetCancel stores the cancel function of the device run context.
func (l *Lifecycle) SetCancel(cancel context.CancelFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cancel = cancel
}

// Cancel cancels the device run context, if any.
func (l *Lifecycle) Cancel() {
	l.mu.Lock()
	cancel := l.cancel
	l.cancel = nil
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Go runs fn on a tracked worker goroutine.
func (l *Lifecycle) Go(fn func()) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		fn()
	}()
}

// WaitWithTimeout waits for all workers started with Go.
// Returns ErrShutdownTimeout if the timeout expires.
func (l *Lifecycle) WaitWithTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		l.logger.Warn("device workers did not exit in time",
			log.Duration("timeout", timeout),
		)
		return domain.ErrShutdownTimeout
	}
}
