package relay

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"nexus-pusher/pkg/errx"
)

// Launcher runs at most one relay at a time in the background.
type Launcher struct {
	pipeline *Pipeline
	onIdle   func()
	busy     atomic.Bool
}

// NewLauncher returns a Launcher for p. onIdle, when non-nil, is called
// once after every background run has fully finished, so a front end can
// re-enable its controls.
func NewLauncher(p *Pipeline, onIdle func()) *Launcher {
	return &Launcher{pipeline: p, onIdle: onIdle}
}

// Busy reports whether a run is in progress.
func (l *Launcher) Busy() bool { return l.busy.Load() }

// Run is a handle on one background relay.
type Run struct {
	done    chan struct{}
	outcome Outcome
	err     error
}

// Done is closed when the run has finished and its observer has been told.
func (r *Run) Done() <-chan struct{} { return r.done }

// Wait blocks until the run finishes and returns its outcome.
func (r *Run) Wait() (Outcome, error) {
	<-r.done
	return r.outcome, r.err
}

// Start validates in synchronously and then runs the relay on a new
// goroutine. Validation errors and ErrRunInProgress are returned without
// touching obs.
func (l *Launcher) Start(ctx context.Context, in Input, obs Observer) (*Run, error) {
	if _, err := l.pipeline.Prepare(in); err != nil {
		return nil, err
	}
	if !l.busy.CompareAndSwap(false, true) {
		return nil, newWithSentinel(ErrRunInProgress, "a relay is already running; wait for it to finish")
	}

	g := guard(obs)
	run := &Run{done: make(chan struct{})}
	go func() {
		defer close(run.done)
		defer l.release()
		defer func() {
			if r := recover(); r != nil {
				err := errx.FromSentinel(ErrRunPanicked, lookupSpec, fmt.Sprintf("relay aborted unexpectedly: %v", r), nil)
				l.pipeline.logger.Error("Relay panicked", zap.Any("panic", r))
				run.outcome = Outcome{State: Failed, Err: err}
				run.err = err
				g.OnFailure(errx.UserString(err))
			}
		}()
		run.outcome, run.err = l.pipeline.Run(ctx, in, g)
	}()
	return run, nil
}

func (l *Launcher) release() {
	l.busy.Store(false)
	if l.onIdle != nil {
		l.onIdle()
	}
}
