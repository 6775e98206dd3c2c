// Package screen models the per-screen request lifecycle:
// Idle -> Loading -> Success|Error -> Idle.
package screen

import (
	"context"
	"errors"
	"sync"

	"github.com/samber/mo"
)

type State int

const (
	Idle State = iota
	Loading
	Success
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// ErrBusy is returned when the triggering control is pressed while a request is in flight.
var ErrBusy = errors.New("action already in progress")

// Action runs one network-triggering task at a time for a screen. The zero
// value is ready to use.
type Action[T any] struct {
	// OnChange observes every transition, e.g. to toggle a spinner.
	OnChange func(State)

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
}

func (a *Action[T]) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Action[T]) set(s State) {
	a.mu.Lock()
	a.state = s
	fn := a.OnChange
	a.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

// Run executes fn and blocks until it returns. A second Run while Loading
// fails fast with ErrBusy without touching the running task.
func (a *Action[T]) Run(ctx context.Context, fn func(context.Context) mo.Result[T]) mo.Result[T] {
	a.mu.Lock()
	if a.state == Loading {
		a.mu.Unlock()
		return mo.Err[T](ErrBusy)
	}
	a.state = Loading
	cctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	notify := a.OnChange
	a.mu.Unlock()
	if notify != nil {
		notify(Loading)
	}

	res := fn(cctx)
	cancel()

	a.mu.Lock()
	a.cancel = nil
	a.mu.Unlock()

	if res.IsError() {
		a.set(Error)
	} else {
		a.set(Success)
	}
	a.set(Idle)
	return res
}

// Start runs fn in the background and hands the result to done.
func (a *Action[T]) Start(ctx context.Context, fn func(context.Context) mo.Result[T], done func(mo.Result[T])) {
	go func() {
		res := a.Run(ctx, fn)
		if done != nil {
			done(res)
		}
	}()
}

// Cancel aborts the in-flight task, if any. Call it on screen teardown.
func (a *Action[T]) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
	}
}
