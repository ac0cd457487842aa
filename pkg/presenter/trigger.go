// Package presenter hosts the web view that lists the catalog and turns the
// view's "start export" navigation into a single export run.
package presenter

import (
	"context"
	"fmt"
	"sync"
)

// SentinelURL is the address the web view navigates to in order to start
// the export. It is never fetched; targets are compared to it verbatim.
const SentinelURL = "https://localhost:8080/symbolexport"

// State of a Trigger.
type State int

const (
	// Idle waits for the sentinel navigation.
	Idle State = iota
	// Exporting runs the export handler.
	Exporting
	// Done is terminal: the handler returned.
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Exporting:
		return "exporting"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Trigger fires its handler exactly once, on the first navigation whose
// target equals SentinelURL.
type Trigger struct {
	handler func(ctx context.Context) error

	mu    sync.Mutex
	state State
	err   error
	done  chan struct{}
}

// NewTrigger returns an idle trigger that runs handler on export.
func NewTrigger(handler func(ctx context.Context) error) *Trigger {
	return &Trigger{
		handler: handler,
		done:    make(chan struct{}),
	}
}

// Navigate is the web view's navigation observer. It reports whether this
// call ran the export. The export runs synchronously on the calling
// goroutine; any other target, and any call after the first match, is a
// no-op.
func (t *Trigger) Navigate(ctx context.Context, source, target string) bool {
	if target != SentinelURL {
		return false
	}

	t.mu.Lock()
	if t.state != Idle {
		t.mu.Unlock()
		return false
	}
	t.state = Exporting
	t.mu.Unlock()

	t.run(ctx)
	return true
}

// run calls the handler and always moves to Done, turning a panic into
// the handler's error.
func (t *Trigger) run(ctx context.Context) {
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("export panicked: %v", r)
		}

		t.mu.Lock()
		t.state = Done
		t.err = err
		t.mu.Unlock()
		close(t.done)
	}()

	err = t.handler(ctx)
}

// State returns the current state.
func (t *Trigger) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Done is closed once the export handler has returned.
func (t *Trigger) Done() <-chan struct{} {
	return t.done
}

// Err returns the export handler's error, once Done is closed.
func (t *Trigger) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}
