// Package server provides the in-process time service that every
// transport wraps. It owns the clock source, the configured default
// layouts and the lifecycle that rejects calls after Close.
package server

import (
	"fmt"
	"sync"

	"github.com/blockberries/chronos"
)

// lifecycleState represents a state in the service lifecycle.
type lifecycleState uint32

const (
	// stateOpen: calls and tick streams are admitted.
	stateOpen lifecycleState = iota
	// stateClosing: Close has been called. New calls fail with
	// chronos.ErrClosed; Close waits for the ones in flight.
	stateClosing
	// stateClosed: nothing is in flight and nothing will be admitted.
	stateClosed
)

func (s lifecycleState) String() string {
	switch s {
	case stateOpen:
		return "Open"
	case stateClosing:
		return "Closing"
	case stateClosed:
		return "Closed"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// LifecycleGuard admits calls while open and lets Close drain them.
// Long-running work such as a tick stream holds its admission for as
// long as it runs and watches Done to learn that it must stop.
type LifecycleGuard struct {
	mu       sync.Mutex
	drained  *sync.Cond
	state    lifecycleState
	inflight int
	done     chan struct{}
}

// NewLifecycleGuard creates a guard in the Open state.
func NewLifecycleGuard() *LifecycleGuard {
	g := &LifecycleGuard{done: make(chan struct{})}
	g.drained = sync.NewCond(&g.mu)
	return g
}

// State returns the current lifecycle state.
func (g *LifecycleGuard) State() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.String()
}

// IsOpen returns true if the guard still admits calls.
func (g *LifecycleGuard) IsOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state == stateOpen
}

// Enter admits one call. Every successful Enter must be paired with Leave.
func (g *LifecycleGuard) Enter() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != stateOpen {
		return fmt.Errorf("%w (state %s)", chronos.ErrClosed, g.state)
	}
	g.inflight++
	return nil
}

// Leave ends a call admitted by Enter.
// Panics if no call is in flight.
func (g *LifecycleGuard) Leave() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inflight == 0 {
		panic("github.com/blockberries/chronos: Leave called without a matching Enter")
	}
	g.inflight--
	if g.inflight == 0 {
		g.drained.Broadcast()
	}
}

// Done is closed when Close is called.
func (g *LifecycleGuard) Done() <-chan struct{} {
	return g.done
}

// Close transitions Open → Closing → Closed, waiting for the calls in
// flight to leave. It reports false if the guard was already closing or
// closed.
func (g *LifecycleGuard) Close() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != stateOpen {
		return false
	}
	g.state = stateClosing
	close(g.done)
	for g.inflight > 0 {
		g.drained.Wait()
	}
	g.state = stateClosed
	return true
}
