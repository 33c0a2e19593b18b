package server

import (
	"errors"
	"testing"
	"time"

	"github.com/blockberries/chronos"
)

func TestLifecycleGuard_HappyPath(t *testing.T) {
	g := NewLifecycleGuard()

	if !g.IsOpen() {
		t.Fatal("expected Open after construction")
	}
	for i := 0; i < 3; i++ {
		if err := g.Enter(); err != nil {
			t.Fatalf("Enter: %v", err)
		}
		g.Leave()
	}

	if !g.Close() {
		t.Fatal("expected first Close to report true")
	}
	if g.IsOpen() {
		t.Fatal("expected not Open after Close")
	}
}

func TestLifecycleGuard_EnterAfterClose(t *testing.T) {
	g := NewLifecycleGuard()
	g.Close()

	err := g.Enter()
	if !errors.Is(err, chronos.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestLifecycleGuard_DoubleClose(t *testing.T) {
	g := NewLifecycleGuard()
	if !g.Close() {
		t.Fatal("expected first Close to report true")
	}
	if g.Close() {
		t.Fatal("expected second Close to report false")
	}
}

func TestLifecycleGuard_LeaveWithoutEnter(t *testing.T) {
	g := NewLifecycleGuard()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for Leave without Enter")
		}
	}()

	g.Leave()
}

func TestLifecycleGuard_CloseDrainsInflight(t *testing.T) {
	g := NewLifecycleGuard()
	if err := g.Enter(); err != nil {
		t.Fatalf("Enter: %v", err)
	}

	closed := make(chan struct{})
	go func() {
		g.Close()
		close(closed)
	}()

	select {
	case <-g.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed by Close")
	}
	select {
	case <-closed:
		t.Fatal("Close returned with a call in flight")
	case <-time.After(20 * time.Millisecond):
	}
	if got := g.State(); got != "Closing" {
		t.Errorf("expected Closing, got %s", got)
	}

	g.Leave()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not return after the last Leave")
	}
}

func TestLifecycleGuard_State(t *testing.T) {
	g := NewLifecycleGuard()

	if g.State() != "Open" {
		t.Errorf("expected Open, got %s", g.State())
	}

	g.Close()

	if g.State() != "Closed" {
		t.Errorf("expected Closed, got %s", g.State())
	}
}
