package stopwatch

import (
	"context"
	"errors"
	"testing"

	"github.com/blockberries/chronos"
	chronostest "github.com/blockberries/chronos/testing"
	"github.com/blockberries/chronos/types"
)

func TestStopwatch_Laps(t *testing.T) {
	h := chronostest.NewHarness(t)
	sw := New(h.Conn())
	ctx := context.Background()

	if err := sw.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	h.Advance(types.Seconds(90))
	lap, err := sw.Lap(ctx)
	if err != nil {
		t.Fatalf("Lap: %v", err)
	}
	if lap != types.Seconds(90) {
		t.Fatalf("expected 90s lap, got %v", lap)
	}
	h.Advance(types.Seconds(30))
	if _, err := sw.Lap(ctx); err != nil {
		t.Fatalf("Lap: %v", err)
	}

	avg, err := sw.Average()
	if err != nil {
		t.Fatalf("Average: %v", err)
	}
	if avg != types.Minutes(1) {
		t.Fatalf("expected 1m average, got %v", avg)
	}
	if got := sw.Fastest(); got != types.Seconds(30) {
		t.Fatalf("expected 30s fastest, got %v", got)
	}

	report, err := sw.Report(ctx, "%-%M:%S")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	want := "lap 1: 01:30\nlap 2: 00:30\ntotal: 02:00\n"
	if report != want {
		t.Fatalf("report:\n%s\nwant:\n%s", report, want)
	}
}

func TestStopwatch_StopExcludesIdleTime(t *testing.T) {
	h := chronostest.NewHarness(t)
	sw := New(h.Conn())
	ctx := context.Background()

	sw.Start(ctx)
	h.Advance(types.Seconds(10))
	total, err := sw.Stop(ctx)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if total != types.Seconds(10) {
		t.Fatalf("expected 10s, got %v", total)
	}

	h.Advance(types.Hours(1))
	if _, err := sw.Lap(ctx); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning, got %v", err)
	}
	sw.Start(ctx)
	h.Advance(types.Seconds(5))
	if got, _ := sw.Elapsed(ctx); got != types.Seconds(15) {
		t.Fatalf("expected 15s, got %v", got)
	}
	if err := sw.Start(ctx); !errors.Is(err, ErrRunning) {
		t.Fatalf("expected ErrRunning, got %v", err)
	}

	sw.Reset()
	if got, _ := sw.Elapsed(ctx); got != types.Zero {
		t.Fatalf("expected zero after Reset, got %v", got)
	}
	if got := sw.Fastest(); got != types.Infinity {
		t.Fatalf("expected +inf fastest without laps, got %v", got)
	}
}

func TestStopwatch_Remaining(t *testing.T) {
	h := chronostest.NewHarness(t)
	sw := New(h.Conn())
	ctx := context.Background()

	sw.Start(ctx)
	h.Advance(types.Minutes(3))

	left, err := sw.Remaining(ctx, types.Minutes(2))
	if err != nil {
		t.Fatalf("Remaining: %v", err)
	}
	if left != types.Minutes(-1) {
		t.Fatalf("expected -1m overrun, got %v", left)
	}
	left, err = sw.Remaining(ctx, types.Infinity)
	if err != nil {
		t.Fatalf("Remaining: %v", err)
	}
	if left != types.Infinity {
		t.Fatalf("expected an infinite budget to stay infinite, got %v", left)
	}
}

func TestStopwatch_ClockFailure(t *testing.T) {
	m := &chronostest.MockService{
		NowFn: func(context.Context) (types.Timestamp, error) {
			return types.Timestamp{}, chronos.ErrUnavailable
		},
	}
	sw := New(m)
	if err := sw.Start(context.Background()); !errors.Is(err, chronos.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if m.NowCalls.Load() != 1 {
		t.Fatalf("expected one clock read, got %d", m.NowCalls.Load())
	}
}
