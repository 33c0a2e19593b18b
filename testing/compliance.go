package chronostest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/blockberries/chronos"
	"github.com/blockberries/chronos/clock"
	"github.com/blockberries/chronos/types"
)

// RunSourceSuite verifies the clock.Source contract: non-negative
// readings, cancellation, and concurrent use.
//
// The factory function should return a fresh source for each test.
func RunSourceSuite(t *testing.T, factory func() clock.Source) {
	t.Helper()

	t.Run("reading_after_epoch", func(t *testing.T) {
		ns, err := factory().Now(context.Background())
		if err != nil {
			t.Fatalf("Now: %v", err)
		}
		if ns < 0 {
			t.Fatalf("reading %d is before the epoch", ns)
		}
	})

	t.Run("canceled_context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := factory().Now(ctx); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("usable_as_timestamp_source", func(t *testing.T) {
		src := factory()
		ns, err := src.Now(context.Background())
		if err != nil {
			t.Fatalf("Now: %v", err)
		}
		ts, err := types.NowFrom(context.Background(), src)
		if err != nil {
			t.Fatalf("NowFrom: %v", err)
		}
		if ts.UnixNano() < ns {
			t.Fatalf("NowFrom went backwards: %d < %d", ts.UnixNano(), ns)
		}
	})

	t.Run("concurrent_reads", func(t *testing.T) {
		src := factory()
		var wg sync.WaitGroup
		errs := make(chan error, 16)
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					if _, err := src.Now(context.Background()); err != nil {
						errs <- err
						return
					}
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Errorf("concurrent Now: %v", err)
		}
	})
}

// RunServiceSuite runs a standard compliance test suite against a time
// service reached through a chronos.Connection.
//
// The factory must return a fresh connection whose service reads the
// given clock and uses the default layouts. Cleanup of anything beyond
// the connection itself is the factory's job.
func RunServiceSuite(t *testing.T, factory func(t *testing.T, c *ManualClock) chronos.Connection) {
	t.Helper()

	open := func(t *testing.T) *Harness {
		t.Helper()
		c := NewManualClock(Epoch2009)
		conn := factory(t, c)
		t.Cleanup(func() { conn.Close() })
		return NewHarnessFor(t, c, conn)
	}

	t.Run("now_reads_clock", func(t *testing.T) {
		h := open(t)
		if got := h.Now().UnixNano(); got != Epoch2009 {
			t.Fatalf("expected %d, got %d", Epoch2009, got)
		}
	})

	t.Run("now_follows_clock", func(t *testing.T) {
		h := open(t)
		before := h.Now()
		h.Advance(types.Hours(1))
		if d := h.Now().Sub(before); d != types.Hours(1) {
			t.Fatalf("expected 1h between readings, got %v", d)
		}
	})

	t.Run("pre_epoch_clock_rejected", func(t *testing.T) {
		h := open(t)
		h.Clock().Set(-1)
		_, err := h.Conn().Now(context.Background())
		h.MustFail(err, types.ErrInvalidTimestamp)
	})

	t.Run("clock_failure_surfaces", func(t *testing.T) {
		h := open(t)
		h.Clock().Fail(errors.New("clock unplugged"))
		if _, err := h.Conn().Now(context.Background()); err == nil {
			t.Fatal("expected clock failure to surface")
		}
		h.Clock().Fail(nil)
		h.Now()
	})

	t.Run("format_time", func(t *testing.T) {
		h := open(t)
		ts := MustTimestamp(Epoch2009)
		if got := h.FormatTime(ts, "%FT%T.%3%6%9Z"); got != "2009-02-11T12:53:09.123456789Z" {
			t.Fatalf("unexpected layout result %q", got)
		}
		if got := h.FormatTime(ts, ""); got != ts.Format(types.DefaultTimeFormat) {
			t.Fatalf("default layout: got %q", got)
		}
	})

	t.Run("parse_round_trip", func(t *testing.T) {
		h := open(t)
		ts := MustTimestamp(Epoch2009)
		const layout = "%Y%m%d %H%M%S %3%6%9"
		if got := h.ParseTime(h.FormatTime(ts, layout), layout); got != ts {
			t.Fatalf("round trip: expected %d, got %d", ts.UnixNano(), got.UnixNano())
		}
	})

	t.Run("parse_failure", func(t *testing.T) {
		h := open(t)
		_, err := h.Conn().ParseTime(context.Background(), "2009-02-31", "%F")
		h.MustFail(err, types.ErrParse)
	})

	t.Run("invalid_layout", func(t *testing.T) {
		h := open(t)
		_, err := h.Conn().FormatTime(context.Background(), MustTimestamp(0), "%F%")
		h.MustFail(err, chronos.ErrInvalidParam)
		_, err = h.Conn().FormatDuration(context.Background(), types.Zero, "%Q", "")
		h.MustFail(err, chronos.ErrInvalidParam)
	})

	t.Run("format_duration", func(t *testing.T) {
		h := open(t)
		d := types.Nanoseconds(123456789123456789)
		if got := h.FormatDuration(d, "%-%dd %T.%3%6%9", ""); got != "1428d 21:33:09.123456789" {
			t.Fatalf("finite: got %q", got)
		}
		if got := h.FormatDuration(types.NegativeInfinity, "", "%+inf"); got != "-inf" {
			t.Fatalf("infinite: got %q", got)
		}
		if got := h.FormatDuration(types.Infinity, "%H", ""); got != "inf" {
			t.Fatalf("default infinity layout: got %q", got)
		}
	})

	t.Run("concurrent_calls", func(t *testing.T) {
		h := open(t)
		var wg sync.WaitGroup
		errs := make(chan error, 8)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ctx := context.Background()
				for j := 0; j < 20; j++ {
					ts, err := h.Conn().Now(ctx)
					if err == nil {
						_, err = h.Conn().FormatTime(ctx, ts, "")
					}
					if err != nil {
						errs <- err
						return
					}
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Errorf("concurrent call: %v", err)
		}
	})

	t.Run("ticks_when_streaming", func(t *testing.T) {
		h := open(t)
		ticker := h.Conn().AsTicker()
		if ticker == nil {
			t.Skip("service does not stream ticks")
		}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		ch, err := ticker.Ticks(ctx, types.Milliseconds(5))
		if err != nil {
			t.Fatalf("Ticks: %v", err)
		}
		select {
		case ts := <-ch:
			if ts.UnixNano() != Epoch2009 {
				t.Fatalf("tick %d does not match the clock", ts.UnixNano())
			}
		case <-time.After(5 * time.Second):
			t.Fatal("no tick received")
		}
		cancel()
		timeout := time.After(5 * time.Second)
		for {
			select {
			case _, ok := <-ch:
				if !ok {
					return
				}
			case <-timeout:
				t.Fatal("tick stream did not end after cancel")
			}
		}
	})

	t.Run("calls_fail_after_close", func(t *testing.T) {
		h := open(t)
		if err := h.Conn().Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if _, err := h.Conn().Now(context.Background()); err == nil {
			t.Fatal("expected Now to fail after Close")
		}
	})
}
