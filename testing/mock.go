// Package chronostest provides test utilities for code built on the
// time service: a manually driven clock, a configurable mock service,
// a test harness, and compliance suites for clock sources and services.
package chronostest

import (
	"context"
	"sync/atomic"

	"github.com/blockberries/chronos"
	"github.com/blockberries/chronos/clock"
	"github.com/blockberries/chronos/types"
)

var (
	_ clock.Source       = (*ManualClock)(nil)
	_ chronos.Connection = (*MockService)(nil)
	_ chronos.Ticker     = (*MockService)(nil)
)

// ManualClock is a clock.Source that only moves when told to. It is
// safe for concurrent use.
type ManualClock struct {
	ns  atomic.Int64
	err atomic.Pointer[error]
}

// NewManualClock returns a clock reading ns nanoseconds since the epoch.
func NewManualClock(ns int64) *ManualClock {
	c := &ManualClock{}
	c.ns.Store(ns)
	return c
}

// Now returns the current reading, or the error installed by Fail.
func (c *ManualClock) Now(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if p := c.err.Load(); p != nil {
		return 0, *p
	}
	return c.ns.Load(), nil
}

// Set moves the clock to ns.
func (c *ManualClock) Set(ns int64) { c.ns.Store(ns) }

// SetTimestamp moves the clock to ts.
func (c *ManualClock) SetTimestamp(ts types.Timestamp) { c.ns.Store(ts.UnixNano()) }

// Advance moves the clock by d and returns the new reading. Infinite
// durations and overflow are rejected.
func (c *ManualClock) Advance(d types.Duration) (int64, error) {
	for {
		cur := c.ns.Load()
		next, err := types.Nanoseconds(cur).Add(d)
		if err != nil {
			return cur, err
		}
		if !next.IsFinite() {
			return cur, types.ErrNotFinite
		}
		if c.ns.CompareAndSwap(cur, next.NanosecondsCount()) {
			return next.NanosecondsCount(), nil
		}
	}
}

// Fail makes every later Now return err. A nil err heals the clock.
func (c *ManualClock) Fail(err error) {
	if err == nil {
		c.err.Store(nil)
		return
	}
	c.err.Store(&err)
}

// MockService is a configurable chronos.Connection for transport
// testing. Unconfigured methods answer from Clock, or the epoch when
// Clock is nil, and format with the default layouts.
type MockService struct {
	Clock clock.Source

	NowFn            func(context.Context) (types.Timestamp, error)
	FormatTimeFn     func(context.Context, types.Timestamp, string) (string, error)
	ParseTimeFn      func(context.Context, string, string) (types.Timestamp, error)
	FormatDurationFn func(context.Context, types.Duration, string, string) (string, error)
	TicksFn          func(context.Context, types.Duration) (<-chan types.Timestamp, error)

	// Streaming controls whether AsTicker exposes the Ticks capability.
	Streaming bool

	NowCalls            atomic.Int64
	FormatTimeCalls     atomic.Int64
	ParseTimeCalls      atomic.Int64
	FormatDurationCalls atomic.Int64
	TicksCalls          atomic.Int64

	closed atomic.Bool
}

func (m *MockService) Now(ctx context.Context) (types.Timestamp, error) {
	m.NowCalls.Add(1)
	if m.NowFn != nil {
		return m.NowFn(ctx)
	}
	if m.Clock == nil {
		return types.Timestamp{}, nil
	}
	return types.NowFrom(ctx, m.Clock)
}

func (m *MockService) FormatTime(ctx context.Context, ts types.Timestamp, layout string) (string, error) {
	m.FormatTimeCalls.Add(1)
	if m.FormatTimeFn != nil {
		return m.FormatTimeFn(ctx, ts, layout)
	}
	if layout == "" {
		layout = types.DefaultTimeFormat
	}
	return ts.Format(layout), nil
}

func (m *MockService) ParseTime(ctx context.Context, text, layout string) (types.Timestamp, error) {
	m.ParseTimeCalls.Add(1)
	if m.ParseTimeFn != nil {
		return m.ParseTimeFn(ctx, text, layout)
	}
	if layout == "" {
		layout = types.DefaultTimeFormat
	}
	return types.ParseTimestamp(text, layout)
}

func (m *MockService) FormatDuration(ctx context.Context, d types.Duration, layout, infLayout string) (string, error) {
	m.FormatDurationCalls.Add(1)
	if m.FormatDurationFn != nil {
		return m.FormatDurationFn(ctx, d, layout, infLayout)
	}
	if layout == "" {
		layout = types.DefaultDurationFormat
	}
	if infLayout == "" {
		infLayout = types.DefaultInfinityFormat
	}
	return d.Format(layout, infLayout), nil
}

// Ticks calls TicksFn, or returns a stream that closes with ctx.
func (m *MockService) Ticks(ctx context.Context, interval types.Duration) (<-chan types.Timestamp, error) {
	m.TicksCalls.Add(1)
	if m.TicksFn != nil {
		return m.TicksFn(ctx, interval)
	}
	ch := make(chan types.Timestamp)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (m *MockService) AsTicker() chronos.Ticker {
	if !m.Streaming {
		return nil
	}
	return m
}

// Close marks the mock closed. It is idempotent.
func (m *MockService) Close() error {
	m.closed.Store(true)
	return nil
}

// Closed reports whether Close was called.
func (m *MockService) Closed() bool { return m.closed.Load() }
