package server

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blockberries/chronos"
	"github.com/blockberries/chronos/config"
	"github.com/blockberries/chronos/placeholder"
	"github.com/blockberries/chronos/types"
)

// testClock is a minimal settable source to avoid an import cycle with
// chronos/testing.
type testClock struct {
	ns atomic.Int64
}

func (c *testClock) Now(context.Context) (int64, error) { return c.ns.Load(), nil }

const testNow = int64(1234356789123456789) // 2009-02-11T12:53:09.123456789Z

func newTestServer(t *testing.T, opts ...Option) (*Server, *testClock) {
	t.Helper()
	c := &testClock{}
	c.ns.Store(testNow)
	s := New(c, opts...)
	t.Cleanup(func() { s.Close() })
	return s, c
}

func TestServer_Now(t *testing.T) {
	s, c := newTestServer(t)
	ctx := context.Background()

	ts, err := s.Now(ctx)
	if err != nil {
		t.Fatalf("Now: %v", err)
	}
	if ts.UnixNano() != testNow {
		t.Fatalf("expected %d, got %d", testNow, ts.UnixNano())
	}

	c.ns.Store(-1)
	if _, err := s.Now(ctx); !errors.Is(err, types.ErrInvalidTimestamp) {
		t.Fatalf("expected ErrInvalidTimestamp for a negative source, got %v", err)
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := s.Now(cctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestServer_FormatTime(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()
	ts, _ := types.TimestampFromUnixNano(testNow)

	got, err := s.FormatTime(ctx, ts, "")
	if err != nil {
		t.Fatalf("FormatTime: %v", err)
	}
	if got != "2009-02-11T12:53:09.123Z" {
		t.Fatalf("unexpected default layout output %q", got)
	}

	got, err = s.FormatTime(ctx, ts, "%Y/%m/%d")
	if err != nil || got != "2009/02/11" {
		t.Fatalf("FormatTime: %q, %v", got, err)
	}

	_, err = s.FormatTime(ctx, ts, "bla%")
	if !errors.Is(err, chronos.ErrInvalidParam) || !errors.Is(err, placeholder.ErrInvalidFormat) {
		t.Fatalf("expected invalid parameter, got %v", err)
	}
	if chronos.CodeOf(err) != chronos.CodeInvalidParam {
		t.Fatalf("expected CodeInvalidParam, got %v", chronos.CodeOf(err))
	}
}

func TestServer_CustomFormats(t *testing.T) {
	cfg := config.Defaults()
	cfg.Formats.Time = "%F %T"
	cfg.Formats.Duration = "%-%D:%M"
	cfg.Formats.Infinity = "never"
	s, _ := newTestServer(t, WithConfig(cfg))
	ctx := context.Background()

	if s.Formats() != cfg.Formats {
		t.Fatalf("formats not applied: %+v", s.Formats())
	}
	ts, _ := types.TimestampFromUnixNano(testNow)
	if got, _ := s.FormatTime(ctx, ts, ""); got != "2009-02-11 12:53:09" {
		t.Fatalf("unexpected %q", got)
	}
	parsed, err := s.ParseTime(ctx, "2009-02-11 12:53:09", "")
	if err != nil {
		t.Fatalf("ParseTime: %v", err)
	}
	if parsed.UnixNano() != 1234356789000000000 {
		t.Fatalf("unexpected parse result %d", parsed.UnixNano())
	}
	if got, _ := s.FormatDuration(ctx, types.Infinity, "", ""); got != "never" {
		t.Fatalf("unexpected infinity %q", got)
	}
}

func TestServer_ParseTime(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	ts, err := s.ParseTime(ctx, "2009-02-11T12:53:09.123Z", "")
	if err != nil {
		t.Fatalf("ParseTime: %v", err)
	}
	if ts.UnixNano() != 1234356789123000000 {
		t.Fatalf("unexpected %d", ts.UnixNano())
	}

	_, err = s.ParseTime(ctx, "2009-02-11", "")
	if !errors.Is(err, types.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	if chronos.CodeOf(err) != chronos.CodeParseFailed {
		t.Fatalf("expected CodeParseFailed, got %v", chronos.CodeOf(err))
	}
}

func TestServer_FormatDuration(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		d         types.Duration
		layout    string
		infLayout string
		want      string
	}{
		{types.Nanoseconds(123456789123456789), "", "", "1428d 21:33:09.123456789"},
		{types.Infinity, "", "", "inf"},
		{types.NegativeInfinity, "", "", "-inf"},
		{types.Infinity, "", "abc", "abc"},
		{types.Seconds(-90), "%-%M:%S", "", "-01:30"},
	}
	for _, tt := range tests {
		got, err := s.FormatDuration(ctx, tt.d, tt.layout, tt.infLayout)
		if err != nil {
			t.Fatalf("FormatDuration(%v): %v", tt.d, err)
		}
		if got != tt.want {
			t.Errorf("FormatDuration(%#v, %q, %q) = %q, want %q", tt.d, tt.layout, tt.infLayout, got, tt.want)
		}
	}

	if _, err := s.FormatDuration(ctx, types.Zero, "%Y", ""); !errors.Is(err, chronos.ErrInvalidParam) {
		t.Fatalf("expected ErrInvalidParam for a time token, got %v", err)
	}
	if _, err := s.FormatDuration(ctx, types.Zero, "", "%"); !errors.Is(err, chronos.ErrInvalidParam) {
		t.Fatalf("expected ErrInvalidParam for a dangling infinity layout, got %v", err)
	}
}

func TestServer_Ticks(t *testing.T) {
	s, c := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Ticks(ctx, types.Milliseconds(5))
	if err != nil {
		t.Fatalf("Ticks: %v", err)
	}
	for i := 0; i < 3; i++ {
		c.ns.Add(int64(time.Second))
		select {
		case ts := <-ch:
			if ts.UnixNano() < testNow {
				t.Fatalf("tick went backwards: %d", ts.UnixNano())
			}
		case <-time.After(time.Second):
			t.Fatal("no tick received")
		}
	}

	cancel()
	drain(t, ch)
}

func TestServer_TicksRejectsBadIntervals(t *testing.T) {
	s, _ := newTestServer(t, WithMinTickInterval(types.Milliseconds(10)))
	ctx := context.Background()

	for _, d := range []types.Duration{types.Zero, types.Milliseconds(-5), types.Milliseconds(9), types.Infinity} {
		if _, err := s.Ticks(ctx, d); !errors.Is(err, chronos.ErrInvalidParam) {
			t.Errorf("Ticks(%v): expected ErrInvalidParam, got %v", d, err)
		}
	}
}

func TestServer_CloseEndsStreams(t *testing.T) {
	s, _ := newTestServer(t)
	ch, err := s.Ticks(context.Background(), types.Milliseconds(5))
	if err != nil {
		t.Fatalf("Ticks: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if s.State() != "Closed" {
		t.Fatalf("expected Closed, got %s", s.State())
	}

	drain(t, ch)

	ctx := context.Background()
	if _, err := s.Now(ctx); !errors.Is(err, chronos.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if _, err := s.Ticks(ctx, types.Milliseconds(5)); !errors.Is(err, chronos.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

// drain reads ch until it is closed.
func drain(t *testing.T, ch <-chan types.Timestamp) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("tick stream not closed")
		}
	}
}

func TestServer_DefaultClock(t *testing.T) {
	s := New(nil)
	defer s.Close()

	before := time.Now().UnixNano()
	ts, err := s.Now(context.Background())
	if err != nil {
		t.Fatalf("Now: %v", err)
	}
	if ts.UnixNano() < before {
		t.Fatalf("system clock went backwards: %d < %d", ts.UnixNano(), before)
	}
}
