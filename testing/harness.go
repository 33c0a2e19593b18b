package chronostest

import (
	"context"
	"errors"
	"testing"

	"github.com/blockberries/chronos"
	"github.com/blockberries/chronos/local"
	"github.com/blockberries/chronos/server"
	"github.com/blockberries/chronos/types"
)

// Epoch2009 is 2009-02-11T12:53:09.123456789Z, the reading the harness
// clock starts at.
const Epoch2009 = int64(1234356789123456789)

// Harness drives an in-process time service over a ManualClock and fails
// the test on unexpected errors.
type Harness struct {
	t     testing.TB
	clock *ManualClock
	conn  chronos.Connection
}

// NewHarness starts an in-process service reading a ManualClock set to
// Epoch2009. The service is closed when the test ends.
func NewHarness(t testing.TB, opts ...server.Option) *Harness {
	t.Helper()
	c := NewManualClock(Epoch2009)
	conn := local.NewConnection(c, opts...)
	t.Cleanup(func() { conn.Close() })
	return &Harness{t: t, clock: c, conn: conn}
}

// NewHarnessFor wraps an existing connection reading c. The caller owns
// conn.
func NewHarnessFor(t testing.TB, c *ManualClock, conn chronos.Connection) *Harness {
	return &Harness{t: t, clock: c, conn: conn}
}

// Clock returns the clock behind the service.
func (h *Harness) Clock() *ManualClock { return h.clock }

// Conn returns the connection under test.
func (h *Harness) Conn() chronos.Connection { return h.conn }

// Now reads the service clock.
func (h *Harness) Now() types.Timestamp {
	h.t.Helper()
	ts, err := h.conn.Now(context.Background())
	if err != nil {
		h.t.Fatalf("Now failed: %v", err)
	}
	return ts
}

// Advance moves the clock by d.
func (h *Harness) Advance(d types.Duration) {
	h.t.Helper()
	if _, err := h.clock.Advance(d); err != nil {
		h.t.Fatalf("Advance(%v) failed: %v", d, err)
	}
}

// FormatTime lays out ts with layout.
func (h *Harness) FormatTime(ts types.Timestamp, layout string) string {
	h.t.Helper()
	s, err := h.conn.FormatTime(context.Background(), ts, layout)
	if err != nil {
		h.t.Fatalf("FormatTime(%q) failed: %v", layout, err)
	}
	return s
}

// ParseTime parses text laid out as layout.
func (h *Harness) ParseTime(text, layout string) types.Timestamp {
	h.t.Helper()
	ts, err := h.conn.ParseTime(context.Background(), text, layout)
	if err != nil {
		h.t.Fatalf("ParseTime(%q, %q) failed: %v", text, layout, err)
	}
	return ts
}

// FormatDuration lays out d.
func (h *Harness) FormatDuration(d types.Duration, layout, infLayout string) string {
	h.t.Helper()
	s, err := h.conn.FormatDuration(context.Background(), d, layout, infLayout)
	if err != nil {
		h.t.Fatalf("FormatDuration(%q, %q) failed: %v", layout, infLayout, err)
	}
	return s
}

// MustFail asserts that err matches target.
func (h *Harness) MustFail(err, target error) {
	h.t.Helper()
	if err == nil {
		h.t.Fatalf("expected error matching %v, got nil", target)
	}
	if !errors.Is(err, target) {
		h.t.Fatalf("expected error matching %v, got %v", target, err)
	}
}

// --- Helper Factories ---

// MustTimestamp converts ns to a Timestamp, panicking on negative input.
func MustTimestamp(ns int64) types.Timestamp {
	ts, err := types.TimestampFromUnixNano(ns)
	if err != nil {
		panic(err)
	}
	return ts
}

// MustDuration parses s as "inf", "-inf" or Go duration syntax.
func MustDuration(s string) types.Duration {
	var d types.Duration
	if err := d.UnmarshalText([]byte(s)); err != nil {
		panic(err)
	}
	return d
}
