// Package chronos defines the time service boundary: a clock that hands
// out types.Timestamp values plus the formatting and parsing operations
// over Timestamp and types.Duration.
//
// The core [Service] interface is required. [Ticker] is an optional
// capability discovered via Go type assertion, the same way transports
// discover it on the far side of a connection.
package chronos

import (
	"context"

	"github.com/blockberries/chronos/clock"
	"github.com/blockberries/chronos/types"
)

// Clock reports the current instant.
type Clock interface {
	// Now returns the current time. A source reporting an instant before
	// the epoch yields an error matching types.ErrInvalidTimestamp.
	Now(ctx context.Context) (types.Timestamp, error)
}

// Formatter renders and parses time values with placeholder layouts. An
// empty layout selects the service's configured default.
//
// All methods MUST be safe for concurrent use.
type Formatter interface {
	// FormatTime expands layout with the calendar fields of ts.
	FormatTime(ctx context.Context, ts types.Timestamp, layout string) (string, error)

	// ParseTime is the inverse of FormatTime for fixed-width layouts.
	// Errors match types.ErrParse.
	ParseTime(ctx context.Context, text, layout string) (types.Timestamp, error)

	// FormatDuration expands layout for finite durations and infLayout
	// for infinite ones.
	FormatDuration(ctx context.Context, d types.Duration, layout, infLayout string) (string, error)
}

// Service is what every time service implements.
type Service interface {
	Clock
	Formatter
}

// Ticker streams timestamps at a fixed interval.
type Ticker interface {
	// Ticks delivers one timestamp per interval until ctx is done. The
	// channel is closed when the stream ends. Slow receivers miss ticks
	// rather than queueing them.
	Ticks(ctx context.Context, interval types.Duration) (<-chan types.Timestamp, error)
}

// Connection is a transport-agnostic handle on a Service. Both the gRPC
// client and the in-process adapter implement it.
type Connection interface {
	Service

	// AsTicker returns the Ticker capability, or nil if the far side
	// does not stream.
	AsTicker() Ticker

	// Close terminates the connection.
	Close() error
}

// SourceOf adapts c into a clock.Source so that a remote service can act
// as the clock collaborator of types.NowFrom.
func SourceOf(c Clock) clock.Source {
	return clock.SourceFunc(func(ctx context.Context) (int64, error) {
		ts, err := c.Now(ctx)
		if err != nil {
			return 0, err
		}
		return ts.UnixNano(), nil
	})
}
