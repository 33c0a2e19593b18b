// Package clock defines the source of "current time" consumed by
// types.Now and by the time service.
//
// A Source reports nanoseconds since 1970-01-01T00:00:00 UTC. Sources are
// expected to be safe for concurrent use; a negative reading is a contract
// violation that callers reject.
package clock

import (
	"context"
	"time"
)

// Source supplies the current time as nanoseconds since the epoch.
type Source interface {
	Now(ctx context.Context) (int64, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (int64, error)

// Now calls f(ctx).
func (f SourceFunc) Now(ctx context.Context) (int64, error) { return f(ctx) }

// System reads the operating system's wall clock.
type System struct{}

// Now returns the wall clock reading. It fails only if ctx is done.
func (System) Now(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return time.Now().UnixNano(), nil
}

// Default is the Source used when none is configured.
var Default Source = System{}
