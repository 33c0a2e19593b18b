// Package chronosgrpc exposes a chronos time service over gRPC.
//
// No protobuf code generation is required: the request structs below and
// the types.Wire* forms carry cramberry struct tags, and both ends force
// the cramberry codec on every call.
package chronosgrpc

import (
	"fmt"

	"github.com/blockberries/cramberry/pkg/cramberry"
	"google.golang.org/grpc/encoding"

	"github.com/blockberries/chronos/types"
)

// codec is registered under its own content subtype so that the proto
// codec stays available to other services on the same server.
type codec struct{}

func (codec) Name() string { return "cramberry" }

func (codec) Marshal(v any) ([]byte, error) {
	b, err := cramberry.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %T: %w", v, err)
	}
	return b, nil
}

func (codec) Unmarshal(data []byte, v any) error {
	if err := cramberry.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %T from %d bytes: %w", v, len(data), err)
	}
	return nil
}

func init() { encoding.RegisterCodec(codec{}) }

// Transport-specific wrapper types for RPC methods whose interface
// signatures don't map to a single request/response struct.
// Timestamps and durations travel in their types.Wire* forms.

// NowRequest is the (empty) request for Clock.Now.
type NowRequest struct{}

// FormatTimeRequest wraps the parameters for Formatter.FormatTime.
type FormatTimeRequest struct {
	Time   types.WireTimestamp `cramberry:"1"`
	Layout string              `cramberry:"2"`
}

// ParseTimeRequest wraps the parameters for Formatter.ParseTime.
type ParseTimeRequest struct {
	Text   string `cramberry:"1"`
	Layout string `cramberry:"2"`
}

// FormatDurationRequest wraps the parameters for Formatter.FormatDuration.
type FormatDurationRequest struct {
	Duration       types.WireDuration `cramberry:"1"`
	Layout         string             `cramberry:"2"`
	InfinityLayout string             `cramberry:"3"`
}

// TextResponse wraps the string returned by the Format RPCs.
type TextResponse struct {
	Text string `cramberry:"1"`
}

// TicksRequest wraps the parameter for Ticker.Ticks.
type TicksRequest struct {
	Interval types.WireDuration `cramberry:"1"`
}
