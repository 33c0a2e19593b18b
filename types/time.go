package types

import "fmt"

// WireTimestamp is the wire-safe representation of a Timestamp: whole
// seconds since the epoch plus a nanosecond offset in [0, 1e9).
type WireTimestamp struct {
	Seconds int64 `cramberry:"1"`
	Nanos   int32 `cramberry:"2"`
}

// ToWire converts t to its wire form.
func (t Timestamp) ToWire() WireTimestamp {
	return WireTimestamp{
		Seconds: t.since.ns / nsPerSecond,
		Nanos:   int32(t.since.ns % nsPerSecond),
	}
}

// FromWire validates w and converts it to a Timestamp.
func (w WireTimestamp) FromWire() (Timestamp, error) {
	if w.Nanos < 0 || int64(w.Nanos) >= nsPerSecond {
		return Timestamp{}, fmt.Errorf("%w: nanosecond offset %d", ErrInvalidTimestamp, w.Nanos)
	}
	secs, ok := mul64(w.Seconds, nsPerSecond)
	if !ok || secs > secs+int64(w.Nanos) {
		return Timestamp{}, fmt.Errorf("%w: %d seconds", ErrOverflow, w.Seconds)
	}
	return TimestampFromUnixNano(secs + int64(w.Nanos))
}

// WireDuration is the wire-safe representation of a Duration. Infinity is
// -1, 0 or +1; Nanos is zero unless Infinity is 0.
type WireDuration struct {
	Nanos    int64 `cramberry:"1"`
	Infinity int32 `cramberry:"2"`
}

// ToWire converts d to its wire form.
func (d Duration) ToWire() WireDuration {
	return WireDuration{Nanos: d.ns, Infinity: int32(d.inf)}
}

// FromWire validates w and converts it to a Duration.
func (w WireDuration) FromWire() (Duration, error) {
	switch {
	case w.Infinity == 0:
		return Duration{ns: w.Nanos}, nil
	case w.Nanos != 0:
		return Zero, fmt.Errorf("infinite wire duration with count %d", w.Nanos)
	case w.Infinity > 0:
		return Infinity, nil
	}
	return NegativeInfinity, nil
}
