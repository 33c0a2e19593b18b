// Package types defines the chronos value types: Duration, an int64
// nanosecond span extended with positive and negative infinity, and
// Timestamp, a non-negative finite Duration since 1970-01-01T00:00:00 UTC.
//
// Both are immutable values that are safe to share between goroutines.
// Operations that can leave their domain (infinities cancelling, division
// by zero, a timestamp before the epoch) return an error instead of a
// silently clamped value.
//
// Wire forms with cramberry struct tags (WireDuration, WireTimestamp) are
// provided for transport packages.
package types

// Placeholder sets accepted by the layouts of this package. The prefix is
// always '%'.
const (
	// TimeTokens are the placeholders of timestamp layouts:
	//
	//	%Y  four digit year
	//	%m  month 01 to 12
	//	%d  day of month 01 to 31
	//	%F  equivalent to %Y-%m-%d
	//	%H  hour 00 to 23
	//	%M  minute 00 to 59
	//	%S  second 00 to 59
	//	%T  equivalent to %H:%M:%S
	//	%3  milliseconds 000 to 999
	//	%6  microseconds 000 to 999
	//	%9  nanoseconds 000 to 999
	TimeTokens = "YmdFHMST369"

	// DurationTokens are the placeholders of duration layouts:
	//
	//	%+  "+" for non-negative durations, "-" otherwise
	//	%-  "-" for negative durations, nothing otherwise
	//	%d  total number of days
	//	%D  total number of days, nothing if zero
	//	%H  hours 00 to 23
	//	%M  minutes 00 to 59
	//	%S  seconds 00 to 59
	//	%T  equivalent to %H:%M:%S
	//	%3  milliseconds 000 to 999
	//	%6  microseconds 000 to 999
	//	%9  nanoseconds 000 to 999
	//
	// Infinity layouts only resolve %+ and %-.
	DurationTokens = "+-dDHMST369"
)

// Default layouts.
const (
	DefaultDurationFormat = "%-%dd %T.%3%6%9"
	DefaultInfinityFormat = "%-inf"
	DefaultTimeFormat     = "%FT%T.%3Z"
	PreciseTimeFormat     = "%FT%T.%3%6%9Z"
)
