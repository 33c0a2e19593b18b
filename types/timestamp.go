package types

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/blockberries/chronos/calendar"
	"github.com/blockberries/chronos/clock"
	"github.com/blockberries/chronos/placeholder"
)

// Timestamp is an instant expressed as a finite, non-negative Duration
// since 1970-01-01T00:00:00 UTC. The zero value is the epoch.
type Timestamp struct {
	since Duration
}

// TimestampFromDurationSinceEpoch wraps d. It fails unless d is finite and
// not negative.
func TimestampFromDurationSinceEpoch(d Duration) (Timestamp, error) {
	if d.inf != 0 || d.ns < 0 {
		return Timestamp{}, fmt.Errorf("%w: %s", ErrInvalidTimestamp, d)
	}
	return Timestamp{since: d}, nil
}

// TimestampFromUnixNano wraps ns nanoseconds since the epoch.
func TimestampFromUnixNano(ns int64) (Timestamp, error) {
	return TimestampFromDurationSinceEpoch(Nanoseconds(ns))
}

// TimeToTimestamp converts t, which must lie between the epoch and the
// end of the 64-bit nanosecond range.
func TimeToTimestamp(t time.Time) (Timestamp, error) {
	if t.Before(time.Unix(0, 0)) || t.After(time.Unix(0, math.MaxInt64)) {
		return Timestamp{}, fmt.Errorf("%w: %s", ErrInvalidTimestamp, t.Format(time.RFC3339Nano))
	}
	return Timestamp{since: Nanoseconds(t.UnixNano())}, nil
}

// Now reads clock.Default.
func Now() (Timestamp, error) {
	return NowFrom(context.Background(), clock.Default)
}

// NowFrom reads src. A negative reading is rejected with
// ErrInvalidTimestamp.
func NowFrom(ctx context.Context, src clock.Source) (Timestamp, error) {
	ns, err := src.Now(ctx)
	if err != nil {
		return Timestamp{}, err
	}
	return TimestampFromUnixNano(ns)
}

// DurationSinceEpoch returns the underlying Duration.
func (t Timestamp) DurationSinceEpoch() Duration { return t.since }

// UnixNano returns the number of nanoseconds since the epoch.
func (t Timestamp) UnixNano() int64 { return t.since.ns }

// ToTime converts t to a UTC time.Time.
func (t Timestamp) ToTime() time.Time { return time.Unix(0, t.since.ns).UTC() }

// Fields returns the calendar breakdown of t.
func (t Timestamp) Fields() calendar.Fields {
	f, _ := calendar.FromUnixNano(t.since.ns)
	return f
}

// Add returns t+d. The result must still be a valid timestamp.
func (t Timestamp) Add(d Duration) (Timestamp, error) {
	s, err := t.since.Add(d)
	if err != nil {
		return Timestamp{}, err
	}
	return TimestampFromDurationSinceEpoch(s)
}

// SubDuration returns t-d. The result must still be a valid timestamp.
func (t Timestamp) SubDuration(d Duration) (Timestamp, error) {
	s, err := t.since.Sub(d)
	if err != nil {
		return Timestamp{}, err
	}
	return TimestampFromDurationSinceEpoch(s)
}

// Sub returns the signed, always finite, Duration t-u.
func (t Timestamp) Sub(u Timestamp) Duration {
	return Duration{ns: t.since.ns - u.since.ns}
}

func (t Timestamp) Compare(u Timestamp) int { return t.since.Compare(u.since) }
func (t Timestamp) Before(u Timestamp) bool { return t.since.ns < u.since.ns }
func (t Timestamp) After(u Timestamp) bool  { return t.since.ns > u.since.ns }
func (t Timestamp) Equal(u Timestamp) bool  { return t == u }
func (t Timestamp) Hash() uint64            { return t.since.Hash() }
func (t Timestamp) String() string          { return t.Format("") }
func (t Timestamp) GoString() string        { return fmt.Sprintf("types.Timestamp(%d)", t.since.ns) }
func (t Timestamp) IsZero() bool            { return t.since.ns == 0 }

// Format expands layout, DefaultTimeFormat if empty, with the calendar
// fields of t.
func (t Timestamp) Format(layout string) string {
	return string(t.AppendFormat(nil, layout))
}

// AppendFormat is like Format but appends to b.
func (t Timestamp) AppendFormat(b []byte, layout string) []byte {
	if layout == "" {
		layout = DefaultTimeFormat
	}
	f := t.Fields()
	date := func() string {
		return placeholder.Digits(int64(f.Year), 4) + "-" +
			placeholder.Digits(int64(f.Month), 2) + "-" +
			placeholder.Digits(int64(f.Day), 2)
	}
	clockTime := func() string {
		return placeholder.Digits(int64(f.Hour), 2) + ":" +
			placeholder.Digits(int64(f.Minute), 2) + ":" +
			placeholder.Digits(int64(f.Second), 2)
	}
	return placeholder.Append(b, layout, '%', func(token byte) (string, bool) {
		switch token {
		case 'Y':
			return placeholder.Digits(int64(f.Year), 4), true
		case 'm':
			return placeholder.Digits(int64(f.Month), 2), true
		case 'd':
			return placeholder.Digits(int64(f.Day), 2), true
		case 'F':
			return date(), true
		case 'H':
			return placeholder.Digits(int64(f.Hour), 2), true
		case 'M':
			return placeholder.Digits(int64(f.Minute), 2), true
		case 'S':
			return placeholder.Digits(int64(f.Second), 2), true
		case 'T':
			return clockTime(), true
		case '3':
			return placeholder.Digits(int64(t.since.Milliseconds()), 3), true
		case '6':
			return placeholder.Digits(int64(t.since.Microseconds()), 3), true
		case '9':
			return placeholder.Digits(int64(t.since.Nanoseconds()), 3), true
		}
		return "", false
	})
}

// ValidateTimeFormat checks layout against TimeTokens.
func ValidateTimeFormat(layout string) error {
	return placeholder.Validate(layout, '%', TimeTokens)
}

var timeFields = map[byte]placeholder.Field{
	'Y': {Width: 4, Min: 0, Max: 9999},
	'm': {Width: 2, Min: 1, Max: 12},
	'd': {Width: 2, Min: 1, Max: 31},
	'H': {Width: 2, Min: 0, Max: 23},
	'M': {Width: 2, Min: 0, Max: 59},
	'S': {Width: 2, Min: 0, Max: 59},
	'3': {Width: 3, Min: 0, Max: 999},
	'6': {Width: 3, Min: 0, Max: 999},
	'9': {Width: 3, Min: 0, Max: 999},
}

// ParseTimestamp parses text laid out as layout, DefaultTimeFormat if
// empty. Fields absent from the layout default to 1970-01-01T00:00:00.000.
func ParseTimestamp(text, layout string) (Timestamp, error) {
	if layout == "" {
		layout = DefaultTimeFormat
	}
	if err := ValidateTimeFormat(layout); err != nil {
		return Timestamp{}, &ParseError{Text: text, Layout: layout, Offset: -1, Err: err}
	}
	expanded := placeholder.Expand(layout, '%', func(token byte) (string, bool) {
		switch token {
		case 'F':
			return "%Y-%m-%d", true
		case 'T':
			return "%H:%M:%S", true
		}
		return "", false
	})
	values, err := placeholder.Scan(text, expanded, '%', func(token byte) (placeholder.Field, bool) {
		f, ok := timeFields[token]
		return f, ok
	})
	if err != nil {
		offset := -1
		var se *placeholder.ScanError
		if errors.As(err, &se) {
			offset = se.Offset
		}
		return Timestamp{}, &ParseError{Text: text, Layout: layout, Offset: offset, Err: err}
	}

	f := calendar.Fields{Year: 1970, Month: 1, Day: 1}
	if v, ok := values['Y']; ok {
		f.Year = v
	}
	if v, ok := values['m']; ok {
		f.Month = v
	}
	if v, ok := values['d']; ok {
		f.Day = v
	}
	f.Hour = values['H']
	f.Minute = values['M']
	f.Second = values['S']
	f.Nanosecond = values['3']*1e6 + values['6']*1e3 + values['9']

	ns, err := calendar.ToUnixNano(f)
	if err != nil {
		return Timestamp{}, &ParseError{Text: text, Layout: layout, Offset: -1, Err: err}
	}
	return Timestamp{since: Nanoseconds(ns)}, nil
}

// MarshalText encodes t with PreciseTimeFormat.
func (t Timestamp) MarshalText() ([]byte, error) {
	return t.AppendFormat(nil, PreciseTimeFormat), nil
}

// UnmarshalText accepts PreciseTimeFormat and DefaultTimeFormat.
func (t *Timestamp) UnmarshalText(text []byte) error {
	v, err := ParseTimestamp(string(text), PreciseTimeFormat)
	if err != nil {
		var err2 error
		if v, err2 = ParseTimestamp(string(text), DefaultTimeFormat); err2 != nil {
			return err
		}
	}
	*t = v
	return nil
}
