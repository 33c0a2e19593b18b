package types

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/blockberries/chronos/placeholder"
)

const (
	nsPerMicrosecond = int64(1e3)
	nsPerMillisecond = int64(1e6)
	nsPerSecond      = int64(1e9)
	nsPerMinute      = 60 * nsPerSecond
	nsPerHour        = 60 * nsPerMinute
	nsPerDay         = 24 * nsPerHour
)

// Duration is a signed span of nanoseconds that can also be positive or
// negative infinity. The zero value is a finite zero-length Duration.
//
// Durations are comparable with ==: an infinite Duration always carries a
// zero count.
type Duration struct {
	ns  int64
	inf int8 // -1, 0 or +1
}

var (
	Zero             = Duration{}
	Infinity         = Duration{inf: 1}
	NegativeInfinity = Duration{inf: -1}
)

// Nanoseconds returns a Duration of n nanoseconds.
func Nanoseconds(n int64) Duration { return Duration{ns: n} }

// Microseconds returns a Duration of n microseconds. The result is
// undefined if it does not fit into 64-bit nanoseconds.
func Microseconds(n int64) Duration { return Duration{ns: n * nsPerMicrosecond} }

// Milliseconds returns a Duration of n milliseconds.
func Milliseconds(n int64) Duration { return Duration{ns: n * nsPerMillisecond} }

// Seconds returns a Duration of n seconds.
func Seconds(n int64) Duration { return Duration{ns: n * nsPerSecond} }

// Minutes returns a Duration of n minutes.
func Minutes(n int64) Duration { return Duration{ns: n * nsPerMinute} }

// Hours returns a Duration of n hours.
func Hours(n int64) Duration { return Duration{ns: n * nsPerHour} }

// Days returns a Duration of n days of 24 hours.
func Days(n int64) Duration { return Duration{ns: n * nsPerDay} }

// FromNanoseconds converts a real number of nanoseconds, truncating toward
// zero. Infinite inputs map to the matching infinity; NaN and values
// outside the 64-bit nanosecond range are rejected.
func FromNanoseconds(f float64) (Duration, error) { return fromFloat(f, 1) }

// FromMicroseconds is like FromNanoseconds for microseconds.
func FromMicroseconds(f float64) (Duration, error) { return fromFloat(f, nsPerMicrosecond) }

// FromMilliseconds is like FromNanoseconds for milliseconds.
func FromMilliseconds(f float64) (Duration, error) { return fromFloat(f, nsPerMillisecond) }

// FromSeconds is like FromNanoseconds for seconds.
func FromSeconds(f float64) (Duration, error) { return fromFloat(f, nsPerSecond) }

// FromMinutes is like FromNanoseconds for minutes.
func FromMinutes(f float64) (Duration, error) { return fromFloat(f, nsPerMinute) }

// FromHours is like FromNanoseconds for hours.
func FromHours(f float64) (Duration, error) { return fromFloat(f, nsPerHour) }

// FromDays is like FromNanoseconds for days.
func FromDays(f float64) (Duration, error) { return fromFloat(f, nsPerDay) }

// DurationFromGo converts a time.Duration.
func DurationFromGo(d time.Duration) Duration { return Duration{ns: int64(d)} }

func fromFloat(f float64, unit int64) (Duration, error) {
	switch {
	case math.IsNaN(f):
		return Zero, ErrNotANumber
	case math.IsInf(f, 1):
		return Infinity, nil
	case math.IsInf(f, -1):
		return NegativeInfinity, nil
	}
	r := exactRat(f)
	r.Mul(r, new(big.Rat).SetInt64(unit))
	return truncate(r)
}

// exactRat returns the shortest decimal that round-trips to f as an exact
// rational, so 0.3 seconds is 300000000ns rather than 299999999ns.
func exactRat(f float64) *big.Rat {
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'g', -1, 64))
	if !ok {
		r = new(big.Rat).SetFloat64(f)
	}
	return r
}

func truncate(r *big.Rat) (Duration, error) {
	q := new(big.Int).Quo(r.Num(), r.Denom())
	if !q.IsInt64() {
		return Zero, ErrOverflow
	}
	return Duration{ns: q.Int64()}, nil
}

// IsFinite reports whether d is neither infinity.
func (d Duration) IsFinite() bool { return d.inf == 0 }

// IsInfinite reports whether d is positive or negative infinity.
func (d Duration) IsInfinite() bool { return d.inf != 0 }

// Sign returns -1, 0 or +1.
func (d Duration) Sign() int {
	switch {
	case d.inf != 0:
		return int(d.inf)
	case d.ns < 0:
		return -1
	case d.ns > 0:
		return 1
	}
	return 0
}

// NanosecondsCount returns the signed nanosecond count. Infinities report
// math.MaxInt64 and math.MinInt64.
func (d Duration) NanosecondsCount() int64 {
	switch d.inf {
	case 1:
		return math.MaxInt64
	case -1:
		return math.MinInt64
	}
	return d.ns
}

// ToGo converts d to a time.Duration. Infinite durations are rejected.
func (d Duration) ToGo() (time.Duration, error) {
	if d.inf != 0 {
		return 0, ErrNotFinite
	}
	return time.Duration(d.ns), nil
}

// Neg returns -d. Negating the most negative finite count wraps as int64
// negation does.
func (d Duration) Neg() Duration {
	if d.inf != 0 {
		return Duration{inf: -d.inf}
	}
	return Duration{ns: -d.ns}
}

// Abs returns d with a non-negative sign.
func (d Duration) Abs() Duration {
	if d.Sign() < 0 {
		return d.Neg()
	}
	return d
}

// Compare returns -1, 0 or +1 depending on whether d is shorter than,
// equal to or longer than e. Negative infinity precedes every finite value
// and positive infinity follows them.
func (d Duration) Compare(e Duration) int {
	switch {
	case d.inf < e.inf:
		return -1
	case d.inf > e.inf:
		return 1
	case d.ns < e.ns:
		return -1
	case d.ns > e.ns:
		return 1
	}
	return 0
}

func (d Duration) Less(e Duration) bool  { return d.Compare(e) < 0 }
func (d Duration) Equal(e Duration) bool { return d == e }

// Add returns d+e. Opposite infinities cancel and fail.
func (d Duration) Add(e Duration) (Duration, error) {
	switch {
	case d.inf != 0 && e.inf != 0:
		if d.inf != e.inf {
			return Zero, d.fail("+", e, ErrIndeterminate)
		}
		return d, nil
	case d.inf != 0:
		return d, nil
	case e.inf != 0:
		return e, nil
	}
	s := d.ns + e.ns
	if (e.ns > 0 && s < d.ns) || (e.ns < 0 && s > d.ns) {
		return Zero, d.fail("+", e, ErrOverflow)
	}
	return Duration{ns: s}, nil
}

// Sub returns d-e. Equal infinities cancel and fail.
func (d Duration) Sub(e Duration) (Duration, error) {
	switch {
	case d.inf != 0 && e.inf != 0:
		if d.inf == e.inf {
			return Zero, d.fail("-", e, ErrIndeterminate)
		}
		return d, nil
	case d.inf != 0:
		return d, nil
	case e.inf != 0:
		return Duration{inf: -e.inf}, nil
	}
	s := d.ns - e.ns
	if (e.ns > 0 && s > d.ns) || (e.ns < 0 && s < d.ns) {
		return Zero, d.fail("-", e, ErrOverflow)
	}
	return Duration{ns: s}, nil
}

// Mul returns d*n. An infinite d keeps its magnitude and takes the sign
// of the product; multiplying it by zero fails.
func (d Duration) Mul(n int64) (Duration, error) {
	y := strconv.FormatInt(n, 10)
	if d.inf != 0 {
		if n == 0 {
			return Zero, d.failScalar("*", y, ErrIndeterminate)
		}
		return Duration{inf: d.inf * sign64(n)}, nil
	}
	p, ok := mul64(d.ns, n)
	if !ok {
		return Zero, d.failScalar("*", y, ErrOverflow)
	}
	return Duration{ns: p}, nil
}

// MulFloat returns d*f truncated toward zero. A finite non-zero d
// multiplied by an infinite f yields an infinity.
func (d Duration) MulFloat(f float64) (Duration, error) {
	y := strconv.FormatFloat(f, 'g', -1, 64)
	switch {
	case math.IsNaN(f):
		return Zero, d.failScalar("*", y, ErrNotANumber)
	case d.inf != 0:
		if f == 0 {
			return Zero, d.failScalar("*", y, ErrIndeterminate)
		}
		return Duration{inf: d.inf * signFloat(f)}, nil
	case math.IsInf(f, 0):
		if d.ns == 0 {
			return Zero, d.failScalar("*", y, ErrIndeterminate)
		}
		return Duration{inf: int8(d.Sign()) * signFloat(f)}, nil
	}
	r := exactRat(f)
	r.Mul(r, new(big.Rat).SetInt64(d.ns))
	res, err := truncate(r)
	if err != nil {
		return Zero, d.failScalar("*", y, err)
	}
	return res, nil
}

// Div returns d/n truncated toward zero. Division by zero fails for every
// d; an infinite d takes the sign of the quotient.
func (d Duration) Div(n int64) (Duration, error) {
	y := strconv.FormatInt(n, 10)
	switch {
	case n == 0:
		return Zero, d.failScalar("/", y, ErrDivisionByZero)
	case d.inf != 0:
		return Duration{inf: d.inf * sign64(n)}, nil
	case d.ns == math.MinInt64 && n == -1:
		return Zero, d.failScalar("/", y, ErrOverflow)
	}
	return Duration{ns: d.ns / n}, nil
}

// DivFloat returns d/f truncated toward zero. A finite d divided by an
// infinite f is zero; an infinite d divided by an infinite f fails.
func (d Duration) DivFloat(f float64) (Duration, error) {
	y := strconv.FormatFloat(f, 'g', -1, 64)
	switch {
	case math.IsNaN(f):
		return Zero, d.failScalar("/", y, ErrNotANumber)
	case f == 0:
		return Zero, d.failScalar("/", y, ErrDivisionByZero)
	case d.inf != 0:
		if math.IsInf(f, 0) {
			return Zero, d.failScalar("/", y, ErrIndeterminate)
		}
		return Duration{inf: d.inf * signFloat(f)}, nil
	case math.IsInf(f, 0):
		return Zero, nil
	}
	r := new(big.Rat).SetInt64(d.ns)
	r.Quo(r, exactRat(f))
	res, err := truncate(r)
	if err != nil {
		return Zero, d.failScalar("/", y, err)
	}
	return res, nil
}

func (d Duration) fail(op string, e Duration, err error) error {
	return d.failScalar(op, e.String(), err)
}

func (d Duration) failScalar(op, y string, err error) error {
	return &ArithmeticError{Op: op, X: d, Y: y, Err: err}
}

func mul64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	if p/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return p, true
}

func sign64(n int64) int8 {
	if n < 0 {
		return -1
	}
	return 1
}

func signFloat(f float64) int8 {
	if f < 0 {
		return -1
	}
	return 1
}

// Total-in-unit accessors. They return the whole span as a real number in
// the given unit, or a signed infinity for infinite durations.

func (d Duration) TotalNanoseconds() float64  { return d.total(1) }
func (d Duration) TotalMicroseconds() float64 { return d.total(nsPerMicrosecond) }
func (d Duration) TotalMilliseconds() float64 { return d.total(nsPerMillisecond) }
func (d Duration) TotalSeconds() float64      { return d.total(nsPerSecond) }
func (d Duration) TotalMinutes() float64      { return d.total(nsPerMinute) }
func (d Duration) TotalHours() float64        { return d.total(nsPerHour) }
func (d Duration) TotalDays() float64         { return d.total(nsPerDay) }

func (d Duration) total(unit int64) float64 {
	if d.inf != 0 {
		return math.Inf(int(d.inf))
	}
	return float64(d.ns) / float64(unit)
}

// DurationFields is the calendar-style breakdown of a finite Duration's
// magnitude.
type DurationFields struct {
	Negative     bool
	Days         int64
	Hours        int
	Minutes      int
	Seconds      int
	Milliseconds int
	Microseconds int
	Nanoseconds  int
}

// Fields breaks |d| into days, hours, minutes, seconds and sub-second
// parts. Infinite durations are rejected.
func (d Duration) Fields() (DurationFields, error) {
	if d.inf != 0 {
		return DurationFields{}, ErrNotFinite
	}
	return DurationFields{
		Negative:     d.ns < 0,
		Days:         d.Days(),
		Hours:        d.Hours(),
		Minutes:      d.Minutes(),
		Seconds:      d.Seconds(),
		Milliseconds: d.Milliseconds(),
		Microseconds: d.Microseconds(),
		Nanoseconds:  d.Nanoseconds(),
	}, nil
}

func (d Duration) magnitude() uint64 {
	m := uint64(d.ns)
	if d.ns < 0 {
		m = -m
	}
	return m
}

// Sub-field accessors. Each returns one component of Fields. Infinite
// durations have a zero count and report 0 everywhere.

func (d Duration) Days() int64       { return int64(d.magnitude() / uint64(nsPerDay)) }
func (d Duration) Hours() int        { return int(d.magnitude() / uint64(nsPerHour) % 24) }
func (d Duration) Minutes() int      { return int(d.magnitude() / uint64(nsPerMinute) % 60) }
func (d Duration) Seconds() int      { return int(d.magnitude() / uint64(nsPerSecond) % 60) }
func (d Duration) Milliseconds() int { return int(d.magnitude() / uint64(nsPerMillisecond) % 1000) }
func (d Duration) Microseconds() int { return int(d.magnitude() / uint64(nsPerMicrosecond) % 1000) }
func (d Duration) Nanoseconds() int  { return int(d.magnitude() % 1000) }

// Hash returns a 64-bit hash that is equal for equal durations.
func (d Duration) Hash() uint64 {
	var buf [9]byte
	d.canonical(buf[:])
	return xxhash.Sum64(buf[:])
}

// canonical writes the kind byte and big-endian count into b[:9].
func (d Duration) canonical(b []byte) {
	b[0] = byte(d.inf + 1)
	binary.BigEndian.PutUint64(b[1:9], uint64(d.ns))
}

// Format renders d. Finite durations expand layout, infinite ones expand
// infLayout; empty layouts select DefaultDurationFormat and
// DefaultInfinityFormat. Infinity layouts only resolve %+ and %-, so any
// other text in them is printed as is.
func (d Duration) Format(layout, infLayout string) string {
	return string(d.AppendFormat(nil, layout, infLayout))
}

// AppendFormat is like Format but appends to b.
func (d Duration) AppendFormat(b []byte, layout, infLayout string) []byte {
	if d.inf != 0 {
		if infLayout == "" {
			infLayout = DefaultInfinityFormat
		}
		return placeholder.Append(b, infLayout, '%', d.resolveSign)
	}
	if layout == "" {
		layout = DefaultDurationFormat
	}
	f, _ := d.Fields()
	return placeholder.Append(b, layout, '%', func(token byte) (string, bool) {
		switch token {
		case 'd':
			return strconv.FormatInt(f.Days, 10), true
		case 'D':
			if f.Days > 0 {
				return strconv.FormatInt(f.Days, 10), true
			}
			return "", true
		case 'H':
			return placeholder.Digits(int64(f.Hours), 2), true
		case 'M':
			return placeholder.Digits(int64(f.Minutes), 2), true
		case 'S':
			return placeholder.Digits(int64(f.Seconds), 2), true
		case 'T':
			return placeholder.Digits(int64(f.Hours), 2) + ":" +
				placeholder.Digits(int64(f.Minutes), 2) + ":" +
				placeholder.Digits(int64(f.Seconds), 2), true
		case '3':
			return placeholder.Digits(int64(f.Milliseconds), 3), true
		case '6':
			return placeholder.Digits(int64(f.Microseconds), 3), true
		case '9':
			return placeholder.Digits(int64(f.Nanoseconds), 3), true
		}
		return d.resolveSign(token)
	})
}

func (d Duration) resolveSign(token byte) (string, bool) {
	switch token {
	case '+':
		if d.Sign() < 0 {
			return "-", true
		}
		return "+", true
	case '-':
		if d.Sign() < 0 {
			return "-", true
		}
		return "", true
	}
	return "", false
}

// String formats d with the default layouts, e.g. "1428d 21:33:09.123456789"
// or "-inf".
func (d Duration) String() string { return d.Format("", "") }

// GoString implements fmt.GoStringer.
func (d Duration) GoString() string {
	switch d.inf {
	case 1:
		return "types.Infinity"
	case -1:
		return "types.NegativeInfinity"
	}
	return fmt.Sprintf("types.Nanoseconds(%d)", d.ns)
}

// ValidateDurationFormat checks layout against DurationTokens.
func ValidateDurationFormat(layout string) error {
	return placeholder.Validate(layout, '%', DurationTokens)
}

// MarshalText encodes infinities as "inf" and "-inf" and finite values in
// Go duration syntax, such as "1h30m0.5s".
func (d Duration) MarshalText() ([]byte, error) {
	switch d.inf {
	case 1:
		return []byte("inf"), nil
	case -1:
		return []byte("-inf"), nil
	}
	return []byte(time.Duration(d.ns).String()), nil
}

// UnmarshalText is the inverse of MarshalText. "+inf" is accepted too.
func (d *Duration) UnmarshalText(text []byte) error {
	switch s := string(text); s {
	case "inf", "+inf":
		*d = Infinity
	case "-inf":
		*d = NegativeInfinity
	default:
		v, err := time.ParseDuration(s)
		if err != nil {
			return &ParseError{Text: s, Layout: "duration", Offset: -1, Err: err}
		}
		*d = Duration{ns: int64(v)}
	}
	return nil
}
