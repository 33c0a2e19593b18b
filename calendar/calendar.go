// Package calendar converts between nanoseconds since the Unix epoch and
// proleptic Gregorian UTC date and time fields. There are no time zones
// and no leap seconds; every day has exactly 86400 seconds.
package calendar

import (
	"errors"
	"fmt"
	"math"
)

const (
	nanosPerSecond = int64(1e9)
	secondsPerDay  = int64(86400)

	// days between 0000-03-01 and 1970-01-01
	epochShift = 719468
	daysPerEra = 146097
)

var (
	// ErrBeforeEpoch is returned for instants earlier than 1970-01-01.
	ErrBeforeEpoch = errors.New("calendar: instant before the epoch")
	// ErrInvalidDate is returned for fields outside their natural ranges,
	// such as February 30th or hour 24.
	ErrInvalidDate = errors.New("calendar: invalid date")
	// ErrOutOfRange is returned when the fields describe an instant that
	// does not fit into 64-bit nanoseconds since the epoch.
	ErrOutOfRange = errors.New("calendar: date out of range")
)

// Fields is a broken-down UTC date and time.
type Fields struct {
	Year       int
	Month      int // 1..12
	Day        int // 1..31
	Hour       int // 0..23
	Minute     int // 0..59
	Second     int // 0..59
	Nanosecond int // 0..999999999
}

func (f Fields) String() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d.%09dZ",
		f.Year, f.Month, f.Day, f.Hour, f.Minute, f.Second, f.Nanosecond)
}

// IsLeapYear reports whether year has 366 days.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days of month in year, or 0 for an
// invalid month.
func DaysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	}
	return 0
}

// FromUnixNano splits ns nanoseconds since the epoch into fields.
func FromUnixNano(ns int64) (Fields, error) {
	if ns < 0 {
		return Fields{}, ErrBeforeEpoch
	}
	secs := ns / nanosPerSecond
	days := secs / secondsPerDay
	rem := secs % secondsPerDay

	year, month, day := civilFromDays(days)
	return Fields{
		Year:       year,
		Month:      month,
		Day:        day,
		Hour:       int(rem / 3600),
		Minute:     int(rem % 3600 / 60),
		Second:     int(rem % 60),
		Nanosecond: int(ns % nanosPerSecond),
	}, nil
}

// ToUnixNano is the inverse of FromUnixNano.
func ToUnixNano(f Fields) (int64, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	if f.Year < 1970 {
		return 0, ErrBeforeEpoch
	}

	days := daysFromCivil(f.Year, f.Month, f.Day)
	if days > math.MaxInt64/secondsPerDay {
		return 0, ErrOutOfRange
	}
	secs := days*secondsPerDay + int64(f.Hour)*3600 + int64(f.Minute)*60 + int64(f.Second)
	nanos := int64(f.Nanosecond)
	if secs > (math.MaxInt64-nanos)/nanosPerSecond {
		return 0, ErrOutOfRange
	}
	return secs*nanosPerSecond + nanos, nil
}

// Validate checks that every field lies within its natural range.
func (f Fields) Validate() error {
	switch {
	case f.Month < 1 || f.Month > 12:
		return fmt.Errorf("%w: month %d", ErrInvalidDate, f.Month)
	case f.Day < 1 || f.Day > DaysInMonth(f.Year, f.Month):
		return fmt.Errorf("%w: day %d of %04d-%02d", ErrInvalidDate, f.Day, f.Year, f.Month)
	case f.Hour < 0 || f.Hour > 23:
		return fmt.Errorf("%w: hour %d", ErrInvalidDate, f.Hour)
	case f.Minute < 0 || f.Minute > 59:
		return fmt.Errorf("%w: minute %d", ErrInvalidDate, f.Minute)
	case f.Second < 0 || f.Second > 59:
		return fmt.Errorf("%w: second %d", ErrInvalidDate, f.Second)
	case f.Nanosecond < 0 || f.Nanosecond >= int(nanosPerSecond):
		return fmt.Errorf("%w: nanosecond %d", ErrInvalidDate, f.Nanosecond)
	}
	return nil
}

// daysFromCivil returns the number of days since 1970-01-01 using eras
// of 400 years that start on March 1st.
func daysFromCivil(year, month, day int) int64 {
	y := int64(year)
	if month <= 2 {
		y--
	}
	era := y
	if era < 0 {
		era -= 399
	}
	era /= 400
	yoe := y - era*400
	mp := int64(month) + 9
	if month > 2 {
		mp = int64(month) - 3
	}
	doy := (153*mp+2)/5 + int64(day) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*daysPerEra + doe - epochShift
}

func civilFromDays(days int64) (year, month, day int) {
	z := days + epochShift
	era := z
	if era < 0 {
		era -= daysPerEra - 1
	}
	era /= daysPerEra
	doe := z - era*daysPerEra
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153

	d := doy - (153*mp+2)/5 + 1
	m := mp + 3
	if mp >= 10 {
		m = mp - 9
	}
	y := yoe + era*400
	if m <= 2 {
		y++
	}
	return int(y), int(m), int(d)
}
