package calendar

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestFromUnixNano(t *testing.T) {
	tests := []struct {
		name string
		ns   int64
		want Fields
	}{
		{"epoch", 0, Fields{Year: 1970, Month: 1, Day: 1}},
		{"last nanosecond of 1970-01-01", 86400*1e9 - 1,
			Fields{Year: 1970, Month: 1, Day: 1, Hour: 23, Minute: 59, Second: 59, Nanosecond: 999999999}},
		{"2009-02-11", 1234356789123456789,
			Fields{Year: 2009, Month: 2, Day: 11, Hour: 12, Minute: 53, Second: 9, Nanosecond: 123456789}},
		{"leap day 2000", 951782400 * 1e9,
			Fields{Year: 2000, Month: 2, Day: 29}},
		{"2020-12-31", 1609372800 * 1e9,
			Fields{Year: 2020, Month: 12, Day: 31}},
		{"max int64", math.MaxInt64,
			Fields{Year: 2262, Month: 4, Day: 11, Hour: 23, Minute: 47, Second: 16, Nanosecond: 854775807}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromUnixNano(tt.ns)
			if err != nil {
				t.Fatalf("FromUnixNano(%d): %v", tt.ns, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("FromUnixNano(%d) mismatch (-want +got):\n%s", tt.ns, diff)
			}
			back, err := ToUnixNano(got)
			if err != nil {
				t.Fatalf("ToUnixNano(%v): %v", got, err)
			}
			if back != tt.ns {
				t.Fatalf("ToUnixNano(%v) = %d, want %d", got, back, tt.ns)
			}
		})
	}
}

func TestFromUnixNanoBeforeEpoch(t *testing.T) {
	if _, err := FromUnixNano(-1); !errors.Is(err, ErrBeforeEpoch) {
		t.Fatalf("FromUnixNano(-1) error = %v, want ErrBeforeEpoch", err)
	}
}

// The stdlib calendar is proleptic Gregorian UTC as well, which makes it a
// convenient oracle.
func TestAgreesWithStdlib(t *testing.T) {
	const step = int64(7*86400+3*3600+17*60+11)*1e9 + 123457
	for ns := int64(0); ns < int64(4e18); ns += step {
		got, err := FromUnixNano(ns)
		if err != nil {
			t.Fatalf("FromUnixNano(%d): %v", ns, err)
		}
		tm := time.Unix(0, ns).UTC()
		want := Fields{
			Year: tm.Year(), Month: int(tm.Month()), Day: tm.Day(),
			Hour: tm.Hour(), Minute: tm.Minute(), Second: tm.Second(),
			Nanosecond: tm.Nanosecond(),
		}
		if got != want {
			t.Fatalf("FromUnixNano(%d) = %v, want %v", ns, got, want)
		}
		back, err := ToUnixNano(got)
		if err != nil || back != ns {
			t.Fatalf("ToUnixNano(%v) = %d, %v; want %d", got, back, err, ns)
		}
	}
}

func TestToUnixNanoErrors(t *testing.T) {
	tests := []struct {
		name   string
		fields Fields
		want   error
	}{
		{"month zero", Fields{Year: 2000, Month: 0, Day: 1}, ErrInvalidDate},
		{"month 13", Fields{Year: 2000, Month: 13, Day: 1}, ErrInvalidDate},
		{"feb 29 in common year", Fields{Year: 2001, Month: 2, Day: 29}, ErrInvalidDate},
		{"feb 29 in 2100", Fields{Year: 2100, Month: 2, Day: 29}, ErrInvalidDate},
		{"april 31", Fields{Year: 2000, Month: 4, Day: 31}, ErrInvalidDate},
		{"hour 24", Fields{Year: 2000, Month: 1, Day: 1, Hour: 24}, ErrInvalidDate},
		{"second 60", Fields{Year: 2000, Month: 1, Day: 1, Second: 60}, ErrInvalidDate},
		{"negative nanos", Fields{Year: 2000, Month: 1, Day: 1, Nanosecond: -1}, ErrInvalidDate},
		{"before epoch", Fields{Year: 1969, Month: 12, Day: 31}, ErrBeforeEpoch},
		{"after 2262", Fields{Year: 2262, Month: 4, Day: 12}, ErrOutOfRange},
		{"year 9999", Fields{Year: 9999, Month: 12, Day: 31}, ErrOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ToUnixNano(tt.fields); !errors.Is(err, tt.want) {
				t.Fatalf("ToUnixNano(%v) error = %v, want %v", tt.fields, err, tt.want)
			}
		})
	}
}

func TestIsLeapYear(t *testing.T) {
	leap := []int{1972, 1996, 2000, 2004, 2024, 2400}
	common := []int{1970, 1900, 2001, 2100, 2200, 2300}
	for _, y := range leap {
		if !IsLeapYear(y) {
			t.Errorf("IsLeapYear(%d) = false, want true", y)
		}
	}
	for _, y := range common {
		if IsLeapYear(y) {
			t.Errorf("IsLeapYear(%d) = true, want false", y)
		}
	}
}

func TestDaysInMonth(t *testing.T) {
	if got := DaysInMonth(2024, 2); got != 29 {
		t.Errorf("DaysInMonth(2024, 2) = %d, want 29", got)
	}
	if got := DaysInMonth(2023, 2); got != 28 {
		t.Errorf("DaysInMonth(2023, 2) = %d, want 28", got)
	}
	if got := DaysInMonth(2023, 9); got != 30 {
		t.Errorf("DaysInMonth(2023, 9) = %d, want 30", got)
	}
	if got := DaysInMonth(2023, 13); got != 0 {
		t.Errorf("DaysInMonth(2023, 13) = %d, want 0", got)
	}
}
