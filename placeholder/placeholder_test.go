package placeholder

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func fixed(m map[byte]string) Resolver {
	return func(token byte) (string, bool) {
		s, ok := m[token]
		return s, ok
	}
}

func TestExpand(t *testing.T) {
	r := fixed(map[byte]string{'a': "1", 'b': "%a", '$': "$"})

	tests := []struct {
		name     string
		template string
		prefix   byte
		want     string
	}{
		{"empty", "", '%', ""},
		{"literal only", "hello", '%', "hello"},
		{"single", "<%a>", '%', "<1>"},
		{"adjacent", "%a%a", '%', "11"},
		{"unrecognised passes through", "%x%a", '%', "%x1"},
		{"no rescan of substitution", "%b", '%', "%a"},
		{"dangling prefix", "x%", '%', "x%"},
		{"double prefix is a token", "%%a", '%', "%%a"},
		{"other prefix ignored", "%a", '$', "%a"},
		{"dollar escape", "$$a", '$', "$a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Expand(tt.template, tt.prefix, r); got != tt.want {
				t.Fatalf("Expand(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestAppendKeepsPrefix(t *testing.T) {
	got := Append([]byte("x="), "%a", '%', fixed(map[byte]string{'a': "7"}))
	if string(got) != "x=7" {
		t.Fatalf("Append = %q, want %q", got, "x=7")
	}
}

func TestValidate(t *testing.T) {
	const timeTokens = "YmdFHMST369"
	for _, ok := range []string{"%F %T.%3", "plain", "%Y%m%d%H%M%S%3%6%9", "_%Y_%9_"} {
		if err := Validate(ok, '%', timeTokens); err != nil {
			t.Errorf("Validate(%q) = %v, want nil", ok, err)
		}
	}
	for _, bad := range []string{"%4", "%%", "", "%%T", "%", "bla%"} {
		err := Validate(bad, '%', timeTokens)
		if !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("Validate(%q) = %v, want ErrInvalidFormat", bad, err)
		}
	}

	const logTokens = "tPTsmflc<>$"
	for _, ok := range []string{"$t [T$T] $<$s $c: $m$>", "$$", "cost: $$5"} {
		if err := Validate(ok, '$', logTokens); err != nil {
			t.Errorf("Validate(%q) = %v, want nil", ok, err)
		}
	}
	for _, bad := range []string{"$;", "", "$$$", "$", "bla$"} {
		if err := Validate(bad, '$', logTokens); !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("Validate(%q) = %v, want ErrInvalidFormat", bad, err)
		}
	}
}

func TestDigits(t *testing.T) {
	cases := []struct {
		v     int64
		width int
		want  string
	}{
		{7, 2, "07"},
		{123, 2, "123"},
		{0, 3, "000"},
		{-5, 3, "005"},
		{1428, 0, "1428"},
		{99, 9, "000000099"},
		{1000, 3, "1000"},
	}
	for _, c := range cases {
		if got := Digits(c.v, c.width); got != c.want {
			t.Errorf("Digits(%d, %d) = %q, want %q", c.v, c.width, got, c.want)
		}
	}
}

func twoDigits(token byte) (Field, bool) {
	switch token {
	case 'H':
		return Field{Width: 2, Min: 0, Max: 23}, true
	case 'M':
		return Field{Width: 2, Min: 0, Max: 59}, true
	case 'Y':
		return Field{Width: 4, Min: 0, Max: 9999}, true
	}
	return Field{}, false
}

func TestScan(t *testing.T) {
	got, err := Scan("2009 12:53", "%Y %H:%M", '%', twoDigits)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := Values{'Y': 2009, 'H': 12, 'M': 53}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Scan mismatch (-want +got):\n%s", diff)
	}
}

func TestScanLiteralPlaceholder(t *testing.T) {
	got, err := Scan("%x05", "%x%H", '%', twoDigits)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if got['H'] != 5 {
		t.Fatalf("H = %d, want 5", got['H'])
	}
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		template string
		offset   int
	}{
		{"short input", "12:5", "%H:%M", 3},
		{"non digit", "1x:00", "%H:%M", 1},
		{"out of range", "24:00", "%H:%M", 0},
		{"literal mismatch", "12-00", "%H:%M", 2},
		{"trailing text", "12:00Z", "%H:%M", 5},
		{"missing literal", "12", "%H:", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Scan(tt.text, tt.template, '%', twoDigits)
			var se *ScanError
			if !errors.As(err, &se) {
				t.Fatalf("Scan(%q) error = %v, want *ScanError", tt.text, err)
			}
			if se.Offset != tt.offset {
				t.Fatalf("offset = %d, want %d (%v)", se.Offset, tt.offset, se)
			}
		})
	}
}
