package logsink

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blockberries/chronos/placeholder"
)

// Default layouts.
const (
	DefaultTimeFormat  = "%F %T.%3"
	DefaultEntryFormat = "$t [T$T] $<$s $c: $m$>"
)

// EntryTokens are the placeholders of entry layouts, '$' included.
const EntryTokens = "tPTsmflc<>$"

// colours holds the ANSI sequences that $< emits per severity.
var colours = [...]string{
	Fatal:   "\x1b[1;37;41m",
	Error:   "\x1b[1;31m",
	Warning: "\x1b[1;33m",
	Info:    "\x1b[0;32m",
	Debug:   "\x1b[0;36m",
	Trace:   "\x1b[0;90m",
}

const colourReset = "\x1b[0m"

// ValidateEntryFormat checks an entry layout. "$$" is an escaped '$';
// every other '$' must start one of the tokens listed in the package
// documentation.
func ValidateEntryFormat(layout string) error {
	if layout == "" {
		return fmt.Errorf("%w: empty template", placeholder.ErrInvalidFormat)
	}
	stripped := strings.ReplaceAll(layout, "$$", "")
	if stripped == "" {
		return nil
	}
	return placeholder.Validate(stripped, '$', EntryTokens)
}

// Formatter lays out entries. Empty layouts select the defaults.
type Formatter struct {
	TimeFormat  string
	EntryFormat string
	Colour      bool
}

// Format renders e without a trailing newline.
func (f Formatter) Format(e Entry) string {
	return string(f.Append(nil, e))
}

// Append is like Format but appends to dst.
func (f Formatter) Append(dst []byte, e Entry) []byte {
	layout := f.EntryFormat
	if layout == "" {
		layout = DefaultEntryFormat
	}
	timeFormat := f.TimeFormat
	if timeFormat == "" {
		timeFormat = DefaultTimeFormat
	}
	return placeholder.Append(dst, layout, '$', func(token byte) (string, bool) {
		switch token {
		case 't':
			return e.Time.Format(timeFormat), true
		case 'P':
			return strconv.Itoa(e.PID), true
		case 'T':
			return strconv.Itoa(e.Thread), true
		case 's':
			return e.Severity.Tag(), true
		case 'm':
			return e.Message, true
		case 'f':
			return e.File, true
		case 'l':
			return strconv.Itoa(e.Line), true
		case 'c':
			return e.Component, true
		case '<':
			if f.Colour && e.Severity >= Fatal && e.Severity <= Trace {
				return colours[e.Severity], true
			}
			return "", true
		case '>':
			if f.Colour {
				return colourReset, true
			}
			return "", true
		case '$':
			return "$", true
		}
		return "", false
	})
}
