// Package logsink renders zerolog events as text log entries.
//
// Entries are laid out with '$' templates that share the placeholder
// engine of the time types:
//
//	$t  timestamp, laid out with the sink's time format
//	$P  process ID
//	$T  thread ID, taken from the event's "tid" field
//	$s  severity tag (FAT, ERR, WRN, IFO, DBG, TRC)
//	$m  message
//	$f  source file
//	$l  source line
//	$c  component
//	$<  start of the severity colour
//	$>  end of the severity colour
//	$$  a literal '$'
//
// Sinks are zerolog.LevelWriters that decode the JSON an event produces,
// so any zerolog.Logger can feed them.
package logsink

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Verbosity is the severity of an entry, or the threshold of a sink.
type Verbosity int

const (
	None Verbosity = iota - 1
	Fatal
	Error
	Warning
	Info
	Debug
	Trace
)

var verbosityNames = [...]string{"FATAL", "ERROR", "WARNING", "INFO", "DEBUG", "TRACE"}
var verbosityTags = [...]string{"FAT", "ERR", "WRN", "IFO", "DBG", "TRC"}

func (v Verbosity) String() string {
	if v == None {
		return "NONE"
	}
	if v >= Fatal && v <= Trace {
		return verbosityNames[v]
	}
	return fmt.Sprintf("Verbosity(%d)", int(v))
}

// Tag returns the three letter tag rendered by $s.
func (v Verbosity) Tag() string {
	if v >= Fatal && v <= Trace {
		return verbosityTags[v]
	}
	return "???"
}

// ParseVerbosity accepts the names returned by String and their tags,
// case-insensitively.
func ParseVerbosity(s string) (Verbosity, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	if u == "NONE" {
		return None, nil
	}
	for i := range verbosityNames {
		if u == verbosityNames[i] || u == verbosityTags[i] {
			return Verbosity(i), nil
		}
	}
	return None, fmt.Errorf("logsink: unknown verbosity %q", s)
}

// Level maps v to the zerolog level a logger should be set to.
func (v Verbosity) Level() zerolog.Level {
	switch v {
	case Fatal:
		return zerolog.FatalLevel
	case Error:
		return zerolog.ErrorLevel
	case Warning:
		return zerolog.WarnLevel
	case Info:
		return zerolog.InfoLevel
	case Debug:
		return zerolog.DebugLevel
	case Trace:
		return zerolog.TraceLevel
	}
	return zerolog.Disabled
}

// VerbosityOf maps a zerolog level to a Verbosity. Panic folds into
// Fatal and events without a level count as Info.
func VerbosityOf(lvl zerolog.Level) Verbosity {
	switch lvl {
	case zerolog.PanicLevel, zerolog.FatalLevel:
		return Fatal
	case zerolog.ErrorLevel:
		return Error
	case zerolog.WarnLevel:
		return Warning
	case zerolog.DebugLevel:
		return Debug
	case zerolog.TraceLevel:
		return Trace
	case zerolog.Disabled:
		return None
	}
	return Info
}

// Allows reports whether an entry of severity sev passes threshold v.
func (v Verbosity) Allows(sev Verbosity) bool {
	return sev != None && sev <= v
}

func (v Verbosity) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *Verbosity) UnmarshalText(text []byte) error {
	p, err := ParseVerbosity(string(text))
	if err != nil {
		return err
	}
	*v = p
	return nil
}
