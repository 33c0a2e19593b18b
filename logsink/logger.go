package logsink

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/blockberries/chronos/clock"
	"github.com/blockberries/chronos/types"
)

// Options configures NewLogger. The zero value logs nothing.
type Options struct {
	Verbosity Verbosity
	// Stream receives console output; nil disables the console sink.
	Stream io.Writer
	Colour bool

	TimeFormat  string
	EntryFormat string

	// File is the log file pattern; empty disables the file sink.
	File        string
	FileMaxSize int64
	FileRotate  int

	// Condense suppresses repeated entries within the window when
	// positive.
	Condense types.Duration

	// Hooks, when set, receives every entry that passes Verbosity.
	Hooks *HookWriter

	// Clock stamps entries and names files; clock.Default if nil.
	Clock clock.Source
}

// Logger is a zerolog.Logger together with the sinks it owns.
type Logger struct {
	zerolog.Logger
	closers []io.Closer
}

// Close closes the file sink, if any.
func (l *Logger) Close() error {
	var errs []error
	for _, c := range l.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// NewLogger builds a logger for component that fans out to the sinks
// described by opts.
func NewLogger(opts Options, component string) *Logger {
	src := opts.Clock
	if src == nil {
		src = clock.Default
	}
	f := Formatter{TimeFormat: opts.TimeFormat, EntryFormat: opts.EntryFormat, Colour: opts.Colour}

	l := &Logger{}
	var writers []io.Writer
	if opts.Stream != nil {
		writers = append(writers, NewConsoleWriter(opts.Stream, opts.Verbosity, f))
	}
	if opts.File != "" {
		fw := &FileWriter{
			Pattern:   opts.File,
			MaxSize:   opts.FileMaxSize,
			Rotate:    opts.FileRotate,
			Verbosity: opts.Verbosity,
			Formatter: Formatter{TimeFormat: opts.TimeFormat, EntryFormat: opts.EntryFormat},
			Clock:     src,
		}
		writers = append(writers, fw)
		l.closers = append(l.closers, fw)
	}
	if opts.Hooks != nil {
		writers = append(writers, opts.Hooks)
	}
	if len(writers) == 0 || opts.Verbosity == None {
		l.Logger = zerolog.Nop()
		return l
	}

	var w zerolog.LevelWriter = zerolog.MultiLevelWriter(writers...)
	if window, err := opts.Condense.ToGo(); err == nil && window > 0 {
		w = &CondenseWriter{
			LevelWriter: w,
			Condense:    window,
			Now:         func() (types.Timestamp, error) { return types.NowFrom(context.Background(), src) },
		}
	}
	l.Logger = zerolog.New(w).
		Level(opts.Verbosity.Level()).
		Hook(timestampHook{src: src}).
		With().
		Int(PIDField, os.Getpid()).
		Str(ComponentField, component).
		Caller().
		Logger()
	return l
}

// timestampHook stamps events with the clock source in nanoseconds so
// sinks can render them through types.Timestamp.
type timestampHook struct {
	src clock.Source
}

func (h timestampHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	if ns, err := h.src.Now(context.Background()); err == nil {
		e.Int64(TimeField, ns)
	}
}
