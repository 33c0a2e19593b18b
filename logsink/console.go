package logsink

import (
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// ConsoleWriter writes formatted entries to a stream such as os.Stderr.
type ConsoleWriter struct {
	mu  sync.Mutex
	buf []byte

	Out       io.Writer
	Verbosity Verbosity
	Formatter Formatter
}

// NewConsoleWriter creates a ConsoleWriter.
func NewConsoleWriter(out io.Writer, verbosity Verbosity, f Formatter) *ConsoleWriter {
	return &ConsoleWriter{Out: out, Verbosity: verbosity, Formatter: f}
}

// Write implements io.Writer interface
func (w *ConsoleWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel implements zerolog.LevelWriter interface
func (w *ConsoleWriter) WriteLevel(lvl zerolog.Level, p []byte) (int, error) {
	e, err := DecodeEntry(lvl, p)
	if err != nil {
		return 0, err
	}
	if !w.Verbosity.Allows(e.Severity) {
		return len(p), nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf = append(w.Formatter.Append(w.buf[:0], e), '\n')
	if _, err := w.Out.Write(w.buf); err != nil {
		return 0, err
	}
	return len(p), nil
}
