package logsink

import (
	"sync"

	"github.com/rs/zerolog"
)

// Hook receives decoded entries. It runs on the logging goroutine and
// must not log through the same logger.
type Hook func(Entry)

// HookWriter forwards entries to registered hooks. Whoever registers a
// hook owns it: the hook stays installed until its release function is
// called, and the writer keeps no reference to it afterwards.
type HookWriter struct {
	mu    sync.RWMutex
	next  uint64
	hooks map[uint64]hookEntry
}

type hookEntry struct {
	verbosity Verbosity
	fn        Hook
}

// NewHookWriter creates an empty HookWriter.
func NewHookWriter() *HookWriter {
	return &HookWriter{hooks: make(map[uint64]hookEntry)}
}

// Register installs fn for entries that pass verbosity and returns the
// function that removes it again. Calling release more than once is a
// no-op.
func (w *HookWriter) Register(verbosity Verbosity, fn Hook) (release func()) {
	w.mu.Lock()
	id := w.next
	w.next++
	w.hooks[id] = hookEntry{verbosity: verbosity, fn: fn}
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.hooks, id)
			w.mu.Unlock()
		})
	}
}

// Len returns the number of installed hooks.
func (w *HookWriter) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.hooks)
}

// Write implements io.Writer interface
func (w *HookWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel implements zerolog.LevelWriter interface
func (w *HookWriter) WriteLevel(lvl zerolog.Level, p []byte) (int, error) {
	if w.Len() == 0 {
		return len(p), nil
	}
	e, err := DecodeEntry(lvl, p)
	if err != nil {
		return 0, err
	}

	w.mu.RLock()
	targets := make([]Hook, 0, len(w.hooks))
	for _, h := range w.hooks {
		if h.verbosity.Allows(e.Severity) {
			targets = append(targets, h.fn)
		}
	}
	w.mu.RUnlock()

	for _, fn := range targets {
		fn(e)
	}
	return len(p), nil
}
