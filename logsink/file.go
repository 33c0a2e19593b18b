package logsink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/blockberries/chronos/clock"
	"github.com/blockberries/chronos/types"
)

// FileWriter writes formatted entries to a log file with size based
// rotation. The file name is Pattern with its time placeholders expanded
// when the file is opened, so "app_%F_%H%M%S.log" yields a new name per
// run.
type FileWriter struct {
	mu       sync.Mutex
	file     *os.File
	fileSize int64
	path     string
	buf      []byte

	Pattern   string
	MaxSize   int64
	Rotate    int
	Verbosity Verbosity
	Formatter Formatter
	// Clock names the file; clock.Default if nil.
	Clock clock.Source
}

// Open expands the file name and creates the file. It is called lazily
// by the first write when not called explicitly.
func (f *FileWriter) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open()
}

// Path returns the expanded name of the current file.
func (f *FileWriter) Path() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.path
}

// Close implements io.Closer interface
func (f *FileWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}

// Write implements io.Writer interface
func (f *FileWriter) Write(p []byte) (int, error) {
	return f.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel implements zerolog.LevelWriter interface
func (f *FileWriter) WriteLevel(lvl zerolog.Level, p []byte) (int, error) {
	e, err := DecodeEntry(lvl, p)
	if err != nil {
		return 0, err
	}
	if !f.Verbosity.Allows(e.Severity) {
		return len(p), nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		if err := f.open(); err != nil {
			return 0, err
		}
	}
	f.buf = append(f.Formatter.Append(f.buf[:0], e), '\n')
	if f.MaxSize > 0 && f.MaxSize < f.fileSize+int64(len(f.buf)) {
		if err := f.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := f.file.Write(f.buf)
	if err != nil {
		if err := f.reopen(); err != nil {
			return 0, err
		}
		n, err = f.file.Write(f.buf)
	}
	if err != nil {
		return 0, err
	}
	f.fileSize += int64(n)
	return len(p), nil
}

func (f *FileWriter) open() error {
	src := f.Clock
	if src == nil {
		src = clock.Default
	}
	now, err := types.NowFrom(context.Background(), src)
	if err != nil {
		return fmt.Errorf("logsink: naming log file: %w", err)
	}
	f.path = now.Format(f.Pattern)
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return f.reopen()
}

func (f *FileWriter) reopen() error {
	if f.file != nil {
		_ = f.file.Close()
		f.file = nil
	}
	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	f.file = file
	f.fileSize = 0
	if fi, err := file.Stat(); err == nil {
		f.fileSize = fi.Size()
	}
	return nil
}

func (f *FileWriter) rotate() error {
	_ = f.file.Close()
	f.file = nil
	if f.Rotate == 0 {
		_ = os.Remove(f.path)
	} else {
		for i := f.Rotate; i > 1; i-- {
			_ = os.Rename(fmt.Sprintf("%s.%d", f.path, i-1), fmt.Sprintf("%s.%d", f.path, i))
		}
		_ = os.Rename(f.path, f.path+".1")
	}
	return f.reopen()
}
