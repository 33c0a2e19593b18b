package logsink

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/blockberries/chronos/types"
)

// CondenseWriter drops repeats of an entry (same severity, component and
// message) seen within Condense and reports how many were dropped once
// the window expires.
type CondenseWriter struct {
	zerolog.LevelWriter
	mu    sync.Mutex
	once  sync.Once
	cache *cache.Cache

	Condense time.Duration
	// Now stamps the summary entries; types.Now if nil.
	Now func() (types.Timestamp, error)
}

// Write implements io.Writer interface
func (w *CondenseWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel implements zerolog.LevelWriter interface
func (w *CondenseWriter) WriteLevel(lvl zerolog.Level, p []byte) (int, error) {
	if w.Condense <= 0 {
		return w.LevelWriter.WriteLevel(lvl, p)
	}
	w.once.Do(func() {
		w.cache = cache.New(w.Condense*2, w.Condense/4)
		w.cache.OnEvicted(w.onEvicted)
	})
	e, err := DecodeEntry(lvl, p)
	if err != nil {
		return 0, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	ck := fmt.Sprintf("%d\x00%s\x00%s", lvl, e.Component, e.Message)
	/* flush expired windows before looking up */
	w.cache.DeleteExpired()
	if _, ok := w.cache.Get(ck); ok {
		_ = w.cache.Increment(ck, 1)
		return len(p), nil
	}
	_ = w.cache.Add(ck, uint16(0), w.Condense)
	return w.LevelWriter.WriteLevel(lvl, p)
}

func (w *CondenseWriter) onEvicted(ck string, v interface{}) {
	n, _ := v.(uint16)
	if n == 0 {
		return
	}
	parts := strings.SplitN(ck, "\x00", 3)
	if len(parts) != 3 {
		return
	}
	l, err := strconv.Atoi(parts[0])
	if err != nil {
		return
	}
	lvl := zerolog.Level(l)
	now := types.Now
	if w.Now != nil {
		now = w.Now
	}
	ts, _ := now()
	buf, err := json.Marshal(map[string]any{
		zerolog.LevelFieldName:   lvl.String(),
		TimeField:                ts.UnixNano(),
		ComponentField:           parts[1],
		zerolog.MessageFieldName: fmt.Sprintf("[condensed %d more entries of %q within %s]", n, parts[2], types.DurationFromGo(w.Condense).Format("%T.%3", "")),
	})
	if err != nil {
		return
	}
	_, _ = w.LevelWriter.WriteLevel(lvl, buf)
}
