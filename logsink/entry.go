package logsink

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/blockberries/chronos/types"
)

// Field names the sinks read from zerolog events besides zerolog's own
// level, message and caller fields.
const (
	TimeField      = "ts"
	PIDField       = "pid"
	ThreadField    = "tid"
	ComponentField = "component"
)

// Entry is one decoded log event.
type Entry struct {
	Severity  Verbosity
	Time      types.Timestamp
	PID       int
	Thread    int
	File      string
	Line      int
	Component string
	Message   string
}

// DecodeEntry decodes the JSON that a zerolog event wrote. Fields that
// are absent keep their zero value, except PID which defaults to the
// current process.
func DecodeEntry(lvl zerolog.Level, p []byte) (Entry, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(p, &raw); err != nil {
		return Entry{}, fmt.Errorf("logsink: decoding event: %w", err)
	}
	e := Entry{Severity: VerbosityOf(lvl), PID: os.Getpid()}
	if lvl == zerolog.NoLevel {
		if s := str(raw[zerolog.LevelFieldName]); s != "" {
			if l, err := zerolog.ParseLevel(s); err == nil {
				e.Severity = VerbosityOf(l)
			}
		}
	}
	if v, ok := raw[TimeField]; ok {
		var ns int64
		if err := json.Unmarshal(v, &ns); err == nil {
			if ts, err := types.TimestampFromUnixNano(ns); err == nil {
				e.Time = ts
			}
		}
	}
	if v, ok := raw[PIDField]; ok {
		_ = json.Unmarshal(v, &e.PID)
	}
	if v, ok := raw[ThreadField]; ok {
		_ = json.Unmarshal(v, &e.Thread)
	}
	e.Component = str(raw[ComponentField])
	e.Message = str(raw[zerolog.MessageFieldName])
	if caller := str(raw[zerolog.CallerFieldName]); caller != "" {
		e.File, e.Line = splitCaller(caller)
	}
	return e, nil
}

func str(v json.RawMessage) string {
	if v == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return string(v)
	}
	return s
}

func splitCaller(caller string) (string, int) {
	i := strings.LastIndexByte(caller, ':')
	if i < 0 {
		return caller, 0
	}
	line, err := strconv.Atoi(caller[i+1:])
	if err != nil {
		return caller, 0
	}
	return caller[:i], line
}
