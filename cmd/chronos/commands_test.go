package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/chronos"
	"github.com/blockberries/chronos/config"
	"github.com/blockberries/chronos/types"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.ConfigEnv, "")
	var stdout, stderr lockedBuffer
	err := run(context.Background(), append([]string{"--log-level", "none"}, args...), &stdout, &stderr)
	return stdout.String(), err
}

func TestFormatAndParse(t *testing.T) {
	out, err := execute(t, "format", "1234356789123456789")
	require.NoError(t, err)
	assert.Equal(t, "2009-02-11T12:53:09.123Z\n", out)

	out, err = execute(t, "format", "1234356789123456789", "--layout", "%Y%m%d%H%M%S%3%6%9")
	require.NoError(t, err)
	assert.Equal(t, "20090211125309123456789\n", out)

	out, err = execute(t, "parse", "2009-02-11T12:53:09.123Z")
	require.NoError(t, err)
	assert.Equal(t, "1234356789123000000\n", out)

	_, err = execute(t, "parse", "2009-02-11")
	assert.ErrorIs(t, err, types.ErrParse)

	_, err = execute(t, "format", "0", "--layout", "%Q")
	assert.ErrorIs(t, err, chronos.ErrInvalidParam)

	_, err = execute(t, "format", "--", "-1")
	assert.ErrorIs(t, err, types.ErrInvalidTimestamp)
}

func TestNow(t *testing.T) {
	before := time.Now().UnixNano()
	out, err := execute(t, "now", "--layout", "%Y")
	require.NoError(t, err)
	year := time.Unix(0, before).UTC().Format("2006")
	assert.Contains(t, []string{year + "\n", time.Now().UTC().Format("2006") + "\n"}, out)
}

func TestDuration(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"123456789123456789ns"}, "1428d 21:33:09.123456789"},
		{[]string{"36h", "--mul", "2.5"}, "3d 18:00:00.000000000"},
		{[]string{"90s", "--layout", "%-%M:%S"}, "01:30"},
		{[]string{"1s", "--sub", "1m30s", "--layout", "%+%S"}, "-29"},
		{[]string{"1h", "--div", "-4", "--layout", "%-%M"}, "-15"},
		{[]string{"inf"}, "inf"},
		{[]string{"inf", "--sub", "1h", "--inf-layout", "%+inf"}, "+inf"},
		{[]string{"--mul", "-3", "--", "-inf"}, "inf"},
		{[]string{"5s", "--div", "inf"}, "0d 00:00:00.000000000"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := execute(t, append([]string{"duration"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}
}

func TestDurationErrors(t *testing.T) {
	_, err := execute(t, "duration", "inf", "--add", "-inf")
	assert.ErrorIs(t, err, types.ErrArithmetic)

	_, err = execute(t, "duration", "1s", "--div", "0")
	assert.ErrorIs(t, err, types.ErrDivisionByZero)

	_, err = execute(t, "duration", "inf", "--mul", "0")
	assert.ErrorIs(t, err, types.ErrArithmetic)

	_, err = execute(t, "duration", "soon")
	assert.ErrorIs(t, err, types.ErrParse)

	_, err = execute(t, "duration", "1s", "--mul", "twice")
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chronos.yaml")
	require.NoError(t, os.WriteFile(path, []byte("formats:\n  time: \"%F\"\n"), 0o600))

	out, err := execute(t, "--config", path, "format", "1234356789123456789")
	require.NoError(t, err)
	assert.Equal(t, "2009-02-11\n", out)

	require.NoError(t, os.WriteFile(path, []byte("formats:\n  time: \"%F%\"\n"), 0o600))
	_, err = execute(t, "--config", path, "now")
	assert.Error(t, err)
}

func TestLogLevelFlag(t *testing.T) {
	_, err := execute(t, "--log-level", "chatty", "now")
	assert.Error(t, err)
}

func TestServeAndRemote(t *testing.T) {
	t.Setenv(config.ConfigEnv, "")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stdout, stderr lockedBuffer
	served := make(chan error, 1)
	go func() {
		served <- run(ctx, []string{"serve", "--listen", "127.0.0.1:0"}, &stdout, &stderr)
	}()

	var addr string
	require.Eventually(t, func() bool {
		line := stdout.String()
		if !strings.HasPrefix(line, "listening on ") {
			return false
		}
		addr = strings.TrimSpace(strings.TrimPrefix(line, "listening on "))
		return true
	}, 5*time.Second, 10*time.Millisecond)

	out, err := execute(t, "--remote", addr, "format", "0")
	require.NoError(t, err)
	assert.Equal(t, "1970-01-01T00:00:00.000Z\n", out)

	out, err = execute(t, "--remote", addr, "duration", "--", "-inf")
	require.NoError(t, err)
	assert.Equal(t, "-inf\n", out)

	_, err = execute(t, "--remote", addr, "parse", "yesterday")
	assert.ErrorIs(t, err, types.ErrParse)

	out, err = execute(t, "--remote", addr, "ticks", "--interval", "10ms", "--count", "2")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)

	cancel()
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}
