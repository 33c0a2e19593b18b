// Package local provides a zero-copy, in-process chronos connection.
//
// For callers compiled into the same binary as the clock, this adapter
// exposes a server.Server through chronos.Connection with no
// serialization overhead.
package local

import (
	"context"

	"github.com/blockberries/chronos"
	"github.com/blockberries/chronos/clock"
	"github.com/blockberries/chronos/server"
	"github.com/blockberries/chronos/types"
)

// Compile-time interface check.
var _ chronos.Connection = (*Connection)(nil)

// Connection wraps a server.Server.
type Connection struct {
	srv *server.Server
}

// NewConnection creates an in-process connection reading src.
func NewConnection(src clock.Source, opts ...server.Option) *Connection {
	return &Connection{srv: server.New(src, opts...)}
}

// Wrap creates a connection around an existing server.
func Wrap(srv *server.Server) *Connection {
	return &Connection{srv: srv}
}

func (c *Connection) Now(ctx context.Context) (types.Timestamp, error) {
	return c.srv.Now(ctx)
}

func (c *Connection) FormatTime(ctx context.Context, ts types.Timestamp, layout string) (string, error) {
	return c.srv.FormatTime(ctx, ts, layout)
}

func (c *Connection) ParseTime(ctx context.Context, text, layout string) (types.Timestamp, error) {
	return c.srv.ParseTime(ctx, text, layout)
}

func (c *Connection) FormatDuration(ctx context.Context, d types.Duration, layout, infLayout string) (string, error) {
	return c.srv.FormatDuration(ctx, d, layout, infLayout)
}

// AsTicker always returns the server: in-process streams need no
// transport support.
func (c *Connection) AsTicker() chronos.Ticker {
	return c.srv
}

// Close closes the underlying server.
func (c *Connection) Close() error { return c.srv.Close() }

// Server returns the underlying server for advanced use cases.
func (c *Connection) Server() *server.Server {
	return c.srv
}
