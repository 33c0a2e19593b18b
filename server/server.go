package server

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/blockberries/chronos"
	"github.com/blockberries/chronos/clock"
	"github.com/blockberries/chronos/config"
	"github.com/blockberries/chronos/types"
)

// Compile-time interface checks.
var (
	_ chronos.Service = (*Server)(nil)
	_ chronos.Ticker  = (*Server)(nil)
)

// Server implements chronos.Service and chronos.Ticker over a clock
// source. Transports wrap it; it never talks to the network itself.
type Server struct {
	src     clock.Source
	formats config.Formats
	minTick types.Duration
	guard   *LifecycleGuard
	log     zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithFormats replaces the default layouts used for empty layout
// arguments.
func WithFormats(f config.Formats) Option {
	return func(s *Server) { s.formats = f }
}

// WithMinTickInterval sets the shortest interval Ticks accepts.
func WithMinTickInterval(d types.Duration) Option {
	return func(s *Server) { s.minTick = d }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithConfig applies the formats and tick settings of cfg.
func WithConfig(cfg config.Config) Option {
	return func(s *Server) {
		s.formats = cfg.Formats
		s.minTick = cfg.Server.MinTickInterval
	}
}

// New creates a Server reading src, or clock.Default when src is nil.
func New(src clock.Source, opts ...Option) *Server {
	if src == nil {
		src = clock.Default
	}
	defaults := config.Defaults()
	s := &Server{
		src:     src,
		formats: defaults.Formats,
		minTick: defaults.Server.MinTickInterval,
		guard:   NewLifecycleGuard(),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Formats returns the layouts that replace empty layout arguments.
func (s *Server) Formats() config.Formats { return s.formats }

// State returns the lifecycle state of the server.
func (s *Server) State() string { return s.guard.State() }

// Now reads the clock source.
func (s *Server) Now(ctx context.Context) (types.Timestamp, error) {
	if err := s.guard.Enter(); err != nil {
		return types.Timestamp{}, err
	}
	defer s.guard.Leave()

	if err := ctx.Err(); err != nil {
		return types.Timestamp{}, err
	}
	ts, err := types.NowFrom(ctx, s.src)
	if err != nil {
		s.log.Warn().Err(err).Msg("clock source failed")
		return types.Timestamp{}, err
	}
	return ts, nil
}

// FormatTime lays out ts. An invalid layout fails with
// chronos.ErrInvalidParam.
func (s *Server) FormatTime(ctx context.Context, ts types.Timestamp, layout string) (string, error) {
	if err := s.guard.Enter(); err != nil {
		return "", err
	}
	defer s.guard.Leave()

	if layout == "" {
		layout = s.formats.Time
	}
	if err := types.ValidateTimeFormat(layout); err != nil {
		return "", invalidParam("layout", err)
	}
	return ts.Format(layout), nil
}

// ParseTime parses text laid out as layout.
func (s *Server) ParseTime(ctx context.Context, text, layout string) (types.Timestamp, error) {
	if err := s.guard.Enter(); err != nil {
		return types.Timestamp{}, err
	}
	defer s.guard.Leave()

	if layout == "" {
		layout = s.formats.Time
	}
	ts, err := types.ParseTimestamp(text, layout)
	if err != nil {
		s.log.Debug().Err(err).Str("text", text).Str("layout", layout).Msg("parse failed")
		return types.Timestamp{}, err
	}
	return ts, nil
}

// FormatDuration lays out d with layout, or infLayout when d is infinite.
func (s *Server) FormatDuration(ctx context.Context, d types.Duration, layout, infLayout string) (string, error) {
	if err := s.guard.Enter(); err != nil {
		return "", err
	}
	defer s.guard.Leave()

	if layout == "" {
		layout = s.formats.Duration
	}
	if infLayout == "" {
		infLayout = s.formats.Infinity
	}
	if err := types.ValidateDurationFormat(layout); err != nil {
		return "", invalidParam("layout", err)
	}
	if err := types.ValidateDurationFormat(infLayout); err != nil {
		return "", invalidParam("infinity layout", err)
	}
	return d.Format(layout, infLayout), nil
}

// Ticks streams the clock every interval until ctx is done or the
// server is closed. A tick is dropped when the receiver has not taken
// the previous one yet.
func (s *Server) Ticks(ctx context.Context, interval types.Duration) (<-chan types.Timestamp, error) {
	if !interval.IsFinite() || interval.Sign() <= 0 || interval.Less(s.minTick) {
		return nil, fmt.Errorf("%w: tick interval %v must be finite, positive and at least %v",
			chronos.ErrInvalidParam, interval, s.minTick)
	}
	period, err := interval.ToGo()
	if err != nil {
		return nil, invalidParam("tick interval", err)
	}
	if err := s.guard.Enter(); err != nil {
		return nil, err
	}

	ch := make(chan types.Timestamp, 1)
	go func() {
		defer s.guard.Leave()
		defer close(ch)

		t := time.NewTicker(period)
		defer t.Stop()
		s.log.Debug().Str("interval", interval.String()).Msg("tick stream started")
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.guard.Done():
				return
			case <-t.C:
			}
			ts, err := types.NowFrom(ctx, s.src)
			if err != nil {
				s.log.Warn().Err(err).Msg("tick stream ended by clock source")
				return
			}
			select {
			case ch <- ts:
			default:
			}
		}
	}()
	return ch, nil
}

// Close stops every tick stream and rejects further calls.
func (s *Server) Close() error {
	if s.guard.Close() {
		s.log.Info().Msg("time service closed")
	}
	return nil
}

func invalidParam(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", chronos.ErrInvalidParam, what, err)
}
