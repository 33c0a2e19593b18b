// Package stopwatch implements a lap stopwatch on top of any
// chronos.Service. It shows the Timestamp and Duration algebra a client
// of the time service works with: differences of readings, running
// sums, averages, and infinite budgets.
package stopwatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/blockberries/chronos"
	"github.com/blockberries/chronos/types"
)

var (
	ErrRunning    = errors.New("stopwatch: already running")
	ErrNotRunning = errors.New("stopwatch: not running")
)

// Stopwatch accumulates elapsed time across start/stop cycles and
// records laps. It is safe for concurrent use.
type Stopwatch struct {
	svc chronos.Service

	mu      sync.Mutex
	running bool
	started types.Timestamp // start of the current run
	lapMark types.Timestamp // start of the current lap
	banked  types.Duration  // elapsed time of finished runs
	laps    []types.Duration
}

// New creates a stopped stopwatch reading svc.
func New(svc chronos.Service) *Stopwatch {
	return &Stopwatch{svc: svc}
}

// Start begins a run.
func (s *Stopwatch) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrRunning
	}
	now, err := s.svc.Now(ctx)
	if err != nil {
		return err
	}
	s.running = true
	s.started = now
	s.lapMark = now
	return nil
}

// Stop ends the current run and returns the total elapsed time.
func (s *Stopwatch) Stop(ctx context.Context) (types.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return types.Zero, ErrNotRunning
	}
	now, err := s.svc.Now(ctx)
	if err != nil {
		return types.Zero, err
	}
	total, err := s.banked.Add(now.Sub(s.started))
	if err != nil {
		return types.Zero, err
	}
	s.running = false
	s.banked = total
	return total, nil
}

// Lap closes the current lap and returns its length. Time spent stopped
// does not count towards a lap.
func (s *Stopwatch) Lap(ctx context.Context) (types.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return types.Zero, ErrNotRunning
	}
	now, err := s.svc.Now(ctx)
	if err != nil {
		return types.Zero, err
	}
	lap := now.Sub(s.lapMark)
	s.laps = append(s.laps, lap)
	s.lapMark = now
	return lap, nil
}

// Elapsed returns the total running time so far.
func (s *Stopwatch) Elapsed(ctx context.Context) (types.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return s.banked, nil
	}
	now, err := s.svc.Now(ctx)
	if err != nil {
		return types.Zero, err
	}
	return s.banked.Add(now.Sub(s.started))
}

// Remaining returns how much of budget is left. An infinite budget never
// runs out; an overrun is reported as a negative duration.
func (s *Stopwatch) Remaining(ctx context.Context, budget types.Duration) (types.Duration, error) {
	elapsed, err := s.Elapsed(ctx)
	if err != nil {
		return types.Zero, err
	}
	return budget.Sub(elapsed)
}

// Laps returns a copy of the recorded laps.
func (s *Stopwatch) Laps() []types.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Duration(nil), s.laps...)
}

// Average returns the mean lap length, or zero with no laps.
func (s *Stopwatch) Average() (types.Duration, error) {
	laps := s.Laps()
	if len(laps) == 0 {
		return types.Zero, nil
	}
	sum := types.Zero
	for _, l := range laps {
		var err error
		if sum, err = sum.Add(l); err != nil {
			return types.Zero, err
		}
	}
	return sum.Div(int64(len(laps)))
}

// Fastest returns the shortest lap, or +inf with no laps.
func (s *Stopwatch) Fastest() types.Duration {
	best := types.Infinity
	for _, l := range s.Laps() {
		if l.Less(best) {
			best = l
		}
	}
	return best
}

// Reset stops the stopwatch and forgets every run and lap.
func (s *Stopwatch) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.banked = types.Zero
	s.laps = nil
}

// Report renders one line per lap followed by the total, each laid out
// by the service with layout.
func (s *Stopwatch) Report(ctx context.Context, layout string) (string, error) {
	laps := s.Laps()
	total, err := s.Elapsed(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, l := range laps {
		text, err := s.svc.FormatDuration(ctx, l, layout, "")
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "lap %d: %s\n", i+1, text)
	}
	text, err := s.svc.FormatDuration(ctx, total, layout, "")
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "total: %s\n", text)
	return b.String(), nil
}
