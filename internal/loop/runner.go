package loop

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type Ticker interface {
	Tick(dt float64)
}

type TickFunc func(dt float64)

func (f TickFunc) Tick(dt float64) { f(dt) }

// Runner owns the frame clock and ticks every registered Ticker once per
// frame, in registration order.
type Runner struct {
	interval  time.Duration
	maxDelta  float64
	tickers   []Ticker
	afterTick func(dt float64)
	now       func() time.Time
	frames    uint64
}

func NewRunner(tickRate int, maxDelta float64, tickers ...Ticker) (*Runner, error) {
	if tickRate <= 0 {
		return nil, fmt.Errorf("tick rate must be > 0, got %d", tickRate)
	}
	if maxDelta <= 0 {
		return nil, fmt.Errorf("max delta must be > 0, got %v", maxDelta)
	}
	interval := time.Second / time.Duration(tickRate)
	if interval <= 0 {
		return nil, fmt.Errorf("tick rate %d is too high, interval rounds to zero", tickRate)
	}
	return &Runner{
		interval: interval,
		maxDelta: maxDelta,
		tickers:  tickers,
		now:      time.Now,
	}, nil
}

func (r *Runner) Add(t Ticker) {
	r.tickers = append(r.tickers, t)
}

// AfterTick registers a hook called after every frame.
func (r *Runner) AfterTick(fn func(dt float64)) {
	r.afterTick = fn
}

func (r *Runner) Interval() time.Duration {
	return r.interval
}

func (r *Runner) Frames() uint64 {
	return r.frames
}

// Step runs one frame with the given dt.
func (r *Runner) Step(dt float64) {
	for _, t := range r.tickers {
		t.Tick(dt)
	}
	r.frames++
	if r.afterTick != nil {
		r.afterTick(dt)
	}
}

// Run ticks on the runner's interval until ctx is cancelled. dt is measured
// from the wall clock and capped at the configured max delta.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.Debug("Frame loop started", "interval", r.interval, "tickers", len(r.tickers))
	last := r.now()
	for {
		select {
		case <-ctx.Done():
			slog.Debug("Frame loop stopped", "frames", r.frames)
			return nil
		case <-ticker.C:
			now := r.now()
			r.Step(r.clampDelta(now.Sub(last).Seconds()))
			last = now
		}
	}
}

func (r *Runner) clampDelta(dt float64) float64 {
	if dt < 0 {
		return 0
	}
	if dt > r.maxDelta {
		return r.maxDelta
	}
	return dt
}
