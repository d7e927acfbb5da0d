package garden

import (
	"context"
	"sort"
	"sync"
)

// Simulation cadence in ticks. One tick is one simulated hour.
const (
	TicksPerHour int64 = 1
	TicksPerDay        = 24 * TicksPerHour
)

// TickFunc is invoked for every tick whose counter is divisible by the
// frequency it was registered under.
type TickFunc func(ctx context.Context, tick int64) error

// Ticker drives registered callbacks at fixed tick frequencies. It keeps
// a registry bucketed by frequency, so an hourly callback registers at
// TicksPerHour and a daily one at TicksPerDay.
type Ticker struct {
	mu       sync.Mutex
	counter  int64
	registry map[int64][]TickFunc
}

// NewTicker returns an empty ticker at counter zero.
func NewTicker() *Ticker {
	return &Ticker{registry: make(map[int64][]TickFunc)}
}

// Register adds fn at the given frequency. Frequencies below one are
// treated as every tick.
func (t *Ticker) Register(frequency int64, fn TickFunc) {
	if frequency < 1 {
		frequency = 1
	}
	t.mu.Lock()
	t.registry[frequency] = append(t.registry[frequency], fn)
	t.mu.Unlock()
}

// Counter returns the number of ticks elapsed.
func (t *Ticker) Counter() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counter
}

// Tick runs every callback due at the current counter, then increments
// it. Callbacks run lowest frequency first so hourly work precedes daily
// rollovers scheduled on the same tick.
func (t *Ticker) Tick(ctx context.Context) error {
	t.mu.Lock()
	tick := t.counter
	freqs := make([]int64, 0, len(t.registry))
	for f := range t.registry {
		if tick%f == 0 {
			freqs = append(freqs, f)
		}
	}
	sort.Slice(freqs, func(i, j int) bool { return freqs[i] < freqs[j] })
	var due []TickFunc
	for _, f := range freqs {
		due = append(due, t.registry[f]...)
	}
	t.counter++
	t.mu.Unlock()

	for _, fn := range due {
		if err := fn(ctx, tick); err != nil {
			return err
		}
	}
	return nil
}

// Advance runs n consecutive ticks, stopping at the first error.
func (t *Ticker) Advance(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := t.Tick(ctx); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}
