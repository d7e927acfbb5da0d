// Package garden drives the simulation: it turns generated climate days
// into the hourly care ticks and daily rollovers the garden service
// consumes, and keeps the simulated 1850s clock.
package garden

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gardencore/internal/climate"
	"gardencore/internal/core"
	"gardencore/internal/season"
)

// Config parameterises a simulation run.
type Config struct {
	// Start is the simulated wall clock at construction. Zero means
	// dawn of April 1st, 1856, the opening of Mendel's trial beds.
	Start time.Time
}

// DefaultStart is the simulated clock origin.
var DefaultStart = time.Date(1856, time.April, 1, 6, 0, 0, 0, time.UTC)

// Engine advances the garden hour by hour. All mutation goes through the
// service; the engine owns only the clock, the soil column, and the
// rolling air-temperature history behind the sowing gate.
type Engine struct {
	mu      sync.Mutex
	service *core.Service
	climate *climate.Climate
	logger  core.Logger

	now   time.Time
	today climate.Day
	soil  season.Soil

	airMeans []float64 // most recent daily means, newest last, capped at 10

	report Report
}

// Report accumulates rollover outcomes across a run.
type Report struct {
	Days         int
	Deaths       int
	StageChanges int
	Survivors    int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l core.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New constructs an engine over an existing service and climate.
func New(service *core.Service, clim *climate.Climate, cfg Config, opts ...Option) *Engine {
	start := cfg.Start
	if start.IsZero() {
		start = DefaultStart
	}
	e := &Engine{
		service: service,
		climate: clim,
		logger:  core.NoopLogger{},
		now:     start.UTC(),
		soil:    season.NewSoil(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.today = clim.DailyState(e.now)
	return e
}

// NewSimulation wires a service whose clock is the engine's simulated
// time, so sowing timestamps and pollen viability windows move with the
// simulation rather than the host clock.
func NewSimulation(store core.PersistentStore, clim *climate.Climate, cfg Config, serviceOpts []core.Option, opts ...Option) (*Engine, *core.Service) {
	e := &Engine{
		logger: core.NoopLogger{},
		soil:   season.NewSoil(),
	}
	start := cfg.Start
	if start.IsZero() {
		start = DefaultStart
	}
	e.now = start.UTC()
	e.climate = clim
	for _, opt := range opts {
		opt(e)
	}
	service := core.NewService(store, nil, append(serviceOpts, core.WithClock(e.Now))...)
	e.service = service
	e.today = clim.DailyState(e.now)
	return e, service
}

// Now returns the simulated clock.
func (e *Engine) Now() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now
}

// Soil returns the current soil column state.
func (e *Engine) Soil() season.Soil {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.soil
}

// Weather returns today's weather in season terms.
func (e *Engine) Weather() season.Weather {
	e.mu.Lock()
	defer e.mu.Unlock()
	return weatherFor(e.today)
}

// Sky returns today's sky symbol.
func (e *Engine) Sky() season.Sky {
	e.mu.Lock()
	defer e.mu.Unlock()
	return skyFor(e.today)
}

// Report returns the accumulated run report.
func (e *Engine) Report() Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.report
}

// Attach registers the engine's hourly step on the ticker.
func (e *Engine) Attach(t *Ticker) {
	t.Register(TicksPerHour, func(ctx context.Context, _ int64) error {
		return e.StepHour(ctx)
	})
}

// StepHour applies one hour of care weather to every plant and advances
// the clock. Crossing midnight triggers the daily rollover.
func (e *Engine) StepHour(ctx context.Context) error {
	e.mu.Lock()
	temp := e.today.Hours[e.now.Hour()]
	sky := skyFor(e.today)
	e.mu.Unlock()

	if _, err := e.service.TickHour(ctx, temp, sky); err != nil {
		return fmt.Errorf("hourly tick: %w", err)
	}

	e.mu.Lock()
	e.now = e.now.Add(time.Hour)
	rollover := e.now.Hour() == 0
	e.mu.Unlock()

	if rollover {
		return e.rollover(ctx)
	}
	return nil
}

// RunDays simulates n full days from the current clock.
func (e *Engine) RunDays(ctx context.Context, n int) error {
	t := NewTicker()
	e.Attach(t)
	return t.Advance(ctx, n*int(TicksPerDay))
}

// SowingAdvice reports whether conditions currently allow sowing, with
// the gating reason when they do not.
func (e *Engine) SowingAdvice() (bool, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	check := season.SowCheck{
		Date:          e.now,
		Air5DayMeanC:  meanOfTail(e.airMeans, 5),
		Air10DayMeanC: meanOfTail(e.airMeans, 10),
		FrostSeason:   e.today.FrostSeason,
		FrostFreeDays: e.climate.FrostFreeDays(e.now),
	}
	return e.soil.CanSow(check)
}

// rollover closes out the finished day: soil integration, plant
// phenology, air history, and the next day's weather.
func (e *Engine) rollover(ctx context.Context) error {
	e.mu.Lock()
	finished := e.today
	w := weatherFor(finished)
	gdd := e.soil.Step(w)
	soil := e.soil
	e.mu.Unlock()

	summary, _, err := e.service.AdvanceDay(ctx, w, soil, gdd)
	if err != nil {
		return fmt.Errorf("day rollover: %w", err)
	}

	e.mu.Lock()
	e.airMeans = append(e.airMeans, w.MeanC)
	if len(e.airMeans) > 10 {
		e.airMeans = e.airMeans[len(e.airMeans)-10:]
	}
	e.report.Days++
	e.report.Deaths += len(summary.Deaths)
	e.report.StageChanges += len(summary.StageChanges)
	e.report.Survivors = summary.Survivors
	e.today = e.climate.DailyState(e.now)
	day := e.report.Days
	e.mu.Unlock()

	if len(summary.Deaths) > 0 {
		e.logger.Infof("day %d: %d plants died", day, len(summary.Deaths))
	}
	return nil
}

// weatherFor projects a generated climate day into the phenology model's
// weather terms.
func weatherFor(d climate.Day) season.Weather {
	return season.Weather{
		MeanC:       d.MeanC(),
		MinC:        d.MinC(),
		MaxC:        d.MaxC(),
		NoonC:       d.NoonC(),
		RainMM:      d.RainMM,
		Cloud:       d.Cloud,
		AmpScale:    d.AmpScale,
		FrostSeason: d.FrostSeason,
	}
}

func meanOfTail(vals []float64, n int) float64 {
	if len(vals) == 0 {
		return 0
	}
	if n > len(vals) {
		n = len(vals)
	}
	tail := vals[len(vals)-n:]
	var sum float64
	for _, v := range tail {
		sum += v
	}
	return sum / float64(len(tail))
}

// skyFor maps the day's precipitation flags onto a care sky symbol.
func skyFor(d climate.Day) season.Sky {
	switch {
	case d.Snow:
		return season.SkySnow
	case d.Thunder && d.Rain:
		return season.SkyStorm
	default:
		return season.SkyFor(weatherFor(d))
	}
}
