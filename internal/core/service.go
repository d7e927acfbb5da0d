package core

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"gardencore/internal/season"
	"gardencore/pkg/genetics"
)

// Service exposes the transactional garden operations over a persistent
// store. Every mutation runs inside the store's transaction scope, where
// the rules engine validates the resulting state before commit.
type Service struct {
	store    PersistentStore
	registry *genetics.Registry
	rng      genetics.RandomSource
	logger   Logger
	metrics  MetricsRecorder
	tracer   Tracer
	nowFn    func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithRandom injects the randomness source used for genetics draws and
// biological variation.
func WithRandom(rng genetics.RandomSource) Option {
	return func(s *Service) { s.rng = rng }
}

// WithLogger attaches a logger.
func WithLogger(l Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTracer attaches a tracer.
func WithTracer(t Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithClock overrides the service clock. The garden engine points this at
// the simulated 1850s calendar.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.nowFn = now }
}

// NewService constructs a service over the given store. A nil registry
// defaults to the classic pea registry.
func NewService(store PersistentStore, registry *genetics.Registry, opts ...Option) *Service {
	if registry == nil {
		registry = genetics.NewPeaRegistry()
	}
	s := &Service{
		store:    store,
		registry: registry,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:   NoopLogger{},
		nowFn:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore { return s.store }

// Registry returns the trait registry breeding runs against.
func (s *Service) Registry() *genetics.Registry { return s.registry }

func (s *Service) now() time.Time { return s.nowFn() }

// run wraps a transaction with tracing, metrics and logging.
func (s *Service) run(ctx context.Context, op string, fn func(tx Transaction) error) (Result, error) {
	started := time.Now()
	var span TraceSpan
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, op)
	}
	res, err := s.store.RunInTransaction(ctx, fn)
	if span != nil {
		span.End(err)
	}
	if s.metrics != nil {
		s.metrics.Observe(ctx, op, err == nil, time.Since(started))
	}
	if err != nil {
		s.logger.Warnf("%s failed: %v", op, err)
	} else {
		s.logger.Debugf("%s committed", op)
	}
	return res, err
}

// ErrNotFound reports a missing entity.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ErrInvalidOperation reports an operation attempted outside its
// biological window.
type ErrInvalidOperation struct {
	Op     string
	Reason string
}

func (e ErrInvalidOperation) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// CreateBed lays out a bed and its grid of plots in one transaction.
func (s *Service) CreateBed(ctx context.Context, name string, rows, cols int) (Bed, Result, error) {
	var created Bed
	res, err := s.run(ctx, "create_bed", func(tx Transaction) error {
		var err error
		created, err = tx.CreateBed(Bed{Name: name, Rows: rows, Cols: cols})
		if err != nil {
			return err
		}
		for row := 0; row < rows; row++ {
			for col := 0; col < cols; col++ {
				if _, err := tx.CreatePlot(Plot{
					BedID:        created.ID,
					Row:          row,
					Col:          col,
					SoilMoisture: 0.5,
					SoilTempC:    season.SoilInitTempC,
				}); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		created, _ = s.findBed(created.ID)
	}
	return created, res, err
}

func (s *Service) findBed(id string) (Bed, bool) {
	for _, bed := range s.store.ListBeds() {
		if bed.ID == id {
			return bed, true
		}
	}
	return Bed{}, false
}

// DeleteBed removes an empty bed and its plots.
func (s *Service) DeleteBed(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_bed", func(tx Transaction) error {
		return tx.DeleteBed(id)
	})
}

// CreateSeedLot persists a new seed lot.
func (s *Service) CreateSeedLot(ctx context.Context, lot SeedLot) (SeedLot, Result, error) {
	var created SeedLot
	res, err := s.run(ctx, "create_seed_lot", func(tx Transaction) error {
		var err error
		created, err = tx.CreateSeedLot(lot)
		return err
	})
	return created, res, err
}

// UpdateSeedLot mutates a seed lot using the provided mutator.
func (s *Service) UpdateSeedLot(ctx context.Context, id string, mutator func(*SeedLot) error) (SeedLot, Result, error) {
	var updated SeedLot
	res, err := s.run(ctx, "update_seed_lot", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateSeedLot(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteSeedLot removes a seed lot.
func (s *Service) DeleteSeedLot(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_seed_lot", func(tx Transaction) error {
		return tx.DeleteSeedLot(id)
	})
}

// DeletePlant removes a plant record and frees its plot.
func (s *Service) DeletePlant(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_plant", func(tx Transaction) error {
		return tx.DeletePlant(id)
	})
}

// gauss approximates a normal draw using the injected randomness source.
func gauss(rng genetics.RandomSource, mean, sd float64) float64 {
	var sum float64
	for i := 0; i < 12; i++ {
		sum += rng.Float64()
	}
	return mean + (sum-6)*sd
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
