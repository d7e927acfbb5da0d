package archive

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gardencore/internal/core"
)

// AuditEntry records one processed export job.
type AuditEntry struct {
	SeasonID   string        `json:"season_id"`
	ArchiveKey string        `json:"archive_key,omitempty"`
	Error      string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
}

// Worker drains season export jobs on a background goroutine so that
// closing a season never blocks on blob I/O. Every job leaves an audit
// entry whether it succeeded or not.
type Worker struct {
	archiver *Archiver
	logger   core.Logger
	metrics  core.MetricsRecorder

	jobs chan string
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
	audit  []AuditEntry
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithWorkerLogger sets the worker logger.
func WithWorkerLogger(l core.Logger) WorkerOption {
	return func(w *Worker) { w.logger = l }
}

// WithWorkerMetrics records job outcomes on the given recorder under the
// "archive_export" operation.
func WithWorkerMetrics(m core.MetricsRecorder) WorkerOption {
	return func(w *Worker) { w.metrics = m }
}

// NewWorker constructs a worker over the archiver with the given queue
// depth. Start must be called before Enqueue.
func NewWorker(archiver *Archiver, queue int, opts ...WorkerOption) *Worker {
	if queue < 1 {
		queue = 1
	}
	w := &Worker{
		archiver: archiver,
		logger:   core.NoopLogger{},
		jobs:     make(chan string, queue),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start launches the export goroutine. Jobs are processed until Close is
// called or the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case seasonID, ok := <-w.jobs:
				if !ok {
					return
				}
				w.process(ctx, seasonID)
			}
		}
	}()
}

// Enqueue schedules a season export. It fails when the worker is closed
// or the queue is full rather than blocking the caller.
func (w *Worker) Enqueue(seasonID string) error {
	// The send must stay under the same lock as the closed check: Close
	// closes the jobs channel, and a send racing that close would panic.
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("archive worker closed")
	}
	select {
	case w.jobs <- seasonID:
		return nil
	default:
		return fmt.Errorf("archive queue full")
	}
}

// Close stops accepting jobs and waits for in-flight exports to finish.
func (w *Worker) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.jobs)
	w.mu.Unlock()
	w.wg.Wait()
}

// Audit returns a copy of the processed-job log.
func (w *Worker) Audit() []AuditEntry {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]AuditEntry, len(w.audit))
	copy(out, w.audit)
	return out
}

func (w *Worker) process(ctx context.Context, seasonID string) {
	started := time.Now()
	snap, err := w.archiver.ExportSeason(ctx, seasonID)
	entry := AuditEntry{
		SeasonID:  seasonID,
		StartedAt: started.UTC(),
		Duration:  time.Since(started),
	}
	if err != nil {
		entry.Error = err.Error()
		w.logger.Errorf("export of season %s failed: %v", seasonID, err)
	} else {
		entry.ArchiveKey, _, _ = snap.Keys()
	}
	if w.metrics != nil {
		w.metrics.Observe(ctx, "archive_export", err == nil, entry.Duration)
	}
	w.mu.Lock()
	w.audit = append(w.audit, entry)
	w.mu.Unlock()
}
