package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Script-GH/Ai-tutor/internal/events"
)

// RunnerConfig holds configuration for the job runner
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process jobs
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory hand-off
	QueueSize int

	// PendingSweepInterval is how often PENDING jobs are loaded from the
	// store and dispatched. It covers hand-offs dropped on a full queue
	// and jobs left over from a previous process.
	PendingSweepInterval time.Duration

	// SweepBatchSize caps how many PENDING jobs one sweep loads.
	SweepBatchSize int

	// StuckJobAge is how long a job may stay PROCESSING before the monitor
	// resets it to PENDING. Zero disables the monitor.
	StuckJobAge time.Duration

	// StuckJobCheckInterval defines how often to check for stuck jobs.
	// If zero, defaults to 5 minutes
	StuckJobCheckInterval time.Duration
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount:           2,
		QueueSize:             100,
		PendingSweepInterval:  30 * time.Second,
		SweepBatchSize:        100,
		StuckJobCheckInterval: 5 * time.Minute,
	}
}

// Runner accepts jobs, persists them and feeds them to a WorkerPool.
type Runner struct {
	store    JobStore
	queue    *dispatchQueue
	pool     *WorkerPool
	registry *registry
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	config   RunnerConfig
	logger   *slog.Logger
	now      func() time.Time
	started  atomic.Bool
	stopped  atomic.Bool
	stopOnce sync.Once
}

// NewRunner creates a new Runner. Bodies must be registered before Start.
func NewRunner(store JobStore, config RunnerConfig, emitter events.EventEmitter, logger *slog.Logger) *Runner {
	if config.StuckJobCheckInterval == 0 {
		config.StuckJobCheckInterval = 5 * time.Minute
	}
	if config.PendingSweepInterval <= 0 {
		config.PendingSweepInterval = 30 * time.Second
	}
	if config.SweepBatchSize <= 0 {
		config.SweepBatchSize = 100
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}

	log := logger.With("component", "job_runner")
	ctx, cancel := context.WithCancel(context.Background())
	reg := newRegistry()
	queue := newDispatchQueue(config.QueueSize, log)

	return &Runner{
		store:    store,
		queue:    queue,
		pool:     newWorkerPool(queue, store, reg, emitter, config.WorkerCount, log),
		registry: reg,
		ctx:      ctx,
		cancel:   cancel,
		config:   config,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register binds a Body to a job kind.
func (r *Runner) Register(kind string, body Body) {
	r.registry.register(kind, body)
	r.logger.Debug("registered job body", "kind", kind)
}

// Enqueue persists a PENDING job and offers it to the workers without
// blocking. When the hand-off buffer is full the job stays PENDING and the
// sweeper dispatches it later.
func (r *Runner) Enqueue(ctx context.Context, kind string, ownerID uuid.UUID, payload json.RawMessage) (uuid.UUID, error) {
	if r.stopped.Load() {
		return uuid.Nil, ErrRunnerStopped
	}
	if _, ok := r.registry.lookup(kind); !ok {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	now := r.now()
	job := &Job{
		ID:        uuid.New(),
		Kind:      kind,
		OwnerID:   ownerID,
		Payload:   payload,
		State:     StatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.store.Save(ctx, job); err != nil {
		return uuid.Nil, fmt.Errorf("failed to save job: %w", err)
	}
	r.pool.transition(ctx, job, StatePending, nil, "")

	if err := r.queue.TryPush(job); err != nil {
		r.logger.Warn("job left for pending sweeper",
			"job_id", job.ID,
			"kind", kind,
			"reason", err)
	}
	jobsInflight.Set(float64(r.queue.Len()))

	return job.ID, nil
}

// Status returns the current record of a job.
func (r *Runner) Status(ctx context.Context, id uuid.UUID) (*Job, error) {
	job, err := r.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load job: %w", err)
	}
	return job, nil
}

// Start dispatches leftover PENDING jobs and begins processing.
func (r *Runner) Start() error {
	if !r.started.CompareAndSwap(false, true) {
		return errors.New("job runner already started")
	}

	r.logger.Info("starting job runner",
		"workers", r.pool.workerCount,
		"kinds", r.registry.kinds(),
		"stuck_job_age", r.config.StuckJobAge)

	if err := r.sweepPending(r.ctx); err != nil {
		return fmt.Errorf("failed to recover pending jobs: %w", err)
	}

	r.pool.Start(r.ctx)

	r.wg.Add(1)
	go r.pendingSweeper()

	if r.config.StuckJobAge > 0 {
		r.wg.Add(1)
		go r.stuckJobMonitor()
	}

	return nil
}

// Stop gracefully shuts down the runner. Jobs still queued in memory remain
// PENDING in the store and are dispatched by the next process.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		r.stopped.Store(true)
		r.cancel()
		r.wg.Wait()
		r.pool.Wait()
		r.queue.Close()
		r.logger.Info("job runner stopped")
	})
}

// sweepPending loads PENDING jobs and pushes them until the queue is full.
func (r *Runner) sweepPending(ctx context.Context) error {
	jobs, err := r.store.ListPending(ctx, r.config.SweepBatchSize)
	if err != nil {
		return err
	}

	dispatched := 0
	for _, job := range jobs {
		if err := r.queue.TryPush(job); err != nil {
			if errors.Is(err, ErrQueueFull) || errors.Is(err, ErrQueueClosed) {
				break
			}
			return err
		}
		dispatched++
	}

	if len(jobs) > 0 {
		r.logger.Debug("swept pending jobs",
			"pending_count", len(jobs),
			"dispatched", dispatched)
	}
	jobsInflight.Set(float64(r.queue.Len()))
	return nil
}

func (r *Runner) pendingSweeper() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.PendingSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			if err := r.sweepPending(r.ctx); err != nil && r.ctx.Err() == nil {
				r.logger.Error("failed to sweep pending jobs", "error", err)
			}
		}
	}
}

// stuckJobMonitor periodically resets jobs that stayed PROCESSING longer
// than StuckJobAge; the pending sweeper then dispatches them again.
func (r *Runner) stuckJobMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckJobCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-ticker.C:
			cutoff := r.now().Add(-r.config.StuckJobAge)
			n, err := r.store.ResetStuck(r.ctx, cutoff)
			if err != nil {
				if r.ctx.Err() == nil {
					r.logger.Error("failed to reset stuck jobs", "error", err)
				}
				continue
			}
			if n > 0 {
				r.logger.Warn("reset stuck jobs to pending",
					"count", n,
					"started_before", cutoff)
			}
		}
	}
}
