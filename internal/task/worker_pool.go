package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/Script-GH/Ai-tutor/internal/events"
	"github.com/Script-GH/Ai-tutor/internal/platform/logger"
)

// WorkerPool manages the goroutines that claim and execute dispatched jobs.
type WorkerPool struct {
	queue       *dispatchQueue
	store       JobStore
	registry    *registry
	emitter     events.EventEmitter
	workerCount int
	wg          sync.WaitGroup
	logger      *slog.Logger
	now         func() time.Time
}

func newWorkerPool(
	queue *dispatchQueue,
	store JobStore,
	reg *registry,
	emitter events.EventEmitter,
	workerCount int,
	log *slog.Logger,
) *WorkerPool {
	if workerCount <= 0 {
		log.Warn("invalid worker count specified, using default",
			"specified_count", workerCount,
			"default_count", 1)
		workerCount = 1
	}
	return &WorkerPool{
		queue:       queue,
		store:       store,
		registry:    reg,
		emitter:     emitter,
		workerCount: workerCount,
		logger:      log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Start launches the workers. They stop when ctx is cancelled or the queue closes.
func (p *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Wait blocks until every worker has returned.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("stopping worker", "worker_id", id)
			return

		case job, ok := <-p.queue.C():
			if !ok {
				p.logger.Debug("job channel closed, stopping worker", "worker_id", id)
				return
			}
			p.process(ctx, job, id)
			p.queue.Done(job.ID)
			jobsInflight.Set(float64(p.queue.Len()))
		}
	}
}

// process claims the job, runs its body and records the outcome.
func (p *WorkerPool) process(ctx context.Context, job *Job, workerID int) {
	log := p.logger.With(
		"job_id", job.ID,
		"kind", job.Kind,
		"worker_id", workerID,
	)
	// State writes must land even if shutdown starts while the body runs.
	storeCtx := logger.WithLogger(context.WithoutCancel(ctx), log)

	startedAt := p.now()
	claimed, err := p.store.Claim(storeCtx, job.ID, startedAt)
	if err != nil {
		log.Error("failed to claim job", "error", err)
		return
	}
	if !claimed {
		log.Debug("job already claimed or finished, skipping")
		return
	}
	p.transition(storeCtx, job, StateProcessing, nil, "")
	log.Info("processing job")

	body, ok := p.registry.lookup(job.Kind)
	if !ok {
		p.fail(storeCtx, log, job, fmt.Errorf("%w: %s", ErrUnknownKind, job.Kind), startedAt)
		return
	}

	bodyCtx := WithJobInfo(logger.WithLogger(ctx, log), JobInfo{
		ID:      job.ID,
		Kind:    job.Kind,
		OwnerID: job.OwnerID,
	})
	result, err := p.execute(bodyCtx, body, job.Payload)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			// Interrupted by shutdown: the job stays PROCESSING, as after a crash.
			log.Warn("job interrupted by shutdown, leaving it in PROCESSING", "error", err)
			return
		}
		p.fail(storeCtx, log, job, err, startedAt)
		return
	}

	if err := p.store.Complete(storeCtx, job.ID, result, p.now()); err != nil {
		log.Error("failed to record job success", "error", err)
		return
	}
	jobDuration.WithLabelValues(job.Kind, string(StateSuccess)).Observe(time.Since(startedAt).Seconds())
	log.Info("job completed successfully")
	p.transition(storeCtx, job, StateSuccess, result, "")
}

// execute runs the body, converting a panic into an error.
func (p *WorkerPool) execute(ctx context.Context, body Body, payload json.RawMessage) (result json.RawMessage, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.FromContext(ctx).Error("job body panicked",
				"panic", r,
				"stack", string(debug.Stack()))
			err = fmt.Errorf("job body panicked: %v", r)
		}
	}()
	return body.Execute(ctx, payload)
}

func (p *WorkerPool) fail(ctx context.Context, log *slog.Logger, job *Job, cause error, startedAt time.Time) {
	msg := cause.Error()
	if msg == "" {
		msg = "job failed without an error message"
	}

	log.Error("job execution failed", "error", cause)
	if err := p.store.Fail(ctx, job.ID, msg, p.now()); err != nil {
		log.Error("failed to record job failure", "error", err)
		return
	}
	jobDuration.WithLabelValues(job.Kind, string(StateFailure)).Observe(time.Since(startedAt).Seconds())
	p.transition(ctx, job, StateFailure, nil, msg)
}

// transition counts the state change and notifies listeners.
func (p *WorkerPool) transition(ctx context.Context, job *Job, state State, result json.RawMessage, errMsg string) {
	jobTransitionsTotal.WithLabelValues(job.Kind, string(state)).Inc()

	event := events.NewJobEvent(job.ID, job.Kind, job.OwnerID, string(state))
	event.Result = result
	event.Error = errMsg
	if err := p.emitter.EmitEvent(ctx, event); err != nil {
		logger.FromContext(ctx).Warn("failed to emit job event",
			"state", state,
			"error", err)
	}
}
