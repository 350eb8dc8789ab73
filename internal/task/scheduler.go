package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Enqueuer is the part of Runner the Scheduler depends on.
type Enqueuer interface {
	Enqueue(ctx context.Context, kind string, ownerID uuid.UUID, payload json.RawMessage) (uuid.UUID, error)
}

type scheduleEntry struct {
	kind     string
	payload  json.RawMessage
	interval time.Duration
}

// Scheduler enqueues recurring jobs. Each entry fires at start+interval,
// start+2*interval and so on: the cadence is anchored to the scheduled time,
// not to when the previous run finished, and a failed enqueue does not shift it.
type Scheduler struct {
	enqueuer Enqueuer
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	entries []scheduleEntry
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewScheduler creates a Scheduler that submits jobs through enqueuer.
func NewScheduler(enqueuer Enqueuer, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		enqueuer: enqueuer,
		logger:   logger.With("component", "scheduler"),
		now:      time.Now,
	}
}

// Schedule registers a recurring job. It must be called before Start.
func (s *Scheduler) Schedule(kind string, payload json.RawMessage, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("schedule %q: interval must be positive, got %s", kind, interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("scheduler already started")
	}
	s.entries = append(s.entries, scheduleEntry{kind: kind, payload: payload, interval: interval})
	return nil
}

// Start runs one goroutine per entry until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	anchor := s.now()
	for _, e := range s.entries {
		s.logger.Info("scheduled recurring job",
			"kind", e.kind,
			"interval", e.interval,
			"first_run", anchor.Add(e.interval))
		s.wg.Add(1)
		go s.run(ctx, e, anchor)
	}
}

// Stop cancels all entries and waits for in-flight firings.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context, e scheduleEntry, anchor time.Time) {
	defer s.wg.Done()

	next := anchor.Add(e.interval)
	for {
		timer := time.NewTimer(next.Sub(s.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		s.fire(ctx, e, next)
		next = nextFire(next, e.interval, s.now())
	}
}

func (s *Scheduler) fire(ctx context.Context, e scheduleEntry, scheduledAt time.Time) {
	id, err := s.enqueuer.Enqueue(ctx, e.kind, uuid.Nil, e.payload)
	if err != nil {
		scheduledFiresTotal.WithLabelValues(e.kind, "error").Inc()
		s.logger.Error("scheduled job enqueue failed",
			"kind", e.kind,
			"scheduled_at", scheduledAt,
			"error", err)
		return
	}
	scheduledFiresTotal.WithLabelValues(e.kind, "enqueued").Inc()
	s.logger.Info("scheduled job enqueued",
		"kind", e.kind,
		"job_id", id,
		"scheduled_at", scheduledAt)
}

// nextFire returns the first slot prev+k*interval (k >= 1) that is after now.
// Slots missed while a firing overran are skipped so the phase is preserved.
func nextFire(prev time.Time, interval time.Duration, now time.Time) time.Time {
	next := prev.Add(interval)
	if next.After(now) {
		return next
	}
	missed := now.Sub(prev) / interval
	return prev.Add((missed + 1) * interval)
}
