package task

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// dispatchQueue is the buffered hand-off between producers (Enqueue, the
// pending sweeper) and workers. It remembers which jobs are queued or running
// so the sweeper does not push the same job twice.
type dispatchQueue struct {
	jobs     chan *Job
	logger   *slog.Logger
	mu       sync.Mutex
	inflight map[uuid.UUID]struct{}
	closed   bool
}

func newDispatchQueue(size int, logger *slog.Logger) *dispatchQueue {
	if size <= 0 {
		size = 1
	}
	return &dispatchQueue{
		jobs:     make(chan *Job, size),
		logger:   logger,
		inflight: make(map[uuid.UUID]struct{}),
	}
}

// TryPush hands the job to the workers without blocking.
// It returns ErrQueueFull when the buffer is full and ErrQueueClosed after close.
// A job that is already queued or running is silently skipped.
func (q *dispatchQueue) TryPush(job *Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	if _, ok := q.inflight[job.ID]; ok {
		return nil
	}

	select {
	case q.jobs <- job:
		q.inflight[job.ID] = struct{}{}
		q.logger.Debug("job dispatched",
			"job_id", job.ID,
			"kind", job.Kind,
			"queue_len", len(q.jobs),
			"queue_cap", cap(q.jobs))
		return nil
	default:
		return fmt.Errorf("%w: capacity %d reached", ErrQueueFull, cap(q.jobs))
	}
}

// Done releases the job so it may be dispatched again.
func (q *dispatchQueue) Done(id uuid.UUID) {
	q.mu.Lock()
	delete(q.inflight, id)
	q.mu.Unlock()
}

// Len reports how many jobs are queued or running.
func (q *dispatchQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.inflight)
}

// Close stops further pushes and closes the channel so idle workers return.
func (q *dispatchQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
		q.logger.Info("job queue closed")
	}
}

// C returns the channel workers consume from.
func (q *dispatchQueue) C() <-chan *Job {
	return q.jobs
}
