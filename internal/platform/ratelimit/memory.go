package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryLimiter keeps one token bucket per key in process memory. The bucket
// holds limit tokens and refills at limit per window.
type MemoryLimiter struct {
	mu       sync.Mutex
	limiters map[string]*entry
	limit    int
	window   time.Duration
	now      func() time.Time
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var _ Limiter = (*MemoryLimiter)(nil)

// NewMemoryLimiter allows limit requests per window for each key.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limiters: make(map[string]*entry),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// Allow implements Limiter.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()

	l.mu.Lock()
	e, ok := l.limiters[key]
	if !ok {
		every := l.window / time.Duration(l.limit)
		e = &entry{limiter: rate.NewLimiter(rate.Every(every), l.limit)}
		l.limiters[key] = e
	}
	e.lastSeen = now
	l.mu.Unlock()

	d := Decision{Limit: l.limit}
	r := e.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		d.RetryAfter = delay
		return d, nil
	}

	d.Allowed = true
	if remaining := int(e.limiter.TokensAt(now)); remaining > 0 {
		d.Remaining = remaining
	}
	return d, nil
}

// Sweep drops buckets idle for longer than one window. A dropped key starts
// again with a full bucket, which it would have regained by then anyway.
func (l *MemoryLimiter) Sweep() int {
	cutoff := l.now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for key, e := range l.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(l.limiters, key)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (l *MemoryLimiter) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}
