// Package ratelimit counts requests per client key against a fixed budget.
// A Redis-backed limiter shares counts between server instances; the
// in-process limiter serves single-instance deployments and tests.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// RetryAfter is how long the caller should wait before the next request
	// is admitted. Zero when Allowed.
	RetryAfter time.Duration
}

// Limiter admits or rejects one request for key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}
