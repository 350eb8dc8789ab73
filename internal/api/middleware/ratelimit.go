package middleware

import (
	"net"
	"net/http"
	"strconv"

	"github.com/Script-GH/Ai-tutor/internal/api/shared"
	"github.com/Script-GH/Ai-tutor/internal/platform/logger"
	"github.com/Script-GH/Ai-tutor/internal/platform/ratelimit"
)

// RateLimit rejects requests from a client address once limiter's budget
// for bucket is spent. It expects chi's RealIP middleware to have run.
// Limiter failures let the request through.
func RateLimit(limiter ratelimit.Limiter, bucket string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := bucket + ":" + clientIP(r)

			decision, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.FromContext(r.Context()).Warn("rate limiter unavailable, allowing request",
					"error", err,
					"bucket", bucket)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

			if !decision.Allowed {
				rateLimitedTotal.WithLabelValues(bucket).Inc()
				w.Header().Set("Retry-After", decision.RetryAfterSeconds())
				shared.RespondWithErrorAndLog(w, r, http.StatusTooManyRequests,
					"Rate limit exceeded", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
