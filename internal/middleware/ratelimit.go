package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/technosupport/ts-alert-relay/internal/ratelimit"
)

// IngestRateLimit bounds event ingest per source IP. Redis being down fails
// open: dropping alerts is worse than letting a burst through.
func IngestRateLimit(limiter *ratelimit.Limiter, cfg ratelimit.LimitConfig, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := strings.Split(r.RemoteAddr, ":")[0]
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				ip = strings.TrimSpace(strings.Split(xff, ",")[0])
			}

			decision, err := limiter.Check(r.Context(), ip, cfg)
			if err != nil {
				if errors.Is(err, ratelimit.ErrRedisUnavailable) {
					logger.Warn().Str("ip", ip).Msg("rate limit check unavailable, failing open")
				} else {
					logger.Error().Err(err).Msg("rate limit check failed, failing open")
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			if !decision.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(decision.RetryAfter))
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
