package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrRedisUnavailable  = errors.New("redis unavailable")
)

// Decision is the outcome of a single rate-limit check.
type Decision struct {
	Limit      int
	Remaining  int
	RetryAfter int // seconds
	Allowed    bool
}

// LimitConfig is one counting window. The window starts at the first request
// and resets when the key expires.
type LimitConfig struct {
	Rate   int
	Window time.Duration
}

// Limiter bounds inbound event traffic per source, counted in Redis so the
// limit holds across replicas.
type Limiter struct {
	client *redis.Client
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

// incrScript bumps the counter and arms the expiry on first touch, atomically.
var incrScript = redis.NewScript(`
	local current = redis.call("INCR", KEYS[1])
	if tonumber(current) == 1 then
		redis.call("PEXPIRE", KEYS[1], ARGV[1])
	end
	return current
`)

// Check counts one request against the window for source. A Redis failure
// comes back as ErrRedisUnavailable so callers can decide to fail open.
func (l *Limiter) Check(ctx context.Context, source string, config LimitConfig) (*Decision, error) {
	key := fmt.Sprintf("ingest_rl:%s", source)

	count, err := incrScript.Run(ctx, l.client, []string{key}, config.Window.Milliseconds()).Int()
	if err != nil {
		return nil, ErrRedisUnavailable
	}

	remaining := config.Rate - count
	if remaining < 0 {
		remaining = 0
	}

	return &Decision{
		Limit:      config.Rate,
		Remaining:  remaining,
		RetryAfter: int(config.Window.Seconds()),
		Allowed:    count <= config.Rate,
	}, nil
}
