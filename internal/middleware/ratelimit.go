package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/autogestion/autogestion-backend/internal/config"
	"github.com/autogestion/autogestion-backend/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Counter increments a key that expires after ttl and returns the new value.
type Counter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// RedisCounter keeps rate limit counters in Redis so every replica shares them.
type RedisCounter struct {
	rdb *redis.Client
}

// NewRedisCounter creates a Counter backed by Redis.
func NewRedisCounter(rdb *redis.Client) *RedisCounter {
	return &RedisCounter{rdb: rdb}
}

func (r *RedisCounter) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := r.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// MemoryCounter is an in-process Counter for single-instance setups and tests.
type MemoryCounter struct {
	mu      sync.Mutex
	counts  map[string]int64
	expires map[string]time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{counts: map[string]int64{}, expires: map[string]time.Time{}}
}

func (m *MemoryCounter) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for k, exp := range m.expires {
		if now.After(exp) {
			delete(m.counts, k)
			delete(m.expires, k)
		}
	}
	if _, ok := m.expires[key]; !ok {
		m.expires[key] = now.Add(ttl)
	}
	m.counts[key]++
	return m.counts[key], nil
}

// RateLimiter allows limit requests per client IP in each fixed window.
type RateLimiter struct {
	counter Counter
	scope   string
	limit   int
	window  time.Duration
	log     zerolog.Logger
	now     func() time.Time
}

// NewRateLimiter creates a RateLimiter (e.g., 10 requests per minute). scope
// separates the counters of different route groups.
func NewRateLimiter(counter Counter, scope string, limit int, window time.Duration, log zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		counter: counter,
		scope:   scope,
		limit:   limit,
		window:  window,
		log:     log.With().Str("component", "rate_limiter").Str("scope", scope).Logger(),
		now:     time.Now,
	}
}

// Middleware returns a Gin middleware that rate-limits requests by IP.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		now := rl.now()
		window := now.UnixNano() / int64(rl.window)
		key := config.CacheKey.RateLimitKey(rl.scope, c.ClientIP(), window)

		n, err := rl.counter.Incr(c.Request.Context(), key, rl.window)
		if err != nil {
			// Fail open.
			rl.log.Warn().Err(err).Msg("Rate limit counter unavailable")
			c.Next()
			return
		}

		if n > int64(rl.limit) {
			resetAt := time.Unix(0, (window+1)*int64(rl.window))
			secs := int(resetAt.Sub(now).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(secs))
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}

		c.Next()
	}
}
