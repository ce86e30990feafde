package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"user-auth-service/internal/config"
	"user-auth-service/pkg/logger"
)

// Token bucket implemented in Lua for atomicity. Bucket state is a
// hash of {last_refill, tokens}; refill is proportional to elapsed
// time and capped at the burst capacity.
const tokenBucketScript = `
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local requested = tonumber(ARGV[4])

	local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
	local last_refill = tonumber(bucket[1]) or now
	local tokens = tonumber(bucket[2]) or capacity

	local elapsed = math.max(0, now - last_refill)
	tokens = math.min(capacity, tokens + elapsed * rate)

	if tokens >= requested then
		tokens = tokens - requested
		redis.call('HMSET', key, 'last_refill', now, 'tokens', tokens)
		redis.call('EXPIRE', key, 60)
		return 1
	end

	redis.call('HMSET', key, 'last_refill', now, 'tokens', tokens)
	redis.call('EXPIRE', key, 60)
	return 0
`

// RateLimiter throttles requests per client IP and route using a Redis
// token bucket. Redis failures let the request through, the limiter
// protects the service but must never take it down.
type RateLimiter struct {
	client *redis.Client
	cfg    config.RateLimitConfig
	log    *zap.Logger
}

// NewRateLimiter creates a rate limiter with the given bucket
// parameters.
func NewRateLimiter(client *redis.Client, cfg config.RateLimitConfig, log *zap.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		cfg:    cfg,
		log:    log,
	}
}

// Handler returns the gin middleware enforcing the limit.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.cfg.Enabled || rl.client == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := fmt.Sprintf("ratelimit:tb:%s:%s:%s", c.Request.Method, c.Request.URL.Path, c.ClientIP())

		// The Redis server clock keeps buckets consistent across
		// app instances.
		now, err := rl.client.Time(ctx).Result()
		if err != nil {
			logger.WithContext(ctx, rl.log).Warn("rate limiter clock unavailable, allowing request", zap.Error(err))
			c.Next()
			return
		}

		allowed, err := rl.client.Eval(ctx, tokenBucketScript, []string{key},
			rl.cfg.RequestsPerSecond,
			rl.cfg.BurstCapacity,
			now.Unix(),
			1,
		).Int64()
		if err != nil {
			logger.WithContext(ctx, rl.log).Warn("rate limiter redis error, allowing request",
				zap.String("client_ip", c.ClientIP()),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if allowed == 0 {
			logger.WithContext(ctx, rl.log).Warn("rate limit exceeded",
				zap.String("client_ip", c.ClientIP()),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": fmt.Sprintf("Rate limit exceeded: %.2f requests/second (burst capacity: %d)", rl.cfg.RequestsPerSecond, rl.cfg.BurstCapacity),
			})
			return
		}

		c.Next()
	}
}
