package middleware

import (
	"fmt"
	"net/http"
	"time"

	"user-crud-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// KindRateLimited is the error kind reported with a 429.
const KindRateLimited = "rate_limited"

// RateLimiterConfig holds configuration for the rate limiter.
type RateLimiterConfig struct {
	RequestsPerSecond float64
	BurstCapacity     int
	Enabled           bool
}

// Token bucket per key, stored as a hash {last_refill, tokens}.
// Returns 1 when a token was taken, 0 otherwise.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
local last_refill = tonumber(bucket[1]) or now
local tokens = tonumber(bucket[2]) or capacity

local elapsed = math.max(0, now - last_refill)
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
end

redis.call('HSET', key, 'last_refill', now, 'tokens', tokens)
redis.call('EXPIRE', key, ttl)
return allowed
`)

// RateLimiter limits requests per client IP and route using Redis.
type RateLimiter struct {
	client *redis.Client
	config RateLimiterConfig
	log    *zap.Logger
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(client *redis.Client, config RateLimiterConfig, log *zap.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
		log:    log,
		now:    time.Now,
	}
}

// Middleware returns the gin handler enforcing the limit. A nil limiter,
// a disabled one or one without a client lets every request through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || !rl.config.Enabled || rl.client == nil {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		key := fmt.Sprintf("ratelimit:tb:%s:%s:%s", c.Request.Method, route, clientIP)

		allowed, err := rl.allow(c, key)
		if err != nil {
			// fail open
			logger.WithContext(c.Request.Context(), rl.log).Warn("rate limiter redis error, allowing request",
				zap.String("client_ip", clientIP),
				zap.String("key", key),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !allowed {
			logger.WithContext(c.Request.Context(), rl.log).Warn("rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.String("key", key),
				zap.Float64("limit", rl.config.RequestsPerSecond),
			)
			detail := fmt.Sprintf("rate limit exceeded: %.2f requests/second (burst capacity: %d)",
				rl.config.RequestsPerSecond, rl.config.BurstCapacity)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "Too many requests",
				"error":   gin.H{"kind": KindRateLimited, "message": detail},
			})
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) allow(c *gin.Context, key string) (bool, error) {
	now := float64(rl.now().UnixMilli()) / 1000
	ttl := rl.bucketTTL()

	res, err := tokenBucket.Run(c.Request.Context(), rl.client, []string{key},
		rl.config.RequestsPerSecond,
		rl.config.BurstCapacity,
		now,
		ttl,
	).Int64()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

// bucketTTL is long enough for an empty bucket to refill completely.
func (rl *RateLimiter) bucketTTL() int {
	if rl.config.RequestsPerSecond <= 0 {
		return 60
	}
	ttl := int(float64(rl.config.BurstCapacity)/rl.config.RequestsPerSecond) + 1
	if ttl < 60 {
		ttl = 60
	}
	return ttl
}
