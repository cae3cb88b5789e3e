package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/bynikesh/findmyai-sub001/internal/cache"
	"github.com/bynikesh/findmyai-sub001/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RedisRateLimitMiddleware enforces a fixed-window limit shared by every API
// instance. Without Redis, or when Redis errors, it falls back to the
// in-process token bucket so a cache outage does not open the API up.
func RedisRateLimitMiddleware(name string, config RateLimitConfig) gin.HandlerFunc {
	local := newRateLimiter(config)

	return func(c *gin.Context) {
		key := local.config.KeyFunc(c)

		redisClient := cache.GetRedisClient()
		if redisClient == nil {
			if !local.Allow(key) {
				rejectRateLimited(c, config)
				return
			}
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
		defer cancel()

		count, err := redisClient.IncrWindow(ctx, fmt.Sprintf("rate_limit:%s:%s", name, key), config.Window)
		if err != nil {
			logger.Log.Warn("Redis rate limit check failed, using local limiter",
				logger.WithIP(key),
				zap.Error(err),
			)
			if !local.Allow(key) {
				rejectRateLimited(c, config)
				return
			}
			c.Next()
			return
		}

		if count > int64(config.Limit) {
			logger.Log.Warn("Rate limit exceeded",
				logger.WithIP(key),
				zap.String("limiter", name),
				zap.Int64("count", count),
			)
			rejectRateLimited(c, config)
			return
		}
		c.Next()
	}
}

// RateLimitPublic is the default limiter for catalog reads
func RateLimitPublic() gin.HandlerFunc {
	return RedisRateLimitMiddleware("public", DefaultRateLimitConfig())
}

func RateLimitAuth() gin.HandlerFunc {
	return RedisRateLimitMiddleware("auth", AuthRateLimitConfig())
}

func RateLimitWrites() gin.HandlerFunc {
	return RedisRateLimitMiddleware("writes", WriteRateLimitConfig())
}
