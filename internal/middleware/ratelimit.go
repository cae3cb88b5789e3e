package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/bynikesh/findmyai-sub001/internal/metrics"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Window duration
	Window time.Duration
	// KeyFunc picks the bucket; defaults to client IP
	KeyFunc func(c *gin.Context) string
}

// DefaultRateLimitConfig covers public catalog reads
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{Limit: 120, Window: time.Minute}
}

// AuthRateLimitConfig is stricter for login and register
func AuthRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{Limit: 10, Window: time.Minute}
}

// WriteRateLimitConfig covers public writes: submissions, reviews, clicks
func WriteRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{Limit: 30, Window: time.Minute}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per key
type RateLimiter struct {
	config   RateLimitConfig
	mu       sync.Mutex
	visitors map[string]*visitor
}

func newRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	return &RateLimiter{config: config, visitors: make(map[string]*visitor)}
}

// Allow reports whether key may make another request now
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	v, ok := rl.visitors[key]
	if !ok {
		every := rl.config.Window / time.Duration(rl.config.Limit)
		v = &visitor{limiter: rate.NewLimiter(rate.Every(every), rl.config.Limit)}
		rl.visitors[key] = v
	}
	v.lastSeen = now

	// idle buckets are full again, so dropping them changes nothing
	for k, other := range rl.visitors {
		if now.Sub(other.lastSeen) > 3*rl.config.Window {
			delete(rl.visitors, k)
		}
	}

	return v.limiter.AllowN(now, 1)
}

// NewRateLimiter returns an in-process token bucket middleware
func NewRateLimiter(config RateLimitConfig) gin.HandlerFunc {
	rl := newRateLimiter(config)
	return func(c *gin.Context) {
		if !rl.Allow(rl.config.KeyFunc(c)) {
			rejectRateLimited(c, rl.config)
			return
		}
		c.Next()
	}
}

func rejectRateLimited(c *gin.Context, config RateLimitConfig) {
	metrics.RecordRateLimitExceeded(c.FullPath(), c.Request.Method)
	retryAfter := int(config.Window.Seconds()/float64(config.Limit)) + 1
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"code":        "RATE_LIMITED",
		"message":     "rate limit exceeded",
		"retry_after": retryAfter,
	})
}
