package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(router *gin.Engine, remoteAddr string) int {
	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(NewRateLimiter(RateLimitConfig{Limit: 3, Window: time.Second}))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(router, "10.0.0.1:1234"), "Request %d should succeed", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, serve(router, "10.0.0.1:1234"), "4th request should be rate limited")

	time.Sleep(time.Second + 100*time.Millisecond)
	assert.Equal(t, http.StatusOK, serve(router, "10.0.0.1:1234"), "Request after window should succeed")
}

func TestRateLimiterDifferentClients(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(NewRateLimiter(RateLimitConfig{Limit: 2, Window: time.Minute}))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(router, "10.0.0.1:1"))
	assert.Equal(t, http.StatusOK, serve(router, "10.0.0.1:1"))
	assert.Equal(t, http.StatusTooManyRequests, serve(router, "10.0.0.1:1"))

	assert.Equal(t, http.StatusOK, serve(router, "10.0.0.2:1"), "other clients have their own bucket")
}

func TestRedisRateLimitFallsBackWithoutRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RedisRateLimitMiddleware("test", RateLimitConfig{Limit: 1, Window: time.Minute}))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(router, "10.0.0.3:1"))
	assert.Equal(t, http.StatusTooManyRequests, serve(router, "10.0.0.3:1"))
}
