package middleware

import (
	"strconv"
	"time"

	"github.com/bynikesh/findmyai-sub001/internal/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware collects HTTP request counts and latency for Prometheus.
// Paths are labelled by route template to keep label cardinality bounded.
func MetricsMiddleware() gin.HandlerFunc {
	m := metrics.Get()

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		// numeric status so queries like status=~"5.." work
		status := strconv.Itoa(c.Writer.Status())

		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
