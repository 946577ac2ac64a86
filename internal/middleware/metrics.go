package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alifdwt/lms-bff-api/internal/service"
)

// Metrics records per-request counters and latency. Unmatched routes share
// one label so probe scans cannot blow up the path cardinality, and the
// metrics endpoint never observes itself.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
