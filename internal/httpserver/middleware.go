package httpserver

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tinytelemetry/fleetlens/internal/logging"
	"github.com/tinytelemetry/fleetlens/internal/metrics"
)

const (
	apiKeyHeader    = "X-API-Key"
	apiKeyQuery     = "apiKey"
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// requestID tags each request with an id, reusing the caller's when given.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// requestLogger logs and measures every finished request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)
		status := c.Writer.Status()

		metrics.RecordRequest(c.Request.Method, c.FullPath(), status, elapsed)

		ev := logging.Debug()
		if status >= http.StatusInternalServerError {
			ev = logging.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", elapsed).
			Str(requestIDKey, c.GetString(requestIDKey)).
			Msg("request")
	}
}

// requireAPIKey rejects requests without the configured key. An empty key
// lets everything through.
func requireAPIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		got := c.GetHeader(apiKeyHeader)
		if got == "" {
			got = c.Query(apiKeyQuery)
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			metrics.Unauthorized.Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
