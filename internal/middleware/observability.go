package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mentorexpress/mentorexpress-web/pkg/logger"
	"github.com/mentorexpress/mentorexpress-web/pkg/metrics"
	"go.uber.org/zap"
)

// sensitiveQueryParams are redacted from logs. Prefill parameters carry personal data.
var sensitiveQueryParams = map[string]bool{
	"token": true, "secret": true, "key": true,
	"email": true, "name": true, "needs": true,
}

// ObservabilityMiddleware records request metrics and writes the access log
func ObservabilityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		// Route is not known until after routing
		metrics.ActiveRequests.WithLabelValues(method).Inc()
		defer metrics.ActiveRequests.WithLabelValues(method).Dec()

		c.Next()

		// Route template keeps label cardinality bounded, e.g.
		// "/resultados/seleccionar/:mentorId" rather than the concrete id
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		duration := metrics.MeasureDuration(start)
		status := c.Writer.Status()
		statusStr := strconv.Itoa(status)

		metrics.HTTPRequestDuration.WithLabelValues(method, path, statusStr).Observe(duration)
		metrics.HTTPRequestTotal.WithLabelValues(method, path, statusStr).Inc()

		fields := []zap.Field{
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.Int("response_size", c.Writer.Size()),
		}
		if needsContext(c, status) {
			fields = append(fields, requestContext(c)...)
		}

		logger.LogHTTPRequest(method, c.Request.URL.Path, status, duration, fields...)
	}
}

// needsContext is true for error responses and for redirects back to the form
func needsContext(c *gin.Context, status int) bool {
	if status >= http.StatusBadRequest {
		return true
	}
	return status == http.StatusSeeOther && c.Writer.Header().Get("Location") == "/"
}

// requestContext returns route params, redacted query params and attached errors
func requestContext(c *gin.Context) []zap.Field {
	var fields []zap.Field

	if len(c.Params) > 0 {
		params := make(map[string]string, len(c.Params))
		for _, p := range c.Params {
			params[p.Key] = p.Value
		}
		fields = append(fields, zap.Any("route_params", params))
	}

	sanitized := make(map[string]string)
	for k, v := range c.Request.URL.Query() {
		if !sensitiveQueryParams[strings.ToLower(k)] && len(v) > 0 {
			sanitized[k] = v[0]
		}
	}
	if len(sanitized) > 0 {
		fields = append(fields, zap.Any("query_params", sanitized))
	}

	if len(c.Errors) > 0 {
		fields = append(fields, zap.String("error", c.Errors.String()))
	}
	return fields
}
