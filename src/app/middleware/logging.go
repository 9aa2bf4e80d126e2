package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"expensetracker/src/infra/logger"
)

// maxLoggedBody caps how much of a request or response body goes into the access log.
const maxLoggedBody = 2048

// Logging emits one structured line per request. The level follows the
// status class: 5xx at error, 4xx at warn, everything else at info.
// Bodies are only captured when debug logging is enabled.
func Logging(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		withBodies := log.Enabled(c.Request.Context(), slog.LevelDebug)

		var reqBody []byte
		var rec *responseCapture
		if withBodies {
			if c.Request.Body != nil {
				reqBody, _ = io.ReadAll(c.Request.Body)
				c.Request.Body = io.NopCloser(bytes.NewReader(reqBody))
			}
			rec = &responseCapture{ResponseWriter: c.Writer}
			c.Writer = rec
		}

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if query != "" {
			attrs = append(attrs, "query", query)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}
		if withBodies {
			attrs = append(attrs,
				"request", truncate(reqBody),
				"response", truncate(rec.body.Bytes()),
			)
		}

		reqLog := logger.WithRequestID(log, GetRequestID(c))
		switch {
		case status >= 500:
			reqLog.Error("request completed", attrs...)
		case status >= 400:
			reqLog.Warn("request completed", attrs...)
		default:
			reqLog.Info("request completed", attrs...)
		}
	}
}

// responseCapture captures response body while delegating to original writer.
type responseCapture struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (r *responseCapture) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseCapture) WriteString(s string) (int, error) {
	r.body.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}

func truncate(b []byte) string {
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody]) + "..."
	}
	return string(b)
}
