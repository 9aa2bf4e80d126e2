package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"expensetracker/src/app/http/response"
)

// Recovery turns a panic in a later handler into the standard 500 envelope
// and logs the stack. Install it first so it wraps everything else.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				requestID := GetRequestID(c)
				log.Error("panic recovered",
					"request_id", requestID,
					"error", err,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
					"stack", string(debug.Stack()),
				)

				response.InternalError(c, requestID)
				c.Abort()
			}
		}()

		c.Next()
	}
}

