package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"machrent/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const headerRequestID = "X-Request-ID"

// RequestLogger logs one structured line per request and recovers from
// panics. A request id is taken from the incoming header or generated.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(headerRequestID, requestID)

		defer func() {
			if recovered := recover(); recovered != nil {
				log.Error().
					Str("request_id", requestID).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Interface("panic", recovered).
					Bytes("stack", debug.Stack()).
					Msg("request panic")
				response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
				c.Abort()
				return
			}

			ev := log.Info()
			if c.Writer.Status() >= http.StatusInternalServerError {
				ev = log.Error()
			}
			ev.
				Str("request_id", requestID).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Str("query", c.Request.URL.RawQuery).
				Str("client_ip", c.ClientIP()).
				Int("status", c.Writer.Status()).
				Int64("user_id", c.GetInt64(ctxUserID)).
				Str("role", c.GetString(ctxRole)).
				Dur("latency", time.Since(start)).
				Msg("request")
		}()

		c.Next()
	}
}
