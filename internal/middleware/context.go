package middleware

import (
	"time"

	ctxutil "github.com/MaksymY11/mates-backend/pkg/context"
	"github.com/MaksymY11/mates-backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// RequestContext decorates every request with correlation metadata, applies
// the request timeout and logs request start and completion.
func RequestContext(module string, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.NewContext(c.Request.Context(), c.Request, module, c.Request.URL.Path)

		ctx, cancel := ctxutil.WithTimeout(ctx, timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", ctxutil.GetRequestID(ctx))

		logger.DebugWithContext(ctx, "Request started").
			String("method", c.Request.Method).
			String("path", c.Request.URL.Path).
			Log()

		c.Next()

		logger.InfoWithContext(ctx, "Request completed").
			String("method", c.Request.Method).
			String("path", c.Request.URL.Path).
			Int("status_code", c.Writer.Status()).
			Int("response_size", c.Writer.Size()).
			Duration(ctxutil.GetDuration(ctx)).
			Log()
	}
}
