package logger

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	obscontext "github.com/wajidashraf/CostModelAppTraining/internal/observability/context"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const RequestIDHeader = "X-Request-Id"

// MiddlewareConfig controls request logging.
type MiddlewareConfig struct {
	Logger *zap.Logger
	// QuietRoutes are logged at debug level only.
	QuietRoutes []string
	// Classify turns a handler error into an error type and code.
	Classify func(err error) (errType, code string)
}

// GinMiddleware assigns the request id, records the cost model or measured
// work the route addresses, and writes one http_request line per request.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	quiet := make(map[string]struct{}, len(cfg.QuietRoutes))
	for _, route := range cfg.QuietRoutes {
		quiet[route] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		route := c.FullPath()

		ctx := obscontext.WithRequestID(c.Request.Context(), requestID(c))
		if entity, ok := obscontext.ResolveEntity(route, c.Param, c.Query); ok {
			ctx = obscontext.WithEntity(ctx, entity)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if cfg.Logger == nil {
			return
		}
		status := c.Writer.Status()
		if route == "" {
			route = "unmatched"
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.Int("bytes_out", max(c.Writer.Size(), 0)),
		}
		if lastErr := c.Errors.Last(); lastErr != nil && cfg.Classify != nil {
			errType, code := cfg.Classify(lastErr.Err)
			fields = append(fields, zap.String("error_type", errType), zap.String("error_code", code))
		}

		level := levelFor(status)
		if _, ok := quiet[route]; ok {
			level = zapcore.DebugLevel
		}
		if ce := WithContext(c.Request.Context(), cfg.Logger).Check(level, "http_request"); ce != nil {
			ce.Write(fields...)
		}
	}
}

func requestID(c *gin.Context) string {
	id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
	if id == "" {
		id = uuid.NewString()
	}
	c.Header(RequestIDHeader, id)
	return id
}

func levelFor(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
