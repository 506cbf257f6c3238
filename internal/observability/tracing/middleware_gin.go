package tracing

import (
	"net/http"

	"github.com/gin-gonic/gin"
	obscontext "github.com/wajidashraf/CostModelAppTraining/internal/observability/context"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/wajidashraf/CostModelAppTraining/http"

// MiddlewareConfig controls request spans.
type MiddlewareConfig struct {
	// Provider defaults to the global tracer provider.
	Provider trace.TracerProvider
	// Classify turns a handler error into an error type and code.
	Classify func(err error) (errType, code string)
}

// GinMiddleware opens one server span per matched route. The span carries
// the route, status and the cost model or measured work being addressed;
// handler errors are tagged with their classified code and only 5xx
// responses mark the span as failed.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	provider := cfg.Provider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	tracer := provider.Tracer(instrumentationName)

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		attrs := []attribute.KeyValue{
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
		}
		if id := obscontext.RequestIDFromContext(ctx); id != "" {
			attrs = append(attrs, attribute.String("request_id", id))
		}
		if entity, ok := obscontext.ResolveEntity(c.FullPath(), c.Param, c.Query); ok {
			attrs = append(attrs, attribute.String(entity.Key, entity.ID))
		}

		ctx, span := tracer.Start(ctx, c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(SafeAttributes(attrs...)...),
		)
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if lastErr := c.Errors.Last(); lastErr != nil {
			if cfg.Classify != nil {
				errType, code := cfg.Classify(lastErr.Err)
				span.SetAttributes(SafeAttributes(
					attribute.String("error_type", errType),
					attribute.String("error_code", code),
				)...)
			}
			if status >= http.StatusInternalServerError {
				span.RecordError(SafeError(lastErr.Err))
			}
		}
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
