package tracing

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

var allowedAttributeKeys = map[attribute.Key]struct{}{
	"http.method":      {},
	"http.route":       {},
	"http.status_code": {},
	"request_id":       {},
	"cost_model_id":    {},
	"measured_work_id": {},
	"error_type":       {},
	"error_code":       {},
}

// SafeAttributes drops attributes that could carry request payload data.
func SafeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedAttributeKeys[attr.Key]; ok {
			out = append(out, attr)
		}
	}
	return out
}

// SafeError reduces err to the message of its innermost cause.
func SafeError(err error) error {
	if err == nil {
		return nil
	}
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return errors.New(err.Error())
		}
		err = next
	}
}

// ExtractContext reads propagated trace headers into ctx.
func ExtractContext(ctx context.Context, carrier propagation.TextMapCarrier) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}
