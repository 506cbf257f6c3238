// Package context carries request-scoped correlation values.
package context

import (
	"context"
	"strings"
)

// Correlation keys shared by request logs and spans.
const (
	CostModelKey    = "cost_model_id"
	MeasuredWorkKey = "measured_work_id"
)

type requestIDKey struct{}

type entityKey struct{}

// Entity names the cost model or measured work a request addresses.
type Entity struct {
	Key string
	ID  string
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	requestID, _ := ctx.Value(requestIDKey{}).(string)
	return requestID
}

func WithEntity(ctx context.Context, entity Entity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, entityKey{}, entity)
}

func EntityFromContext(ctx context.Context) (Entity, bool) {
	if ctx == nil {
		return Entity{}, false
	}
	entity, ok := ctx.Value(entityKey{}).(Entity)
	return entity, ok
}

// ResolveEntity maps a matched route to the entity it operates on. Model
// routes and their sub-resources resolve the :id param to a cost model,
// measured work routes to a measured work, and the measured work listing
// to the cost model given by its costModelId filter.
func ResolveEntity(route string, param, query func(string) string) (Entity, bool) {
	var entity Entity
	switch {
	case strings.HasPrefix(route, "/api/models/:id"):
		entity = Entity{Key: CostModelKey, ID: param("id")}
	case strings.HasPrefix(route, "/api/measured-works/:id"):
		entity = Entity{Key: MeasuredWorkKey, ID: param("id")}
	case route == "/api/measured-works" && query != nil:
		entity = Entity{Key: CostModelKey, ID: query("costModelId")}
	default:
		return Entity{}, false
	}
	entity.ID = strings.TrimSpace(entity.ID)
	return entity, entity.ID != ""
}
