package domain

import "context"

// Repository owns the cost model and measured work collections.
// Lookups report misses with a false flag instead of an error, and every
// returned entity is a copy.
type Repository interface {
	CreateModel(ctx context.Context, model CostModel) CostModel
	CreateModelWithWorks(ctx context.Context, model CostModel, works []MeasuredWork) (CostModel, []MeasuredWork)
	FindModelByID(ctx context.Context, id string) (CostModel, bool)
	ListModels(ctx context.Context) []CostModel
	UpdateModelTotalCost(ctx context.Context, id string, totalCost float64) (CostModel, bool)
	RecalculateModelTotalCost(ctx context.Context, id string) (CostModel, bool)
	DeleteModel(ctx context.Context, id string) bool
	DeleteModelCascade(ctx context.Context, id string) (int, bool)

	CreateWork(ctx context.Context, work MeasuredWork) MeasuredWork
	FindWorkByID(ctx context.Context, id string) (MeasuredWork, bool)
	ListWorks(ctx context.Context) []MeasuredWork
	ListWorksByModelID(ctx context.Context, costModelID string) []MeasuredWork
	UpdateWork(ctx context.Context, id string, patch WorkPatch) (MeasuredWork, bool)
	DeleteWork(ctx context.Context, id string) bool
	DeleteWorksByModelID(ctx context.Context, costModelID string) int

	Clear(ctx context.Context)
	Stats(ctx context.Context) StoreStats
}
