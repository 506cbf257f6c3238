package domain

import (
	"context"
	"errors"

	"github.com/wajidashraf/CostModelAppTraining/internal/nrm2"
)

type Service interface {
	ListModels(ctx context.Context) ([]CostModel, error)
	GetModel(ctx context.Context, id string) (*ModelDetail, error)
	CreateModel(ctx context.Context, req CreateModelRequest) (*ModelDetail, error)
	CalculateModel(ctx context.Context, id string) (*CalculationResult, error)
	DeleteModel(ctx context.Context, id string) error

	ListWorks(ctx context.Context, req ListWorksRequest) ([]MeasuredWork, error)
	GetWork(ctx context.Context, id string) (*MeasuredWork, error)
	UpdateWork(ctx context.Context, id string, patch WorkPatch) (*MeasuredWork, error)
	DeleteWork(ctx context.Context, id string) error

	Templates(ctx context.Context) ([]nrm2.Element, error)
	Stats(ctx context.Context) StoreStats
	Clear(ctx context.Context)
	SeedSample(ctx context.Context) *ModelDetail
}

type CreateModelRequest struct {
	ProjectName string
	ProjectRef  string
	Client      string
	GIFA        *float64
	Status      Status
	PreparedBy  string
}

type ListWorksRequest struct {
	CostModelID string
}

// ModelDetail is a cost model together with its measured works.
type ModelDetail struct {
	Model      CostModel      `json:"model"`
	Works      []MeasuredWork `json:"works"`
	WorksCount int            `json:"worksCount"`
}

type CalculationResult struct {
	Model     CostModel `json:"model"`
	TotalCost float64   `json:"totalCost"`
}

var (
	ErrModelNotFound      = errors.New("model_not_found")
	ErrWorkNotFound       = errors.New("work_not_found")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidProjectName = errors.New("invalid_project_name")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrInvalidGIFA        = errors.New("invalid_gifa")
	ErrEmptyUpdate        = errors.New("invalid_update")
	ErrInvalidQuantity    = errors.New("invalid_quantity")
	ErrInvalidUnitRate    = errors.New("invalid_unit_rate")
	ErrInvalidUnit        = errors.New("invalid_unit")
	ErrInvalidElementCode = errors.New("invalid_element_code")
	ErrInvalidElementName = errors.New("invalid_element_name")
	ErrInvalidDescription = errors.New("invalid_description")
	ErrInvalidNotes       = errors.New("invalid_notes")
	ErrTotalOutOfRange    = errors.New("total_out_of_range")
)
