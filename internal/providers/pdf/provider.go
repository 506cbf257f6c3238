package pdf

import (
	"context"
	"io"
	"time"

	"github.com/wajidashraf/CostModelAppTraining/internal/costmodel/domain"
	"go.uber.org/fx"
)

// Provider renders documents for download.
type Provider interface {
	GenerateCostReport(ctx context.Context, data CostReportData) (io.Reader, error)
}

// CostReportData is the input of a cost model report.
type CostReportData struct {
	Model       domain.CostModel
	Works       []domain.MeasuredWork
	GeneratedAt time.Time
}

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)
