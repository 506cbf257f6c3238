// Package seed populates the store with a sample priced cost model.
package seed

import (
	"context"

	"github.com/wajidashraf/CostModelAppTraining/internal/costmodel/domain"
)

const (
	sampleProjectName = "Riverside Office Block"
	sampleProjectRef  = "RIV-001"
	sampleClient      = "Riverside Developments Ltd"
	samplePreparedBy  = "Cost Planning Team"
	sampleGIFA        = 2400.0
)

var sampleWorks = []domain.MeasuredWork{
	{
		ElementCode: "11",
		ElementName: "In-situ concrete works",
		Description: "Reinforced concrete frame and slabs",
		Quantity:    450,
		Unit:        domain.UnitCubicMetre,
		UnitRate:    150,
	},
	{
		ElementCode: "15",
		ElementName: "Structural metalwork",
		Description: "Structural steel frame",
		Quantity:    250,
		Unit:        domain.UnitTonne,
		UnitRate:    170,
	},
}

// Seed creates the sample model and its priced works, then recalculates the
// model total so it reflects the works.
func Seed(ctx context.Context, repo domain.Repository) domain.ModelDetail {
	gifa := sampleGIFA
	model, works := repo.CreateModelWithWorks(ctx, domain.CostModel{
		ProjectName: sampleProjectName,
		ProjectRef:  sampleProjectRef,
		Client:      sampleClient,
		GIFA:        &gifa,
		Status:      domain.StatusDraft,
		PreparedBy:  samplePreparedBy,
	}, sampleWorks)

	if recalculated, ok := repo.RecalculateModelTotalCost(ctx, model.ID); ok {
		model = recalculated
	}
	return domain.ModelDetail{Model: model, Works: works, WorksCount: len(works)}
}
