package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"github.com/wajidashraf/CostModelAppTraining/internal/costmodel/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var money = message.NewPrinter(language.BritishEnglish)

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateCostReport(ctx context.Context, data CostReportData) (io.Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	model := data.Model

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Cost Model", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(28,
		col.New(6).Add(
			text.New("Project: "+model.ProjectName, props.Text{Style: fontstyle.Bold}),
			text.New("Reference: "+orDash(model.ProjectRef), props.Text{Top: 5}),
			text.New("Client: "+orDash(model.Client), props.Text{Top: 10}),
			text.New("Prepared by: "+orDash(model.PreparedBy), props.Text{Top: 15}),
		),
		col.New(6).Add(
			text.New("Status: "+string(model.Status), props.Text{Align: align.Right}),
			text.New("GIFA: "+formatGIFA(model.GIFA), props.Text{Top: 5, Align: align.Right}),
			text.New("Generated: "+data.GeneratedAt.UTC().Format("02 Jan 2006 15:04 MST"), props.Text{Top: 10, Align: align.Right}),
		),
	)

	m.AddRow(10,
		text.NewCol(1, "Code", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(4, "Element / description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Quantity", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(1, "Unit", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Center}),
		text.NewCol(2, "Rate", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(2, line.NewCol(12))

	for _, work := range data.Works {
		m.AddRow(12,
			text.NewCol(1, work.ElementCode, props.Text{Size: 9}),
			col.New(4).Add(
				text.New(work.ElementName, props.Text{Size: 9}),
				text.New(work.Description, props.Text{Size: 7, Top: 4}),
			),
			text.NewCol(2, formatQuantity(work.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(1, string(work.Unit), props.Text{Size: 9, Align: align.Center}),
			text.NewCol(2, formatMoney(work.UnitRate), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, formatMoney(work.TotalCost), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(2, line.NewCol(12))
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total cost", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, formatMoney(model.TotalCost), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	if rate, ok := costPerSquareMetre(model); ok {
		m.AddRow(10,
			col.New(8),
			text.NewCol(2, "Cost / m2 GIFA", props.Text{Size: 9}),
			text.NewCol(2, rate, props.Text{Size: 9, Align: align.Right}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate cost report: %w", err)
	}
	return bytes.NewReader(doc.GetBytes()), nil
}

func costPerSquareMetre(model domain.CostModel) (string, bool) {
	if model.GIFA == nil || *model.GIFA <= 0 {
		return "", false
	}
	rate := decimal.NewFromFloat(model.TotalCost).
		DivRound(decimal.NewFromFloat(*model.GIFA), 2)
	return formatMoney(rate.InexactFloat64()), true
}

func formatMoney(v float64) string {
	return money.Sprintf("%.2f", domain.Round2(v))
}

func formatQuantity(v float64) string {
	return money.Sprintf("%.2f", v)
}

func formatGIFA(v *float64) string {
	if v == nil {
		return "-"
	}
	return money.Sprintf("%.2f m2", *v)
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}
