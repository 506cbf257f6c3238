package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// MaxAmount is the largest monetary value a line or model total may hold.
const MaxAmount = 1e13

// Round2 rounds v to two decimal places, half away from zero. Non-finite
// values are returned unchanged.
func Round2(v float64) float64 {
	if !IsFinite(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// LineTotal is the cost of a measured work: quantity x unit rate.
func LineTotal(quantity, unitRate float64) float64 {
	if !IsFinite(quantity) || !IsFinite(unitRate) {
		return math.Inf(1)
	}
	return decimal.NewFromFloat(quantity).
		Mul(decimal.NewFromFloat(unitRate)).
		Round(2).
		InexactFloat64()
}

// AmountInRange reports whether v is a storable monetary total.
func AmountInRange(v float64) bool {
	return IsFinite(v) && v >= 0 && v <= MaxAmount
}

// ModelTotal sums the line totals of works. Totals outside the storable
// range are skipped.
func ModelTotal(works []MeasuredWork) float64 {
	sum := decimal.Zero
	for _, w := range works {
		if !AmountInRange(w.TotalCost) {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(w.TotalCost))
	}
	return sum.Round(2).InexactFloat64()
}

func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
