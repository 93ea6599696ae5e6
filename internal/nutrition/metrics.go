// Package nutrition derives protein density metrics from a dish's macros.
package nutrition

import "github.com/shopspring/decimal"

// Density labels.
const (
	LabelExcellent = "excellent"
	LabelGood      = "good"
	LabelAverage   = "average"
	LabelLow       = "low"
)

var (
	hundred = decimal.NewFromInt(100)

	excellentThreshold = decimal.RequireFromString("12.0")
	goodThreshold      = decimal.RequireFromString("8.0")
	averageThreshold   = decimal.RequireFromString("5.0")
)

// ProteinRatio returns protein grams per 100 calories at full precision.
// It is the sort key for protein_ratio_desc and is zero when calories is zero.
func ProteinRatio(protein decimal.Decimal, calories int) decimal.Decimal {
	if calories == 0 {
		return decimal.Zero
	}
	return protein.Mul(hundred).Div(decimal.NewFromInt(int64(calories)))
}

// ProteinPer100Cal returns the display ratio rounded half-to-even to one decimal.
func ProteinPer100Cal(protein decimal.Decimal, calories int) decimal.Decimal {
	return ProteinRatio(protein, calories).RoundBank(1)
}

// DensityLabel buckets a ratio. The excellent bound is exclusive, the
// good and average bounds are inclusive: 12.0 is "good", not "excellent".
func DensityLabel(ratio decimal.Decimal) string {
	switch {
	case ratio.GreaterThan(excellentThreshold):
		return LabelExcellent
	case ratio.GreaterThanOrEqual(goodThreshold):
		return LabelGood
	case ratio.GreaterThanOrEqual(averageThreshold):
		return LabelAverage
	default:
		return LabelLow
	}
}

// Metrics is the pair of derived values attached to every dish response.
type Metrics struct {
	ProteinPer100Cal decimal.Decimal
	DensityLabel     string
}

// Compute derives the rounded ratio and the label of that rounded ratio.
func Compute(protein decimal.Decimal, calories int) Metrics {
	ratio := ProteinPer100Cal(protein, calories)
	return Metrics{
		ProteinPer100Cal: ratio,
		DensityLabel:     DensityLabel(ratio),
	}
}
