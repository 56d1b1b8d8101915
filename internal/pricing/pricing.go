package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/devis/internal/numeric"
)

// Input groups the line items and pricing parameters of a quote.
type Input struct {
	Components    []Component
	Materials     []RawMaterial
	Steps         []ProductionStep
	TransportCost float64
	Margin        MarginSpec
}

// Breakdown contains the per-category subtotals of the cost of goods.
type Breakdown struct {
	TotalComponents float64 `json:"totalComponents"`
	TotalMaterials  float64 `json:"totalMaterials"`
	TotalProduction float64 `json:"totalProduction"`
	TransportCost   float64 `json:"transportCost"`
}

// Totals contains the roll-up values derived from the breakdown and the margin spec.
type Totals struct {
	CostOfGoods        float64 `json:"costOfGoods"`
	SalePrice          float64 `json:"salePrice"`
	MarginAmount       float64 `json:"marginAmount"`
	RealizedMarginPct  float64 `json:"realizedMarginPct"`
	TargetMarginPct    float64 `json:"targetMarginPct"`
	IsMarginSufficient bool    `json:"isMarginSufficient"`
	RequiredSalePrice  float64 `json:"requiredSalePrice"`
}

// Result groups the full pricing output.
type Result struct {
	Breakdown Breakdown `json:"breakdown"`
	Totals    Totals    `json:"totals"`
}

// Calculate computes the cost of goods and margin figures for a quote.
// It never fails: malformed or degenerate inputs degrade to zero figures.
func Calculate(in Input) Result {
	breakdown := Breakdown{
		TotalComponents: TotalComponents(in.Components),
		TotalMaterials:  TotalMaterials(in.Materials),
		TotalProduction: TotalProduction(in.Steps),
		TransportCost:   numeric.Finite(in.TransportCost),
	}

	costOfGoods := CostOfGoods(breakdown)
	salePrice := in.Margin.DesiredSalePrice.Float64()
	target := in.Margin.TargetMarginPct.Float64()
	realized := RealizedMarginPct(salePrice, costOfGoods)

	margin := 0.0
	if salePrice > 0 {
		margin = salePrice - costOfGoods
	}

	return Result{
		Breakdown: breakdown,
		Totals: Totals{
			CostOfGoods:        costOfGoods,
			SalePrice:          salePrice,
			MarginAmount:       margin,
			RealizedMarginPct:  realized,
			TargetMarginPct:    target,
			IsMarginSufficient: IsMarginSufficient(realized, target),
			RequiredSalePrice:  RequiredSalePrice(costOfGoods, target),
		},
	}
}

// CostOfGoods returns components + materials + production + transport.
func CostOfGoods(b Breakdown) float64 {
	return numeric.Finite(b.TotalComponents + b.TotalMaterials + b.TotalProduction + b.TransportCost)
}

// RealizedMarginPct returns (salePrice − costOfGoods) / salePrice × 100, or 0
// when there is no positive sale price.
func RealizedMarginPct(salePrice, costOfGoods float64) float64 {
	salePrice = numeric.Finite(salePrice)
	if salePrice <= 0 {
		return 0
	}
	return numeric.Finite((salePrice - numeric.Finite(costOfGoods)) / salePrice * 100)
}

// IsMarginSufficient reports whether realized >= target once both are rounded
// to 2 decimal places. The rounding keeps a sale price derived from the target
// (cost / (1 − target/100)) from failing by a floating-point hair.
func IsMarginSufficient(realizedPct, targetPct float64) bool {
	realized := decimal.NewFromFloat(numeric.Finite(realizedPct)).Round(2)
	target := decimal.NewFromFloat(numeric.Finite(targetPct)).Round(2)
	return realized.GreaterThanOrEqual(target)
}

// RequiredSalePrice returns the sale price reaching targetPct on costOfGoods:
// costOfGoods / (1 − targetPct/100). Outside 0 < targetPct < 100, or without
// a positive cost, it returns 0.
func RequiredSalePrice(costOfGoods, targetPct float64) float64 {
	costOfGoods = numeric.Finite(costOfGoods)
	targetPct = numeric.Finite(targetPct)
	if costOfGoods <= 0 || targetPct <= 0 || targetPct >= 100 {
		return 0
	}
	return numeric.Finite(costOfGoods / (1 - targetPct/100))
}
