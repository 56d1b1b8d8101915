package pricing

import "github.com/Simplici0/devis/internal/numeric"

// TotalComponents returns Σ unitPrice × quantity. An empty list totals 0.
func TotalComponents(items []Component) float64 {
	var sum float64
	for _, c := range items {
		sum += c.Cost()
	}
	return numeric.Finite(sum)
}

// TotalMaterials returns Σ pricePerKg × kgQuantity.
func TotalMaterials(items []RawMaterial) float64 {
	var sum float64
	for _, m := range items {
		sum += m.Cost()
	}
	return numeric.Finite(sum)
}

// TotalProduction returns Σ durationHours × hourlyRate.
func TotalProduction(items []ProductionStep) float64 {
	var sum float64
	for _, s := range items {
		sum += s.Cost()
	}
	return numeric.Finite(sum)
}
