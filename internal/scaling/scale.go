package scaling

import (
	"github.com/Simplici0/devis/internal/numeric"
	"github.com/Simplici0/devis/internal/pricing"
)

// Scaled holds quote line items derived from a template.
type Scaled struct {
	Components []pricing.Component      `json:"components"`
	Materials  []pricing.RawMaterial    `json:"materials"`
	Steps      []pricing.ProductionStep `json:"steps"`
}

func empty() Scaled {
	return Scaled{
		Components: []pricing.Component{},
		Materials:  []pricing.RawMaterial{},
		Steps:      []pricing.ProductionStep{},
	}
}

// Scale multiplies every template quantity by target / BaseQuantity.
// Component counts are rounded to integers, kilograms and hours to 2
// decimals, and each item gets a fresh identifier from ids.
//
// A nil template (new product) or a template without a positive base
// quantity cannot be scaled: the result is empty collections and ok is false.
func Scale(tmpl *Template, target float64, ids *IDGenerator) (Scaled, bool) {
	if tmpl == nil {
		return empty(), false
	}
	base := tmpl.BaseQuantity.Float64()
	if base <= 0 {
		return empty(), false
	}
	if ids == nil {
		ids = NewIDGenerator()
	}

	ratio := numeric.NonNegative(target) / base
	out := Scaled{
		Components: make([]pricing.Component, 0, len(tmpl.Components)),
		Materials:  make([]pricing.RawMaterial, 0, len(tmpl.Materials)),
		Steps:      make([]pricing.ProductionStep, 0, len(tmpl.Steps)),
	}

	for _, c := range tmpl.Components {
		out.Components = append(out.Components, pricing.Component{
			ID:          ids.Next("comp"),
			Reference:   c.Reference,
			Designation: c.Designation,
			Supplier:    c.Supplier,
			UnitPrice:   c.UnitPrice,
			Quantity:    numeric.Count(numeric.RoundInt(c.Quantity.Float64() * ratio)),
		})
	}
	for _, m := range tmpl.Materials {
		out.Materials = append(out.Materials, pricing.RawMaterial{
			ID:         ids.Next("mat"),
			Type:       m.Type,
			Supplier:   m.Supplier,
			PricePerKg: m.PricePerKg,
			KgQuantity: numeric.Amount(numeric.Round2(m.KgQuantity.Float64() * ratio)),
		})
	}
	for _, s := range tmpl.Steps {
		out.Steps = append(out.Steps, pricing.ProductionStep{
			ID:            ids.Next("step"),
			Operation:     s.Operation,
			DurationHours: numeric.Amount(numeric.Round2(s.DurationHours.Float64() * ratio)),
			HourlyRate:    s.HourlyRate,
		})
	}
	return out, true
}
