// Package scaling rescales per-unit product templates to a production
// quantity and derives templates from finished quotes.
package scaling

import (
	"github.com/Simplici0/devis/internal/numeric"
	"github.com/Simplici0/devis/internal/pricing"
)

// UnitComponent is a component quantity for BaseQuantity units of product.
// Quantity may be fractional once normalised.
type UnitComponent struct {
	Reference   string         `json:"reference"`
	Designation string         `json:"designation"`
	Supplier    string         `json:"supplier"`
	UnitPrice   numeric.Amount `json:"unitPrice"`
	Quantity    numeric.Amount `json:"quantity"`
}

// UnitMaterial is a raw material mass for BaseQuantity units of product.
type UnitMaterial struct {
	Type       string         `json:"type"`
	Supplier   string         `json:"supplier"`
	PricePerKg numeric.Amount `json:"pricePerKg"`
	KgQuantity numeric.Amount `json:"kgQuantity"`
}

// UnitStep is a production duration for BaseQuantity units of product.
type UnitStep struct {
	Operation     string         `json:"operation"`
	DurationHours numeric.Amount `json:"durationHours"`
	HourlyRate    numeric.Amount `json:"hourlyRate"`
}

// Template is a reusable bill of materials recorded for BaseQuantity units.
type Template struct {
	BaseQuantity numeric.Amount  `json:"baseQuantity"`
	Components   []UnitComponent `json:"components"`
	Materials    []UnitMaterial  `json:"materials"`
	Steps        []UnitStep      `json:"steps"`
}

// FromQuote normalises quote line items to a per-unit template (base
// quantity 1). A quantity below 1 is treated as 1.
func FromQuote(quantity int, components []pricing.Component, materials []pricing.RawMaterial, steps []pricing.ProductionStep) Template {
	q := float64(max(1, quantity))

	tmpl := Template{
		BaseQuantity: 1,
		Components:   make([]UnitComponent, 0, len(components)),
		Materials:    make([]UnitMaterial, 0, len(materials)),
		Steps:        make([]UnitStep, 0, len(steps)),
	}
	for _, c := range components {
		tmpl.Components = append(tmpl.Components, UnitComponent{
			Reference:   c.Reference,
			Designation: c.Designation,
			Supplier:    c.Supplier,
			UnitPrice:   c.UnitPrice,
			Quantity:    numeric.Amount(float64(c.Quantity) / q),
		})
	}
	for _, m := range materials {
		tmpl.Materials = append(tmpl.Materials, UnitMaterial{
			Type:       m.Type,
			Supplier:   m.Supplier,
			PricePerKg: m.PricePerKg,
			KgQuantity: numeric.Amount(m.KgQuantity.Float64() / q),
		})
	}
	for _, s := range steps {
		tmpl.Steps = append(tmpl.Steps, UnitStep{
			Operation:     s.Operation,
			DurationHours: numeric.Amount(s.DurationHours.Float64() / q),
			HourlyRate:    s.HourlyRate,
		})
	}
	return tmpl
}
