package pricing

import "github.com/Simplici0/devis/internal/numeric"

// Component is a bought-in part priced per unit.
type Component struct {
	ID          string         `json:"id"`
	Reference   string         `json:"reference"`
	Designation string         `json:"designation"`
	Supplier    string         `json:"supplier"`
	UnitPrice   numeric.Amount `json:"unitPrice"`
	Quantity    numeric.Count  `json:"quantity"`
}

// Cost returns unit price × quantity.
func (c Component) Cost() float64 {
	return numeric.Finite(c.UnitPrice.Float64() * float64(c.Quantity))
}

// RawMaterial is a material priced per kilogram.
type RawMaterial struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Supplier   string         `json:"supplier"`
	PricePerKg numeric.Amount `json:"pricePerKg"`
	KgQuantity numeric.Amount `json:"kgQuantity"`
}

// Cost returns price per kg × kilograms.
func (m RawMaterial) Cost() float64 {
	return numeric.Finite(m.PricePerKg.Float64() * m.KgQuantity.Float64())
}

// ProductionStep is a labour or machine operation billed by the hour.
type ProductionStep struct {
	ID            string         `json:"id"`
	Operation     string         `json:"operation"`
	DurationHours numeric.Amount `json:"durationHours"`
	HourlyRate    numeric.Amount `json:"hourlyRate"`
}

// Cost returns hours × hourly rate.
func (s ProductionStep) Cost() float64 {
	return numeric.Finite(s.DurationHours.Float64() * s.HourlyRate.Float64())
}

// MarginSpec is the user's pricing intent for a quote.
type MarginSpec struct {
	TargetMarginPct  numeric.Amount `json:"targetMarginPct"`
	DesiredSalePrice numeric.Amount `json:"desiredSalePrice"`
}
