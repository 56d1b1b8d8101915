package scaling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/devis/internal/pricing"
)

func fixedIDs() *IDGenerator {
	return &IDGenerator{now: func() time.Time { return time.UnixMilli(1700000000000) }}
}

func TestScale_LinearFromUnitBase(t *testing.T) {
	tmpl := &Template{
		BaseQuantity: 1,
		Components:   []UnitComponent{{Reference: "VIS-M8", UnitPrice: 0.12, Quantity: 10}},
		Materials:    []UnitMaterial{{Type: "Acier S235", PricePerKg: 1.20, KgQuantity: 250}},
		Steps:        []UnitStep{{Operation: "Assemblage", DurationHours: 0.25, HourlyRate: 45}},
	}

	scaled, ok := Scale(tmpl, 500, fixedIDs())
	require.True(t, ok)

	require.Len(t, scaled.Components, 1)
	assert.Equal(t, 5000, scaled.Components[0].Quantity.Int())
	assert.Equal(t, "VIS-M8", scaled.Components[0].Reference)

	require.Len(t, scaled.Materials, 1)
	assert.Equal(t, 125000.0, scaled.Materials[0].KgQuantity.Float64())
	assert.InDelta(t, 150000.0, pricing.TotalMaterials(scaled.Materials), 1e-9)

	require.Len(t, scaled.Steps, 1)
	assert.Equal(t, 125.0, scaled.Steps[0].DurationHours.Float64())
}

func TestScale_ComponentQuantityTenToFifty(t *testing.T) {
	tmpl := &Template{BaseQuantity: 1, Components: []UnitComponent{{Quantity: 10}}}

	scaled, ok := Scale(tmpl, 50, nil)
	require.True(t, ok)
	assert.Equal(t, 500, scaled.Components[0].Quantity.Int())
}

func TestScale_RoundsCountsAndMasses(t *testing.T) {
	tmpl := &Template{
		BaseQuantity: 3,
		Components:   []UnitComponent{{Quantity: 10}},
		Materials:    []UnitMaterial{{KgQuantity: 10}},
		Steps:        []UnitStep{{DurationHours: 1}},
	}

	scaled, ok := Scale(tmpl, 2, nil)
	require.True(t, ok)

	assert.Equal(t, 7, scaled.Components[0].Quantity.Int())
	assert.Equal(t, 6.67, scaled.Materials[0].KgQuantity.Float64())
	assert.Equal(t, 0.67, scaled.Steps[0].DurationHours.Float64())
}

func TestScale_UndefinedBaseYieldsEmptyCollections(t *testing.T) {
	tmpl := &Template{
		BaseQuantity: 0,
		Components:   []UnitComponent{{Quantity: 10}},
	}

	scaled, ok := Scale(tmpl, 50, nil)
	assert.False(t, ok)
	assert.Empty(t, scaled.Components)
	assert.Empty(t, scaled.Materials)
	assert.Empty(t, scaled.Steps)
	assert.NotNil(t, scaled.Components)
}

func TestScale_NewProductDiscardsCollections(t *testing.T) {
	scaled, ok := Scale(nil, 100, nil)
	assert.False(t, ok)
	assert.Empty(t, scaled.Components)
	assert.Empty(t, scaled.Materials)
	assert.Empty(t, scaled.Steps)
}

func TestScale_IdentifiersAreUnique(t *testing.T) {
	tmpl := &Template{
		BaseQuantity: 1,
		Components:   make([]UnitComponent, 20),
		Materials:    make([]UnitMaterial, 20),
		Steps:        make([]UnitStep, 20),
	}
	ids := fixedIDs()

	first, ok := Scale(tmpl, 5, ids)
	require.True(t, ok)
	second, ok := Scale(tmpl, 6, ids)
	require.True(t, ok)

	seen := map[string]bool{}
	for _, s := range []Scaled{first, second} {
		for _, c := range s.Components {
			assert.False(t, seen[c.ID], c.ID)
			seen[c.ID] = true
		}
		for _, m := range s.Materials {
			assert.False(t, seen[m.ID], m.ID)
			seen[m.ID] = true
		}
		for _, st := range s.Steps {
			assert.False(t, seen[st.ID], st.ID)
			seen[st.ID] = true
		}
	}
	assert.Len(t, seen, 120)
	assert.Equal(t, "comp-1700000000000-1", first.Components[0].ID)
}

func TestFromQuote_NormalisesToUnitBase(t *testing.T) {
	tmpl := FromQuote(500,
		[]pricing.Component{{ID: "c1", Reference: "VIS-M8", UnitPrice: 0.12, Quantity: 2000}},
		[]pricing.RawMaterial{{ID: "m1", Type: "Acier S235", PricePerKg: 1.2, KgQuantity: 250}},
		[]pricing.ProductionStep{{ID: "s1", Operation: "Usinage CNC", DurationHours: 24, HourlyRate: 85}},
	)

	assert.Equal(t, 1.0, tmpl.BaseQuantity.Float64())
	assert.Equal(t, 4.0, tmpl.Components[0].Quantity.Float64())
	assert.Equal(t, 0.5, tmpl.Materials[0].KgQuantity.Float64())
	assert.Equal(t, 0.048, tmpl.Steps[0].DurationHours.Float64())

	scaled, ok := Scale(&tmpl, 500, nil)
	require.True(t, ok)
	assert.Equal(t, 2000, scaled.Components[0].Quantity.Int())
	assert.Equal(t, 250.0, scaled.Materials[0].KgQuantity.Float64())
	assert.Equal(t, 24.0, scaled.Steps[0].DurationHours.Float64())
}

func TestFromQuote_ZeroQuantityTreatedAsOne(t *testing.T) {
	tmpl := FromQuote(0, []pricing.Component{{Quantity: 7}}, nil, nil)
	assert.Equal(t, 7.0, tmpl.Components[0].Quantity.Float64())
	assert.Empty(t, tmpl.Materials)
}
