package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpec_ResolveThenChangeClearsCarrier(t *testing.T) {
	table := DefaultTable()
	spec := Spec{}.WithParams("Routier", 150, 2.5)

	resolved, err := table.ResolveSpec(spec)
	require.NoError(t, err)
	require.NotNil(t, resolved.Carrier)
	assert.Equal(t, "Transports Alpha", resolved.Carrier.Name)
	assert.Equal(t, 180.0, resolved.Cost.Float64())

	same := resolved.WithParams("Routier", 150, 2.5)
	assert.NotNil(t, same.Carrier)

	changed := resolved.WithParams("Routier", 160, 2.5)
	assert.Nil(t, changed.Carrier)
	assert.Equal(t, 180.0, changed.Cost.Float64())

	assert.Nil(t, resolved.WithParams("Aérien", 150, 2.5).Carrier)
	assert.Nil(t, resolved.WithParams("Routier", 150, 3).Carrier)
}

func TestSpec_NoMatchKeepsCostDropsCarrier(t *testing.T) {
	table := DefaultTable()
	spec := Spec{Mode: "Routier", DistanceKm: 150, VolumeM3: 95, Cost: 50, Carrier: &Carrier{Name: "stale"}}

	out, err := table.ResolveSpec(spec)

	assert.ErrorIs(t, err, ErrNoTariffMatch)
	assert.Nil(t, out.Carrier)
	assert.Equal(t, 50.0, out.Cost.Float64())
}

func TestSpec_ManualCost(t *testing.T) {
	spec := Spec{Carrier: &Carrier{Name: "Transports Alpha"}}.WithManualCost(320)
	assert.Nil(t, spec.Carrier)
	assert.Equal(t, 320.0, spec.Cost.Float64())
}

func TestSpec_SameShipmentIgnoresModeAlias(t *testing.T) {
	a := Spec{Mode: "Routier", DistanceKm: 150, VolumeM3: 2.5}
	assert.True(t, a.SameShipment(Spec{Mode: "road", DistanceKm: 150, VolumeM3: 2.5, Cost: 99}))
	assert.False(t, a.SameShipment(Spec{Mode: "Routier", DistanceKm: 700, VolumeM3: 2.5}))
	assert.False(t, a.SameShipment(Spec{Mode: "Ferroviaire", DistanceKm: 150, VolumeM3: 2.5}))
}

func TestTable_Covers(t *testing.T) {
	table := DefaultTable()
	alpha := &Carrier{Name: "Transports Alpha", CostPerKm: 1.2}

	tests := []struct {
		name string
		spec Spec
		want bool
	}{
		{"no carrier", Spec{Mode: "Routier", DistanceKm: 5000}, true},
		{"inside band", Spec{Mode: "Routier", DistanceKm: 150, VolumeM3: 2.5, Carrier: alpha}, true},
		{"alias mode", Spec{Mode: "road", DistanceKm: 150, VolumeM3: 2.5, Carrier: alpha}, true},
		{"distance outside band", Spec{Mode: "Routier", DistanceKm: 700, VolumeM3: 2.5, Carrier: alpha}, false},
		{"volume above ceiling", Spec{Mode: "Routier", DistanceKm: 150, VolumeM3: 95, Carrier: alpha}, false},
		{"other mode", Spec{Mode: "Aérien", DistanceKm: 150, VolumeM3: 2.5, Carrier: alpha}, false},
		{"unknown carrier", Spec{Mode: "Routier", DistanceKm: 150, VolumeM3: 2.5, Carrier: &Carrier{Name: "Ghost"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Covers(tt.spec))
		})
	}
}
