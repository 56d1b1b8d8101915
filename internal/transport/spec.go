package transport

import (
	"errors"
	"strings"

	"github.com/Simplici0/devis/internal/numeric"
)

// Carrier is the tariff metadata attached to a spec after a successful resolution.
type Carrier struct {
	Name      string  `json:"name"`
	CostPerKm float64 `json:"costPerKm"`
}

// Spec is the transport section of a quote.
type Spec struct {
	Mode       string         `json:"mode"`
	DistanceKm numeric.Amount `json:"distanceKm"`
	VolumeM3   numeric.Amount `json:"volumeM3"`
	Cost       numeric.Amount `json:"cost"`
	Carrier    *Carrier       `json:"carrier,omitempty"`
}

// WithParams returns s with new shipment parameters. Carrier metadata is
// dropped whenever mode, distance or volume change; the cost is kept until
// the next resolution or manual edit.
func (s Spec) WithParams(mode string, distanceKm, volumeM3 float64) Spec {
	next := s
	next.Mode = mode
	next.DistanceKm = numeric.Amount(numeric.Finite(distanceKm))
	next.VolumeM3 = numeric.Amount(numeric.Finite(volumeM3))
	if !next.SameShipment(s) {
		next.Carrier = nil
	}
	return next
}

// SameShipment reports whether s and o share mode, distance and volume.
// Mode aliases ("Road", "routier") compare equal.
func (s Spec) SameShipment(o Spec) bool {
	return strings.EqualFold(NormalizeMode(s.Mode), NormalizeMode(o.Mode)) &&
		s.DistanceKm.Float64() == o.DistanceKm.Float64() &&
		s.VolumeM3.Float64() == o.VolumeM3.Float64()
}

// WithResolution returns s priced by r.
func (s Spec) WithResolution(r Resolution) Spec {
	s.Cost = numeric.Amount(r.Cost)
	s.Carrier = &Carrier{Name: r.CarrierName, CostPerKm: r.CostPerKm}
	return s
}

// WithManualCost returns s with a user-entered cost and no carrier metadata.
func (s Spec) WithManualCost(cost float64) Spec {
	s.Cost = numeric.Amount(numeric.Finite(cost))
	s.Carrier = nil
	return s
}

// ResolveSpec prices s against the table. On ErrNoTariffMatch the returned
// spec keeps its cost, loses any carrier metadata, and the error is returned
// so the caller can surface "cannot calculate" distinctly.
func (t *Table) ResolveSpec(s Spec) (Spec, error) {
	res, err := t.Resolve(s.Mode, s.DistanceKm.Float64(), s.VolumeM3.Float64())
	if err != nil {
		if errors.Is(err, ErrNoTariffMatch) {
			s.Carrier = nil
		}
		return s, err
	}
	return s.WithResolution(res), nil
}

// Covers reports whether the carrier attached to s has a tariff of s's mode
// covering its distance and volume. A spec without carrier is covered.
func (t *Table) Covers(s Spec) bool {
	if s.Carrier == nil {
		return true
	}
	mode := NormalizeMode(s.Mode)
	for _, tariff := range t.tariffs {
		if strings.EqualFold(tariff.Mode, mode) && tariff.Carrier == s.Carrier.Name &&
			tariff.covers(s.DistanceKm.Float64(), s.VolumeM3.Float64()) {
			return true
		}
	}
	return false
}
