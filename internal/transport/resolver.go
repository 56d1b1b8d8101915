package transport

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Simplici0/devis/internal/numeric"
)

// ErrNoTariffMatch reports that no tariff covers a shipment. It is an
// expected outcome, distinct from a zero-cost resolution.
var ErrNoTariffMatch = errors.New("no tariff matches the shipment")

// NoMatchError details a failed resolution. It matches ErrNoTariffMatch with errors.Is.
type NoMatchError struct {
	Mode        string
	DistanceKm  float64
	VolumeM3    float64
	UnknownMode bool
}

func (e *NoMatchError) Error() string {
	if e.UnknownMode {
		return fmt.Sprintf("no tariff for transport mode %q", e.Mode)
	}
	return fmt.Sprintf("no %s tariff covers %.2f km and %.2f m³", e.Mode, e.DistanceKm, e.VolumeM3)
}

// Is reports whether target is ErrNoTariffMatch.
func (e *NoMatchError) Is(target error) bool { return target == ErrNoTariffMatch }

// Resolution is the selected tariff and the resulting transport cost.
type Resolution struct {
	Cost        float64 `json:"cost"`
	CarrierName string  `json:"carrierName"`
	CostPerKm   float64 `json:"costPerKm"`
	Tariff      Tariff  `json:"tariff"`
}

// Resolve selects the cheapest tariff of the given mode whose distance band
// contains distanceKm and whose volume ceiling accepts volumeM3, and prices
// the shipment at distanceKm × unit rate, rounded to cents. Weight ceilings
// are not checked. Among equal rates the first tariff in table order wins.
// There is no fallback: when nothing covers the shipment the error wraps
// ErrNoTariffMatch.
func (t *Table) Resolve(mode string, distanceKm, volumeM3 float64) (Resolution, error) {
	mode = NormalizeMode(mode)

	best := -1
	modeMatched := false
	for i, tariff := range t.tariffs {
		if !strings.EqualFold(tariff.Mode, mode) {
			continue
		}
		modeMatched = true
		if !tariff.covers(distanceKm, volumeM3) {
			continue
		}
		if best < 0 || tariff.UnitRate < t.tariffs[best].UnitRate {
			best = i
		}
	}

	if best < 0 {
		return Resolution{}, &NoMatchError{
			Mode:        mode,
			DistanceKm:  distanceKm,
			VolumeM3:    volumeM3,
			UnknownMode: !modeMatched,
		}
	}

	selected := t.tariffs[best].clone()
	return Resolution{
		Cost:        numeric.Round2(distanceKm * selected.UnitRate),
		CarrierName: selected.Carrier,
		CostPerKm:   selected.UnitRate,
		Tariff:      selected,
	}, nil
}
