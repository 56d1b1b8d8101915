// Package transport holds the shipping tariff table and the resolver that
// picks the cheapest tariff covering a shipment.
package transport

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
)

// Mode labels as they appear in the tariff table.
const (
	ModeRoad = "Routier"
	ModeRail = "Ferroviaire"
	ModeAir  = "Aérien"
)

var modeAliases = map[string]string{
	"road":   ModeRoad,
	"rail":   ModeRail,
	"air":    ModeAir,
	"aerien": ModeAir,
}

// NormalizeMode maps the English enum names (Road, Rail, Air) onto the table
// labels. Any other input is returned trimmed, unchanged.
func NormalizeMode(mode string) string {
	mode = strings.TrimSpace(mode)
	if label, ok := modeAliases[strings.ToLower(mode)]; ok {
		return label
	}
	return mode
}

// Tariff is one scoped shipping rate. DistanceMaxKm nil means unbounded.
// WeightMaxT is informational: the resolver does not filter on it.
type Tariff struct {
	Mode          string   `json:"mode"`
	Carrier       string   `json:"carrier"`
	DistanceBand  string   `json:"distanceBand"`
	DistanceMinKm float64  `json:"distanceMinKm"`
	DistanceMaxKm *float64 `json:"distanceMaxKm"`
	WeightMaxT    float64  `json:"weightMaxT"`
	VolumeMaxM3   float64  `json:"volumeMaxM3"`
	BillingUnit   string   `json:"billingUnit"`
	UnitRate      float64  `json:"unitRate"`
	Note          string   `json:"note"`
}

func (t Tariff) clone() Tariff {
	if t.DistanceMaxKm != nil {
		limit := *t.DistanceMaxKm
		t.DistanceMaxKm = &limit
	}
	return t
}

func (t Tariff) maxDistance() float64 {
	if t.DistanceMaxKm == nil {
		return math.Inf(1)
	}
	return *t.DistanceMaxKm
}

func (t Tariff) covers(distanceKm, volumeM3 float64) bool {
	return distanceKm >= t.DistanceMinKm && distanceKm <= t.maxDistance() && volumeM3 <= t.VolumeMaxM3
}

// Table is an immutable, ordered list of tariffs.
type Table struct {
	tariffs []Tariff
}

//go:embed tariffs.json
var defaultTariffs []byte

// DefaultTable returns the built-in tariff grid.
func DefaultTable() *Table {
	t, err := parseTable(defaultTariffs)
	if err != nil {
		panic(fmt.Sprintf("embedded tariff table: %v", err))
	}
	return t
}

// LoadTable reads a JSON tariff table from path. An empty path yields the
// built-in table.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tariff table: %w", err)
	}
	return parseTable(data)
}

func parseTable(data []byte) (*Table, error) {
	var tariffs []Tariff
	if err := json.Unmarshal(data, &tariffs); err != nil {
		return nil, fmt.Errorf("decode tariff table: %w", err)
	}
	return NewTable(tariffs)
}

// NewTable validates and copies tariffs into a Table. Table order is kept:
// it decides between tariffs of equal rate.
func NewTable(tariffs []Tariff) (*Table, error) {
	out := make([]Tariff, 0, len(tariffs))
	for i, t := range tariffs {
		t.Mode = strings.TrimSpace(t.Mode)
		if t.Mode == "" {
			return nil, fmt.Errorf("tariff %d: mode is required", i)
		}
		if t.UnitRate < 0 || t.VolumeMaxM3 < 0 || t.DistanceMinKm < 0 {
			return nil, fmt.Errorf("tariff %d (%s): negative rate or limit", i, t.Carrier)
		}
		if t.DistanceMaxKm != nil && *t.DistanceMaxKm < t.DistanceMinKm {
			return nil, fmt.Errorf("tariff %d (%s): distance band %v–%v is inverted", i, t.Carrier, t.DistanceMinKm, *t.DistanceMaxKm)
		}
		out = append(out, t.clone())
	}
	return &Table{tariffs: out}, nil
}

// Tariffs returns a copy of the table in table order.
func (t *Table) Tariffs() []Tariff {
	out := make([]Tariff, len(t.tariffs))
	for i, tariff := range t.tariffs {
		out[i] = tariff.clone()
	}
	return out
}

// Len returns the number of tariffs.
func (t *Table) Len() int { return len(t.tariffs) }
