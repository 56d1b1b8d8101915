// Package quote holds the quote aggregate and the service that prices,
// stores and validates quotes.
package quote

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Simplici0/devis/internal/numeric"
	"github.com/Simplici0/devis/internal/pricing"
	"github.com/Simplici0/devis/internal/transport"
)

// ErrNotFound is returned by repositories for unknown quotes.
var ErrNotFound = errors.New("quote: not found")

// Status is the workflow state of a quote.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusValidated Status = "validated"
	StatusRejected  Status = "rejected"
)

// ParseStatus returns the status named by s, case-insensitively.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusDraft, StatusPending, StatusValidated, StatusRejected:
		return st, true
	default:
		return "", false
	}
}

// ClientSnapshot is the client as it was when the quote was saved.
type ClientSnapshot struct {
	ID        string `json:"id,omitempty"`
	Reference string `json:"reference,omitempty"`
	Name      string `json:"name"`
	Address   string `json:"address,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Product is the product being quoted.
type Product struct {
	Reference   string        `json:"reference"`
	Designation string        `json:"designation"`
	Quantity    numeric.Count `json:"quantity"`
	Variants    string        `json:"variants,omitempty"`
}

// Draft is the editable part of a quote.
type Draft struct {
	Status     Status                   `json:"status,omitempty"`
	CreatedBy  string                   `json:"createdBy,omitempty"`
	Client     ClientSnapshot           `json:"client"`
	Product    Product                  `json:"product"`
	Components []pricing.Component      `json:"components"`
	Materials  []pricing.RawMaterial    `json:"materials"`
	Steps      []pricing.ProductionStep `json:"steps"`
	Transport  transport.Spec           `json:"transport"`
	Margin     pricing.MarginSpec       `json:"margin"`
	Notes      string                   `json:"notes,omitempty"`
}

// Input returns the pricing input described by the draft.
func (d Draft) Input() pricing.Input {
	return pricing.Input{
		Components:    d.Components,
		Materials:     d.Materials,
		Steps:         d.Steps,
		TransportCost: d.Transport.Cost.Float64(),
		Margin:        d.Margin,
	}
}

// Quote is a saved quote: a draft plus identity and the figures computed
// when it was last saved.
type Quote struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
	Draft
	CostOfGoods       float64   `json:"costOfGoods"`
	SalePrice         float64   `json:"salePrice"`
	RealizedMarginPct float64   `json:"realizedMarginPct"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Recompute refreshes the computed figures from the line items and returns
// the full pricing result.
func (q *Quote) Recompute() pricing.Result {
	res := pricing.Calculate(q.Input())
	q.CostOfGoods = res.Totals.CostOfGoods
	q.SalePrice = res.Totals.SalePrice
	q.RealizedMarginPct = res.Totals.RealizedMarginPct
	return res
}

// Filter narrows a quote listing. Zero fields match everything.
type Filter struct {
	Search          string
	Status          Status
	ClientReference string
}

// Repository persists quotes. Stored figures are returned as saved.
type Repository interface {
	Create(ctx context.Context, q Quote) error
	Update(ctx context.Context, q Quote) error
	Get(ctx context.Context, id string) (Quote, error)
	List(ctx context.Context, f Filter) ([]Quote, error)
	// References returns every reference starting with prefix.
	References(ctx context.Context, prefix string) ([]string, error)
}
