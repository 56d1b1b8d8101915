package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/Simplici0/devis/internal/quote"
)

const quotesTable = "quotes"

var quoteColumns = []string{
	"id", "reference", "status", "created_by",
	"client_json", "product_json",
	"components_json", "materials_json", "steps_json",
	"transport_json", "margin_json",
	"cost_of_goods", "sale_price", "realized_margin_pct",
	"notes", "created_at", "updated_at",
}

// Denormalised from the JSON columns for filtering.
var quoteSearchColumns = []string{"client_reference", "client_name", "product_reference", "product_designation"}

// quoteRecord is the column form of a quote.
type quoteRecord struct {
	ID                string  `db:"id"`
	Reference         string  `db:"reference"`
	Status            string  `db:"status"`
	CreatedBy         string  `db:"created_by"`
	Client            string  `db:"client_json"`
	Product           string  `db:"product_json"`
	Components        string  `db:"components_json"`
	Materials         string  `db:"materials_json"`
	Steps             string  `db:"steps_json"`
	Transport         string  `db:"transport_json"`
	Margin            string  `db:"margin_json"`
	CostOfGoods       float64 `db:"cost_of_goods"`
	SalePrice         float64 `db:"sale_price"`
	RealizedMarginPct float64 `db:"realized_margin_pct"`
	Notes             string  `db:"notes"`
	CreatedAt         string  `db:"created_at"`
	UpdatedAt         string  `db:"updated_at"`
}

func encodeQuote(q quote.Quote) (quoteRecord, error) {
	rec := quoteRecord{
		ID:                q.ID,
		Reference:         q.Reference,
		Status:            string(q.Status),
		CreatedBy:         q.CreatedBy,
		CostOfGoods:       q.CostOfGoods,
		SalePrice:         q.SalePrice,
		RealizedMarginPct: q.RealizedMarginPct,
		Notes:             q.Notes,
		CreatedAt:         FormatTime(q.CreatedAt),
		UpdatedAt:         FormatTime(q.UpdatedAt),
	}
	fields := []struct {
		dst  *string
		v    any
		name string
	}{
		{&rec.Client, q.Client, "client"},
		{&rec.Product, q.Product, "product"},
		{&rec.Components, nonNil(q.Components), "components"},
		{&rec.Materials, nonNil(q.Materials), "materials"},
		{&rec.Steps, nonNil(q.Steps), "steps"},
		{&rec.Transport, q.Transport, "transport"},
		{&rec.Margin, q.Margin, "margin"},
	}
	var err error
	for _, f := range fields {
		if *f.dst, err = encodeJSON(f.v); err != nil {
			return quoteRecord{}, fmt.Errorf("encode %s: %w", f.name, err)
		}
	}
	return rec, nil
}

func (r quoteRecord) toQuote() (quote.Quote, error) {
	q := quote.Quote{
		ID:                r.ID,
		Reference:         r.Reference,
		CostOfGoods:       r.CostOfGoods,
		SalePrice:         r.SalePrice,
		RealizedMarginPct: r.RealizedMarginPct,
	}
	q.Status = quote.Status(r.Status)
	q.CreatedBy = r.CreatedBy
	q.Notes = r.Notes

	fields := []struct {
		src  string
		dst  any
		name string
	}{
		{r.Client, &q.Client, "client"},
		{r.Product, &q.Product, "product"},
		{r.Components, &q.Components, "components"},
		{r.Materials, &q.Materials, "materials"},
		{r.Steps, &q.Steps, "steps"},
		{r.Transport, &q.Transport, "transport"},
		{r.Margin, &q.Margin, "margin"},
	}
	for _, f := range fields {
		if err := decodeJSON(f.src, f.dst); err != nil {
			return quote.Quote{}, fmt.Errorf("decode %s: %w", f.name, err)
		}
	}

	var err error
	if q.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return quote.Quote{}, err
	}
	if q.UpdatedAt, err = parseTime(r.UpdatedAt); err != nil {
		return quote.Quote{}, err
	}
	return q, nil
}

// QuoteRepo implements quote.Repository.
type QuoteRepo struct {
	base
}

// NewQuoteRepo returns a QuoteRepo backed by db.
func NewQuoteRepo(db *sql.DB) *QuoteRepo {
	return &QuoteRepo{base{db: db}}
}

// Create inserts q.
func (r *QuoteRepo) Create(ctx context.Context, q quote.Quote) error {
	rec, err := encodeQuote(q)
	if err != nil {
		return err
	}

	stmt := r.builder().Insert(quotesTable).
		Columns(slices.Concat(quoteColumns, quoteSearchColumns)...).
		Values(
			rec.ID, rec.Reference, rec.Status, rec.CreatedBy,
			rec.Client, rec.Product,
			rec.Components, rec.Materials, rec.Steps,
			rec.Transport, rec.Margin,
			rec.CostOfGoods, rec.SalePrice, rec.RealizedMarginPct,
			rec.Notes, rec.CreatedAt, rec.UpdatedAt,
			q.Client.Reference, q.Client.Name, q.Product.Reference, q.Product.Designation,
		)
	if _, err := r.exec(ctx, stmt); err != nil {
		if isUniqueViolation(err) {
			return quote.ErrDuplicateReference
		}
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

// Update overwrites everything but the id, reference and creation date.
func (r *QuoteRepo) Update(ctx context.Context, q quote.Quote) error {
	rec, err := encodeQuote(q)
	if err != nil {
		return err
	}

	stmt := r.builder().Update(quotesTable).
		SetMap(map[string]any{
			"status":              rec.Status,
			"created_by":          rec.CreatedBy,
			"client_reference":    q.Client.Reference,
			"client_name":         q.Client.Name,
			"client_json":         rec.Client,
			"product_reference":   q.Product.Reference,
			"product_designation": q.Product.Designation,
			"product_json":        rec.Product,
			"components_json":     rec.Components,
			"materials_json":      rec.Materials,
			"steps_json":          rec.Steps,
			"transport_json":      rec.Transport,
			"margin_json":         rec.Margin,
			"cost_of_goods":       rec.CostOfGoods,
			"sale_price":          rec.SalePrice,
			"realized_margin_pct": rec.RealizedMarginPct,
			"notes":               rec.Notes,
			"updated_at":          rec.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": q.ID})
	res, err := r.exec(ctx, stmt)
	if err != nil {
		return fmt.Errorf("update quote: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update quote rows affected: %w", err)
	}
	if n == 0 {
		return quote.ErrNotFound
	}
	return nil
}

// Get returns the quote with the given id.
func (r *QuoteRepo) Get(ctx context.Context, id string) (quote.Quote, error) {
	var rec quoteRecord
	stmt := r.builder().Select(quoteColumns...).From(quotesTable).Where(squirrel.Eq{"id": id})
	found, err := r.get(ctx, &rec, stmt)
	if err != nil {
		return quote.Quote{}, fmt.Errorf("get quote: %w", err)
	}
	if !found {
		return quote.Quote{}, quote.ErrNotFound
	}
	return rec.toQuote()
}

// List returns quotes matching f, newest first. Search matches the quote
// reference, client name, product reference or designation.
func (r *QuoteRepo) List(ctx context.Context, f quote.Filter) ([]quote.Quote, error) {
	stmt := r.builder().Select(quoteColumns...).From(quotesTable).OrderBy("created_at DESC", "reference DESC")

	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		stmt = stmt.Where(squirrel.Or{
			like("reference", pattern),
			like("client_name", pattern),
			like("product_reference", pattern),
			like("product_designation", pattern),
		})
	}
	if f.Status != "" {
		stmt = stmt.Where(squirrel.Eq{"status": string(f.Status)})
	}
	if ref := strings.TrimSpace(f.ClientReference); ref != "" {
		stmt = stmt.Where(squirrel.Eq{"client_reference": ref})
	}

	var records []quoteRecord
	if err := r.selectAll(ctx, &records, stmt); err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}

	quotes := make([]quote.Quote, 0, len(records))
	for _, rec := range records {
		q, err := rec.toQuote()
		if err != nil {
			return nil, fmt.Errorf("read quote %s: %w", rec.Reference, err)
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// References returns every quote reference starting with prefix.
func (r *QuoteRepo) References(ctx context.Context, prefix string) ([]string, error) {
	var refs []string
	stmt := r.builder().Select("reference").From(quotesTable).Where(like("reference", escapeLike(prefix)+"%"))
	if err := r.selectAll(ctx, &refs, stmt); err != nil {
		return nil, fmt.Errorf("query quote references: %w", err)
	}
	return refs, nil
}
