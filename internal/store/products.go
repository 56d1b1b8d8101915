package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/Simplici0/devis/internal/catalog"
	"github.com/Simplici0/devis/internal/numeric"
)

const productsTable = "products"

var productColumns = []string{
	"id", "reference", "designation", "variants", "base_quantity",
	"components_json", "materials_json", "steps_json", "created_at",
}

type productRecord struct {
	ID           string  `db:"id"`
	Reference    string  `db:"reference"`
	Designation  string  `db:"designation"`
	Variants     string  `db:"variants"`
	BaseQuantity float64 `db:"base_quantity"`
	Components   string  `db:"components_json"`
	Materials    string  `db:"materials_json"`
	Steps        string  `db:"steps_json"`
	CreatedAt    string  `db:"created_at"`
}

func (r productRecord) toProduct() (catalog.Product, error) {
	p := catalog.Product{
		ID:          r.ID,
		Reference:   r.Reference,
		Designation: r.Designation,
		Variants:    r.Variants,
	}
	p.BaseQuantity = numeric.Amount(r.BaseQuantity)
	if err := decodeJSON(r.Components, &p.Components); err != nil {
		return catalog.Product{}, fmt.Errorf("decode components: %w", err)
	}
	if err := decodeJSON(r.Materials, &p.Materials); err != nil {
		return catalog.Product{}, fmt.Errorf("decode materials: %w", err)
	}
	if err := decodeJSON(r.Steps, &p.Steps); err != nil {
		return catalog.Product{}, fmt.Errorf("decode steps: %w", err)
	}
	var err error
	if p.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return catalog.Product{}, err
	}
	return p, nil
}

// ProductRepo implements catalog.ProductRepository.
type ProductRepo struct {
	base
}

// NewProductRepo returns a ProductRepo backed by db.
func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{base{db: db}}
}

// ListProducts returns every product template ordered by reference.
func (r *ProductRepo) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	var records []productRecord
	q := r.builder().Select(productColumns...).From(productsTable).OrderBy("reference")
	if err := r.selectAll(ctx, &records, q); err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}

	products := make([]catalog.Product, 0, len(records))
	for _, rec := range records {
		p, err := rec.toProduct()
		if err != nil {
			return nil, fmt.Errorf("read product %s: %w", rec.Reference, err)
		}
		products = append(products, p)
	}
	return products, nil
}

// GetProduct returns the template registered under reference.
func (r *ProductRepo) GetProduct(ctx context.Context, reference string) (catalog.Product, error) {
	var rec productRecord
	q := r.builder().Select(productColumns...).From(productsTable).Where(squirrel.Eq{"reference": reference})
	found, err := r.get(ctx, &rec, q)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("get product: %w", err)
	}
	if !found {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return rec.toProduct()
}

// CreateProduct inserts p.
func (r *ProductRepo) CreateProduct(ctx context.Context, p catalog.Product) error {
	components, err := encodeJSON(nonNil(p.Components))
	if err != nil {
		return fmt.Errorf("encode components: %w", err)
	}
	materials, err := encodeJSON(nonNil(p.Materials))
	if err != nil {
		return fmt.Errorf("encode materials: %w", err)
	}
	steps, err := encodeJSON(nonNil(p.Steps))
	if err != nil {
		return fmt.Errorf("encode steps: %w", err)
	}

	q := r.builder().Insert(productsTable).
		Columns(productColumns...).
		Values(p.ID, p.Reference, p.Designation, p.Variants, p.BaseQuantity.Float64(), components, materials, steps, FormatTime(p.CreatedAt))
	if _, err := r.exec(ctx, q); err != nil {
		if isUniqueViolation(err) {
			return catalog.ErrDuplicateReference
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}
