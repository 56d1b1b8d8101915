package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/Simplici0/devis/internal/catalog"
)

const clientsTable = "clients"

var clientColumns = []string{"id", "reference", "name", "address", "email", "phone", "created_at", "updated_at"}

type clientRecord struct {
	ID        string `db:"id"`
	Reference string `db:"reference"`
	Name      string `db:"name"`
	Address   string `db:"address"`
	Email     string `db:"email"`
	Phone     string `db:"phone"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

func (r clientRecord) toClient() (catalog.Client, error) {
	c := catalog.Client{
		ID:        r.ID,
		Reference: r.Reference,
		Name:      r.Name,
		Address:   r.Address,
		Email:     r.Email,
		Phone:     r.Phone,
	}
	var err error
	if c.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return catalog.Client{}, err
	}
	if c.UpdatedAt, err = parseTime(r.UpdatedAt); err != nil {
		return catalog.Client{}, err
	}
	return c, nil
}

// ClientRepo implements catalog.ClientRepository.
type ClientRepo struct {
	base
}

// NewClientRepo returns a ClientRepo backed by db.
func NewClientRepo(db *sql.DB) *ClientRepo {
	return &ClientRepo{base{db: db}}
}

// ListClients returns every client ordered by reference.
func (r *ClientRepo) ListClients(ctx context.Context) ([]catalog.Client, error) {
	var records []clientRecord
	q := r.builder().Select(clientColumns...).From(clientsTable).OrderBy("reference")
	if err := r.selectAll(ctx, &records, q); err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}

	clients := make([]catalog.Client, 0, len(records))
	for _, rec := range records {
		c, err := rec.toClient()
		if err != nil {
			return nil, fmt.Errorf("read client %s: %w", rec.ID, err)
		}
		clients = append(clients, c)
	}
	return clients, nil
}

// GetClient returns the client with the given id.
func (r *ClientRepo) GetClient(ctx context.Context, id string) (catalog.Client, error) {
	var rec clientRecord
	q := r.builder().Select(clientColumns...).From(clientsTable).Where(squirrel.Eq{"id": id})
	found, err := r.get(ctx, &rec, q)
	if err != nil {
		return catalog.Client{}, fmt.Errorf("get client: %w", err)
	}
	if !found {
		return catalog.Client{}, catalog.ErrNotFound
	}
	return rec.toClient()
}

// CountClients returns the number of stored clients.
func (r *ClientRepo) CountClients(ctx context.Context) (int, error) {
	var n int
	if _, err := r.get(ctx, &n, r.builder().Select("COUNT(*)").From(clientsTable)); err != nil {
		return 0, fmt.Errorf("count clients: %w", err)
	}
	return n, nil
}

// CreateClient inserts c.
func (r *ClientRepo) CreateClient(ctx context.Context, c catalog.Client) error {
	q := r.builder().Insert(clientsTable).
		Columns(clientColumns...).
		Values(c.ID, c.Reference, c.Name, c.Address, c.Email, c.Phone, FormatTime(c.CreatedAt), FormatTime(c.UpdatedAt))
	if _, err := r.exec(ctx, q); err != nil {
		if isUniqueViolation(err) {
			return catalog.ErrDuplicateReference
		}
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// UpdateClient overwrites the editable columns of c. The reference is left untouched.
func (r *ClientRepo) UpdateClient(ctx context.Context, c catalog.Client) error {
	q := r.builder().Update(clientsTable).
		Set("name", c.Name).
		Set("address", c.Address).
		Set("email", c.Email).
		Set("phone", c.Phone).
		Set("updated_at", FormatTime(c.UpdatedAt)).
		Where(squirrel.Eq{"id": c.ID})
	res, err := r.exec(ctx, q)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update client rows affected: %w", err)
	}
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}
