// Package catalog manages the clients and product templates a quote draws from.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/Simplici0/devis/internal/scaling"
)

var (
	// ErrNotFound is returned by repositories for unknown records.
	ErrNotFound = errors.New("catalog: record not found")
	// ErrDuplicateReference is returned when a reference is already taken.
	ErrDuplicateReference = errors.New("catalog: duplicate reference")
)

// Client is a customer quotes are addressed to.
type Client struct {
	ID        string    `json:"id"`
	Reference string    `json:"reference"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Product is a named product template.
type Product struct {
	ID          string `json:"id"`
	Reference   string `json:"reference"`
	Designation string `json:"designation"`
	Variants    string `json:"variants,omitempty"`
	scaling.Template
	CreatedAt time.Time `json:"createdAt"`
}

// ClientRepository persists clients.
type ClientRepository interface {
	ListClients(ctx context.Context) ([]Client, error)
	GetClient(ctx context.Context, id string) (Client, error)
	CountClients(ctx context.Context) (int, error)
	CreateClient(ctx context.Context, c Client) error
	UpdateClient(ctx context.Context, c Client) error
}

// ProductRepository persists product templates.
type ProductRepository interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, reference string) (Product, error)
	CreateProduct(ctx context.Context, p Product) error
}
