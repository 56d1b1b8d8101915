package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Simplici0/devis/internal/apperror"
	"github.com/Simplici0/devis/internal/events"
	"github.com/Simplici0/devis/internal/id"
	"github.com/Simplici0/devis/internal/pricing"
	"github.com/Simplici0/devis/internal/scaling"
)

// ClientInput holds the editable client fields.
type ClientInput struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

func (in ClientInput) normalize() ClientInput {
	return ClientInput{
		Name:    strings.TrimSpace(in.Name),
		Address: strings.TrimSpace(in.Address),
		Email:   strings.TrimSpace(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
	}
}

func (in ClientInput) validate() error {
	if in.Name == "" {
		return apperror.NewValidation("le nom du client est requis").WithDetail("field", "name")
	}
	if in.Address == "" {
		return apperror.NewValidation("l'adresse du client est requise").WithDetail("field", "address")
	}
	return nil
}

// ProductRef identifies the product a quote is for.
type ProductRef struct {
	Reference   string `json:"reference"`
	Designation string `json:"designation"`
	Variants    string `json:"variants,omitempty"`
	Quantity    int    `json:"quantity"`
}

// Service implements client and product-template operations.
type Service struct {
	clients  ClientRepository
	products ProductRepository
	bus      *events.Bus
	ids      *scaling.IDGenerator
	now      func() time.Time
}

// NewService wires a Service. bus may be nil.
func NewService(clients ClientRepository, products ProductRepository, bus *events.Bus) *Service {
	return &Service{
		clients:  clients,
		products: products,
		bus:      bus,
		ids:      scaling.NewIDGenerator(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) publish(aggregate, aggregateID, eventType string, payload any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.Event{AggregateType: aggregate, AggregateID: aggregateID, Type: eventType, Payload: payload})
}

// ListClients returns every client ordered by reference.
func (s *Service) ListClients(ctx context.Context) ([]Client, error) {
	return s.clients.ListClients(ctx)
}

// AddClient creates a client with the next CLI-NNN reference.
func (s *Service) AddClient(ctx context.Context, in ClientInput) (Client, error) {
	in = in.normalize()
	if err := in.validate(); err != nil {
		return Client{}, err
	}

	count, err := s.clients.CountClients(ctx)
	if err != nil {
		return Client{}, fmt.Errorf("count clients: %w", err)
	}

	now := s.now()
	c := Client{
		ID:        id.New(),
		Reference: fmt.Sprintf("CLI-%03d", count+1),
		Name:      in.Name,
		Address:   in.Address,
		Email:     in.Email,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.clients.CreateClient(ctx, c); err != nil {
		if errors.Is(err, ErrDuplicateReference) {
			return Client{}, apperror.NewConflict("référence client déjà utilisée").WithCause(err)
		}
		return Client{}, fmt.Errorf("create client: %w", err)
	}

	s.publish(events.AggregateClient, c.ID, events.TypeCreated, c)
	return c, nil
}

// UpdateClient replaces the editable fields of a client. The reference never changes.
func (s *Service) UpdateClient(ctx context.Context, clientID string, in ClientInput) (Client, error) {
	in = in.normalize()
	if err := in.validate(); err != nil {
		return Client{}, err
	}

	if !id.Valid(clientID) {
		return Client{}, apperror.NewNotFound("client", clientID)
	}
	c, err := s.clients.GetClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Client{}, apperror.NewNotFound("client", clientID)
		}
		return Client{}, fmt.Errorf("get client: %w", err)
	}

	c.Name = in.Name
	c.Address = in.Address
	c.Email = in.Email
	c.Phone = in.Phone
	c.UpdatedAt = s.now()
	if err := s.clients.UpdateClient(ctx, c); err != nil {
		return Client{}, fmt.Errorf("update client: %w", err)
	}

	s.publish(events.AggregateClient, c.ID, events.TypeUpdated, c)
	return c, nil
}

// ListProducts returns every product template.
func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	return s.products.ListProducts(ctx)
}

// GetProduct returns the template registered under reference.
func (s *Service) GetProduct(ctx context.Context, reference string) (Product, error) {
	p, err := s.products.GetProduct(ctx, strings.TrimSpace(reference))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Product{}, apperror.NewNotFound("product", reference)
		}
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// AddProduct registers a template. When the reference already exists the
// stored template is returned unchanged and created is false.
func (s *Service) AddProduct(ctx context.Context, p Product) (stored Product, created bool, err error) {
	p.Reference = strings.TrimSpace(p.Reference)
	p.Designation = strings.TrimSpace(p.Designation)
	if p.Reference == "" || p.Designation == "" {
		return Product{}, false, apperror.NewValidation("la référence et la désignation du produit sont requises")
	}

	existing, err := s.products.GetProduct(ctx, p.Reference)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, ErrNotFound):
		return Product{}, false, fmt.Errorf("get product: %w", err)
	}

	p.ID = id.New()
	p.CreatedAt = s.now()
	if p.BaseQuantity <= 0 {
		p.BaseQuantity = 1
	}
	if err := s.products.CreateProduct(ctx, p); err != nil {
		if errors.Is(err, ErrDuplicateReference) {
			existing, getErr := s.GetProduct(ctx, p.Reference)
			return existing, false, getErr
		}
		return Product{}, false, fmt.Errorf("create product: %w", err)
	}

	s.publish(events.AggregateProduct, p.ID, events.TypeCreated, p)
	return p, true, nil
}

// EnsureFromQuote records the quote's bill of materials as a per-unit
// template, unless the product has no reference or designation or a
// template with that reference already exists.
func (s *Service) EnsureFromQuote(ctx context.Context, ref ProductRef, components []pricing.Component, materials []pricing.RawMaterial, steps []pricing.ProductionStep) (bool, error) {
	if strings.TrimSpace(ref.Reference) == "" || strings.TrimSpace(ref.Designation) == "" {
		return false, nil
	}
	_, created, err := s.AddProduct(ctx, Product{
		Reference:   ref.Reference,
		Designation: ref.Designation,
		Variants:    ref.Variants,
		Template:    scaling.FromQuote(ref.Quantity, components, materials, steps),
	})
	return created, err
}

// ScaleProduct derives quote line items for quantity units of the product.
// ok is false when the template has no usable base quantity.
func (s *Service) ScaleProduct(ctx context.Context, reference string, quantity float64) (scaling.Scaled, bool, error) {
	p, err := s.GetProduct(ctx, reference)
	if err != nil {
		return scaling.Scaled{}, false, err
	}
	scaled, ok := scaling.Scale(&p.Template, quantity, s.ids)
	return scaled, ok, nil
}
