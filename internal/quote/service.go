package quote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/devis/internal/apperror"
	"github.com/Simplici0/devis/internal/catalog"
	"github.com/Simplici0/devis/internal/events"
	"github.com/Simplici0/devis/internal/id"
	"github.com/Simplici0/devis/internal/numeric"
	"github.com/Simplici0/devis/internal/pricing"
	"github.com/Simplici0/devis/internal/transport"
	"github.com/Simplici0/devis/pkg/logger"
)

// ErrDuplicateReference is returned by repositories when a reference is taken.
var ErrDuplicateReference = errors.New("quote: duplicate reference")

const referenceAttempts = 3

// TransportResolver prices the transport section of a quote.
type TransportResolver interface {
	ResolveSpec(s transport.Spec) (transport.Spec, error)
	Covers(s transport.Spec) bool
}

// TemplateRecorder derives a product template from a validated quote.
type TemplateRecorder interface {
	EnsureFromQuote(ctx context.Context, ref catalog.ProductRef, components []pricing.Component, materials []pricing.RawMaterial, steps []pricing.ProductionStep) (bool, error)
}

// Figures is the live pricing of a draft.
type Figures struct {
	pricing.Result
	Transport transport.Spec `json:"transport"`
}

// Service orchestrates quote pricing and persistence.
type Service struct {
	repo          Repository
	tariffs       TransportResolver
	templates     TemplateRecorder
	bus           *events.Bus
	log           *logger.Logger
	now           func() time.Time
	defaultMargin float64
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithDefaultTargetMargin sets the target margin of new drafts.
func WithDefaultTargetMargin(pct float64) Option {
	return func(s *Service) { s.defaultMargin = pct }
}

// NewService wires a Service. templates, bus and log may be nil.
func NewService(repo Repository, tariffs TransportResolver, templates TemplateRecorder, bus *events.Bus, log *logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.Nop()
	}
	s := &Service{
		repo:          repo,
		tariffs:       tariffs,
		templates:     templates,
		bus:           bus,
		log:           log.WithComponent("quote"),
		now:           func() time.Time { return time.Now().UTC() },
		defaultMargin: 25,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewDraft returns the initial state of the quote form.
func (s *Service) NewDraft() Draft {
	return normalizeDraft(Draft{
		Status:    StatusPending,
		Transport: transport.Spec{Mode: transport.ModeRoad},
		Margin:    pricing.MarginSpec{TargetMarginPct: numeric.Amount(s.defaultMargin)},
	})
}

// Compute returns the live figures of d without persisting anything.
func (s *Service) Compute(_ context.Context, d Draft) Figures {
	d = normalizeDraft(d)
	d.Transport = s.checkCarrier(d.Transport)
	return Figures{Result: pricing.Calculate(d.Input()), Transport: d.Transport}
}

// ResolveTransport prices spec against the tariff table. When no tariff
// covers the shipment the spec is returned without carrier metadata along
// with a NO_TARIFF_MATCH error.
func (s *Service) ResolveTransport(ctx context.Context, spec transport.Spec) (transport.Spec, error) {
	resolved, err := s.tariffs.ResolveSpec(spec)
	if err != nil {
		if errors.Is(err, transport.ErrNoTariffMatch) {
			s.log.WithContext(ctx).Infow("no tariff match",
				"mode", spec.Mode,
				"distance_km", spec.DistanceKm.Float64(),
				"volume_m3", spec.VolumeM3.Float64(),
			)
			return resolved, apperror.NewNoTariffMatch(err)
		}
		return resolved, fmt.Errorf("resolve transport: %w", err)
	}
	return resolved, nil
}

// Create prices and stores a new quote under the next reference of the year.
func (s *Service) Create(ctx context.Context, d Draft) (Quote, error) {
	d = normalizeDraft(d)
	if d.Status == "" {
		d.Status = StatusPending
	}
	if err := validateDraft(d); err != nil {
		return Quote{}, err
	}
	d.Transport = s.checkCarrier(d.Transport)

	now := s.now()
	q := Quote{ID: id.New(), Draft: d, CreatedAt: now, UpdatedAt: now}
	q.Recompute()

	prefix := ReferencePrefix(now.Year())
	for attempt := 1; ; attempt++ {
		refs, err := s.repo.References(ctx, prefix)
		if err != nil {
			return Quote{}, fmt.Errorf("list references: %w", err)
		}
		q.Reference = NextReference(now.Year(), refs)

		err = s.repo.Create(ctx, q)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrDuplicateReference) || attempt == referenceAttempts {
			return Quote{}, fmt.Errorf("create quote: %w", err)
		}
	}

	s.log.WithContext(ctx).Infow("quote created", "id", q.ID, "reference", q.Reference)
	s.publish(q, events.TypeCreated)
	return q, nil
}

// Update replaces the editable part of a quote. An empty status keeps the
// current one. Carrier metadata is dropped when the shipment changed.
func (s *Service) Update(ctx context.Context, quoteID string, d Draft) (Quote, error) {
	q, err := s.Get(ctx, quoteID)
	if err != nil {
		return Quote{}, err
	}

	d = normalizeDraft(d)
	if d.Status == "" {
		d.Status = q.Status
	}
	if err := validateDraft(d); err != nil {
		return Quote{}, err
	}
	if !d.Transport.SameShipment(q.Transport) {
		d.Transport.Carrier = nil
	}
	d.Transport = s.checkCarrier(d.Transport)

	q.Draft = d
	return s.save(ctx, q)
}

// checkCarrier drops carrier metadata that no tariff of the table supports
// for the spec's shipment. The cost is kept.
func (s *Service) checkCarrier(spec transport.Spec) transport.Spec {
	if spec.Carrier != nil && s.tariffs != nil && !s.tariffs.Covers(spec) {
		spec.Carrier = nil
	}
	return spec
}

// Validate marks a quote validated and records its product as a template.
func (s *Service) Validate(ctx context.Context, quoteID string) (Quote, error) {
	q, err := s.Get(ctx, quoteID)
	if err != nil {
		return Quote{}, err
	}

	q.Status = StatusValidated
	q, err = s.save(ctx, q)
	if err != nil {
		return Quote{}, err
	}

	if s.templates != nil {
		ref := catalog.ProductRef{
			Reference:   q.Product.Reference,
			Designation: q.Product.Designation,
			Variants:    q.Product.Variants,
			Quantity:    q.Product.Quantity.Int(),
		}
		created, err := s.templates.EnsureFromQuote(ctx, ref, q.Components, q.Materials, q.Steps)
		if err != nil {
			s.log.WithContext(ctx).Warnw("record product template", "quote", q.Reference, "error", err)
		} else if created {
			s.log.WithContext(ctx).Infow("product template recorded", "quote", q.Reference, "product", ref.Reference)
		}
	}
	return q, nil
}

// Get returns a stored quote.
func (s *Service) Get(ctx context.Context, quoteID string) (Quote, error) {
	if !id.Valid(quoteID) {
		return Quote{}, apperror.NewNotFound("quote", quoteID)
	}
	q, err := s.repo.Get(ctx, quoteID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Quote{}, apperror.NewNotFound("quote", quoteID)
		}
		return Quote{}, fmt.Errorf("get quote: %w", err)
	}
	return q, nil
}

// List returns stored quotes matching f, newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]Quote, error) {
	quotes, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	return quotes, nil
}

func (s *Service) save(ctx context.Context, q Quote) (Quote, error) {
	q.UpdatedAt = s.now()
	q.Recompute()
	if err := s.repo.Update(ctx, q); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Quote{}, apperror.NewNotFound("quote", q.ID)
		}
		return Quote{}, fmt.Errorf("update quote: %w", err)
	}
	s.publish(q, events.TypeUpdated)
	return q, nil
}

func (s *Service) publish(q Quote, eventType string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.Event{
		AggregateType: events.AggregateQuote,
		AggregateID:   q.ID,
		Type:          eventType,
		Payload:       q,
	})
}

func normalizeDraft(d Draft) Draft {
	if d.Components == nil {
		d.Components = []pricing.Component{}
	}
	if d.Materials == nil {
		d.Materials = []pricing.RawMaterial{}
	}
	if d.Steps == nil {
		d.Steps = []pricing.ProductionStep{}
	}
	if d.Status != "" {
		if st, ok := ParseStatus(string(d.Status)); ok {
			d.Status = st
		}
	}
	return d
}

func validateDraft(d Draft) error {
	if _, ok := ParseStatus(string(d.Status)); !ok {
		return apperror.NewValidation("statut de devis inconnu").WithDetail("status", d.Status)
	}
	return nil
}
