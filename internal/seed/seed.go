package seed

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Simplici0/devis/internal/catalog"
	"github.com/Simplici0/devis/internal/id"
	"github.com/Simplici0/devis/internal/scaling"
	"github.com/Simplici0/devis/internal/store"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run inserts the demo clients and product templates that are missing.
// Records are matched by reference, so running it again is a no-op.
func Run(ctx context.Context, db *sql.DB) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}
	now := time.Now().UTC()

	for _, c := range demoClients {
		if err := ensureClient(ctx, tx, c, now, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}
	for _, p := range demoProducts {
		if err := ensureProduct(ctx, tx, p, now, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureClient(ctx context.Context, tx *sql.Tx, c catalog.Client, now time.Time, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM clients WHERE reference = ? LIMIT 1)`, c.Reference).Scan(&exists); err != nil {
		return fmt.Errorf("check client %s existence: %w", c.Reference, err)
	}
	if exists {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO clients (id, reference, name, address, email, phone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id.New(), c.Reference, c.Name, c.Address, c.Email, c.Phone, store.FormatTime(now), store.FormatTime(now)); err != nil {
		return fmt.Errorf("insert client %s: %w", c.Reference, err)
	}
	stats.Inserts++
	return nil
}

func ensureProduct(ctx context.Context, tx *sql.Tx, p catalog.Product, now time.Time, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE reference = ? LIMIT 1)`, p.Reference).Scan(&exists); err != nil {
		return fmt.Errorf("check product %s existence: %w", p.Reference, err)
	}
	if exists {
		return nil
	}

	components, err := json.Marshal(p.Components)
	if err != nil {
		return fmt.Errorf("encode product %s components: %w", p.Reference, err)
	}
	materials, err := json.Marshal(p.Materials)
	if err != nil {
		return fmt.Errorf("encode product %s materials: %w", p.Reference, err)
	}
	steps, err := json.Marshal(p.Steps)
	if err != nil {
		return fmt.Errorf("encode product %s steps: %w", p.Reference, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO products (id, reference, designation, variants, base_quantity, components_json, materials_json, steps_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id.New(), p.Reference, p.Designation, p.Variants, p.BaseQuantity.Float64(),
		string(components), string(materials), string(steps), store.FormatTime(now)); err != nil {
		return fmt.Errorf("insert product %s: %w", p.Reference, err)
	}
	stats.Inserts++
	return nil
}

var demoClients = []catalog.Client{
	{Reference: "CLI-001", Name: "Entreprise Martin", Address: "12 rue de la Paix, 75001 Paris", Email: "contact@martin.fr", Phone: "01 23 45 67 89"},
	{Reference: "CLI-002", Name: "Société Dupont", Address: "45 avenue des Champs, 69001 Lyon", Email: "info@dupont.com", Phone: "04 56 78 90 12"},
	{Reference: "CLI-003", Name: "Industries Bernard", Address: "8 boulevard du Commerce, 33000 Bordeaux", Email: "contact@bernard-ind.fr", Phone: "05 67 89 01 23"},
	{Reference: "CLI-004", Name: "Tech Solutions", Address: "22 rue de l'Innovation, 31000 Toulouse", Email: "hello@techsolutions.fr", Phone: "05 61 23 45 67"},
	{Reference: "CLI-005", Name: "Groupe Lambert", Address: "15 place du Marché, 44000 Nantes", Email: "contact@lambert-groupe.fr", Phone: "02 40 12 34 56"},
}

var demoProducts = []catalog.Product{
	{
		Reference:   "PRD-2024-A1",
		Designation: "Pièce mécanique type A",
		Variants:    "Finition chromée",
		Template: scaling.Template{
			BaseQuantity: 500,
			Components: []scaling.UnitComponent{
				{Reference: "VIS-M8", Designation: "Vis M8x25", Supplier: "Wurth", UnitPrice: 0.12, Quantity: 2000},
				{Reference: "ROUL-6205", Designation: "Roulement 6205", Supplier: "SKF", UnitPrice: 8.5, Quantity: 500},
			},
			Materials: []scaling.UnitMaterial{
				{Type: "Acier S235", PricePerKg: 1.2, KgQuantity: 250},
			},
			Steps: []scaling.UnitStep{
				{Operation: "Découpe laser", DurationHours: 8, HourlyRate: 65},
				{Operation: "Usinage CNC", DurationHours: 24, HourlyRate: 85},
				{Operation: "Assemblage", DurationHours: 16, HourlyRate: 45},
			},
		},
	},
	{
		Reference:   "PRD-2024-B2",
		Designation: "Châssis soudé",
		Template: scaling.Template{
			BaseQuantity: 100,
			Components: []scaling.UnitComponent{
				{Reference: "TUBE-40x40", Designation: "Tube carré 40x40", Supplier: "ArcelorMittal", UnitPrice: 4.8, Quantity: 200},
			},
			Materials: []scaling.UnitMaterial{
				{Type: "Acier galvanisé", PricePerKg: 1.85, KgQuantity: 800},
			},
			Steps: []scaling.UnitStep{
				{Operation: "Soudure MIG", DurationHours: 40, HourlyRate: 55},
				{Operation: "Contrôle qualité", DurationHours: 8, HourlyRate: 50},
			},
		},
	},
	{
		Reference:   "PRD-2024-C3",
		Designation: "Boîtier électronique",
		Variants:    "Version IP65",
		Template: scaling.Template{
			BaseQuantity: 100,
			Components: []scaling.UnitComponent{
				{Reference: "PCB-001", Designation: "Circuit imprimé principal", Supplier: "Eurocircuits", UnitPrice: 12.5, Quantity: 100},
				{Reference: "CONN-USB", Designation: "Connecteur USB-C", Supplier: "Molex", UnitPrice: 0.85, Quantity: 100},
				{Reference: "BOITIER-ABS", Designation: "Boîtier ABS moulé", Supplier: "Plastiform", UnitPrice: 3.2, Quantity: 100},
			},
			Materials: []scaling.UnitMaterial{
				{Type: "ABS granulés", PricePerKg: 2.5, KgQuantity: 50},
				{Type: "Cuivre", PricePerKg: 8, KgQuantity: 10},
			},
			Steps: []scaling.UnitStep{
				{Operation: "Injection plastique", DurationHours: 12, HourlyRate: 70},
				{Operation: "Assemblage électronique", DurationHours: 20, HourlyRate: 55},
				{Operation: "Test fonctionnel", DurationHours: 8, HourlyRate: 45},
			},
		},
	},
}
