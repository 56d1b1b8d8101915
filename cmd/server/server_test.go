package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/devis/internal/catalog"
	"github.com/Simplici0/devis/internal/db"
	"github.com/Simplici0/devis/internal/events"
	"github.com/Simplici0/devis/internal/migrations"
	"github.com/Simplici0/devis/internal/quote"
	"github.com/Simplici0/devis/internal/seed"
	"github.com/Simplici0/devis/internal/store"
	"github.com/Simplici0/devis/internal/transport"
	"github.com/Simplici0/devis/pkg/logger"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "server-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, migrations.Up(database))
	_, err = seed.Run(context.Background(), database)
	require.NoError(t, err)

	bus := events.NewBus()
	tariffs := transport.DefaultTable()
	catalogSvc := catalog.NewService(store.NewClientRepo(database), store.NewProductRepo(database), bus)
	quoteSvc := quote.NewService(store.NewQuoteRepo(database), tariffs, catalogSvc, bus, logger.Nop())

	srv := &server{quotes: quoteSvc, catalog: catalogSvc, tariffs: tariffs, log: logger.Nop()}
	return srv.routes()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

type errorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func TestHealthAndTariffs(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/tariffs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tariffs := decode[[]transport.Tariff](t, rec)
	assert.Len(t, tariffs, 7)
}

func TestTransportResolve(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantCost    float64
		wantCarrier string
	}{
		{"cheapest road", `{"mode":"Routier","distanceKm":150,"volumeM3":2.5}`, http.StatusOK, 180, "Transports Alpha"},
		{"english mode", `{"mode":"road","distanceKm":150,"volumeM3":2.5}`, http.StatusOK, 180, "Transports Alpha"},
		{"string numbers", `{"mode":"Routier","distanceKm":"150","volumeM3":"2,5"}`, http.StatusOK, 180, "Transports Alpha"},
		{"volume too large", `{"mode":"Routier","distanceKm":150,"volumeM3":95}`, http.StatusUnprocessableEntity, 0, ""},
		{"unknown mode", `{"mode":"Maritime","distanceKm":150,"volumeM3":1}`, http.StatusUnprocessableEntity, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/api/transport/resolve", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantStatus != http.StatusOK {
				body := decode[errorBody](t, rec)
				assert.Equal(t, "NO_TARIFF_MATCH", body.Error.Code)
				assert.Contains(t, body.Error.Details, "transport")
				return
			}
			spec := decode[transport.Spec](t, rec)
			assert.InDelta(t, tt.wantCost, spec.Cost.Float64(), 1e-9)
			require.NotNil(t, spec.Carrier)
			assert.Equal(t, tt.wantCarrier, spec.Carrier.Name)
		})
	}
}

func TestTransportResolveBadBody(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/transport/resolve", `{"mode":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode[errorBody](t, rec).Error.Code)
}

const demoDraftJSON = `{
	"client": {"reference": "CLI-001", "name": "Entreprise Martin"},
	"product": {"reference": "NEW-01", "designation": "Support acier", "quantity": 10},
	"components": [
		{"reference": "VIS", "unitPrice": 0.12, "quantity": 2000},
		{"reference": "ROUL", "unitPrice": "8.50", "quantity": 500},
		{"reference": "BAD", "unitPrice": "abc", "quantity": 3}
	],
	"materials": [{"type": "Acier", "pricePerKg": 1.2, "kgQuantity": 250}],
	"steps": [{"operation": "Soudure", "durationHours": 10, "hourlyRate": 55}],
	"transport": {"mode": "Routier", "distanceKm": 150, "volumeM3": 2.5, "cost": 0},
	"margin": {"targetMarginPct": 25, "desiredSalePrice": 8000}
}`

type computeBody struct {
	Breakdown struct {
		TotalComponents float64 `json:"totalComponents"`
		TotalMaterials  float64 `json:"totalMaterials"`
		TotalProduction float64 `json:"totalProduction"`
		TransportCost   float64 `json:"transportCost"`
	} `json:"breakdown"`
	Totals struct {
		CostOfGoods        float64 `json:"costOfGoods"`
		RealizedMarginPct  float64 `json:"realizedMarginPct"`
		IsMarginSufficient bool    `json:"isMarginSufficient"`
		RequiredSalePrice  float64 `json:"requiredSalePrice"`
	} `json:"totals"`
	Transport      transport.Spec `json:"transport"`
	TransportError *struct {
		Code string `json:"code"`
	} `json:"transportError"`
}

func TestQuoteCompute(t *testing.T) {
	h := newTestServer(t)

	t.Run("draft transport cost", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/quotes/compute", demoDraftJSON)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		body := decode[computeBody](t, rec)
		assert.InDelta(t, 4490, body.Breakdown.TotalComponents, 1e-9)
		assert.InDelta(t, 300, body.Breakdown.TotalMaterials, 1e-9)
		assert.InDelta(t, 550, body.Breakdown.TotalProduction, 1e-9)
		assert.InDelta(t, 5340, body.Totals.CostOfGoods, 1e-9)
		assert.InDelta(t, 33.25, body.Totals.RealizedMarginPct, 1e-9)
		assert.True(t, body.Totals.IsMarginSufficient)
		assert.InDelta(t, 7120, body.Totals.RequiredSalePrice, 1e-6)
		assert.Nil(t, body.TransportError)
	})

	t.Run("resolved transport", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/quotes/compute?resolveTransport=true", demoDraftJSON)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		body := decode[computeBody](t, rec)
		assert.InDelta(t, 180, body.Breakdown.TransportCost, 1e-9)
		assert.InDelta(t, 5520, body.Totals.CostOfGoods, 1e-9)
		require.NotNil(t, body.Transport.Carrier)
		assert.Equal(t, "Transports Alpha", body.Transport.Carrier.Name)
	})

	t.Run("no tariff does not block", func(t *testing.T) {
		var draft map[string]any
		require.NoError(t, json.Unmarshal([]byte(demoDraftJSON), &draft))
		draft["transport"] = map[string]any{"mode": "Routier", "distanceKm": 150, "volumeM3": 95, "cost": 42}

		rec := doJSON(t, h, http.MethodPost, "/api/quotes/compute?resolveTransport=true", draft)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		body := decode[computeBody](t, rec)
		require.NotNil(t, body.TransportError)
		assert.Equal(t, "NO_TARIFF_MATCH", body.TransportError.Code)
		assert.InDelta(t, 42, body.Breakdown.TransportCost, 1e-9)
	})
}

func TestQuoteLifecycle(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/api/quotes/new", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	draft := decode[quote.Draft](t, rec)
	assert.InDelta(t, 25, draft.Margin.TargetMarginPct.Float64(), 1e-9)

	rec = doJSON(t, h, http.MethodPost, "/api/quotes", demoDraftJSON)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[quote.Quote](t, rec)
	assert.Regexp(t, `^DEV-\d{4}-001$`, created.Reference)
	assert.Equal(t, quote.StatusPending, created.Status)
	assert.InDelta(t, 5340, created.CostOfGoods, 1e-9)

	rec = doJSON(t, h, http.MethodGet, "/api/quotes/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.Reference, decode[quote.Quote](t, rec).Reference)

	var update map[string]any
	require.NoError(t, json.Unmarshal([]byte(demoDraftJSON), &update))
	update["notes"] = "remise 5%"
	rec = doJSON(t, h, http.MethodPut, "/api/quotes/"+created.ID, update)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "remise 5%", decode[quote.Quote](t, rec).Notes)

	rec = doJSON(t, h, http.MethodPost, "/api/quotes/"+created.ID+"/validate", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, quote.StatusValidated, decode[quote.Quote](t, rec).Status)

	rec = doJSON(t, h, http.MethodGet, "/api/products/NEW-01", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	product := decode[catalog.Product](t, rec)
	require.Len(t, product.Components, 3)
	assert.InDelta(t, 200, product.Components[0].Quantity.Float64(), 1e-9)

	rec = doJSON(t, h, http.MethodGet, "/api/quotes?status=validated&client=CLI-001", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]quote.Quote](t, rec), 1)

	rec = doJSON(t, h, http.MethodGet, "/api/quotes?status=archived", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/quotes/does-not-exist", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode[errorBody](t, rec).Error.Code)
}

func TestClientsEndpoints(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/api/clients", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]catalog.Client](t, rec), 5)

	rec = doJSON(t, h, http.MethodPost, "/api/clients", `{"name":"Atelier Roux","address":"3 rue Haute"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	c := decode[catalog.Client](t, rec)
	assert.Equal(t, "CLI-006", c.Reference)

	rec = doJSON(t, h, http.MethodPut, "/api/clients/"+c.ID, `{"name":"Atelier Roux SARL","address":"3 rue Haute"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Atelier Roux SARL", decode[catalog.Client](t, rec).Name)

	rec = doJSON(t, h, http.MethodPost, "/api/clients", `{"name":"Sans adresse"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "address", decode[errorBody](t, rec).Error.Details["field"])
}

func TestProductsEndpoints(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]catalog.Product](t, rec), 3)

	rec = doJSON(t, h, http.MethodPost, "/api/products", `{"reference":"PRD-2024-A1","designation":"Doublon"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Pièce mécanique type A", decode[catalog.Product](t, rec).Designation)

	rec = doJSON(t, h, http.MethodPost, "/api/products",
		`{"reference":"KIT-1","designation":"Kit","baseQuantity":1,"components":[{"reference":"C","unitPrice":2,"quantity":10}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	type scaleBody struct {
		Scaled     bool `json:"scaled"`
		Components []struct {
			ID       string `json:"id"`
			Quantity int    `json:"quantity"`
		} `json:"components"`
	}

	rec = doJSON(t, h, http.MethodPost, "/api/products/KIT-1/scale", `{"quantity":50}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	scaled := decode[scaleBody](t, rec)
	assert.True(t, scaled.Scaled)
	require.Len(t, scaled.Components, 1)
	assert.Equal(t, 500, scaled.Components[0].Quantity)
	assert.Regexp(t, `^comp-\d+-\d+$`, scaled.Components[0].ID)

	rec = doJSON(t, h, http.MethodPost, "/api/products/PRD-2024-A1/scale", `{"quantity":1000}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	scaled = decode[scaleBody](t, rec)
	assert.Equal(t, 4000, scaled.Components[0].Quantity)

	rec = doJSON(t, h, http.MethodPost, "/api/products/NOPE/scale", `{"quantity":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
