package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Simplici0/devis/internal/catalog"
	"github.com/Simplici0/devis/internal/quote"
	"github.com/Simplici0/devis/internal/transport"
	"github.com/Simplici0/devis/pkg/logger"
)

type server struct {
	quotes  *quote.Service
	catalog *catalog.Service
	tariffs *transport.Table
	log     *logger.Logger
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/tariffs", s.handleTariffsList)
		r.Post("/transport/resolve", s.handleTransportResolve)

		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", s.handleQuotesList)
			r.Post("/", s.handleQuoteCreate)
			r.Get("/new", s.handleQuoteNew)
			r.Post("/compute", s.handleQuoteCompute)
			r.Get("/{id}", s.handleQuoteGet)
			r.Put("/{id}", s.handleQuoteUpdate)
			r.Post("/{id}/validate", s.handleQuoteValidate)
		})

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", s.handleClientsList)
			r.Post("/", s.handleClientCreate)
			r.Put("/{id}", s.handleClientUpdate)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.handleProductsList)
			r.Post("/", s.handleProductCreate)
			r.Get("/{reference}", s.handleProductGet)
			r.Post("/{reference}/scale", s.handleProductScale)
		})
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
