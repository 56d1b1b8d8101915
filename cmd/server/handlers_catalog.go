package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/devis/internal/catalog"
	"github.com/Simplici0/devis/internal/numeric"
	"github.com/Simplici0/devis/internal/scaling"
)

type scaleRequest struct {
	Quantity numeric.Amount `json:"quantity"`
}

type scaleResponse struct {
	OK bool `json:"scaled"`
	scaling.Scaled
}

func (s *server) handleClientsList(w http.ResponseWriter, r *http.Request) {
	clients, err := s.catalog.ListClients(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

func (s *server) handleClientCreate(w http.ResponseWriter, r *http.Request) {
	var in catalog.ClientInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := s.catalog.AddClient(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *server) handleClientUpdate(w http.ResponseWriter, r *http.Request) {
	var in catalog.ClientInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := s.catalog.UpdateClient(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *server) handleProductsList(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.ListProducts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// handleProductCreate answers 201 for a new template and 200 with the
// stored one when the reference already exists.
func (s *server) handleProductCreate(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := decodeBody(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}

	stored, created, err := s.catalog.AddProduct(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, stored)
}

func (s *server) handleProductGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.GetProduct(r.Context(), chi.URLParam(r, "reference"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleProductScale(w http.ResponseWriter, r *http.Request) {
	var req scaleRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	scaled, ok, err := s.catalog.ScaleProduct(r.Context(), chi.URLParam(r, "reference"), req.Quantity.Float64())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scaleResponse{OK: ok, Scaled: scaled})
}
