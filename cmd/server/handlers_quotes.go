package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/devis/internal/apperror"
	"github.com/Simplici0/devis/internal/quote"
)

type computeResponse struct {
	quote.Figures
	TransportError *apperror.AppError `json:"transportError,omitempty"`
}

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := quote.Filter{
		Search:          q.Get("q"),
		ClientReference: q.Get("client"),
	}
	if raw := q.Get("status"); raw != "" {
		st, ok := quote.ParseStatus(raw)
		if !ok {
			writeError(w, r, apperror.NewValidation("statut de devis inconnu").WithDetail("status", raw))
			return
		}
		filter.Status = st
	}

	quotes, err := s.quotes.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quotes)
}

func (s *server) handleQuoteNew(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.quotes.NewDraft())
}

// handleQuoteCompute returns live figures for a draft. With
// ?resolveTransport=true the transport cost is priced first; a missing
// tariff is reported in transportError and the figures use the draft's cost.
func (s *server) handleQuoteCompute(w http.ResponseWriter, r *http.Request) {
	var d quote.Draft
	if err := decodeBody(w, r, &d); err != nil {
		writeError(w, r, err)
		return
	}

	var resp computeResponse
	if r.URL.Query().Get("resolveTransport") == "true" {
		resolved, err := s.quotes.ResolveTransport(r.Context(), d.Transport)
		if err != nil {
			appErr, ok := apperror.AsAppError(err)
			if !ok || appErr.Code != apperror.CodeNoTariffMatch {
				writeError(w, r, err)
				return
			}
			resp.TransportError = appErr
		}
		d.Transport = resolved
	}

	resp.Figures = s.quotes.Compute(r.Context(), d)
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleQuoteCreate(w http.ResponseWriter, r *http.Request) {
	var d quote.Draft
	if err := decodeBody(w, r, &d); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.quotes.Create(r.Context(), d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleQuoteGet(w http.ResponseWriter, r *http.Request) {
	q, err := s.quotes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *server) handleQuoteUpdate(w http.ResponseWriter, r *http.Request) {
	var d quote.Draft
	if err := decodeBody(w, r, &d); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.quotes.Update(r.Context(), chi.URLParam(r, "id"), d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *server) handleQuoteValidate(w http.ResponseWriter, r *http.Request) {
	validated, err := s.quotes.Validate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, validated)
}
