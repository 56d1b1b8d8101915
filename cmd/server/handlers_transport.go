package main

import (
	"net/http"

	"github.com/Simplici0/devis/internal/apperror"
	"github.com/Simplici0/devis/internal/transport"
)

func (s *server) handleTariffsList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tariffs.Tariffs())
}

// handleTransportResolve prices a transport spec. NO_MATCH is a 422 whose
// details carry the spec without carrier metadata.
func (s *server) handleTransportResolve(w http.ResponseWriter, r *http.Request) {
	var spec transport.Spec
	if err := decodeBody(w, r, &spec); err != nil {
		writeError(w, r, err)
		return
	}

	resolved, err := s.quotes.ResolveTransport(r.Context(), spec)
	if err != nil {
		if appErr, ok := apperror.AsAppError(err); ok && appErr.Code == apperror.CodeNoTariffMatch {
			appErr.WithDetail("transport", resolved)
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resolved)
}
