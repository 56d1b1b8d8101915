package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Simplici0/devis/internal/apperror"
	"github.com/Simplici0/devis/pkg/logger"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error *apperror.AppError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err as {"error": {...}}. Errors that are not an
// AppError are logged and hidden behind a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperror.GetHTTPStatus(err)
	appErr, ok := apperror.AsAppError(err)
	if !ok {
		appErr = apperror.NewInternal(err)
	}
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Errorw("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: appErr})
}

// decodeBody decodes the JSON request body into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.NewValidation("corps de requête vide")
		}
		return apperror.NewValidation("corps de requête invalide").WithCause(err)
	}
	return nil
}
