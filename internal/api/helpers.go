// Geoportal - Tourist Objects API and MapServer Gateway
// Copyright 2026 The Geoportal Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/uralgeo/geoportal

package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/uralgeo/geoportal/internal/database"
	"github.com/uralgeo/geoportal/internal/logging"
	"github.com/uralgeo/geoportal/internal/models"
	"github.com/uralgeo/geoportal/internal/validation"
)

// Pagination bounds. Limit defaults to 100 and is capped at 1000.
const (
	defaultLimit = 100
	maxLimit     = 1000
	maxBodySize  = 1 << 20 // 1 MiB
)

// respondJSON writes a success envelope.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError writes an error envelope.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	respondErrorDetails(w, r, status, &models.APIError{Code: code, Message: message})
}

func respondErrorDetails(w http.ResponseWriter, r *http.Request, status int, apiErr *models.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := models.APIResponse{
		Status:   "error",
		Error:    apiErr,
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode error response")
	}
}

// respondValidationError writes a 422 from collected field failures.
func respondValidationError(w http.ResponseWriter, r *http.Request, ve *validation.RequestValidationError) {
	apiErr := ve.ToAPIError()
	respondErrorDetails(w, r, http.StatusUnprocessableEntity, &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	})
}

// respondStoreError maps store sentinels to HTTP statuses; anything
// else is a 500 with the detail kept server-side.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", notFoundMessage)
	case errors.Is(err, database.ErrConflict):
		respondError(w, r, http.StatusBadRequest, "CONFLICT", "Resource already exists")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Store operation failed")
		respondError(w, r, http.StatusInternalServerError, "DATABASE_ERROR", "Internal server error")
	}
}

// decodeJSON reads a bounded JSON request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize)).Decode(dst)
}

// uuidParam parses a UUID path parameter.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

// pagination reads skip/limit query parameters with defaults and caps.
// Unparseable values, negative skip and non-positive limit fall back to
// the defaults.
func pagination(r *http.Request) (skip, limit int) {
	skip = 0
	limit = defaultLimit
	if raw := r.URL.Query().Get("skip"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			skip = v
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 1 {
			limit = v
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return skip, limit
}

// sanitizeLogValue strips control characters so attacker-supplied
// strings cannot forge log lines.
func sanitizeLogValue(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	if len(s) > 256 {
		s = s[:256]
	}
	return s
}
