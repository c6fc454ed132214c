// Geoportal - Tourist Objects API and MapServer Gateway
// Copyright 2026 The Geoportal Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/uralgeo/geoportal

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/uralgeo/geoportal/internal/logging"
	"github.com/uralgeo/geoportal/internal/metrics"
	"github.com/uralgeo/geoportal/internal/models"
)

// Health reports service liveness and database reachability. Unlike the
// rest of the API it stays unauthenticated so orchestrators can probe
// it.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbConnected := true
	if err := h.store.Ping(ctx); err != nil {
		dbConnected = false
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check: database unreachable")
	}
	if dbConnected {
		metrics.DatabaseConnected.Set(1)
	} else {
		metrics.DatabaseConnected.Set(0)
	}

	status := "healthy"
	code := http.StatusOK
	if !dbConnected {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, r, code, models.HealthStatus{
		Status:            status,
		Version:           h.cfg.App.Version,
		Environment:       h.cfg.App.Env,
		DatabaseConnected: dbConnected,
		Uptime:            time.Since(h.startTime).Seconds(),
	})
}

// Root returns a welcome payload pointing at the API surface.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{
		"message": "Welcome to " + h.cfg.App.Name,
		"health":  h.cfg.App.APIPrefix + "/health",
	})
}
