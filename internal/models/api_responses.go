// Geoportal - Tourist Objects API and MapServer Gateway
// Copyright 2026 The Geoportal Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/uralgeo/geoportal

package models

import "time"

// APIResponse is the standard envelope for every JSON endpoint.
//
// Status is "success" or "error". Data carries the payload on success;
// Error is populated only on failure.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError is a machine-readable error body.
//
// Common codes: VALIDATION_ERROR, INVALID_CREDENTIALS, UNAUTHORIZED,
// FORBIDDEN, NOT_FOUND, CONFLICT, DATABASE_ERROR.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is the health endpoint payload.
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	Environment       string  `json:"environment"`
	DatabaseConnected bool    `json:"database_connected"`
	Uptime            float64 `json:"uptime_seconds"`
}
