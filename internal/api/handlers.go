// Geoportal - Tourist Objects API and MapServer Gateway
// Copyright 2026 The Geoportal Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/uralgeo/geoportal

// Package api implements the HTTP handlers and router for the Geoportal
// backend.
package api

import (
	"context"
	"time"

	"github.com/uralgeo/geoportal/internal/auth"
	"github.com/uralgeo/geoportal/internal/config"
	"github.com/uralgeo/geoportal/internal/database"
)

// Store is the persistence surface the handlers need. *database.Store
// satisfies it; tests substitute an in-memory fake.
type Store interface {
	database.UserStore
	database.RoleStore
	Ping(ctx context.Context) error
}

// Handler holds the handlers' collaborators. One instance serves all
// routes.
type Handler struct {
	cfg       *config.Config
	store     Store
	tokens    *auth.TokenManager
	startTime time.Time
}

// NewHandler creates the API handler set.
func NewHandler(cfg *config.Config, store Store, tokens *auth.TokenManager) *Handler {
	return &Handler{
		cfg:       cfg,
		store:     store,
		tokens:    tokens,
		startTime: time.Now(),
	}
}
