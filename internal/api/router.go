// Geoportal - Tourist Objects API and MapServer Gateway
// Copyright 2026 The Geoportal Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/uralgeo/geoportal

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/uralgeo/geoportal/internal/auth"
	"github.com/uralgeo/geoportal/internal/middleware"
	"github.com/uralgeo/geoportal/internal/models"
	"github.com/uralgeo/geoportal/internal/proxy"
)

// NewRouter assembles the full HTTP surface: public auth, health and
// proxy routes plus the gated user and role management API.
func NewRouter(h *Handler, gate *auth.Middleware, forwarder *proxy.Forwarder) http.Handler {
	cfg := h.cfg
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", h.Root)
	r.Handle("/metrics", promhttp.Handler())

	r.Route(cfg.App.APIPrefix, func(r chi.Router) {
		r.Get("/health", h.Health)

		// Login gets the strict per-IP limit; everything else shares
		// the standard one.
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(cfg.Server.RateLimitLogin, time.Minute))
			r.Post("/auth/token", h.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(cfg.Server.RateLimitReqs, time.Minute))

			// The map viewer loads tiles with bare <img> requests, so
			// the forwarder stays outside the authentication gate.
			r.Handle("/proxy/mapserver/*", forwarder)

			r.Post("/users", h.CreateUser)

			r.Group(func(r chi.Router) {
				r.Use(gate.Authenticate)

				r.Get("/users/me", h.GetCurrentUser)
				r.With(gate.RequireRole(models.RoleAdmin)).Get("/users", h.ListUsers)
				r.With(gate.RequireRole(models.RoleAdmin, models.RoleUser)).
					Get("/users/{id}", h.GetUser)
				r.Put("/users/{id}", h.UpdateUser)
				r.Delete("/users/{id}", h.DeleteUser)
				r.With(gate.RequireRole(models.RoleAdmin)).
					Post("/users/{userID}/roles/{roleID}", h.AssignRole)

				r.Group(func(r chi.Router) {
					r.Use(gate.RequireRole(models.RoleAdmin))
					r.Post("/roles", h.CreateRole)
					r.Get("/roles", h.ListRoles)
					r.Get("/roles/{id}", h.GetRole)
					r.Put("/roles/{id}", h.UpdateRole)
					r.Delete("/roles/{id}", h.DeleteRole)
				})
			})
		})
	})

	return r
}
