// Geoportal - Tourist Objects API and MapServer Gateway
// Copyright 2026 The Geoportal Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/uralgeo/geoportal

package api

import (
	"errors"
	"net/http"

	"github.com/uralgeo/geoportal/internal/database"
	"github.com/uralgeo/geoportal/internal/logging"
	"github.com/uralgeo/geoportal/internal/models"
	"github.com/uralgeo/geoportal/internal/validation"
)

// CreateRole creates a role. Admin only.
func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req models.RoleCreate
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_REQUEST", "Malformed JSON body")
		return
	}
	if ve := validation.ValidateStruct(req); ve != nil {
		respondValidationError(w, r, ve)
		return
	}

	if _, err := h.store.GetRoleByName(r.Context(), req.Name); err == nil {
		respondError(w, r, http.StatusBadRequest, "CONFLICT", "Role already exists")
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		respondStoreError(w, r, err, "")
		return
	}

	role := &models.Role{Name: req.Name, Description: req.Description}
	if err := h.store.CreateRole(r.Context(), role); err != nil {
		respondStoreError(w, r, err, "")
		return
	}

	logging.Ctx(r.Context()).Info().Str("role", sanitizeLogValue(role.Name)).Msg("Role created")
	respondJSON(w, r, http.StatusCreated, models.NewRoleResponse(role))
}

// ListRoles returns a page of roles. Admin only.
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	skip, limit := pagination(r)

	roles, err := h.store.ListRoles(r.Context(), skip, limit)
	if err != nil {
		respondStoreError(w, r, err, "")
		return
	}
	total, err := h.store.CountRoles(r.Context())
	if err != nil {
		respondStoreError(w, r, err, "")
		return
	}

	out := make([]models.RoleResponse, 0, len(roles))
	for i := range roles {
		out = append(out, models.NewRoleResponse(&roles[i]))
	}
	respondJSON(w, r, http.StatusOK, models.RoleListResponse{Roles: out, Total: total})
}

// GetRole returns one role by ID. Admin only.
func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_REQUEST", "Invalid role ID")
		return
	}

	role, err := h.store.GetRoleByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err, "Role not found")
		return
	}
	respondJSON(w, r, http.StatusOK, models.NewRoleResponse(role))
}

// UpdateRole applies a partial update to a role. Admin only.
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_REQUEST", "Invalid role ID")
		return
	}

	var req models.RoleUpdate
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_REQUEST", "Malformed JSON body")
		return
	}
	if ve := validation.ValidateStruct(req); ve != nil {
		respondValidationError(w, r, ve)
		return
	}

	role, err := h.store.GetRoleByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err, "Role not found")
		return
	}

	if req.Name != nil && *req.Name != role.Name {
		if _, err := h.store.GetRoleByName(r.Context(), *req.Name); err == nil {
			respondError(w, r, http.StatusBadRequest, "CONFLICT", "Role already exists")
			return
		} else if !errors.Is(err, database.ErrNotFound) {
			respondStoreError(w, r, err, "")
			return
		}
		role.Name = *req.Name
	}
	if req.Description != nil {
		role.Description = *req.Description
	}

	if err := h.store.UpdateRole(r.Context(), role); err != nil {
		respondStoreError(w, r, err, "Role not found")
		return
	}
	respondJSON(w, r, http.StatusOK, models.NewRoleResponse(role))
}

// DeleteRole removes a role and its user associations. Admin only.
func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_REQUEST", "Invalid role ID")
		return
	}

	if err := h.store.DeleteRole(r.Context(), id); err != nil {
		respondStoreError(w, r, err, "Role not found")
		return
	}
	logging.Ctx(r.Context()).Info().Str("role_id", id.String()).Msg("Role deleted")
	w.WriteHeader(http.StatusNoContent)
}
