// Geoportal - Tourist Objects API and MapServer Gateway
// Copyright 2026 The Geoportal Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/uralgeo/geoportal

package models

import "github.com/google/uuid"

// Well-known role names. Roles are rows in the roles table; these
// constants only name the ones the route configuration refers to.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Role is a named permission group.
type Role struct {
	ID          uuid.UUID
	Name        string
	Description string
}

// RoleCreate is the role creation request body.
type RoleCreate struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description,omitempty" validate:"max=255"`
}

// RoleUpdate is the partial-update request body.
type RoleUpdate struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=255"`
}

// RoleResponse is the outward role shape.
type RoleResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
}

// RoleListResponse wraps a page of roles.
type RoleListResponse struct {
	Roles []RoleResponse `json:"roles"`
	Total int            `json:"total"`
}

// NewRoleResponse converts a Role to its outward shape.
func NewRoleResponse(r *Role) RoleResponse {
	return RoleResponse{ID: r.ID, Name: r.Name, Description: r.Description}
}
