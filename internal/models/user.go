// Geoportal - Tourist Objects API and MapServer Gateway
// Copyright 2026 The Geoportal Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/uralgeo/geoportal

// Package models holds the domain entities and request/response shapes
// shared between the API, auth and database layers.
package models

import "github.com/google/uuid"

// User is a registered principal. HashedPassword never leaves the
// backend; UserResponse is the outward shape.
type User struct {
	ID             uuid.UUID
	Email          string
	Username       string
	HashedPassword string
	IsActive       bool
	Roles          []Role
}

// HasRole reports whether the user holds the named role.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the user's role set intersects names.
// An empty names slice never matches.
func (u *User) HasAnyRole(names ...string) bool {
	for _, n := range names {
		if u.HasRole(n) {
			return true
		}
	}
	return false
}

// UserCreate is the registration request body.
type UserCreate struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Username string `json:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=8"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// UserUpdate is the partial-update request body. Nil fields are left
// unchanged.
type UserUpdate struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=100"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// UserResponse is the outward user shape, without the password hash.
type UserResponse struct {
	ID       uuid.UUID      `json:"id"`
	Email    string         `json:"email"`
	Username string         `json:"username"`
	IsActive bool           `json:"is_active"`
	Roles    []RoleResponse `json:"roles"`
}

// UserListResponse wraps a page of users.
type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total"`
}

// NewUserResponse converts a User to its outward shape.
func NewUserResponse(u *User) UserResponse {
	roles := make([]RoleResponse, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, NewRoleResponse(&r))
	}
	return UserResponse{
		ID:       u.ID,
		Email:    u.Email,
		Username: u.Username,
		IsActive: u.IsActive,
		Roles:    roles,
	}
}
