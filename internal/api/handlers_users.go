// Geoportal - Tourist Objects API and MapServer Gateway
// Copyright 2026 The Geoportal Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/uralgeo/geoportal

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/uralgeo/geoportal/internal/auth"
	"github.com/uralgeo/geoportal/internal/database"
	"github.com/uralgeo/geoportal/internal/logging"
	"github.com/uralgeo/geoportal/internal/models"
	"github.com/uralgeo/geoportal/internal/validation"
)

// CreateUser registers a new user. Registration is open; new users hold
// no roles until an admin assigns them.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.UserCreate
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_REQUEST", "Malformed JSON body")
		return
	}
	if ve := validation.ValidateStruct(req); ve != nil {
		respondValidationError(w, r, ve)
		return
	}
	req.Email = strings.ToLower(req.Email)

	if _, err := h.store.GetUserByEmail(r.Context(), req.Email); err == nil {
		respondError(w, r, http.StatusBadRequest, "CONFLICT", "Email already registered")
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		respondStoreError(w, r, err, "")
		return
	}
	if _, err := h.store.GetUserByUsername(r.Context(), req.Username); err == nil {
		respondError(w, r, http.StatusBadRequest, "CONFLICT", "Username already taken")
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		respondStoreError(w, r, err, "")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to hash password")
		respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	user := &models.User{
		Email:          req.Email,
		Username:       req.Username,
		HashedPassword: hash,
		IsActive:       true,
		Roles:          []models.Role{},
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := h.store.CreateUser(r.Context(), user); err != nil {
		respondStoreError(w, r, err, "")
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("username", sanitizeLogValue(user.Username)).
		Str("user_id", user.ID.String()).
		Msg("User registered")
	respondJSON(w, r, http.StatusCreated, models.NewUserResponse(user))
}

// ListUsers returns a page of users. Admin only.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	skip, limit := pagination(r)

	users, err := h.store.ListUsers(r.Context(), skip, limit)
	if err != nil {
		respondStoreError(w, r, err, "")
		return
	}
	total, err := h.store.CountUsers(r.Context())
	if err != nil {
		respondStoreError(w, r, err, "")
		return
	}

	out := make([]models.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, models.NewUserResponse(&users[i]))
	}
	respondJSON(w, r, http.StatusOK, models.UserListResponse{Users: out, Total: total})
}

// GetCurrentUser returns the authenticated user's own record.
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user := auth.PrincipalFromContext(r.Context())
	if user == nil {
		respondError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Could not validate credentials")
		return
	}
	respondJSON(w, r, http.StatusOK, models.NewUserResponse(user))
}

// GetUser returns one user by ID. The router gates this on the admin
// or user role.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_REQUEST", "Invalid user ID")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err, "User not found")
		return
	}
	respondJSON(w, r, http.StatusOK, models.NewUserResponse(user))
}

// UpdateUser applies a partial update. Admins can update anyone;
// everyone else only themselves.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, _, ok := h.userForOwnershipCheck(w, r)
	if !ok {
		return
	}

	var req models.UserUpdate
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_REQUEST", "Malformed JSON body")
		return
	}
	if ve := validation.ValidateStruct(req); ve != nil {
		respondValidationError(w, r, ve)
		return
	}

	user, err := h.store.GetUserByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err, "User not found")
		return
	}

	if req.Email != nil {
		lowered := strings.ToLower(*req.Email)
		req.Email = &lowered
	}
	if req.Email != nil && *req.Email != user.Email {
		if _, err := h.store.GetUserByEmail(r.Context(), *req.Email); err == nil {
			respondError(w, r, http.StatusBadRequest, "CONFLICT", "Email already registered")
			return
		} else if !errors.Is(err, database.ErrNotFound) {
			respondStoreError(w, r, err, "")
			return
		}
		user.Email = *req.Email
	}
	if req.Username != nil && *req.Username != user.Username {
		if _, err := h.store.GetUserByUsername(r.Context(), *req.Username); err == nil {
			respondError(w, r, http.StatusBadRequest, "CONFLICT", "Username already taken")
			return
		} else if !errors.Is(err, database.ErrNotFound) {
			respondStoreError(w, r, err, "")
			return
		}
		user.Username = *req.Username
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to hash password")
			respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
			return
		}
		user.HashedPassword = hash
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := h.store.UpdateUser(r.Context(), user); err != nil {
		respondStoreError(w, r, err, "User not found")
		return
	}
	respondJSON(w, r, http.StatusOK, models.NewUserResponse(user))
}

// DeleteUser removes a user. Admins can delete anyone; everyone else
// only themselves.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, _, ok := h.userForOwnershipCheck(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteUser(r.Context(), id); err != nil {
		respondStoreError(w, r, err, "User not found")
		return
	}
	logging.Ctx(r.Context()).Info().Str("user_id", id.String()).Msg("User deleted")
	w.WriteHeader(http.StatusNoContent)
}

// AssignRole grants a role to a user. Admin only; granting an
// already-held role succeeds without change.
func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	userID, err := uuidParam(r, "userID")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_REQUEST", "Invalid user ID")
		return
	}
	roleID, err := uuidParam(r, "roleID")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_REQUEST", "Invalid role ID")
		return
	}

	if _, err := h.store.GetUserByID(r.Context(), userID); err != nil {
		respondStoreError(w, r, err, "User not found")
		return
	}
	role, err := h.store.GetRoleByID(r.Context(), roleID)
	if err != nil {
		respondStoreError(w, r, err, "Role not found")
		return
	}

	if err := h.store.AssignRole(r.Context(), userID, roleID); err != nil {
		respondStoreError(w, r, err, "")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), userID)
	if err != nil {
		respondStoreError(w, r, err, "User not found")
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("user_id", userID.String()).
		Str("role", role.Name).
		Msg("Role assigned")
	respondJSON(w, r, http.StatusOK, models.NewUserResponse(user))
}

// userForOwnershipCheck parses the id path parameter and enforces the
// self-or-admin rule. A non-admin acting on another user's record gets
// a 403 before the record is ever looked up.
func (h *Handler) userForOwnershipCheck(w http.ResponseWriter, r *http.Request) (uuid.UUID, *models.User, bool) {
	id, err := uuidParam(r, "id")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_REQUEST", "Invalid user ID")
		return uuid.Nil, nil, false
	}

	principal := auth.PrincipalFromContext(r.Context())
	if principal == nil {
		respondError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Could not validate credentials")
		return uuid.Nil, nil, false
	}
	if principal.ID != id && !principal.HasRole(models.RoleAdmin) {
		respondError(w, r, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
		return uuid.Nil, nil, false
	}
	return id, principal, true
}
