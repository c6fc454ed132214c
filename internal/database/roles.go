// Geoportal - Tourist Objects API and MapServer Gateway
// Copyright 2026 The Geoportal Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/uralgeo/geoportal

package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/uralgeo/geoportal/internal/models"
)

// CreateRole inserts a role and fills in the generated ID.
func (s *Store) CreateRole(ctx context.Context, role *models.Role) error {
	err := s.pool.QueryRow(ctx,
		"INSERT INTO roles (name, description) VALUES ($1, $2) RETURNING id",
		role.Name, role.Description,
	).Scan(&role.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to create role: %w", err)
	}
	return nil
}

// GetRoleByID returns the role or ErrNotFound.
func (s *Store) GetRoleByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	return s.getRole(ctx, "SELECT id, name, description FROM roles WHERE id = $1", id)
}

// GetRoleByName returns the role or ErrNotFound.
func (s *Store) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	return s.getRole(ctx, "SELECT id, name, description FROM roles WHERE name = $1", name)
}

func (s *Store) getRole(ctx context.Context, query string, arg any) (*models.Role, error) {
	var r models.Role
	err := s.pool.QueryRow(ctx, query, arg).Scan(&r.ID, &r.Name, &r.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query role: %w", err)
	}
	return &r, nil
}

// ListRoles returns a page of roles ordered by name.
func (s *Store) ListRoles(ctx context.Context, skip, limit int) ([]models.Role, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, name, description FROM roles ORDER BY name OFFSET $1 LIMIT $2",
		skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()
	return scanRoles(rows)
}

// CountRoles returns the total number of roles.
func (s *Store) CountRoles(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM roles").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count roles: %w", err)
	}
	return n, nil
}

// UpdateRole persists the role's mutable fields by ID.
func (s *Store) UpdateRole(ctx context.Context, role *models.Role) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE roles SET name = $1, description = $2 WHERE id = $3",
		role.Name, role.Description, role.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRole removes the role; user associations cascade.
func (s *Store) DeleteRole(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM roles WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRoles(rows pgx.Rows) ([]models.Role, error) {
	roles := make([]models.Role, 0)
	for rows.Next() {
		var r models.Role
		if err := rows.Scan(&r.ID, &r.Name, &r.Description); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roles: %w", err)
	}
	return roles, nil
}
