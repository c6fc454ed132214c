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

const userColumns = "id, email, username, hashed_password, is_active"

// CreateUser inserts a user and fills in the generated ID.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (email, username, hashed_password, is_active)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		user.Email, user.Username, user.HashedPassword, user.IsActive,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID returns the user with its roles populated, or ErrNotFound.
func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

// GetUserByEmail returns the user with its roles populated, or ErrNotFound.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
}

// GetUserByUsername returns the user with its roles populated, or ErrNotFound.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE username = $1", username)
}

func (s *Store) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx, query, arg).
		Scan(&u.ID, &u.Email, &u.Username, &u.HashedPassword, &u.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	roles, err := s.RolesForUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.Roles = roles
	return &u, nil
}

// ListUsers returns a page of users ordered by username, roles populated.
func (s *Store) ListUsers(ctx context.Context, skip, limit int) ([]models.User, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY username OFFSET $1 LIMIT $2",
		skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Username, &u.HashedPassword, &u.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	for i := range users {
		roles, err := s.RolesForUser(ctx, users[i].ID)
		if err != nil {
			return nil, err
		}
		users[i].Roles = roles
	}
	return users, nil
}

// CountUsers returns the total number of users.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// UpdateUser persists the user's mutable fields by ID.
func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET email = $1, username = $2, hashed_password = $3, is_active = $4
		 WHERE id = $5`,
		user.Email, user.Username, user.HashedPassword, user.IsActive, user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes the user; role associations cascade.
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AssignRole links a role to a user. Assigning an already-held role is a
// no-op.
func (s *Store) AssignRole(ctx context.Context, userID, roleID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		userID, roleID)
	if err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}
	return nil
}

// RolesForUser returns the roles held by the user, ordered by name.
func (s *Store) RolesForUser(ctx context.Context, userID uuid.UUID) ([]models.Role, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT r.id, r.name, r.description FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = $1 ORDER BY r.name`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user roles: %w", err)
	}
	defer rows.Close()
	return scanRoles(rows)
}

// UsersForRole returns the users holding the role, ordered by username.
func (s *Store) UsersForRole(ctx context.Context, roleID uuid.UUID) ([]models.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT u.id, u.email, u.username, u.hashed_password, u.is_active FROM users u
		 JOIN user_roles ur ON ur.user_id = u.id
		 WHERE ur.role_id = $1 ORDER BY u.username`,
		roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query role members: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Username, &u.HashedPassword, &u.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate role members: %w", err)
	}
	return users, nil
}
