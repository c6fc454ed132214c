// Geoportal - Tourist Objects API and MapServer Gateway
// Copyright 2026 The Geoportal Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/uralgeo/geoportal

package api

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/uralgeo/geoportal/internal/database"
	"github.com/uralgeo/geoportal/internal/models"
)

// fakeStore is an in-memory Store for handler tests. It mirrors the
// Postgres store's contract: sentinel errors, idempotent role
// assignment, roles populated on user reads.
type fakeStore struct {
	mu        sync.Mutex
	users     map[uuid.UUID]models.User
	roles     map[uuid.UUID]models.Role
	userRoles map[uuid.UUID]map[uuid.UUID]struct{}
	pingErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[uuid.UUID]models.User),
		roles:     make(map[uuid.UUID]models.Role),
		userRoles: make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email || u.Username == user.Username {
			return database.ErrConflict
		}
	}
	user.ID = uuid.New()
	f.users[user.ID] = *user
	return nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	u.Roles = f.rolesForLocked(id)
	return &u, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return f.findUser(func(u models.User) bool { return u.Email == email })
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return f.findUser(func(u models.User) bool { return u.Username == username })
}

func (f *fakeStore) findUser(match func(models.User) bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, u := range f.users {
		if match(u) {
			u.Roles = f.rolesForLocked(id)
			return &u, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeStore) ListUsers(_ context.Context, skip, limit int) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]models.User, 0, len(f.users))
	for id, u := range f.users {
		u.Roles = f.rolesForLocked(id)
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })
	return page(all, skip, limit), nil
}

func (f *fakeStore) CountUsers(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users), nil
}

func (f *fakeStore) UpdateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return database.ErrNotFound
	}
	f.users[user.ID] = *user
	return nil
}

func (f *fakeStore) DeleteUser(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.users, id)
	delete(f.userRoles, id)
	return nil
}

func (f *fakeStore) AssignRole(_ context.Context, userID, roleID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.userRoles[userID] == nil {
		f.userRoles[userID] = make(map[uuid.UUID]struct{})
	}
	f.userRoles[userID][roleID] = struct{}{}
	return nil
}

func (f *fakeStore) RolesForUser(_ context.Context, userID uuid.UUID) ([]models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rolesForLocked(userID), nil
}

func (f *fakeStore) rolesForLocked(userID uuid.UUID) []models.Role {
	roles := make([]models.Role, 0)
	for roleID := range f.userRoles[userID] {
		if r, ok := f.roles[roleID]; ok {
			roles = append(roles, r)
		}
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	return roles
}

func (f *fakeStore) UsersForRole(_ context.Context, roleID uuid.UUID) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]models.User, 0)
	for userID, held := range f.userRoles {
		if _, ok := held[roleID]; ok {
			users = append(users, f.users[userID])
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (f *fakeStore) CreateRole(_ context.Context, role *models.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.roles {
		if r.Name == role.Name {
			return database.ErrConflict
		}
	}
	role.ID = uuid.New()
	f.roles[role.ID] = *role
	return nil
}

func (f *fakeStore) GetRoleByID(_ context.Context, id uuid.UUID) (*models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.roles[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &r, nil
}

func (f *fakeStore) GetRoleByName(_ context.Context, name string) (*models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.roles {
		if r.Name == name {
			role := r
			return &role, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeStore) ListRoles(_ context.Context, skip, limit int) ([]models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]models.Role, 0, len(f.roles))
	for _, r := range f.roles {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return page(all, skip, limit), nil
}

func (f *fakeStore) CountRoles(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.roles), nil
}

func (f *fakeStore) UpdateRole(_ context.Context, role *models.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.roles[role.ID]; !ok {
		return database.ErrNotFound
	}
	f.roles[role.ID] = *role
	return nil
}

func (f *fakeStore) DeleteRole(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.roles[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.roles, id)
	for _, held := range f.userRoles {
		delete(held, id)
	}
	return nil
}

func page[T any](all []T, skip, limit int) []T {
	if skip >= len(all) {
		return []T{}
	}
	end := skip + limit
	if end > len(all) {
		end = len(all)
	}
	return all[skip:end]
}
