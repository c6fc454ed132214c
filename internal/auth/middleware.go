// Geoportal - Tourist Objects API and MapServer Gateway
// Copyright 2026 The Geoportal Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/uralgeo/geoportal

package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/uralgeo/geoportal/internal/logging"
	"github.com/uralgeo/geoportal/internal/models"
)

// CookieName is the cookie checked when no Authorization header carries
// a bearer token.
const CookieName = "access_token"

type contextKey string

const principalKey contextKey = "principal"

// PrincipalStore resolves an authenticated subject to its user record.
type PrincipalStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Middleware wires the token manager and user store into HTTP gates.
type Middleware struct {
	tokens *TokenManager
	store  PrincipalStore
}

// NewMiddleware creates the authentication and authorization gates.
func NewMiddleware(tokens *TokenManager, store PrincipalStore) *Middleware {
	return &Middleware{tokens: tokens, store: store}
}

// PrincipalFromContext returns the authenticated user set by
// Authenticate, or nil outside an authenticated request.
func PrincipalFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(principalKey).(*models.User)
	return user
}

// Authenticate resolves the request's bearer token to a user and stores
// it in the request context. The token is read from the Authorization
// header first, then from the access_token cookie. Every failure mode
// produces the same 401 so callers cannot probe which check tripped.
//
// The principal is resolved by token subject only; a user deactivated
// after issuance keeps access until the token expires.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractToken(r)
		if tokenString == "" {
			unauthorized(w, r)
			return
		}

		subject, err := m.tokens.Validate(tokenString)
		if err != nil {
			unauthorized(w, r)
			return
		}

		user, err := m.store.GetUserByID(r.Context(), subject)
		if err != nil {
			unauthorized(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole allows the request through only when the authenticated
// user holds at least one of the named roles. An empty role list denies
// every request. Must run after Authenticate.
func (m *Middleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := PrincipalFromContext(r.Context())
			if user == nil {
				unauthorized(w, r)
				return
			}
			if !user.HasAnyRole(roles...) {
				logging.Ctx(r.Context()).Warn().
					Str("username", user.Username).
					Strs("required_roles", roles).
					Msg("Authorization denied")
				forbidden(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken pulls a bearer token from the Authorization header,
// falling back to the access_token cookie for browser clients.
func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeAuthError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Could not validate credentials")
}

func forbidden(w http.ResponseWriter, r *http.Request) {
	writeAuthError(w, r, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
}

func writeAuthError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := models.APIResponse{
		Status:   "error",
		Error:    &models.APIError{Code: code, Message: message},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode auth error response")
	}
}
