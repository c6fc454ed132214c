// Geoportal - Tourist Objects API and MapServer Gateway
// Copyright 2026 The Geoportal Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/uralgeo/geoportal

package api

import (
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/uralgeo/geoportal/internal/auth"
	"github.com/uralgeo/geoportal/internal/config"
	"github.com/uralgeo/geoportal/internal/logging"
	"github.com/uralgeo/geoportal/internal/metrics"
	"github.com/uralgeo/geoportal/internal/models"
	"github.com/uralgeo/geoportal/internal/validation"
)

// loginFailureMessage never distinguishes unknown username, wrong
// password or deactivated account.
const loginFailureMessage = "Incorrect username or password"

// Login exchanges form-encoded credentials for a bearer token.
//
// The body is application/x-www-form-urlencoded with username and
// password fields, OAuth2 password-flow style. On success the token is
// returned as a bare token object, not the standard envelope, so stock
// OAuth2 clients can consume it; when cookie delivery is enabled the
// token is additionally set as an HTTP-only access_token cookie for
// browser map viewers.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_REQUEST", "Malformed form body")
		return
	}

	form := models.LoginForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	if ve := validation.ValidateStruct(form); ve != nil {
		respondValidationError(w, r, ve)
		return
	}

	user, err := h.store.GetUserByUsername(r.Context(), form.Username)
	if err != nil || !auth.VerifyPassword(form.Password, user.HashedPassword) || !user.IsActive {
		metrics.RecordAuthAttempt("failure")
		logging.Ctx(r.Context()).Warn().
			Str("username", sanitizeLogValue(form.Username)).
			Msg("Login failed")
		w.Header().Set("WWW-Authenticate", "Bearer")
		respondError(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", loginFailureMessage)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to issue token")
		respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	metrics.RecordAuthAttempt("success")
	logging.Ctx(r.Context()).Info().
		Str("username", sanitizeLogValue(user.Username)).
		Msg("Login succeeded")

	if h.cfg.Auth.CookieEnabled {
		http.SetCookie(w, &http.Cookie{
			Name:     auth.CookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   int(h.cfg.Auth.TTL().Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   h.cfg.App.Env == config.EnvProd,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	resp := models.TokenResponse{AccessToken: token, TokenType: "bearer"}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode token response")
	}
}
