// Geoportal - Tourist Objects API and MapServer Gateway
// Copyright 2026 The Geoportal Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/uralgeo/geoportal

package models

// TokenResponse is the login success body, OAuth2-password-flow shaped.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// LoginForm is the form-encoded login request.
type LoginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}
