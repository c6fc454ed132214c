// Geoportal - Tourist Objects API and MapServer Gateway
// Copyright 2026 The Geoportal Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/uralgeo/geoportal

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/uralgeo/geoportal/internal/config"
)

// ErrInvalidToken is returned for every token rejection. Expired,
// tampered, malformed and wrong-key tokens are deliberately
// indistinguishable to the caller.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenManager issues and validates signed bearer tokens. Tokens carry
// only the subject's user ID and an expiry.
type TokenManager struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration

	// now is the clock used for issuance and validation, overridable
	// in tests.
	now func() time.Time
}

// NewTokenManager builds a manager from validated auth configuration.
func NewTokenManager(cfg *config.AuthConfig) (*TokenManager, error) {
	var method jwt.SigningMethod
	switch cfg.Algorithm {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported signing algorithm: %s", cfg.Algorithm)
	}
	return &TokenManager{
		secret: []byte(cfg.SecretKey),
		method: method,
		ttl:    cfg.TTL(),
		now:    time.Now,
	}, nil
}

// Issue creates a signed token for the given user expiring after the
// configured lifetime.
func (m *TokenManager) Issue(subject uuid.UUID) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject.String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token, err := jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Validate parses and verifies a token string and returns the subject
// user ID. Any failure, including a missing or unparseable subject,
// yields ErrInvalidToken.
func (m *TokenManager) Validate(tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return subject, nil
}
