// Geoportal - Tourist Objects API and MapServer Gateway
// Copyright 2026 The Geoportal Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/uralgeo/geoportal

// Package auth implements password hashing, bearer-token issuance and
// validation, and the HTTP authentication and authorization gates.
package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost trades hash strength against login latency. 12 keeps a
// verify under ~300ms on current hardware.
const bcryptCost = 12

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plaintext matches the stored hash.
// A malformed or truncated hash verifies as false, never as an error, so
// corrupt records behave like a wrong password.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
