// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth owns credential handling: password hashing, the
// password-reset token lifecycle, and signed identity tokens.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// resetTokenBytes is the amount of randomness in a raw reset token.
const resetTokenBytes = 20

// ErrPasswordTooLong is returned when a password exceeds bcrypt's 72-byte input limit.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// Credentials hashes passwords and issues password-reset tokens.
type Credentials struct {
	cost     int
	resetTTL time.Duration
	now      func() time.Time
}

// NewCredentials creates a Credentials with the given bcrypt cost and
// reset-token lifetime. A nil now uses time.Now.
func NewCredentials(cost int, resetTTL time.Duration, now func() time.Time) *Credentials {
	if now == nil {
		now = time.Now
	}
	return &Credentials{cost: cost, resetTTL: resetTTL, now: now}
}

// HashPassword returns a salted bcrypt digest of plaintext.
func (c *Credentials) HashPassword(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), c.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether plaintext matches digest. The comparison
// is bcrypt's own constant-time check.
func (c *Credentials) VerifyPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// IssueResetToken generates a random reset token. The raw value goes into
// the emailed link; only hash and expires are stored on the user.
func (c *Credentials) IssueResetToken() (raw, hash string, expires time.Time, err error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", time.Time{}, fmt.Errorf("generate reset token: %w", err)
	}
	raw = hex.EncodeToString(buf)
	return raw, HashResetToken(raw), c.now().Add(c.resetTTL), nil
}

// Now returns the current time from the injected clock.
func (c *Credentials) Now() time.Time {
	return c.now()
}

// HashResetToken returns the hex SHA-256 of a raw reset token.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
