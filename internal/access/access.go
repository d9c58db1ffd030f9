// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package access resolves the authenticated principal of a request and
// enforces the ownership and administrator rules on posts, comments and
// user accounts.
package access

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"bloghub/internal/apperr"
	"bloghub/internal/auth"
	"bloghub/internal/models"
)

// Principal is the identity a request acts as.
type Principal struct {
	UserID  uuid.UUID
	Email   string
	Name    string
	IsAdmin bool
}

// TokenVerifier verifies an identity token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// UserLookup loads the current user record. It returns (nil, nil) when the
// user does not exist.
type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Authenticator turns an Authorization header into a Principal.
type Authenticator struct {
	tokens TokenVerifier
	users  UserLookup
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(tokens TokenVerifier, users UserLookup) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Authenticate extracts the bearer token from header, verifies it and
// reloads the user it names. A valid token for a deleted account is
// rejected.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (*Principal, error) {
	raw, ok := bearerToken(header)
	if !ok {
		return nil, apperr.Unauthenticated("Not authorized, no token", nil)
	}

	userID, err := a.tokens.Verify(raw)
	if err != nil {
		return nil, apperr.Unauthenticated(tokenFailureMessage(err), err)
	}

	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperr.StoreUnavailable(err)
	}
	if user == nil {
		return nil, apperr.Unauthenticated("Not authorized, user no longer exists", nil)
	}

	return &Principal{
		UserID:  user.ID,
		Email:   user.Email,
		Name:    user.Name,
		IsAdmin: user.IsAdmin,
	}, nil
}

// bearerToken returns the token of a "Bearer <token>" header. The scheme
// is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func tokenFailureMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "Not authorized, token expired"
	case errors.Is(err, auth.ErrTokenBadSignature):
		return "Not authorized, token signature invalid"
	default:
		return "Not authorized, token malformed"
	}
}
