// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"bloghub/internal/access"
	"bloghub/internal/apperr"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// PrincipalKey is the context key for the authenticated principal.
	PrincipalKey contextKey = "principal"
	// RequestIDKey is the context key for the request id.
	RequestIDKey contextKey = "request_id"
)

// Authenticator resolves the principal named by an Authorization header.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*access.Principal, error)
}

// RequireAuth rejects requests without a valid bearer token and stores
// the principal in the request context. Downstream handlers read it with
// PrincipalFromCtx.
func RequireAuth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := authn.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				writeError(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), PrincipalKey, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin returns 403 unless the authenticated principal is an
// administrator. Must be applied after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := access.RequireAdmin(PrincipalFromCtx(r.Context())); err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PrincipalFromCtx extracts the principal from the request context.
// Returns nil if the request was not authenticated.
func PrincipalFromCtx(ctx context.Context) *access.Principal {
	p, _ := ctx.Value(PrincipalKey).(*access.Principal)
	return p
}

// writeError renders the failure envelope for errors raised before a
// handler runs.
func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperr.HTTPStatus(err))
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": apperr.Message(err),
	})
}
