// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// BlogHub API. Routes are grouped into public and authenticated sets, with
// user administration behind an extra admin check.
package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"bloghub/internal/handlers"
	"bloghub/internal/middleware"
)

// Handlers bundles the handler groups mounted under /api.
type Handlers struct {
	Auth     *handlers.Auth
	Posts    *handlers.Posts
	Comments *handlers.Comments
	Users    *handlers.Users
}

// Options carries the router settings that come from configuration.
type Options struct {
	// AllowedOrigins lists the browser origins permitted by CORS.
	AllowedOrigins []string
	// UploadsDir, when set, is served read-only under /uploads/.
	UploadsDir string
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(log *zap.Logger, authn middleware.Authenticator, h Handlers, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.SecureHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler)

	if opts.UploadsDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.UploadsDir)))
		r.Get("/uploads/*", func(w http.ResponseWriter, r *http.Request) {
			// No directory listings.
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}
			fs.ServeHTTP(w, r)
		})
	}

	requireAuth := middleware.RequireAuth(authn)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Post("/forgotpassword", h.Auth.ForgotPassword)
			r.Put("/resetpassword/{token}", h.Auth.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/profile", h.Auth.Profile)
				r.Put("/profile", h.Auth.UpdateProfile)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", h.Posts.List)
			r.Get("/user/{userId}", h.Posts.ListByAuthor)
			r.Get("/{idOrSlug}", h.Posts.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", h.Posts.Create)
				r.Put("/{id}", h.Posts.Update)
				r.Delete("/{id}", h.Posts.Delete)
				r.Post("/{id}/like", h.Posts.Like)
				r.Delete("/{id}/like", h.Posts.Unlike)
				r.Post("/{id}/unlike", h.Posts.Unlike)
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Get("/post/{postId}", h.Comments.ListForPost)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", h.Comments.Create)
				r.Put("/{id}", h.Comments.Update)
				r.Delete("/{id}", h.Comments.Delete)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/{id}", h.Users.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/{id}/follow", h.Users.Follow)
				r.Post("/{id}/unfollow", h.Users.Unfollow)

				// User management, admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Get("/", h.Users.List)
					r.Put("/{id}", h.Users.Update)
					r.Delete("/{id}", h.Users.Delete)
				})
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
