// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account. Email is stored lower-cased and is unique.
type User struct {
	ID             uuid.UUID   `json:"_id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	PasswordHash   string      `json:"-"` // Never serialize the hash
	Bio            string      `json:"bio"`
	ProfilePicture *Image      `json:"profilePicture,omitempty"`
	IsAdmin        bool        `json:"isAdmin"`
	Followers      []uuid.UUID `json:"followers"`
	Following      []uuid.UUID `json:"following"`

	// Transient password-reset state. Only the hash of the token is kept.
	ResetTokenHash *string    `json:"-"`
	ResetExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasPendingReset reports whether a reset token was issued and has not
// yet expired at now.
func (u *User) HasPendingReset(now time.Time) bool {
	return u.ResetTokenHash != nil && u.ResetExpiresAt != nil && u.ResetExpiresAt.After(now)
}

// Summary returns the public author view embedded in posts and comments.
func (u *User) Summary() *AuthorSummary {
	return &AuthorSummary{
		ID:             u.ID,
		Name:           u.Name,
		ProfilePicture: u.ProfilePicture,
		Bio:            u.Bio,
	}
}

// AuthorSummary is the subset of a user shown next to their content.
type AuthorSummary struct {
	ID             uuid.UUID `json:"_id"`
	Name           string    `json:"name"`
	ProfilePicture *Image    `json:"profilePicture,omitempty"`
	Bio            string    `json:"bio,omitempty"`
}
