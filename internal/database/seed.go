package database

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"bloghub/internal/models"
)

// SeedUsers is the subset of the user repository the seed needs.
type SeedUsers interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, u *models.User) error
}

// PasswordHasher hashes the seed account's password.
type PasswordHasher interface {
	HashPassword(plaintext string) (string, error)
}

// Seed creates one administrator account when the user table is empty.
// It does nothing if password is empty. The password is never logged.
func Seed(ctx context.Context, users SeedUsers, hasher PasswordHasher, email, password string, log *zap.Logger) error {
	if password == "" {
		log.Info("seed skipped: no admin password configured")
		return nil
	}

	count, err := users.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if count > 0 {
		log.Info("database already seeded, skipping")
		return nil
	}

	hash, err := hasher.HashPassword(password)
	if err != nil {
		return fmt.Errorf("seed hash password: %w", err)
	}

	admin := &models.User{
		Name:         "Admin",
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		IsAdmin:      true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	log.Info("database seeded with admin user", zap.String("email", admin.Email))
	return nil
}
