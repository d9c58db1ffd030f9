// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors shared by every persistence driver.
var (
	// ErrNotFound means the row addressed by id does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate means a unique constraint rejected the write.
	ErrDuplicate = errors.New("store: duplicate")
	// ErrNotMember means a like or follow to remove does not exist.
	ErrNotMember = errors.New("store: not a member")
)

// PostgreSQL error codes.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// translate maps constraint violations to the package sentinels.
func translate(err error) error {
	switch pgCode(err) {
	case codeUniqueViolation:
		return ErrDuplicate
	case codeForeignKeyViolation:
		return ErrNotFound
	}
	return err
}

// splitIDs parses a comma-joined list of UUIDs as produced by array_to_string.
func splitIDs(s string) []uuid.UUID {
	if s == "" {
		return []uuid.UUID{}
	}
	parts := strings.Split(s, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		if id, err := uuid.Parse(p); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// escapeLike escapes the ILIKE wildcards in a user-supplied keyword.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
