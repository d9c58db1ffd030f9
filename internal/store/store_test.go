// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"bloghub/internal/database"
	"bloghub/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
func testDSN() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "bloghub")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "bloghub")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB connects to the test database and runs migrations. If the
// database is unavailable, the test is skipped.
func testDB(t *testing.T) *sqlx.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.Connect(ctx, testDSN())
	if err != nil {
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// newTestUser inserts a user with a unique email and removes it (and,
// through cascades, everything it owns) when the test ends.
func newTestUser(t *testing.T, db *sqlx.DB, name string) *models.User {
	t.Helper()
	u := &models.User{
		Name:         name,
		Email:        name + "-" + uuid.NewString()[:8] + "@store-test.local",
		PasswordHash: "$2a$04$not-a-real-hash",
	}
	if err := NewUserStore(db).Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE id = $1", u.ID) })
	return u
}

// newTestPost inserts a post owned by author.
func newTestPost(t *testing.T, db *sqlx.DB, author *models.User, title string) *models.Post {
	t.Helper()
	p := &models.Post{
		Title:    title,
		Slug:     "store-test-" + uuid.NewString(),
		Content:  "body of " + title,
		Category: "testing",
		AuthorID: author.ID,
	}
	if err := NewPostStore(db).Create(context.Background(), p); err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}
