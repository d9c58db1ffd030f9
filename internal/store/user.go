// Package store provides PostgreSQL access for users, posts and comments.
// Each store wraps a *sqlx.DB and exposes typed, context-aware query methods.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"bloghub/internal/models"
)

// UserStore handles all user-related database operations.
type UserStore struct {
	db *sqlx.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

type userRow struct {
	ID             uuid.UUID  `db:"id"`
	Name           string     `db:"name"`
	Email          string     `db:"email"`
	PasswordHash   string     `db:"password_hash"`
	Bio            string     `db:"bio"`
	IsAdmin        bool       `db:"is_admin"`
	ImageID        string     `db:"image_id"`
	ImageURL       string     `db:"image_url"`
	ResetTokenHash *string    `db:"reset_token_hash"`
	ResetExpiresAt *time.Time `db:"reset_expires_at"`
	Followers      string     `db:"followers"`
	Following      string     `db:"following"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

func (r *userRow) model() *models.User {
	u := &models.User{
		ID:             r.ID,
		Name:           r.Name,
		Email:          r.Email,
		PasswordHash:   r.PasswordHash,
		Bio:            r.Bio,
		IsAdmin:        r.IsAdmin,
		Followers:      splitIDs(r.Followers),
		Following:      splitIDs(r.Following),
		ResetTokenHash: r.ResetTokenHash,
		ResetExpiresAt: r.ResetExpiresAt,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		ProfilePicture: imageOrNil(r.ImageID, r.ImageURL),
	}
	return u
}

const userColumns = `
	u.id, u.name, u.email, u.password_hash, u.bio, u.is_admin, u.image_id, u.image_url,
	u.reset_token_hash, u.reset_expires_at, u.created_at, u.updated_at,
	COALESCE((SELECT array_to_string(array_agg(f.follower_id::text), ',')
	          FROM user_follows f WHERE f.followee_id = u.id), '') AS followers,
	COALESCE((SELECT array_to_string(array_agg(f.followee_id::text), ',')
	          FROM user_follows f WHERE f.follower_id = u.id), '') AS following`

func (s *UserStore) findOne(ctx context.Context, where string, arg any) (*models.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users u WHERE `+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.model(), nil
}

// FindByID retrieves a user by id. Returns nil if not found.
func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.findOne(ctx, "u.id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// FindByEmail retrieves a user by email, case-insensitively. Returns nil if not found.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.findOne(ctx, "LOWER(u.email) = LOWER($1)", email)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// List returns all users ordered by creation date.
func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+userColumns+` FROM users u ORDER BY u.created_at ASC`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]models.User, 0, len(rows))
	for i := range rows {
		users = append(users, *rows[i].model())
	}
	return users, nil
}

// Count returns the number of users.
func (s *UserStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// Create inserts a new user, assigning its id and timestamps. Returns
// ErrDuplicate when the email is taken.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	img := imageOrEmpty(u.ProfilePicture)
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, bio, is_admin, image_id, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.Bio, u.IsAdmin, img.ExternalID, img.URL,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", translate(err))
	}
	u.Followers, u.Following = []uuid.UUID{}, []uuid.UUID{}
	return nil
}

// Update saves the mutable profile fields of u.
func (s *UserStore) Update(ctx context.Context, u *models.User) error {
	img := imageOrEmpty(u.ProfilePicture)
	err := s.db.QueryRowxContext(ctx, `
		UPDATE users
		SET name = $1, email = $2, password_hash = $3, bio = $4, is_admin = $5,
		    image_id = $6, image_url = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`, u.Name, u.Email, u.PasswordHash, u.Bio, u.IsAdmin, img.ExternalID, img.URL, u.ID,
	).Scan(&u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update user: %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update user: %w", translate(err))
	}
	return nil
}

// Delete removes a user together with their posts, comments, likes and
// follow edges. Counters of other users' posts the user liked or commented
// on are recomputed in the same transaction.
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE posts p
			SET likes_count   = (SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id AND l.user_id <> $1),
			    comment_count = (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id AND c.author_id <> $1)
			WHERE p.author_id <> $1
			  AND p.id IN (SELECT post_id FROM post_likes WHERE user_id = $1
			               UNION SELECT post_id FROM comments WHERE author_id = $1)
		`, id); err != nil {
			return fmt.Errorf("recompute counters: %w", err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return requireAffected(res, "delete user")
	})
}

// SetResetToken stores the hash and expiry of a freshly issued reset token.
func (s *UserStore) SetResetToken(ctx context.Context, id uuid.UUID, hash string, expires time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET reset_token_hash = $1, reset_expires_at = $2, updated_at = NOW() WHERE id = $3
	`, hash, expires, id)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	return requireAffected(res, "set reset token")
}

// ClearResetToken removes any pending reset token.
func (s *UserStore) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET reset_token_hash = NULL, reset_expires_at = NULL, updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("clear reset token: %w", err)
	}
	return nil
}

// ConsumeResetToken sets a new password hash on the user holding an
// unexpired token with the given hash and clears the token, in a single
// statement. Returns nil when no user matches, so a token succeeds at
// most once.
func (s *UserStore) ConsumeResetToken(ctx context.Context, hash, passwordHash string, now time.Time) (*models.User, error) {
	var id uuid.UUID
	err := s.db.GetContext(ctx, &id, `
		UPDATE users
		SET password_hash = $1, reset_token_hash = NULL, reset_expires_at = NULL, updated_at = NOW()
		WHERE reset_token_hash = $2 AND reset_expires_at > $3
		RETURNING id
	`, passwordHash, hash, now)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("consume reset token: %w", err)
	}
	return s.FindByID(ctx, id)
}

// Follow records that followerID follows followeeID. Returns ErrDuplicate
// if the edge exists and ErrNotFound if either user does not.
func (s *UserStore) Follow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_follows (follower_id, followee_id) VALUES ($1, $2)
	`, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("follow user: %w", translate(err))
	}
	return nil
}

// Unfollow removes a follow edge. Returns ErrNotMember if it did not exist.
func (s *UserStore) Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM user_follows WHERE follower_id = $1 AND followee_id = $2
	`, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("unfollow user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("unfollow user: %w", ErrNotMember)
	}
	return nil
}
