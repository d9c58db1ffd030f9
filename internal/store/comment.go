// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

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

// CommentStore handles comment persistence and keeps posts.comment_count
// in step with the comments table.
type CommentStore struct {
	db *sqlx.DB
}

// NewCommentStore creates a new CommentStore.
func NewCommentStore(db *sqlx.DB) *CommentStore {
	return &CommentStore{db: db}
}

type commentRow struct {
	ID             uuid.UUID `db:"id"`
	PostID         uuid.UUID `db:"post_id"`
	AuthorID       uuid.UUID `db:"author_id"`
	Content        string    `db:"content"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
	AuthorName     string    `db:"author_name"`
	AuthorBio      string    `db:"author_bio"`
	AuthorImageID  string    `db:"author_image_id"`
	AuthorImageURL string    `db:"author_image_url"`
}

func (r *commentRow) model() *models.Comment {
	return &models.Comment{
		ID:        r.ID,
		PostID:    r.PostID,
		AuthorID:  r.AuthorID,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Author: &models.AuthorSummary{
			ID:             r.AuthorID,
			Name:           r.AuthorName,
			Bio:            r.AuthorBio,
			ProfilePicture: imageOrNil(r.AuthorImageID, r.AuthorImageURL),
		},
	}
}

const commentSelect = `
	SELECT c.id, c.post_id, c.author_id, c.content, c.created_at, c.updated_at,
	       u.name AS author_name, u.bio AS author_bio,
	       u.image_id AS author_image_id, u.image_url AS author_image_url
	FROM comments c
	JOIN users u ON u.id = c.author_id`

// FindByID retrieves a comment. Returns nil if not found.
func (s *CommentStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var row commentRow
	err := s.db.GetContext(ctx, &row, commentSelect+` WHERE c.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return row.model(), nil
}

// ListByPost returns a post's comments, newest first.
func (s *CommentStore) ListByPost(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	var rows []commentRow
	err := s.db.SelectContext(ctx, &rows, commentSelect+`
		WHERE c.post_id = $1 ORDER BY c.created_at DESC, c.id DESC`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	comments := make([]models.Comment, 0, len(rows))
	for i := range rows {
		comments = append(comments, *rows[i].model())
	}
	return comments, nil
}

// Create inserts a comment and recomputes the parent post's comment_count
// in the same transaction. Returns ErrNotFound if the post does not exist.
func (s *CommentStore) Create(ctx context.Context, c *models.Comment) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := lockPost(ctx, tx, c.PostID); err != nil {
			return err
		}
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO comments (id, post_id, author_id, content)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at, updated_at
		`, c.ID, c.PostID, c.AuthorID, c.Content).Scan(&c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return translate(err)
		}
		return recomputeComments(ctx, tx, c.PostID)
	})
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// Update saves a comment's content.
func (s *CommentStore) Update(ctx context.Context, c *models.Comment) error {
	err := s.db.QueryRowxContext(ctx, `
		UPDATE comments SET content = $1, updated_at = NOW() WHERE id = $2 RETURNING updated_at
	`, c.Content, c.ID).Scan(&c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update comment: %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return nil
}

// Delete removes a comment and recomputes the parent post's comment_count
// in the same transaction.
func (s *CommentStore) Delete(ctx context.Context, id uuid.UUID) error {
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var postID uuid.UUID
		err := tx.GetContext(ctx, &postID, `SELECT post_id FROM comments WHERE id = $1`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := lockPost(ctx, tx, postID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return recomputeComments(ctx, tx, postID)
	})
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

func recomputeComments(ctx context.Context, tx *sqlx.Tx, postID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE posts p
		SET comment_count = (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id)
		WHERE p.id = $1
	`, postID)
	return err
}
