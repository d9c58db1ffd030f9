// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"bloghub/internal/models"
)

// PostStore handles post and like persistence.
type PostStore struct {
	db *sqlx.DB
}

// NewPostStore creates a new PostStore.
func NewPostStore(db *sqlx.DB) *PostStore {
	return &PostStore{db: db}
}

type postRow struct {
	ID           uuid.UUID `db:"id"`
	Title        string    `db:"title"`
	Slug         string    `db:"slug"`
	Content      string    `db:"content"`
	Excerpt      string    `db:"excerpt"`
	Category     string    `db:"category"`
	AuthorID     uuid.UUID `db:"author_id"`
	ImageID      string    `db:"image_id"`
	ImageURL     string    `db:"image_url"`
	Likes        string    `db:"likes"`
	LikesCount   int       `db:"likes_count"`
	CommentCount int       `db:"comment_count"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`

	AuthorName     string `db:"author_name"`
	AuthorBio      string `db:"author_bio"`
	AuthorImageID  string `db:"author_image_id"`
	AuthorImageURL string `db:"author_image_url"`
}

func (r *postRow) model() *models.Post {
	return &models.Post{
		ID:            r.ID,
		Title:         r.Title,
		Slug:          r.Slug,
		Content:       r.Content,
		Excerpt:       r.Excerpt,
		Category:      r.Category,
		AuthorID:      r.AuthorID,
		FeaturedImage: imageOrNil(r.ImageID, r.ImageURL),
		Likes:         splitIDs(r.Likes),
		LikesCount:    r.LikesCount,
		CommentCount:  r.CommentCount,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		Author: &models.AuthorSummary{
			ID:             r.AuthorID,
			Name:           r.AuthorName,
			Bio:            r.AuthorBio,
			ProfilePicture: imageOrNil(r.AuthorImageID, r.AuthorImageURL),
		},
	}
}

const postSelect = `
	SELECT p.id, p.title, p.slug, p.content, p.excerpt, p.category, p.author_id,
	       p.image_id, p.image_url, p.likes_count, p.comment_count, p.created_at, p.updated_at,
	       COALESCE((SELECT array_to_string(array_agg(l.user_id::text), ',')
	                 FROM post_likes l WHERE l.post_id = p.id), '') AS likes,
	       u.name AS author_name, u.bio AS author_bio,
	       u.image_id AS author_image_id, u.image_url AS author_image_url
	FROM posts p
	JOIN users u ON u.id = p.author_id`

func (s *PostStore) findOne(ctx context.Context, where string, arg any) (*models.Post, error) {
	var row postRow
	err := s.db.GetContext(ctx, &row, postSelect+` WHERE `+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.model(), nil
}

// FindByID retrieves a post with its author summary. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	p, err := s.findOne(ctx, "p.id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// FindBySlug retrieves a post by slug. Returns nil if not found.
func (s *PostStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	p, err := s.findOne(ctx, "p.slug = $1", slug)
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

// filterClause builds the WHERE clause and arguments for a PostFilter.
func filterClause(f models.PostFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		ph := next("%" + escapeLike(kw) + "%")
		conds = append(conds, fmt.Sprintf(
			`(p.title ILIKE %[1]s ESCAPE '\' OR p.excerpt ILIKE %[1]s ESCAPE '\' OR p.content ILIKE %[1]s ESCAPE '\')`, ph))
	}
	if cat := strings.TrimSpace(f.Category); cat != "" {
		conds = append(conds, "LOWER(p.category) = LOWER("+next(cat)+")")
	}
	if f.AuthorID != nil {
		conds = append(conds, "p.author_id = "+next(*f.AuthorID))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns posts matching f, newest first.
func (s *PostStore) List(ctx context.Context, f models.PostFilter) ([]models.Post, error) {
	where, args := filterClause(f)
	q := postSelect + where + " ORDER BY p.created_at DESC, p.id DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += " LIMIT $" + strconv.Itoa(len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		q += " OFFSET $" + strconv.Itoa(len(args))
	}

	var rows []postRow
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	posts := make([]models.Post, 0, len(rows))
	for i := range rows {
		posts = append(posts, *rows[i].model())
	}
	return posts, nil
}

// Count returns the number of posts matching f, ignoring Limit and Offset.
func (s *PostStore) Count(ctx context.Context, f models.PostFilter) (int, error) {
	where, args := filterClause(f)
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM posts p`+where, args...); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

// CountByAuthor returns the number of posts written by authorID.
func (s *PostStore) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int, error) {
	return s.Count(ctx, models.PostFilter{AuthorID: &authorID})
}

// ImagesByAuthor returns the external ids of every featured image on
// posts written by authorID.
func (s *PostStore) ImagesByAuthor(ctx context.Context, authorID uuid.UUID) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids, `
		SELECT image_id FROM posts WHERE author_id = $1 AND image_id <> ''
	`, authorID)
	if err != nil {
		return nil, fmt.Errorf("list post images: %w", err)
	}
	return ids, nil
}

// Create inserts a new post with zero counters. Returns ErrDuplicate when
// the slug is taken.
func (s *PostStore) Create(ctx context.Context, p *models.Post) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	img := imageOrEmpty(p.FeaturedImage)
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO posts (id, title, slug, content, excerpt, category, author_id, image_id, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, p.ID, p.Title, p.Slug, p.Content, p.Excerpt, p.Category, p.AuthorID, img.ExternalID, img.URL,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create post: %w", translate(err))
	}
	p.Likes, p.LikesCount, p.CommentCount = []uuid.UUID{}, 0, 0
	return nil
}

// Update saves the editable fields of p. Counters are not touched.
func (s *PostStore) Update(ctx context.Context, p *models.Post) error {
	img := imageOrEmpty(p.FeaturedImage)
	err := s.db.QueryRowxContext(ctx, `
		UPDATE posts
		SET title = $1, slug = $2, content = $3, excerpt = $4, category = $5,
		    image_id = $6, image_url = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`, p.Title, p.Slug, p.Content, p.Excerpt, p.Category, img.ExternalID, img.URL, p.ID,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update post: %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update post: %w", translate(err))
	}
	return nil
}

// Delete removes a post; its likes and comments cascade.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return requireAffected(res, "delete post")
}

// AddLike adds userID to the post's like set and recomputes likes_count in
// the same transaction. Returns ErrDuplicate if already liked.
func (s *PostStore) AddLike(ctx context.Context, postID, userID uuid.UUID) (*models.LikeState, error) {
	var state *models.LikeState
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := lockPost(ctx, tx, postID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)
		`, postID, userID); err != nil {
			return translate(err)
		}
		var err error
		state, err = recomputeLikes(ctx, tx, postID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("add like: %w", err)
	}
	return state, nil
}

// RemoveLike removes userID from the post's like set and recomputes
// likes_count in the same transaction. Returns ErrNotMember if the post
// was not liked.
func (s *PostStore) RemoveLike(ctx context.Context, postID, userID uuid.UUID) (*models.LikeState, error) {
	var state *models.LikeState
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := lockPost(ctx, tx, postID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2
		`, postID, userID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotMember
		}
		state, err = recomputeLikes(ctx, tx, postID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("remove like: %w", err)
	}
	return state, nil
}

// lockPost takes the post's row lock so concurrent counter recomputations
// on the same post serialize. Returns ErrNotFound if the post is gone.
func lockPost(ctx context.Context, tx *sqlx.Tx, postID uuid.UUID) error {
	var id uuid.UUID
	err := tx.GetContext(ctx, &id, `SELECT id FROM posts WHERE id = $1 FOR UPDATE`, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func recomputeLikes(ctx context.Context, tx *sqlx.Tx, postID uuid.UUID) (*models.LikeState, error) {
	var row struct {
		Likes      string `db:"likes"`
		LikesCount int    `db:"likes_count"`
	}
	err := tx.GetContext(ctx, &row, `
		UPDATE posts p
		SET likes_count = (SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id)
		WHERE p.id = $1
		RETURNING p.likes_count,
		          COALESCE((SELECT array_to_string(array_agg(l.user_id::text), ',')
		                    FROM post_likes l WHERE l.post_id = p.id), '') AS likes
	`, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &models.LikeState{Likes: splitIDs(row.Likes), LikesCount: row.LikesCount}, nil
}
