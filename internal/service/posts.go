// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bloghub/internal/access"
	"bloghub/internal/apperr"
	"bloghub/internal/models"
	"bloghub/internal/slug"
	"bloghub/internal/store"
)

// PostInput is a new post. Image, when non-empty, becomes the featured image.
type PostInput struct {
	Title    string
	Content  string
	Excerpt  string
	Category string
	Image    []byte
}

// PostUpdate edits a post. Nil fields are left unchanged.
type PostUpdate struct {
	Title    *string
	Content  *string
	Excerpt  *string
	Category *string
	Image    []byte
}

// PostQuery selects a page of the post listing. Page is 1-indexed.
type PostQuery struct {
	Page     int
	Keyword  string
	Category string
}

// PostPage is one page of the listing.
type PostPage struct {
	Posts []models.Post
	Page  int
	Pages int
	Total int
}

// PostService manages posts and their likes.
type PostService struct {
	posts       PostRepository
	media       MediaUploader
	cache       PostCache
	mediaFolder string
	log         *zap.Logger
}

// NewPostService creates a PostService. postCache may be nil.
func NewPostService(posts PostRepository, mediaUploader MediaUploader, postCache PostCache, mediaFolder string, log *zap.Logger) *PostService {
	return &PostService{
		posts:       posts,
		media:       mediaUploader,
		cache:       cacheOrNoop(postCache),
		mediaFolder: mediaFolder,
		log:         log,
	}
}

// slugFor derives the slug of title and rejects it when another post
// already holds it.
func (s *PostService) slugFor(ctx context.Context, title string) (string, error) {
	sl := slug.Generate(title)
	if sl == "" {
		return "", apperr.Validation("Title must contain at least one letter or digit")
	}
	existing, err := s.posts.FindBySlug(ctx, sl)
	if err != nil {
		return "", storeFailure(err)
	}
	if existing != nil {
		return "", apperr.Conflict("Post already exists")
	}
	return sl, nil
}

func (s *PostService) find(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, storeFailure(err)
	}
	if p == nil {
		return nil, apperr.NotFound("Post not found")
	}
	return p, nil
}

// Create writes a new post owned by the caller. The slug comes from the
// title; a title whose slug is taken is rejected.
func (s *PostService) Create(ctx context.Context, pr *access.Principal, in PostInput) (*models.Post, error) {
	if pr == nil {
		return nil, apperr.Unauthenticated("Not authorized", nil)
	}
	if err := required(field{"title", in.Title}, field{"content", in.Content}, field{"category", in.Category}); err != nil {
		return nil, err
	}
	sl, err := s.slugFor(ctx, in.Title)
	if err != nil {
		return nil, err
	}

	p := &models.Post{
		Title:    strings.TrimSpace(in.Title),
		Slug:     sl,
		Content:  in.Content,
		Excerpt:  strings.TrimSpace(in.Excerpt),
		Category: strings.TrimSpace(in.Category),
		AuthorID: pr.UserID,
	}
	if len(in.Image) > 0 {
		img, err := uploadImage(ctx, s.media, in.Image, s.mediaFolder)
		if err != nil {
			return nil, err
		}
		p.FeaturedImage = img
	}

	if err := s.posts.Create(ctx, p); err != nil {
		releaseImage(ctx, s.media, s.log, models.ExternalIDOf(p.FeaturedImage))
		switch {
		case errors.Is(err, store.ErrDuplicate):
			return nil, apperr.Conflict("Post already exists")
		case errors.Is(err, store.ErrNotFound):
			return nil, apperr.Unauthenticated("Not authorized, user no longer exists", nil)
		}
		return nil, storeFailure(err)
	}

	s.log.Info("post created",
		zap.String("post_id", p.ID.String()),
		zap.String("slug", p.Slug),
		zap.String("author_id", pr.UserID.String()),
	)
	return s.find(ctx, p.ID)
}

// List returns one page of posts, newest first.
func (s *PostService) List(ctx context.Context, q PostQuery) (*PostPage, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	f := models.PostFilter{
		Keyword:  q.Keyword,
		Category: q.Category,
		Limit:    models.PostPageSize,
		Offset:   (page - 1) * models.PostPageSize,
	}

	total, err := s.posts.Count(ctx, f)
	if err != nil {
		return nil, storeFailure(err)
	}
	posts, err := s.posts.List(ctx, f)
	if err != nil {
		return nil, storeFailure(err)
	}
	return &PostPage{
		Posts: posts,
		Page:  page,
		Pages: models.TotalPages(total, models.PostPageSize),
		Total: total,
	}, nil
}

// ListByAuthor returns every post written by authorID, newest first.
func (s *PostService) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.Post, error) {
	posts, err := s.posts.List(ctx, models.PostFilter{AuthorID: &authorID})
	if err != nil {
		return nil, storeFailure(err)
	}
	return posts, nil
}

// Get returns a post by id or by slug, reading through the cache.
func (s *PostService) Get(ctx context.Context, idOrSlug string) (*models.Post, error) {
	if id, err := uuid.Parse(idOrSlug); err == nil {
		if p := s.cache.GetByID(ctx, id); p != nil {
			return p, nil
		}
		p, err := s.posts.FindByID(ctx, id)
		if err != nil {
			return nil, storeFailure(err)
		}
		if p != nil {
			s.cache.Set(ctx, p)
			return p, nil
		}
	}

	if p := s.cache.GetBySlug(ctx, idOrSlug); p != nil {
		return p, nil
	}
	p, err := s.posts.FindBySlug(ctx, idOrSlug)
	if err != nil {
		return nil, storeFailure(err)
	}
	if p == nil {
		return nil, apperr.NotFound("Post not found")
	}
	s.cache.Set(ctx, p)
	return p, nil
}

// Update edits a post. Only the owner may update it. The slug is
// recomputed only when the title changes; a new image replaces the old
// one, which is released after the save.
func (s *PostService) Update(ctx context.Context, pr *access.Principal, id uuid.UUID, in PostUpdate) (*models.Post, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(pr, access.Post, p.AuthorID, access.Update); err != nil {
		return nil, err
	}

	oldSlug := p.Slug
	if in.Title != nil {
		if err := required(field{"title", *in.Title}); err != nil {
			return nil, err
		}
		title := strings.TrimSpace(*in.Title)
		if title != p.Title {
			if sl := slug.Generate(title); sl != p.Slug {
				if sl, err = s.slugFor(ctx, title); err != nil {
					return nil, err
				}
				p.Slug = sl
			}
			p.Title = title
		}
	}
	if in.Content != nil {
		if err := required(field{"content", *in.Content}); err != nil {
			return nil, err
		}
		p.Content = *in.Content
	}
	if in.Excerpt != nil {
		p.Excerpt = strings.TrimSpace(*in.Excerpt)
	}
	if in.Category != nil {
		if err := required(field{"category", *in.Category}); err != nil {
			return nil, err
		}
		p.Category = strings.TrimSpace(*in.Category)
	}

	oldImage := models.ExternalIDOf(p.FeaturedImage)
	var uploaded *models.Image
	if len(in.Image) > 0 {
		if uploaded, err = uploadImage(ctx, s.media, in.Image, s.mediaFolder); err != nil {
			return nil, err
		}
		p.FeaturedImage = uploaded
	}

	if err := s.posts.Update(ctx, p); err != nil {
		if uploaded != nil {
			releaseImage(ctx, s.media, s.log, uploaded.ExternalID)
		}
		switch {
		case errors.Is(err, store.ErrDuplicate):
			return nil, apperr.Conflict("Post already exists")
		case errors.Is(err, store.ErrNotFound):
			return nil, apperr.NotFound("Post not found")
		}
		return nil, storeFailure(err)
	}
	if uploaded != nil {
		releaseImage(ctx, s.media, s.log, oldImage)
	}
	s.cache.Invalidate(ctx, p.ID, oldSlug, p.Slug)

	s.log.Info("post updated", zap.String("post_id", p.ID.String()), zap.String("slug", p.Slug))
	return s.find(ctx, p.ID)
}

// Delete removes a post. Only the owner may delete it. The featured image
// is released first; a failed release is logged and the post is still
// removed.
func (s *PostService) Delete(ctx context.Context, pr *access.Principal, id uuid.UUID) error {
	p, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := access.Authorize(pr, access.Post, p.AuthorID, access.Delete); err != nil {
		return err
	}

	releaseImage(ctx, s.media, s.log, models.ExternalIDOf(p.FeaturedImage))
	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("Post not found")
		}
		return storeFailure(err)
	}
	s.cache.Invalidate(ctx, p.ID, p.Slug)

	s.log.Info("post deleted", zap.String("post_id", id.String()), zap.String("user_id", pr.UserID.String()))
	return nil
}

// Like adds the caller to the post's like set. Liking twice is a conflict
// and leaves the count unchanged.
func (s *PostService) Like(ctx context.Context, pr *access.Principal, id uuid.UUID) (*models.LikeState, error) {
	if pr == nil {
		return nil, apperr.Unauthenticated("Not authorized", nil)
	}
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	state, err := s.posts.AddLike(ctx, id, pr.UserID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicate):
			return nil, apperr.Conflict("Post already liked")
		case errors.Is(err, store.ErrNotFound):
			return nil, apperr.NotFound("Post not found")
		}
		return nil, storeFailure(err)
	}
	s.cache.Invalidate(ctx, p.ID, p.Slug)
	return state, nil
}

// Unlike removes the caller from the post's like set. Unliking a post
// that was not liked is a conflict and leaves the count unchanged.
func (s *PostService) Unlike(ctx context.Context, pr *access.Principal, id uuid.UUID) (*models.LikeState, error) {
	if pr == nil {
		return nil, apperr.Unauthenticated("Not authorized", nil)
	}
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	state, err := s.posts.RemoveLike(ctx, id, pr.UserID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotMember):
			return nil, apperr.Conflict("Post not liked yet")
		case errors.Is(err, store.ErrNotFound):
			return nil, apperr.NotFound("Post not found")
		}
		return nil, storeFailure(err)
	}
	s.cache.Invalidate(ctx, p.ID, p.Slug)
	return state, nil
}
