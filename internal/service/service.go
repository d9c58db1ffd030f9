// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package service holds the resource services for accounts, posts and
// comments. Services validate input, apply the ownership rules from
// package access, keep derived fields in step with the data they derive
// from, and translate store and delegate errors into apperr kinds.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bloghub/internal/apperr"
	"bloghub/internal/media"
	"bloghub/internal/models"
)

// UserRepository persists user accounts and follow edges. Find methods
// return (nil, nil) when nothing matches.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetResetToken(ctx context.Context, id uuid.UUID, hash string, expires time.Time) error
	ClearResetToken(ctx context.Context, id uuid.UUID) error
	ConsumeResetToken(ctx context.Context, hash, passwordHash string, now time.Time) (*models.User, error)
	Follow(ctx context.Context, followerID, followeeID uuid.UUID) error
	Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error
}

// PostRepository persists posts and their like sets.
type PostRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	List(ctx context.Context, f models.PostFilter) ([]models.Post, error)
	Count(ctx context.Context, f models.PostFilter) (int, error)
	CountByAuthor(ctx context.Context, authorID uuid.UUID) (int, error)
	ImagesByAuthor(ctx context.Context, authorID uuid.UUID) ([]string, error)
	Create(ctx context.Context, p *models.Post) error
	Update(ctx context.Context, p *models.Post) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddLike(ctx context.Context, postID, userID uuid.UUID) (*models.LikeState, error)
	RemoveLike(ctx context.Context, postID, userID uuid.UUID) (*models.LikeState, error)
}

// CommentRepository persists comments. Create and Delete keep the parent
// post's comment count in step.
type CommentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]models.Comment, error)
	Create(ctx context.Context, c *models.Comment) error
	Update(ctx context.Context, c *models.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MediaUploader hosts images.
type MediaUploader interface {
	Upload(ctx context.Context, data []byte, folder string) (*models.Image, error)
	Delete(ctx context.Context, externalID string) error
}

// Mailer delivers notification email.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// PostCache is a read-through cache for single posts. A nil PostCache
// passed to a constructor disables caching.
type PostCache interface {
	GetByID(ctx context.Context, id uuid.UUID) *models.Post
	GetBySlug(ctx context.Context, slug string) *models.Post
	Set(ctx context.Context, p *models.Post)
	Invalidate(ctx context.Context, id uuid.UUID, slugs ...string)
}

type noCache struct{}

func (noCache) GetByID(context.Context, uuid.UUID) *models.Post  { return nil }
func (noCache) GetBySlug(context.Context, string) *models.Post   { return nil }
func (noCache) Set(context.Context, *models.Post)                {}
func (noCache) Invalidate(context.Context, uuid.UUID, ...string) {}

func cacheOrNoop(c PostCache) PostCache {
	if c == nil {
		return noCache{}
	}
	return c
}

// storeFailure classifies an error the caller did not expect from the
// store.
func storeFailure(err error) error {
	return apperr.StoreUnavailable(err)
}

// uploadImage stores data through m, classifying rejections as validation
// errors and everything else as an upstream failure.
func uploadImage(ctx context.Context, m MediaUploader, data []byte, folder string) (*models.Image, error) {
	img, err := m.Upload(ctx, data, folder)
	if err != nil {
		if media.IsRejection(err) {
			return nil, apperr.Validation(media.RejectionMessage(err))
		}
		return nil, apperr.Upstream("Image upload failed", err)
	}
	return img, nil
}

// releaseImage deletes a hosted image, logging instead of failing.
func releaseImage(ctx context.Context, m MediaUploader, log *zap.Logger, externalID string) {
	if externalID == "" {
		return
	}
	if err := m.Delete(ctx, externalID); err != nil {
		log.Warn("release image failed", zap.String("external_id", externalID), zap.Error(err))
	}
}

// field is a named input value checked by required.
type field struct {
	name, value string
}

// required fails with a validation error listing every blank field.
func required(fields ...field) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return apperr.Validation("Please provide " + strings.Join(missing, ", "))
}
