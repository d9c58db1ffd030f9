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
	"bloghub/internal/store"
)

// UserProfile is the public view of an account.
type UserProfile struct {
	*models.User
	PostsCount int `json:"postsCount"`
}

// AdminUserUpdate is an administrator's edit of another account.
type AdminUserUpdate struct {
	Name    *string
	Email   *string
	IsAdmin *bool
}

// UserService covers public profiles, follow edges and account
// administration.
type UserService struct {
	users UserRepository
	posts PostRepository
	media MediaUploader
	cache PostCache
	log   *zap.Logger
}

// NewUserService creates a UserService. postCache may be nil.
func NewUserService(users UserRepository, posts PostRepository, mediaUploader MediaUploader, postCache PostCache, log *zap.Logger) *UserService {
	return &UserService{
		users: users,
		posts: posts,
		media: mediaUploader,
		cache: cacheOrNoop(postCache),
		log:   log,
	}
}

func (s *UserService) find(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, storeFailure(err)
	}
	if u == nil {
		return nil, apperr.NotFound("User not found")
	}
	return u, nil
}

// List returns every account. Administrators only.
func (s *UserService) List(ctx context.Context, p *access.Principal) ([]models.User, error) {
	if err := access.RequireAdmin(p); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, storeFailure(err)
	}
	return users, nil
}

// Get returns the public profile of id with the number of posts written.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*UserProfile, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	n, err := s.posts.CountByAuthor(ctx, id)
	if err != nil {
		return nil, storeFailure(err)
	}
	return &UserProfile{User: u, PostsCount: n}, nil
}

// AdminUpdate changes name, email or the administrator flag of id.
func (s *UserService) AdminUpdate(ctx context.Context, p *access.Principal, id uuid.UUID, in AdminUserUpdate) (*models.User, error) {
	if err := access.Authorize(p, access.User, id, access.Administer); err != nil {
		return nil, err
	}
	u, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if err := required(field{"name", *in.Name}); err != nil {
			return nil, err
		}
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		if err := required(field{"email", *in.Email}); err != nil {
			return nil, err
		}
		u.Email = normalizeEmail(*in.Email)
	}
	if in.IsAdmin != nil {
		u.IsAdmin = *in.IsAdmin
	}

	if err := s.users.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicate):
			return nil, apperr.Conflict("Email already in use")
		case errors.Is(err, store.ErrNotFound):
			return nil, apperr.NotFound("User not found")
		}
		return nil, storeFailure(err)
	}
	s.log.Info("user updated by admin",
		zap.String("user_id", id.String()),
		zap.String("admin_id", p.UserID.String()),
	)
	return u, nil
}

// Delete removes the account id along with its posts and comments. The
// profile image and every featured image of the user's posts are released
// first; release failures are logged and do not stop the deletion.
func (s *UserService) Delete(ctx context.Context, p *access.Principal, id uuid.UUID) error {
	if err := access.Authorize(p, access.User, id, access.Administer); err != nil {
		return err
	}
	u, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	owned, err := s.posts.List(ctx, models.PostFilter{AuthorID: &id})
	if err != nil {
		return storeFailure(err)
	}
	images, err := s.posts.ImagesByAuthor(ctx, id)
	if err != nil {
		return storeFailure(err)
	}
	releaseImage(ctx, s.media, s.log, models.ExternalIDOf(u.ProfilePicture))
	for _, externalID := range images {
		releaseImage(ctx, s.media, s.log, externalID)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return storeFailure(err)
	}
	for i := range owned {
		s.cache.Invalidate(ctx, owned[i].ID, owned[i].Slug)
	}

	s.log.Info("user deleted",
		zap.String("user_id", id.String()),
		zap.String("admin_id", p.UserID.String()),
		zap.Int("posts", len(owned)),
	)
	return nil
}

// Follow makes the caller a follower of id.
func (s *UserService) Follow(ctx context.Context, p *access.Principal, id uuid.UUID) error {
	if p == nil {
		return apperr.Unauthenticated("Not authorized", nil)
	}
	if p.UserID == id {
		return apperr.Validation("You cannot follow yourself")
	}
	err := s.users.Follow(ctx, p.UserID, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrDuplicate):
		return apperr.Conflict("Already following this user")
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound("User not found")
	}
	return storeFailure(err)
}

// Unfollow removes the caller from id's followers.
func (s *UserService) Unfollow(ctx context.Context, p *access.Principal, id uuid.UUID) error {
	if p == nil {
		return apperr.Unauthenticated("Not authorized", nil)
	}
	if p.UserID == id {
		return apperr.Validation("You cannot unfollow yourself")
	}
	err := s.users.Unfollow(ctx, p.UserID, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotMember):
		return apperr.Conflict("Not following this user")
	}
	return storeFailure(err)
}
