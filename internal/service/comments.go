package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bloghub/internal/access"
	"bloghub/internal/apperr"
	"bloghub/internal/models"
	"bloghub/internal/store"
)

// CommentService manages comments. The parent post's comment count is
// maintained by the repository in the same step as the comment write.
type CommentService struct {
	comments CommentRepository
	posts    PostRepository
	cache    PostCache
	log      *zap.Logger
}

// NewCommentService creates a CommentService. postCache may be nil.
func NewCommentService(comments CommentRepository, posts PostRepository, postCache PostCache, log *zap.Logger) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		cache:    cacheOrNoop(postCache),
		log:      log,
	}
}

func (s *CommentService) find(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	c, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, storeFailure(err)
	}
	if c == nil {
		return nil, apperr.NotFound("Comment not found")
	}
	return c, nil
}

// invalidatePost drops the cached copy of postID, whose comment count
// just changed.
func (s *CommentService) invalidatePost(ctx context.Context, postID uuid.UUID) {
	p, err := s.posts.FindByID(ctx, postID)
	if err != nil || p == nil {
		s.cache.Invalidate(ctx, postID)
		return
	}
	s.cache.Invalidate(ctx, postID, p.Slug)
}

// Create adds a comment by the caller to postID.
func (s *CommentService) Create(ctx context.Context, pr *access.Principal, postID uuid.UUID, content string) (*models.Comment, error) {
	if pr == nil {
		return nil, apperr.Unauthenticated("Not authorized", nil)
	}
	if err := required(field{"content", content}); err != nil {
		return nil, err
	}

	c := &models.Comment{PostID: postID, AuthorID: pr.UserID, Content: content}
	if err := s.comments.Create(ctx, c); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("Post not found")
		}
		return nil, storeFailure(err)
	}
	s.invalidatePost(ctx, postID)

	s.log.Info("comment created",
		zap.String("comment_id", c.ID.String()),
		zap.String("post_id", postID.String()),
	)
	return s.find(ctx, c.ID)
}

// ListForPost returns the comments on postID, newest first.
func (s *CommentService) ListForPost(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, storeFailure(err)
	}
	return comments, nil
}

// Update edits a comment's content. Only its author may do so.
func (s *CommentService) Update(ctx context.Context, pr *access.Principal, id uuid.UUID, content string) (*models.Comment, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(pr, access.Comment, c.AuthorID, access.Update); err != nil {
		return nil, err
	}
	if err := required(field{"content", content}); err != nil {
		return nil, err
	}

	c.Content = content
	if err := s.comments.Update(ctx, c); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("Comment not found")
		}
		return nil, storeFailure(err)
	}
	return c, nil
}

// Delete removes a comment. Its author or an administrator may do so.
func (s *CommentService) Delete(ctx context.Context, pr *access.Principal, id uuid.UUID) error {
	c, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := access.Authorize(pr, access.Comment, c.AuthorID, access.Delete); err != nil {
		return err
	}

	if err := s.comments.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("Comment not found")
		}
		return storeFailure(err)
	}
	s.invalidatePost(ctx, c.PostID)

	s.log.Info("comment deleted",
		zap.String("comment_id", id.String()),
		zap.String("user_id", pr.UserID.String()),
	)
	return nil
}
