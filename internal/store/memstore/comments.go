package memstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"bloghub/internal/models"
	"bloghub/internal/store"
)

// CommentStore is the in-memory comment repository.
type CommentStore struct {
	db *DB
}

func (s *CommentStore) view(c *models.Comment) *models.Comment {
	v := *c
	v.Author = s.db.summary(c.AuthorID)
	return &v
}

// FindByID returns nil if the comment does not exist.
func (s *CommentStore) FindByID(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if c, ok := s.db.comments[id]; ok {
		return s.view(c), nil
	}
	return nil, nil
}

// ListByPost returns the post's comments, newest first.
func (s *CommentStore) ListByPost(_ context.Context, postID uuid.UUID) ([]models.Comment, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := []models.Comment{}
	for _, c := range s.db.comments {
		if c.PostID == postID {
			out = append(out, *s.view(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Create inserts c and recomputes the parent post's comment count.
func (s *CommentStore) Create(_ context.Context, c *models.Comment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.posts[c.PostID]; !ok {
		return fmt.Errorf("create comment: %w", store.ErrNotFound)
	}
	if _, ok := s.db.users[c.AuthorID]; !ok {
		return fmt.Errorf("create comment: %w", store.ErrNotFound)
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := s.db.tick()
	c.CreatedAt, c.UpdatedAt = now, now

	stored := *c
	stored.Author = nil
	s.db.comments[c.ID] = &stored
	s.db.recount(c.PostID)
	return nil
}

// Update saves a comment's content.
func (s *CommentStore) Update(_ context.Context, c *models.Comment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	cur, ok := s.db.comments[c.ID]
	if !ok {
		return fmt.Errorf("update comment: %w", store.ErrNotFound)
	}
	cur.Content = c.Content
	cur.UpdatedAt = s.db.now()
	c.UpdatedAt = cur.UpdatedAt
	return nil
}

// Delete removes a comment and recomputes the parent post's comment count.
func (s *CommentStore) Delete(_ context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	c, ok := s.db.comments[id]
	if !ok {
		return fmt.Errorf("delete comment: %w", store.ErrNotFound)
	}
	delete(s.db.comments, id)
	s.db.recount(c.PostID)
	return nil
}
