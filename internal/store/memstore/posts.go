package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"bloghub/internal/models"
	"bloghub/internal/store"
)

// PostStore is the in-memory post repository.
type PostStore struct {
	db *DB
}

func (db *DB) postView(p *models.Post) *models.Post {
	c := *p
	c.FeaturedImage = cloneImage(p.FeaturedImage)
	c.Likes = db.likeSet(p.ID)
	c.Author = db.summary(p.AuthorID)
	return &c
}

// deletePost removes a post and its likes and comments. Callers hold mu.
func (db *DB) deletePost(id uuid.UUID) {
	for e := range db.likes {
		if e.a == id {
			delete(db.likes, e)
		}
	}
	for cid, c := range db.comments {
		if c.PostID == id {
			delete(db.comments, cid)
		}
	}
	delete(db.posts, id)
}

func (s *PostStore) bySlug(slug string) *models.Post {
	for _, p := range s.db.posts {
		if p.Slug == slug {
			return p
		}
	}
	return nil
}

// FindByID returns nil if the post does not exist.
func (s *PostStore) FindByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if p, ok := s.db.posts[id]; ok {
		return s.db.postView(p), nil
	}
	return nil, nil
}

// FindBySlug returns nil if no post has the slug.
func (s *PostStore) FindBySlug(_ context.Context, slug string) (*models.Post, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if p := s.bySlug(slug); p != nil {
		return s.db.postView(p), nil
	}
	return nil, nil
}

func matches(p *models.Post, f models.PostFilter) bool {
	if kw := lower(f.Keyword); kw != "" {
		if !strings.Contains(strings.ToLower(p.Title), kw) &&
			!strings.Contains(strings.ToLower(p.Excerpt), kw) &&
			!strings.Contains(strings.ToLower(p.Content), kw) {
			return false
		}
	}
	if cat := lower(f.Category); cat != "" && strings.ToLower(p.Category) != cat {
		return false
	}
	if f.AuthorID != nil && p.AuthorID != *f.AuthorID {
		return false
	}
	return true
}

func (s *PostStore) filtered(f models.PostFilter) []*models.Post {
	var out []*models.Post
	for _, p := range s.db.posts {
		if matches(p, f) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// List returns posts matching f, newest first.
func (s *PostStore) List(_ context.Context, f models.PostFilter) ([]models.Post, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	all := s.filtered(f)
	if f.Offset > 0 {
		if f.Offset >= len(all) {
			all = nil
		} else {
			all = all[f.Offset:]
		}
	}
	if f.Limit > 0 && len(all) > f.Limit {
		all = all[:f.Limit]
	}
	out := make([]models.Post, 0, len(all))
	for _, p := range all {
		out = append(out, *s.db.postView(p))
	}
	return out, nil
}

// Count returns the number of posts matching f.
func (s *PostStore) Count(_ context.Context, f models.PostFilter) (int, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return len(s.filtered(f)), nil
}

// CountByAuthor returns the number of posts written by authorID.
func (s *PostStore) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int, error) {
	return s.Count(ctx, models.PostFilter{AuthorID: &authorID})
}

// ImagesByAuthor returns the external ids of featured images on the author's posts.
func (s *PostStore) ImagesByAuthor(_ context.Context, authorID uuid.UUID) ([]string, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	var ids []string
	for _, p := range s.db.posts {
		if p.AuthorID == authorID && models.ExternalIDOf(p.FeaturedImage) != "" {
			ids = append(ids, p.FeaturedImage.ExternalID)
		}
	}
	return ids, nil
}

// Create inserts p with zero counters. Returns store.ErrDuplicate on a
// taken slug and store.ErrNotFound when the author does not exist.
func (s *PostStore) Create(_ context.Context, p *models.Post) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if s.bySlug(p.Slug) != nil {
		return fmt.Errorf("create post: %w", store.ErrDuplicate)
	}
	if _, ok := s.db.users[p.AuthorID]; !ok {
		return fmt.Errorf("create post: %w", store.ErrNotFound)
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := s.db.tick()
	p.CreatedAt, p.UpdatedAt = now, now
	p.Likes, p.LikesCount, p.CommentCount = []uuid.UUID{}, 0, 0

	stored := *p
	stored.FeaturedImage = cloneImage(p.FeaturedImage)
	stored.Likes, stored.Author = nil, nil
	s.db.posts[p.ID] = &stored
	return nil
}

// Update saves the editable fields of p.
func (s *PostStore) Update(_ context.Context, p *models.Post) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	cur, ok := s.db.posts[p.ID]
	if !ok {
		return fmt.Errorf("update post: %w", store.ErrNotFound)
	}
	if other := s.bySlug(p.Slug); other != nil && other.ID != p.ID {
		return fmt.Errorf("update post: %w", store.ErrDuplicate)
	}
	cur.Title = p.Title
	cur.Slug = p.Slug
	cur.Content = p.Content
	cur.Excerpt = p.Excerpt
	cur.Category = p.Category
	cur.FeaturedImage = cloneImage(p.FeaturedImage)
	cur.UpdatedAt = s.db.now()
	p.UpdatedAt = cur.UpdatedAt
	return nil
}

// Delete removes a post with its likes and comments.
func (s *PostStore) Delete(_ context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.posts[id]; !ok {
		return fmt.Errorf("delete post: %w", store.ErrNotFound)
	}
	s.db.deletePost(id)
	return nil
}

// AddLike adds userID to the like set and recomputes the counter.
func (s *PostStore) AddLike(_ context.Context, postID, userID uuid.UUID) (*models.LikeState, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p, ok := s.db.posts[postID]
	if !ok {
		return nil, fmt.Errorf("add like: %w", store.ErrNotFound)
	}
	if _, ok := s.db.users[userID]; !ok {
		return nil, fmt.Errorf("add like: %w", store.ErrNotFound)
	}
	e := edge{postID, userID}
	if _, ok := s.db.likes[e]; ok {
		return nil, fmt.Errorf("add like: %w", store.ErrDuplicate)
	}
	s.db.likes[e] = s.db.tick()
	s.db.recount(postID)
	return &models.LikeState{Likes: s.db.likeSet(postID), LikesCount: p.LikesCount}, nil
}

// RemoveLike removes userID from the like set and recomputes the counter.
func (s *PostStore) RemoveLike(_ context.Context, postID, userID uuid.UUID) (*models.LikeState, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p, ok := s.db.posts[postID]
	if !ok {
		return nil, fmt.Errorf("remove like: %w", store.ErrNotFound)
	}
	e := edge{postID, userID}
	if _, ok := s.db.likes[e]; !ok {
		return nil, fmt.Errorf("remove like: %w", store.ErrNotMember)
	}
	delete(s.db.likes, e)
	s.db.recount(postID)
	return &models.LikeState{Likes: s.db.likeSet(postID), LikesCount: p.LikesCount}, nil
}
