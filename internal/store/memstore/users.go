package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"bloghub/internal/models"
	"bloghub/internal/store"
)

// UserStore is the in-memory user repository.
type UserStore struct {
	db *DB
}

func (s *UserStore) view(u *models.User) *models.User {
	c := *u
	c.ProfilePicture = cloneImage(u.ProfilePicture)
	c.ResetTokenHash = cloneString(u.ResetTokenHash)
	c.ResetExpiresAt = cloneTime(u.ResetExpiresAt)
	c.Followers, c.Following = []uuid.UUID{}, []uuid.UUID{}
	for e := range s.db.follows {
		if e.b == u.ID {
			c.Followers = append(c.Followers, e.a)
		}
		if e.a == u.ID {
			c.Following = append(c.Following, e.b)
		}
	}
	return &c
}

// FindByID returns nil if the user does not exist.
func (s *UserStore) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if u, ok := s.db.users[id]; ok {
		return s.view(u), nil
	}
	return nil, nil
}

// FindByEmail matches case-insensitively and returns nil if not found.
func (s *UserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if u := s.byEmail(email); u != nil {
		return s.view(u), nil
	}
	return nil, nil
}

func (s *UserStore) byEmail(email string) *models.User {
	want := lower(email)
	for _, u := range s.db.users {
		if lower(u.Email) == want {
			return u
		}
	}
	return nil
}

// List returns all users ordered by creation date.
func (s *UserStore) List(_ context.Context) ([]models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := make([]models.User, 0, len(s.db.users))
	for _, u := range s.db.users {
		out = append(out, *s.view(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Count returns the number of users.
func (s *UserStore) Count(_ context.Context) (int, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return len(s.db.users), nil
}

// Create inserts u. Returns store.ErrDuplicate when the email is taken.
func (s *UserStore) Create(_ context.Context, u *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if s.byEmail(u.Email) != nil {
		return fmt.Errorf("create user: %w", store.ErrDuplicate)
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := s.db.tick()
	u.CreatedAt, u.UpdatedAt = now, now
	u.Followers, u.Following = []uuid.UUID{}, []uuid.UUID{}

	stored := *u
	stored.ProfilePicture = cloneImage(u.ProfilePicture)
	s.db.users[u.ID] = &stored
	return nil
}

// Update saves the mutable profile fields of u.
func (s *UserStore) Update(_ context.Context, u *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	cur, ok := s.db.users[u.ID]
	if !ok {
		return fmt.Errorf("update user: %w", store.ErrNotFound)
	}
	if other := s.byEmail(u.Email); other != nil && other.ID != u.ID {
		return fmt.Errorf("update user: %w", store.ErrDuplicate)
	}
	cur.Name = u.Name
	cur.Email = u.Email
	cur.PasswordHash = u.PasswordHash
	cur.Bio = u.Bio
	cur.IsAdmin = u.IsAdmin
	cur.ProfilePicture = cloneImage(u.ProfilePicture)
	cur.UpdatedAt = s.db.now()
	u.UpdatedAt = cur.UpdatedAt
	return nil
}

// Delete removes the user and everything they own, then recomputes the
// counters of posts they had liked or commented on.
func (s *UserStore) Delete(_ context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.users[id]; !ok {
		return fmt.Errorf("delete user: %w", store.ErrNotFound)
	}

	touched := make(map[uuid.UUID]struct{})
	for pid, p := range s.db.posts {
		if p.AuthorID == id {
			s.db.deletePost(pid)
		}
	}
	for e := range s.db.likes {
		if e.b == id {
			touched[e.a] = struct{}{}
			delete(s.db.likes, e)
		}
	}
	for cid, c := range s.db.comments {
		if c.AuthorID == id {
			touched[c.PostID] = struct{}{}
			delete(s.db.comments, cid)
		}
	}
	for e := range s.db.follows {
		if e.a == id || e.b == id {
			delete(s.db.follows, e)
		}
	}
	delete(s.db.users, id)

	for pid := range touched {
		s.db.recount(pid)
	}
	return nil
}

// SetResetToken stores a reset token hash and expiry.
func (s *UserStore) SetResetToken(_ context.Context, id uuid.UUID, hash string, expires time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.users[id]
	if !ok {
		return fmt.Errorf("set reset token: %w", store.ErrNotFound)
	}
	u.ResetTokenHash = &hash
	u.ResetExpiresAt = &expires
	return nil
}

// ClearResetToken removes any pending reset token.
func (s *UserStore) ClearResetToken(_ context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if u, ok := s.db.users[id]; ok {
		u.ResetTokenHash, u.ResetExpiresAt = nil, nil
	}
	return nil
}

// ConsumeResetToken swaps in passwordHash for the user holding an
// unexpired token with the given hash, clearing the token. Returns nil
// when nothing matches.
func (s *UserStore) ConsumeResetToken(_ context.Context, hash, passwordHash string, now time.Time) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, u := range s.db.users {
		if u.ResetTokenHash == nil || *u.ResetTokenHash != hash || !u.HasPendingReset(now) {
			continue
		}
		u.PasswordHash = passwordHash
		u.ResetTokenHash, u.ResetExpiresAt = nil, nil
		u.UpdatedAt = s.db.now()
		return s.view(u), nil
	}
	return nil, nil
}

// Follow adds a follow edge. Returns store.ErrDuplicate if it exists and
// store.ErrNotFound if either user does not.
func (s *UserStore) Follow(_ context.Context, followerID, followeeID uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.users[followerID]; !ok {
		return fmt.Errorf("follow user: %w", store.ErrNotFound)
	}
	if _, ok := s.db.users[followeeID]; !ok {
		return fmt.Errorf("follow user: %w", store.ErrNotFound)
	}
	e := edge{followerID, followeeID}
	if _, ok := s.db.follows[e]; ok {
		return fmt.Errorf("follow user: %w", store.ErrDuplicate)
	}
	s.db.follows[e] = s.db.now()
	return nil
}

// Unfollow removes a follow edge. Returns store.ErrNotMember if absent.
func (s *UserStore) Unfollow(_ context.Context, followerID, followeeID uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	e := edge{followerID, followeeID}
	if _, ok := s.db.follows[e]; !ok {
		return fmt.Errorf("unfollow user: %w", store.ErrNotMember)
	}
	delete(s.db.follows, e)
	return nil
}
