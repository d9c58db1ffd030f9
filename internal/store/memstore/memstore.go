// Package memstore is an in-memory persistence driver with the same
// behavior as the PostgreSQL stores. It backs STORE_DRIVER=memory and the
// service and handler tests.
package memstore

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"bloghub/internal/models"
)

// DB holds all tables behind one lock, so every multi-row mutation is
// atomic with respect to readers.
type DB struct {
	mu       sync.RWMutex
	now      func() time.Time
	last     time.Time
	users    map[uuid.UUID]*models.User
	follows  map[edge]time.Time // follower -> followee
	posts    map[uuid.UUID]*models.Post
	likes    map[edge]time.Time // post -> user
	comments map[uuid.UUID]*models.Comment
}

type edge struct{ a, b uuid.UUID }

// New returns an empty database.
func New() *DB {
	return &DB{
		now:      time.Now,
		users:    make(map[uuid.UUID]*models.User),
		follows:  make(map[edge]time.Time),
		posts:    make(map[uuid.UUID]*models.Post),
		likes:    make(map[edge]time.Time),
		comments: make(map[uuid.UUID]*models.Comment),
	}
}

// Users returns the user repository view of db.
func (db *DB) Users() *UserStore { return &UserStore{db: db} }

// Posts returns the post repository view of db.
func (db *DB) Posts() *PostStore { return &PostStore{db: db} }

// Comments returns the comment repository view of db.
func (db *DB) Comments() *CommentStore { return &CommentStore{db: db} }

// tick returns a strictly increasing creation timestamp so "newest first"
// ordering is stable even within one clock tick. Callers hold mu.
func (db *DB) tick() time.Time {
	t := db.now()
	if !t.After(db.last) {
		t = db.last.Add(time.Microsecond)
	}
	db.last = t
	return t
}

func (db *DB) summary(id uuid.UUID) *models.AuthorSummary {
	if u, ok := db.users[id]; ok {
		s := u.Summary()
		s.ProfilePicture = cloneImage(s.ProfilePicture)
		return s
	}
	return &models.AuthorSummary{ID: id}
}

func (db *DB) likeSet(postID uuid.UUID) []uuid.UUID {
	type liked struct {
		id uuid.UUID
		at time.Time
	}
	var ls []liked
	for e, at := range db.likes {
		if e.a == postID {
			ls = append(ls, liked{e.b, at})
		}
	}
	sort.Slice(ls, func(i, j int) bool { return ls[i].at.Before(ls[j].at) })
	ids := make([]uuid.UUID, 0, len(ls))
	for _, l := range ls {
		ids = append(ids, l.id)
	}
	return ids
}

// recount recomputes a post's counters from the like set and comments.
func (db *DB) recount(postID uuid.UUID) {
	p, ok := db.posts[postID]
	if !ok {
		return
	}
	p.LikesCount = len(db.likeSet(postID))
	n := 0
	for _, c := range db.comments {
		if c.PostID == postID {
			n++
		}
	}
	p.CommentCount = n
}

func cloneImage(img *models.Image) *models.Image {
	if img == nil {
		return nil
	}
	c := *img
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func lower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
