package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloghub/internal/models"
	"bloghub/internal/store"
)

func seedUser(t *testing.T, db *DB, email string) *models.User {
	t.Helper()
	u := &models.User{Name: email, Email: email, PasswordHash: "h"}
	require.NoError(t, db.Users().Create(context.Background(), u))
	return u
}

func seedPost(t *testing.T, db *DB, author *models.User, slug string) *models.Post {
	t.Helper()
	p := &models.Post{Title: slug, Slug: slug, Content: "c", AuthorID: author.ID}
	require.NoError(t, db.Posts().Create(context.Background(), p))
	return p
}

func TestUserEmailUniqueCaseInsensitive(t *testing.T) {
	db := New()
	seedUser(t, db, "ada@example.com")

	err := db.Users().Create(context.Background(), &models.User{Email: "ADA@example.com"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	u, err := db.Users().FindByEmail(context.Background(), "Ada@Example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	db := New()
	u := seedUser(t, db, "copy@example.com")

	got, err := db.Users().FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	got.Name = "mutated"

	again, err := db.Users().FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "copy@example.com", again.Name)
}

func TestResetTokenSingleUse(t *testing.T) {
	db := New()
	ctx := context.Background()
	u := seedUser(t, db, "reset@example.com")
	now := time.Now()

	require.NoError(t, db.Users().SetResetToken(ctx, u.ID, "h1", now.Add(10*time.Minute)))

	got, err := db.Users().ConsumeResetToken(ctx, "h1", "new", now.Add(11*time.Minute))
	require.NoError(t, err)
	assert.Nil(t, got, "expired token accepted")

	got, err = db.Users().ConsumeResetToken(ctx, "h1", "new", now)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "new", got.PasswordHash)

	got, err = db.Users().ConsumeResetToken(ctx, "h1", "again", now)
	require.NoError(t, err)
	assert.Nil(t, got, "token used twice")
}

func TestLikeCounterMatchesSet(t *testing.T) {
	db := New()
	ctx := context.Background()
	author := seedUser(t, db, "author@example.com")
	post := seedPost(t, db, author, "p")

	var fans []*models.User
	for i := 0; i < 20; i++ {
		fans = append(fans, seedUser(t, db, uuid.NewString()+"@example.com"))
	}

	var wg sync.WaitGroup
	for _, f := range fans {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, _ = db.Posts().AddLike(ctx, post.ID, id)
		}(f.ID)
	}
	wg.Wait()

	got, err := db.Posts().FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, got.LikesCount)
	assert.Len(t, got.Likes, 20)

	_, err = db.Posts().AddLike(ctx, post.ID, fans[0].ID)
	assert.ErrorIs(t, err, store.ErrDuplicate)

	_, err = db.Posts().RemoveLike(ctx, post.ID, author.ID)
	assert.ErrorIs(t, err, store.ErrNotMember)
}

func TestDeleteUserCascades(t *testing.T) {
	db := New()
	ctx := context.Background()
	author := seedUser(t, db, "author@example.com")
	reader := seedUser(t, db, "reader@example.com")
	post := seedPost(t, db, author, "kept")
	own := seedPost(t, db, reader, "removed")

	_, err := db.Posts().AddLike(ctx, post.ID, reader.ID)
	require.NoError(t, err)
	require.NoError(t, db.Comments().Create(ctx, &models.Comment{PostID: post.ID, AuthorID: reader.ID, Content: "x"}))
	require.NoError(t, db.Users().Follow(ctx, reader.ID, author.ID))

	require.NoError(t, db.Users().Delete(ctx, reader.ID))

	got, err := db.Posts().FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, got.LikesCount)
	assert.Zero(t, got.CommentCount)

	gone, err := db.Posts().FindByID(ctx, own.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	a, err := db.Users().FindByID(ctx, author.ID)
	require.NoError(t, err)
	assert.Empty(t, a.Followers)
}

func TestListPagination(t *testing.T) {
	db := New()
	ctx := context.Background()
	author := seedUser(t, db, "author@example.com")
	for i := 0; i < 12; i++ {
		seedPost(t, db, author, uuid.NewString())
	}

	first, err := db.Posts().List(ctx, models.PostFilter{Limit: 10})
	require.NoError(t, err)
	second, err := db.Posts().List(ctx, models.PostFilter{Limit: 10, Offset: 10})
	require.NoError(t, err)
	beyond, err := db.Posts().List(ctx, models.PostFilter{Limit: 10, Offset: 20})
	require.NoError(t, err)

	assert.Len(t, first, 10)
	assert.Len(t, second, 2)
	assert.Empty(t, beyond)
	assert.True(t, first[0].CreatedAt.After(first[9].CreatedAt))
}
