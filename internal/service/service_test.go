package service

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"bloghub/internal/access"
	"bloghub/internal/auth"
	"bloghub/internal/models"
	"bloghub/internal/store/memstore"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type mediaMock struct {
	mock.Mock
}

func (m *mediaMock) Upload(ctx context.Context, data []byte, folder string) (*models.Image, error) {
	args := m.Called(ctx, data, folder)
	img, _ := args.Get(0).(*models.Image)
	return img, args.Error(1)
}

func (m *mediaMock) Delete(ctx context.Context, externalID string) error {
	return m.Called(ctx, externalID).Error(0)
}

type mailerMock struct {
	mock.Mock
}

func (m *mailerMock) Send(ctx context.Context, to, subject, htmlBody string) error {
	return m.Called(ctx, to, subject, htmlBody).Error(0)
}

// mapCache is a PostCache that records invalidations.
type mapCache struct {
	byID        map[uuid.UUID]*models.Post
	bySlug      map[string]*models.Post
	invalidated []string
}

func newMapCache() *mapCache {
	return &mapCache{byID: map[uuid.UUID]*models.Post{}, bySlug: map[string]*models.Post{}}
}

func (c *mapCache) GetByID(_ context.Context, id uuid.UUID) *models.Post { return c.byID[id] }
func (c *mapCache) GetBySlug(_ context.Context, s string) *models.Post  { return c.bySlug[s] }

func (c *mapCache) Set(_ context.Context, p *models.Post) {
	c.byID[p.ID] = p
	c.bySlug[p.Slug] = p
}

func (c *mapCache) Invalidate(_ context.Context, id uuid.UUID, slugs ...string) {
	delete(c.byID, id)
	c.invalidated = append(c.invalidated, id.String())
	for _, s := range slugs {
		delete(c.bySlug, s)
		c.invalidated = append(c.invalidated, s)
	}
}

type fixture struct {
	db       *memstore.DB
	clock    *clock
	creds    *auth.Credentials
	tokens   *auth.TokenService
	media    *mediaMock
	mailer   *mailerMock
	cache    *mapCache
	logs     *observer.ObservedLogs
	auth     *AuthService
	users    *UserService
	posts    *PostService
	comments *CommentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	creds := auth.NewCredentials(bcrypt.MinCost, 10*time.Minute, c.now)
	tokens, err := auth.NewTokenService("test-secret", "HS256", "bloghub", 24*time.Hour, c.now)
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	db := memstore.New()
	f := &fixture{
		db:     db,
		clock:  c,
		creds:  creds,
		tokens: tokens,
		media:  &mediaMock{},
		mailer: &mailerMock{},
		cache:  newMapCache(),
		logs:   logs,
	}
	f.auth = NewAuthService(db.Users(), creds, tokens, f.media, f.mailer, "bloghub", log)
	f.users = NewUserService(db.Users(), db.Posts(), f.media, f.cache, log)
	f.posts = NewPostService(db.Posts(), f.media, f.cache, "bloghub", log)
	f.comments = NewCommentService(db.Comments(), db.Posts(), f.cache, log)
	return f
}

// register opens an account and returns the principal acting as it.
func (f *fixture) register(t *testing.T, name, email string) *access.Principal {
	t.Helper()
	res, err := f.auth.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: "password123"})
	require.NoError(t, err)
	return principal(res.User)
}

func (f *fixture) admin(t *testing.T) *access.Principal {
	t.Helper()
	p := f.register(t, "Admin", "admin@example.com")
	u, err := f.db.Users().FindByID(context.Background(), p.UserID)
	require.NoError(t, err)
	u.IsAdmin = true
	require.NoError(t, f.db.Users().Update(context.Background(), u))
	return principal(u)
}

func (f *fixture) post(t *testing.T, pr *access.Principal, title string) *models.Post {
	t.Helper()
	p, err := f.posts.Create(context.Background(), pr, PostInput{Title: title, Content: "body", Category: "Go"})
	require.NoError(t, err)
	return p
}

func principal(u *models.User) *access.Principal {
	return &access.Principal{UserID: u.ID, Email: u.Email, Name: u.Name, IsAdmin: u.IsAdmin}
}

var resetLink = regexp.MustCompile(`/api/auth/resetpassword/([0-9a-f]{40})`)

// rawResetToken pulls the raw token out of a rendered reset email.
func rawResetToken(t *testing.T, body string) string {
	t.Helper()
	m := resetLink.FindStringSubmatch(body)
	require.Len(t, m, 2, "reset link not found in %q", body)
	return m[1]
}
