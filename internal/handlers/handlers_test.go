package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"bloghub/internal/access"
	"bloghub/internal/auth"
	"bloghub/internal/media"
	"bloghub/internal/middleware"
	"bloghub/internal/service"
	"bloghub/internal/storage"
	"bloghub/internal/store/memstore"
)

type sentMail struct {
	to, subject, body string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (m *recordingMailer) last(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no email sent")
	return m.sent[len(m.sent)-1]
}

type testAPI struct {
	db     *memstore.DB
	mailer *recordingMailer
	mux    http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	log := zaptest.NewLogger(t)

	db := memstore.New()
	creds := auth.NewCredentials(bcrypt.MinCost, 10*time.Minute, time.Now)
	tokens, err := auth.NewTokenService("test-secret", "HS256", "bloghub", time.Hour, time.Now)
	require.NoError(t, err)

	local, err := storage.NewLocal(t.TempDir(), "http://localhost/uploads")
	require.NoError(t, err)
	images := media.NewService(local, log)
	mailer := &recordingMailer{}

	a := NewAuth(service.NewAuthService(db.Users(), creds, tokens, images, mailer, "bloghub", log), "http://blog.test", log)
	p := NewPosts(service.NewPostService(db.Posts(), images, nil, "bloghub", log), log)
	c := NewComments(service.NewCommentService(db.Comments(), db.Posts(), nil, log), log)
	u := NewUsers(service.NewUserService(db.Users(), db.Posts(), images, nil, log), log)

	requireAuth := middleware.RequireAuth(access.NewAuthenticator(tokens, db.Users()))

	r := chi.NewRouter()
	r.Use(middleware.Logger(log))
	r.Post("/api/auth/register", a.Register)
	r.Post("/api/auth/login", a.Login)
	r.Post("/api/auth/forgotpassword", a.ForgotPassword)
	r.Put("/api/auth/resetpassword/{token}", a.ResetPassword)
	r.Get("/api/posts", p.List)
	r.Get("/api/posts/user/{userId}", p.ListByAuthor)
	r.Get("/api/posts/{idOrSlug}", p.Get)
	r.Get("/api/comments/post/{postId}", c.ListForPost)
	r.Get("/api/users/{id}", u.Get)
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/api/auth/profile", a.Profile)
		r.Put("/api/auth/profile", a.UpdateProfile)
		r.Post("/api/posts", p.Create)
		r.Put("/api/posts/{id}", p.Update)
		r.Delete("/api/posts/{id}", p.Delete)
		r.Post("/api/posts/{id}/like", p.Like)
		r.Post("/api/posts/{id}/unlike", p.Unlike)
		r.Post("/api/comments", c.Create)
		r.Put("/api/comments/{id}", c.Update)
		r.Delete("/api/comments/{id}", c.Delete)
		r.Post("/api/users/{id}/follow", u.Follow)
		r.Post("/api/users/{id}/unfollow", u.Unfollow)
		r.With(middleware.RequireAdmin).Get("/api/users", u.List)
		r.With(middleware.RequireAdmin).Put("/api/users/{id}", u.Update)
		r.With(middleware.RequireAdmin).Delete("/api/users/{id}", u.Delete)
	})

	return &testAPI{db: db, mailer: mailer, mux: r}
}

type apiResponse struct {
	Code    int
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (a *testAPI) send(t *testing.T, req *http.Request, token string) apiResponse {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.mux.ServeHTTP(rr, req)

	var res apiResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res), "body: %s", rr.Body.String())
	res.Code = rr.Code
	return res
}

func (a *testAPI) do(t *testing.T, method, path string, body any, token string) apiResponse {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return a.send(t, req, token)
}

type account struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Token   string `json:"token"`
}

func (a *testAPI) register(t *testing.T, name, email string) account {
	t.Helper()
	res := a.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": name, "email": email, "password": "password123",
	}, "")
	require.Equal(t, http.StatusCreated, res.Code, res.Message)
	var acc account
	require.NoError(t, json.Unmarshal(res.Data, &acc))
	return acc
}

// promote flags the account as an administrator directly in the store.
func (a *testAPI) promote(t *testing.T, acc account) {
	t.Helper()
	ctx := context.Background()
	u, err := a.db.Users().FindByEmail(ctx, acc.Email)
	require.NoError(t, err)
	u.IsAdmin = true
	require.NoError(t, a.db.Users().Update(ctx, u))
}

type postBody struct {
	ID            string   `json:"_id"`
	Title         string   `json:"title"`
	Slug          string   `json:"slug"`
	Likes         []string `json:"likes"`
	LikesCount    int      `json:"likesCount"`
	CommentCount  int      `json:"commentCount"`
	FeaturedImage *struct {
		PublicID string `json:"public_id"`
		URL      string `json:"url"`
	} `json:"featuredImage"`
	Author *struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
	} `json:"author"`
}

func (a *testAPI) createPost(t *testing.T, token, title string) postBody {
	t.Helper()
	res := a.do(t, http.MethodPost, "/api/posts", map[string]string{
		"title": title, "content": "Body of " + title, "category": "go",
	}, token)
	require.Equal(t, http.StatusCreated, res.Code, res.Message)
	var p postBody
	require.NoError(t, json.Unmarshal(res.Data, &p))
	return p
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRegisterAndLogin(t *testing.T) {
	api := newTestAPI(t)
	acc := api.register(t, "Ada", "Ada@Example.com")

	assert.NotEmpty(t, acc.Token)
	assert.Equal(t, "ada@example.com", acc.Email)
	assert.False(t, acc.IsAdmin)

	t.Run("password hash never leaves the server", func(t *testing.T) {
		res := api.do(t, http.MethodGet, "/api/auth/profile", nil, acc.Token)
		require.Equal(t, http.StatusOK, res.Code)
		assert.NotContains(t, string(res.Data), "password")
		assert.NotContains(t, string(res.Data), "$2a$")
	})

	t.Run("login", func(t *testing.T) {
		res := api.do(t, http.MethodPost, "/api/auth/login", map[string]string{
			"email": "ada@example.com", "password": "password123",
		}, "")
		require.Equal(t, http.StatusOK, res.Code)
		var got account
		require.NoError(t, json.Unmarshal(res.Data, &got))
		assert.Equal(t, acc.ID, got.ID)
		assert.NotEmpty(t, got.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		res := api.do(t, http.MethodPost, "/api/auth/login", map[string]string{
			"email": "ada@example.com", "password": "nope-nope",
		}, "")
		assert.Equal(t, http.StatusUnauthorized, res.Code)
		assert.False(t, res.Success)
		assert.Equal(t, "Invalid email or password", res.Message)
	})

	t.Run("duplicate email", func(t *testing.T) {
		res := api.do(t, http.MethodPost, "/api/auth/register", map[string]string{
			"name": "Other", "email": "ADA@example.com", "password": "password123",
		}, "")
		assert.Equal(t, http.StatusConflict, res.Code)
		assert.Equal(t, "User already exists", res.Message)
	})
}

func TestRegisterValidation(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name string
		body map[string]string
		want string
	}{
		{"missing name", map[string]string{"email": "a@b.co", "password": "password123"}, "Please provide name"},
		{"bad email", map[string]string{"name": "A", "email": "not-an-email", "password": "password123"}, "Please provide a valid email"},
		{"short password", map[string]string{"name": "A", "email": "a@b.co", "password": "short"}, "Password must be at least 8 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := api.do(t, http.MethodPost, "/api/auth/register", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, res.Code)
			assert.Equal(t, tt.want, res.Message)
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString("{"))
		res := api.send(t, req, "")
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "Malformed JSON body", res.Message)
	})
}

func TestProfileRequiresToken(t *testing.T) {
	api := newTestAPI(t)

	res := api.do(t, http.MethodGet, "/api/auth/profile", nil, "")
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = api.do(t, http.MethodGet, "/api/auth/profile", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestUpdateProfileMultipart(t *testing.T) {
	api := newTestAPI(t)
	acc := api.register(t, "Ada", "ada@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("bio", "Writes about engines"))
	fw, err := mw.CreateFormFile("profilePicture", "me.png")
	require.NoError(t, err)
	_, err = fw.Write(pngBytes(t, 800, 400))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/auth/profile", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	res := api.send(t, req, acc.Token)
	require.Equal(t, http.StatusOK, res.Code, res.Message)

	var got struct {
		Bio            string `json:"bio"`
		Token          string `json:"token"`
		ProfilePicture struct {
			PublicID string `json:"public_id"`
			URL      string `json:"url"`
		} `json:"profilePicture"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &got))
	assert.Equal(t, "Writes about engines", got.Bio)
	assert.NotEmpty(t, got.Token)
	assert.Regexp(t, `^bloghub/.+\.png$`, got.ProfilePicture.PublicID)
	assert.Equal(t, "http://localhost/uploads/"+got.ProfilePicture.PublicID, got.ProfilePicture.URL)
}

func TestUpdateProfileRejectsNonImage(t *testing.T) {
	api := newTestAPI(t)
	acc := api.register(t, "Ada", "ada@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("profilePicture", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("plain text, not an image"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/auth/profile", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	res := api.send(t, req, acc.Token)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.False(t, res.Success)
}

func TestForgotAndResetPassword(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "Ada", "ada@example.com")

	res := api.do(t, http.MethodPost, "/api/auth/forgotpassword", map[string]string{"email": "ada@example.com"}, "")
	require.Equal(t, http.StatusOK, res.Code, res.Message)
	assert.JSONEq(t, `"Email sent"`, string(res.Data))

	mail := api.mailer.last(t)
	assert.Equal(t, "ada@example.com", mail.to)
	m := regexp.MustCompile(`http://blog\.test/api/auth/resetpassword/([0-9a-f]{40})`).FindStringSubmatch(mail.body)
	require.Len(t, m, 2, "reset link not found in %q", mail.body)

	res = api.do(t, http.MethodPut, "/api/auth/resetpassword/"+m[1], map[string]string{"password": "brand-new-pass"}, "")
	require.Equal(t, http.StatusOK, res.Code, res.Message)

	res = api.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "ada@example.com", "password": "brand-new-pass",
	}, "")
	assert.Equal(t, http.StatusOK, res.Code)

	t.Run("token is single use", func(t *testing.T) {
		res := api.do(t, http.MethodPut, "/api/auth/resetpassword/"+m[1], map[string]string{"password": "another-pass"}, "")
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "Invalid or expired reset token", res.Message)
	})

	t.Run("unknown email", func(t *testing.T) {
		res := api.do(t, http.MethodPost, "/api/auth/forgotpassword", map[string]string{"email": "nobody@example.com"}, "")
		assert.Equal(t, http.StatusNotFound, res.Code)
	})
}

func TestPostLifecycle(t *testing.T) {
	api := newTestAPI(t)
	ada := api.register(t, "Ada", "ada@example.com")
	bob := api.register(t, "Bob", "bob@example.com")

	post := api.createPost(t, ada.Token, "Hello World!")
	assert.Equal(t, "hello-world", post.Slug)
	require.NotNil(t, post.Author)
	assert.Equal(t, "Ada", post.Author.Name)

	t.Run("same slug is a conflict", func(t *testing.T) {
		res := api.do(t, http.MethodPost, "/api/posts", map[string]string{
			"title": "Hello, World", "content": "x", "category": "go",
		}, bob.Token)
		assert.Equal(t, http.StatusConflict, res.Code)
	})

	t.Run("get by slug and by id", func(t *testing.T) {
		for _, key := range []string{post.Slug, post.ID} {
			res := api.do(t, http.MethodGet, "/api/posts/"+key, nil, "")
			require.Equal(t, http.StatusOK, res.Code)
			var got postBody
			require.NoError(t, json.Unmarshal(res.Data, &got))
			assert.Equal(t, post.ID, got.ID)
		}
	})

	t.Run("like once", func(t *testing.T) {
		res := api.do(t, http.MethodPost, "/api/posts/"+post.ID+"/like", nil, bob.Token)
		require.Equal(t, http.StatusOK, res.Code)
		assert.JSONEq(t, `{"likes":["`+bob.ID+`"],"likesCount":1}`, string(res.Data))

		res = api.do(t, http.MethodPost, "/api/posts/"+post.ID+"/like", nil, bob.Token)
		assert.Equal(t, http.StatusConflict, res.Code)
		assert.Equal(t, "Post already liked", res.Message)

		res = api.do(t, http.MethodPost, "/api/posts/"+post.ID+"/unlike", nil, bob.Token)
		require.Equal(t, http.StatusOK, res.Code)
		assert.JSONEq(t, `{"likes":[],"likesCount":0}`, string(res.Data))
	})

	t.Run("non-owner cannot edit", func(t *testing.T) {
		res := api.do(t, http.MethodPut, "/api/posts/"+post.ID, map[string]string{"title": "Taken"}, bob.Token)
		assert.Equal(t, http.StatusForbidden, res.Code)
		res = api.do(t, http.MethodDelete, "/api/posts/"+post.ID, nil, bob.Token)
		assert.Equal(t, http.StatusForbidden, res.Code)
	})

	t.Run("owner renames", func(t *testing.T) {
		res := api.do(t, http.MethodPut, "/api/posts/"+post.ID, map[string]string{"title": "Goodbye World"}, ada.Token)
		require.Equal(t, http.StatusOK, res.Code, res.Message)
		var got postBody
		require.NoError(t, json.Unmarshal(res.Data, &got))
		assert.Equal(t, "goodbye-world", got.Slug)

		res = api.do(t, http.MethodGet, "/api/posts/hello-world", nil, "")
		assert.Equal(t, http.StatusNotFound, res.Code)
	})

	t.Run("list by author", func(t *testing.T) {
		res := api.do(t, http.MethodGet, "/api/posts/user/"+ada.ID, nil, "")
		require.Equal(t, http.StatusOK, res.Code)
		var got []postBody
		require.NoError(t, json.Unmarshal(res.Data, &got))
		require.Len(t, got, 1)
		assert.Equal(t, post.ID, got[0].ID)
	})

	t.Run("owner deletes", func(t *testing.T) {
		res := api.do(t, http.MethodDelete, "/api/posts/"+post.ID, nil, ada.Token)
		require.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, "Post removed", res.Message)

		res = api.do(t, http.MethodGet, "/api/posts/"+post.ID, nil, "")
		assert.Equal(t, http.StatusNotFound, res.Code)
	})
}

func TestCreatePostMultipart(t *testing.T) {
	api := newTestAPI(t)
	ada := api.register(t, "Ada", "ada@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Pictures"))
	require.NoError(t, mw.WriteField("content", "A post with an image"))
	require.NoError(t, mw.WriteField("category", "photos"))
	fw, err := mw.CreateFormFile("featuredImage", "cover.png")
	require.NoError(t, err)
	_, err = fw.Write(pngBytes(t, 64, 64))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/posts", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	res := api.send(t, req, ada.Token)
	require.Equal(t, http.StatusCreated, res.Code, res.Message)

	var got postBody
	require.NoError(t, json.Unmarshal(res.Data, &got))
	assert.Equal(t, "pictures", got.Slug)
	require.NotNil(t, got.FeaturedImage)
	assert.Regexp(t, `^bloghub/`, got.FeaturedImage.PublicID)
}

func TestListPosts(t *testing.T) {
	api := newTestAPI(t)
	ada := api.register(t, "Ada", "ada@example.com")
	for _, title := range []string{"Go Channels", "Go Generics", "Rust Lifetimes"} {
		api.createPost(t, ada.Token, title)
	}

	rr := httptest.NewRecorder()
	api.mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/posts?keyword=go&pageNumber=1", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var got struct {
		Success bool       `json:"success"`
		Posts   []postBody `json:"posts"`
		Page    int        `json:"page"`
		Pages   int        `json:"pages"`
		Total   int        `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.True(t, got.Success)
	assert.Equal(t, 2, got.Total)
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, 1, got.Pages)
	assert.Len(t, got.Posts, 2)
}

func TestComments(t *testing.T) {
	api := newTestAPI(t)
	ada := api.register(t, "Ada", "ada@example.com")
	bob := api.register(t, "Bob", "bob@example.com")
	post := api.createPost(t, ada.Token, "Discuss")

	var ids []string
	for _, text := range []string{"first", "second", "third"} {
		res := api.do(t, http.MethodPost, "/api/comments", map[string]string{"content": text, "postId": post.ID}, bob.Token)
		require.Equal(t, http.StatusCreated, res.Code, res.Message)
		var c struct {
			ID string `json:"_id"`
		}
		require.NoError(t, json.Unmarshal(res.Data, &c))
		ids = append(ids, c.ID)
	}

	res := api.do(t, http.MethodPut, "/api/comments/"+ids[0], map[string]string{"content": "edited"}, ada.Token)
	assert.Equal(t, http.StatusForbidden, res.Code, "only the author edits")

	res = api.do(t, http.MethodDelete, "/api/comments/"+ids[1], nil, bob.Token)
	require.Equal(t, http.StatusOK, res.Code)

	res = api.do(t, http.MethodGet, "/api/posts/"+post.ID, nil, "")
	var got postBody
	require.NoError(t, json.Unmarshal(res.Data, &got))
	assert.Equal(t, 2, got.CommentCount)

	res = api.do(t, http.MethodGet, "/api/comments/post/"+post.ID, nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	var list []struct {
		ID      string `json:"_id"`
		Content string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &list))
	require.Len(t, list, 2)
	assert.Equal(t, "third", list[0].Content)

	t.Run("invalid post id", func(t *testing.T) {
		res := api.do(t, http.MethodPost, "/api/comments", map[string]string{"content": "x", "postId": "nope"}, bob.Token)
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "postId must be a valid id", res.Message)
	})
}

func TestUserAdministration(t *testing.T) {
	api := newTestAPI(t)
	root := api.register(t, "Root", "root@example.com")
	api.promote(t, root)
	bob := api.register(t, "Bob", "bob@example.com")

	res := api.do(t, http.MethodGet, "/api/users", nil, bob.Token)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = api.do(t, http.MethodGet, "/api/users", nil, root.Token)
	require.Equal(t, http.StatusOK, res.Code)
	var users []account
	require.NoError(t, json.Unmarshal(res.Data, &users))
	assert.Len(t, users, 2)

	res = api.do(t, http.MethodPut, "/api/users/"+bob.ID, map[string]any{"isAdmin": true}, root.Token)
	require.Equal(t, http.StatusOK, res.Code, res.Message)
	var updated account
	require.NoError(t, json.Unmarshal(res.Data, &updated))
	assert.True(t, updated.IsAdmin)

	res = api.do(t, http.MethodDelete, "/api/users/"+bob.ID, nil, root.Token)
	require.Equal(t, http.StatusOK, res.Code)

	res = api.do(t, http.MethodGet, "/api/users/"+bob.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = api.do(t, http.MethodGet, "/api/auth/profile", nil, bob.Token)
	assert.Equal(t, http.StatusUnauthorized, res.Code, "tokens of deleted accounts stop working")
}

func TestFollow(t *testing.T) {
	api := newTestAPI(t)
	ada := api.register(t, "Ada", "ada@example.com")
	bob := api.register(t, "Bob", "bob@example.com")

	res := api.do(t, http.MethodPost, "/api/users/"+ada.ID+"/follow", nil, bob.Token)
	require.Equal(t, http.StatusOK, res.Code, res.Message)

	res = api.do(t, http.MethodPost, "/api/users/"+ada.ID+"/follow", nil, bob.Token)
	assert.Equal(t, http.StatusConflict, res.Code)

	res = api.do(t, http.MethodPost, "/api/users/"+bob.ID+"/follow", nil, bob.Token)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = api.do(t, http.MethodGet, "/api/users/"+ada.ID, nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	var profile struct {
		Followers  []string `json:"followers"`
		PostsCount int      `json:"postsCount"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &profile))
	assert.Equal(t, []string{bob.ID}, profile.Followers)
	assert.Zero(t, profile.PostsCount)

	res = api.do(t, http.MethodPost, "/api/users/"+ada.ID+"/unfollow", nil, bob.Token)
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestMalformedPathIDIsNotFound(t *testing.T) {
	api := newTestAPI(t)
	ada := api.register(t, "Ada", "ada@example.com")

	res := api.do(t, http.MethodDelete, "/api/posts/not-a-uuid", nil, ada.Token)
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "Post not found", res.Message)

	res = api.do(t, http.MethodGet, "/api/users/42", nil, "")
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "User not found", res.Message)
}
