package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/nano-blog/backend/internal/cache"
	"github.com/anonto42/nano-blog/backend/internal/middleware"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"github.com/anonto42/nano-blog/backend/internal/router"
	"github.com/anonto42/nano-blog/backend/internal/storage"
	"github.com/anonto42/nano-blog/backend/pkg/config"
	"github.com/anonto42/nano-blog/backend/pkg/firebase"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}

type testApp struct {
	e        *echo.Echo
	cache    *cache.MemoryStore
	jwt      *middleware.JWTAuth
	users    *repositories.PostgresUserRepository
	groups   *repositories.PostgresGroupRepository
	posts    *repositories.PostgresPostRepository
	comments *repositories.PostgresCommentRepository
	follows  *repositories.PostgresFollowRepository
	images   *storage.LocalStore
}

type stubVerifier map[string]*firebase.Identity

func (s stubVerifier) VerifyIDToken(_ context.Context, idToken string) (*firebase.Identity, error) {
	if id, ok := s[idToken]; ok {
		return id, nil
	}
	return nil, fmt.Errorf("unknown token")
}

func newTestApp(t *testing.T, verifier firebase.TokenVerifier) *testApp {
	t.Helper()
	db, err := config.OpenGorm("file::memory:?_foreign_keys=1")
	require.NoError(t, err)
	require.NoError(t, config.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	app := &testApp{
		e:        echo.New(),
		cache:    cache.NewMemoryStore(64, cache.DefaultTTL),
		users:    repositories.NewPostgresUserRepository(db),
		groups:   repositories.NewPostgresGroupRepository(db),
		posts:    repositories.NewPostgresPostRepository(db),
		comments: repositories.NewPostgresCommentRepository(db),
		follows:  repositories.NewPostgresFollowRepository(db),
		images:   storage.NewLocalStore(t.TempDir()),
	}
	app.jwt = middleware.NewJWTAuth(testSecret, app.users)
	router.SetupRoutes(app.e, router.Deps{
		DB:        db,
		Cache:     app.cache,
		Images:    app.images,
		Firebase:  verifier,
		Metrics:   middleware.NewMetrics(),
		JWTSecret: testSecret,
		PageSize:  10,
	})
	return app
}

func (a *testApp) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{Username: username, Email: username + "@example.com", Password: string(hash)}
	require.NoError(t, a.users.CreateUser(context.Background(), user))
	return user
}

func (a *testApp) createGroup(t *testing.T, slug string) *models.Group {
	t.Helper()
	group := &models.Group{Title: "Group " + slug, Slug: slug, Description: "about " + slug}
	require.NoError(t, a.groups.CreateGroup(context.Background(), group))
	return group
}

func (a *testApp) createPost(t *testing.T, author *models.User, group *models.Group, text string) *models.Post {
	t.Helper()
	post := &models.Post{Text: text, AuthorID: author.ID}
	if group != nil {
		post.GroupID = &group.ID
	}
	require.NoError(t, a.posts.CreatePost(context.Background(), post))
	return post
}

// createPosts inserts n posts with increasing publication dates.
func (a *testApp) createPosts(t *testing.T, author *models.User, group *models.Group, n int) {
	t.Helper()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < n; i++ {
		post := &models.Post{Text: fmt.Sprintf("post number %d", i), AuthorID: author.ID, PubDate: base.Add(time.Duration(i) * time.Second)}
		if group != nil {
			post.GroupID = &group.ID
		}
		require.NoError(t, a.posts.CreatePost(context.Background(), post))
	}
}

func (a *testApp) postCount(t *testing.T) int64 {
	t.Helper()
	n, err := a.posts.CountPosts(context.Background(), repositories.PostFilter{})
	require.NoError(t, err)
	return n
}

func (a *testApp) followCount(t *testing.T) int64 {
	t.Helper()
	n, err := a.follows.CountFollows(context.Background())
	require.NoError(t, err)
	return n
}

func (a *testApp) commentCount(t *testing.T) int64 {
	t.Helper()
	n, err := a.comments.CountComments(context.Background())
	require.NoError(t, err)
	return n
}

// do serves req, authenticated as user when it is not nil.
func (a *testApp) do(t *testing.T, req *http.Request, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	if user != nil {
		token, _, err := a.jwt.IssueToken(user)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(t *testing.T, target string, user *models.User) *httptest.ResponseRecorder {
	return a.do(t, httptest.NewRequest(http.MethodGet, target, nil), user)
}

func (a *testApp) postForm(t *testing.T, target string, values url.Values, user *models.User) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return a.do(t, req, user)
}

func (a *testApp) postMultipart(t *testing.T, target string, fields map[string]string, filename string, content []byte, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	return a.do(t, multipartRequest(t, target, fields, filename, content), user)
}

func multipartRequest(t *testing.T, target string, fields map[string]string, filename string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

// view decodes a rendered view.
func view(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var v map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func posts(t *testing.T, v map[string]any) []any {
	t.Helper()
	items, ok := v["posts"].([]any)
	require.True(t, ok, "view has no posts: %v", v)
	return items
}

func meta(t *testing.T, v map[string]any) map[string]any {
	t.Helper()
	m, ok := v["meta"].(map[string]any)
	require.True(t, ok)
	return m
}

func formErrors(t *testing.T, v map[string]any) map[string]any {
	t.Helper()
	form, ok := v["form"].(map[string]any)
	require.True(t, ok)
	errs, ok := form["errors"].(map[string]any)
	require.True(t, ok)
	return errs
}
