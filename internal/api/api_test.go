package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bilgisen/ujala/internal/auth"
	"github.com/bilgisen/ujala/internal/cache"
	"github.com/bilgisen/ujala/internal/config"
	"github.com/bilgisen/ujala/internal/feed"
	"github.com/bilgisen/ujala/internal/media"
	"github.com/bilgisen/ujala/internal/middleware"
	"github.com/bilgisen/ujala/internal/models"
	"github.com/bilgisen/ujala/internal/objectstore"
	"github.com/bilgisen/ujala/internal/publishing"
	"github.com/bilgisen/ujala/internal/reporters"
	"github.com/bilgisen/ujala/internal/repository"
	"github.com/bilgisen/ujala/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubFetcher struct {
	key      string
	articles []feed.RawArticle
}

func (s *stubFetcher) Configured() bool { return s.key != "" }

func (s *stubFetcher) TopHeadlines(context.Context, string, int) ([]feed.RawArticle, error) {
	return s.articles, nil
}

func (s *stubFetcher) Search(context.Context, string, int) ([]feed.RawArticle, error) {
	return s.articles, nil
}

type testServer struct {
	app      *fiber.App
	news     *repository.MemoryNews
	users    *repository.MemoryUsers
	contacts *repository.MemoryContacts
	tokens   auth.TokenService
	local    *storage.Local
	fetcher  *stubFetcher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	local, err := storage.NewLocal(filepath.Join(t.TempDir(), "public", "uploads"))
	require.NoError(t, err)
	resolver := media.NewResolver(objectstore.Disabled{}, local, media.Config{PublicDir: filepath.Dir(local.Dir())})

	s := &testServer{
		news:    repository.NewMemoryNews(),
		users:   repository.NewMemoryUsers(),
		tokens:  auth.NewTokenService("test-secret", time.Hour),
		local:   local,
		fetcher: &stubFetcher{},
	}
	s.contacts = repository.NewMemoryContacts()
	h := NewHandlers(Deps{
		News:     publishing.NewService(s.news, resolver),
		Accounts: reporters.NewService(s.users, resolver, s.tokens, reporters.SuperAdmin{Email: "root@example.com", Password: "rootpass"}, ""),
		Live:     feed.NewAggregator(s.fetcher, cache.NewMemory(time.Minute)),
		Local:    local,
		Config:   &config.Config{MaxFileSize: 1 << 20, FrontendURL: "https://ujala.test"},

		Categories: repository.NewMemoryCategories(),
		Contacts:   s.contacts,
		Proxy:      media.NewProxy(objectstore.Disabled{}, time.Second),
	})
	s.app = fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	SetupRoutes(s.app, h, RouteConfig{Tokens: s.tokens})
	return s
}

func (s *testServer) token(t *testing.T, role, name string) string {
	t.Helper()
	tok, _, err := s.tokens.Sign(primitive.NewObjectID().Hex(), role+"@example.com", role, name)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (s *testServer) json(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	return s.do(t, method, path, token, r, fiber.MIMEApplicationJSON)
}

type file struct {
	field, name string
	data        []byte
}

func multipartBody(t *testing.T, fields map[string]string, parts ...file) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range parts {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func data(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	body := decode(t, resp)
	d, ok := body["data"].(map[string]any)
	require.True(t, ok, "data is an object: %v", body)
	return d
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/api/health", "", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["objectStorage"])
}

func TestReporterSubmissionLifecycle(t *testing.T) {
	s := newTestServer(t)
	reporter := s.token(t, models.RoleReporter, "Asha")
	super := s.token(t, models.RoleSuperAdmin, "Super Admin")

	body, ct := multipartBody(t, map[string]string{
		"title":       "Local Fair Opens",
		"description": "A fair",
		"content":     "Stalls and rides",
	}, file{fieldImage, "fair.jpg", []byte("img")})
	resp := s.do(t, http.MethodPost, "/api/news/reporter/upload", reporter, body, ct)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	created := data(t, resp)
	assert.Equal(t, "local-fair-opens", created["slug"])
	assert.Equal(t, false, created["approved"])
	assert.Equal(t, "Asha", created["author"])
	assert.Equal(t, publishing.CategoryDefault, created["category"])
	assert.True(t, strings.HasPrefix(created["imageUrl"].(string), "/uploads/"))
	id := created["_id"].(string)

	resp = s.do(t, http.MethodGet, "/api/news/local-fair-opens", "", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "pending items are hidden")

	resp = s.do(t, http.MethodGet, "/api/news/superadmin/approval", super, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pending := decode(t, resp)["data"].([]any)
	assert.Len(t, pending, 1)

	resp = s.do(t, http.MethodPut, "/api/news/superadmin/approval/"+id+"/approve", super, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, data(t, resp)["isBreaking"])

	resp = s.do(t, http.MethodGet, "/api/news/local-fair-opens", "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, data(t, resp)["_id"])

	resp = s.do(t, http.MethodGet, "/api/news/ujala?page=1&limit=5", "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode(t, resp)
	assert.Len(t, list["data"], 1)
	assert.Equal(t, float64(1), list["pagination"].(map[string]any)["total"])

	resp = s.do(t, http.MethodGet, "/api/news/media/"+id+"/image", "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	img, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "img", string(img))

	resp = s.do(t, http.MethodGet, "/api/news/media/"+id+"/gallery/0", "", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/news/"+id+"/view", "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), data(t, resp)["views"])
}

func TestUploadRequiresFieldsAndRoles(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, models.RoleAdmin, "Admin")
	reporter := s.token(t, models.RoleReporter, "R")

	resp := s.json(t, http.MethodPost, "/api/news/admin/upload", admin, map[string]string{"title": "Only title"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Missing required fields", decode(t, resp)["message"])

	resp = s.json(t, http.MethodPost, "/api/news/admin/upload", reporter, map[string]string{"title": "x"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.json(t, http.MethodPost, "/api/news/admin/upload", "", map[string]string{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.json(t, http.MethodPost, "/api/news/admin/upload", admin, map[string]string{
		"title": "Photo walk", "description": "d", "content": "c", "type": "gallery",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	created := data(t, resp)
	assert.Equal(t, true, created["isGallery"])
	assert.Equal(t, publishing.CategoryGallery, created["category"])
	assert.Equal(t, publishing.AuthorTeam, created["author"])
}

func TestModerationRoutes(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	admin := s.token(t, models.RoleAdmin, "Admin")
	super := s.token(t, models.RoleSuperAdmin, "Super")

	n := &models.News{Title: "Event", Slug: "event", Kind: models.KindEvent, IsUjala: true}
	require.NoError(t, s.news.Insert(ctx, n))
	id := n.ID.Hex()

	resp := s.do(t, http.MethodGet, "/api/news/superadmin/approval/events", admin, nil, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(t, http.MethodPut, "/api/news/superadmin/approval/"+id+"/approve/gallery", super, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, data(t, resp)["isGallery"])

	resp = s.do(t, http.MethodGet, "/api/news/admin/approved-gallery", admin, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode(t, resp)["data"], 1)

	resp = s.do(t, http.MethodPut, "/api/news/admin/approved-news/"+id+"/feature", admin, nil, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "approved-news management is superadmin only")

	resp = s.do(t, http.MethodPut, "/api/news/admin/approved-gallery/"+id+"/feature", admin, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, data(t, resp)["isFeatured"])

	resp = s.do(t, http.MethodGet, "/api/news/featured-db", "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode(t, resp)["data"], 1)

	resp = s.do(t, http.MethodPut, "/api/news/superadmin/approval/not-an-id/approve", super, nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, http.MethodDelete, "/api/news/admin/approved-gallery/"+id, admin, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = s.do(t, http.MethodDelete, "/api/news/"+id, super, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEditNews(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	admin := s.token(t, models.RoleAdmin, "Admin")

	n := &models.News{Title: "Old title", Slug: "old-title", Description: "d", Content: "c", IsUjala: true, Approved: true}
	require.NoError(t, s.news.Insert(ctx, n))

	body, ct := multipartBody(t, map[string]string{"title": "New title", "location": "Moradabad"},
		file{fieldGallery, "a.jpg", []byte("a")}, file{fieldGallery, "b.jpg", []byte("b")})
	resp := s.do(t, http.MethodPut, "/api/news/"+n.ID.Hex(), admin, body, ct)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	edited := data(t, resp)
	assert.Equal(t, "new-title", edited["slug"])
	assert.Equal(t, "Moradabad", edited["location"])
	assert.Len(t, edited["galleryImages"], 2)
	assert.Equal(t, true, edited["approved"])
}

func TestTooManyGalleryFiles(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, models.RoleAdmin, "Admin")

	var many []file
	for range maxGalleryFiles + 1 {
		many = append(many, file{fieldGallery, "g.jpg", []byte("g")})
	}
	body, ct := multipartBody(t, map[string]string{"title": "t", "description": "d", "content": "c"}, many...)
	resp := s.do(t, http.MethodPost, "/api/news/admin/upload", admin, body, ct)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLegacyUploadsAndShortLinks(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	_, err := s.local.Save(ctx, "present.jpg", []byte("here"))
	require.NoError(t, err)
	n := &models.News{
		Title: "Old", Slug: "old-item", ShortID: "abc123", Approved: true,
		Gallery: []models.MediaRef{models.PathRef("/uploads/first.jpg"), models.PathRef("/uploads/gone.jpg")},
	}
	require.NoError(t, s.news.Insert(ctx, n))

	resp := s.do(t, http.MethodGet, "/uploads/present.jpg", "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/uploads/gone.jpg", "", nil, "")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/api/news/media/"+n.ID.Hex()+"/gallery/1", resp.Header.Get("Location"))

	resp = s.do(t, http.MethodGet, "/uploads/unknown.jpg", "", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/r/abc123", "", nil, "")
	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "https://ujala.test/news/old-item", resp.Header.Get("Location"))

	resp = s.do(t, http.MethodGet, "/r/missing", "", nil, "")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestLiveRoutes(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/api/news/featured", "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode(t, resp)["data"])

	resp = s.do(t, http.MethodGet, "/api/news/breaking", "", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	s.fetcher.key = "k"
	s.fetcher.articles = []feed.RawArticle{{Title: "Storm Hits Coast", Description: "Heavy rain"}}

	resp = s.do(t, http.MethodGet, "/api/news/storm-hits-coast-42", "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, sourceLive, body["source"])
	slug := body["data"].(map[string]any)["slug"].(string)

	resp = s.do(t, http.MethodGet, "/api/news/"+slug, "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "live-cache", decode(t, resp)["source"])

	resp = s.do(t, http.MethodGet, "/api/news/?category=sports&limit=5", "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode(t, resp)
	assert.Len(t, list["data"], 1)

	resp = s.do(t, http.MethodGet, "/api/news/12-34", "", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/news/cache/clear", "", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAccountRoutes(t *testing.T) {
	s := newTestServer(t)

	resp := s.json(t, http.MethodPost, "/api/auth/superadmin-login", "", map[string]string{"email": "root@example.com", "password": "rootpass"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	super := decode(t, resp)["token"].(string)

	resp = s.json(t, http.MethodPost, "/api/auth/register", "", map[string]string{"name": "A", "email": "a@example.com", "password": "pw"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp = s.json(t, http.MethodPost, "/api/auth/register", super, map[string]string{"name": "A", "email": "a@example.com", "password": "pw"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, ct := multipartBody(t, map[string]string{"name": "Ravi", "email": "ravi@example.com", "password": "pw", "region": "Rampur"},
		file{fieldAvatar, "me.png", []byte("png")})
	resp = s.do(t, http.MethodPost, "/api/auth/register-reporter", "", body, ct)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.json(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ravi@example.com", "password": "pw"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/users/reporters", super, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode(t, resp)["data"].([]any)
	require.Len(t, list, 1)
	reporter := list[0].(map[string]any)
	assert.Equal(t, "Rampur", reporter["region"])
	assert.True(t, strings.HasPrefix(reporter["avatar"].(string), "/uploads/"))
	_, hasPassword := reporter["password"]
	assert.False(t, hasPassword)
	id := reporter["_id"].(string)

	resp = s.do(t, http.MethodGet, "/api/users/reporters/"+id+"/card", "", nil, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(t, http.MethodPut, "/api/users/reporters/"+id+"/approve", super, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/users/reporters/"+id+"/card", "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, reporters.DefaultRoleLabel, data(t, resp)["roleLabel"])

	resp = s.json(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ravi@example.com", "password": "pw"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := decode(t, resp)["token"].(string)

	resp = s.do(t, http.MethodGet, "/api/auth/me", token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.RoleReporter, data(t, resp)["role"])

	resp = s.do(t, http.MethodGet, "/api/users/me", token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ravi", data(t, resp)["name"])

	resp = s.do(t, http.MethodDelete, "/api/users/reporters/"+id, super, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnknownEndpoint(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/nope", "", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Endpoint not found", decode(t, resp)["message"])
}
