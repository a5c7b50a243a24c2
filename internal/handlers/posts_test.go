package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Shivang14d04/BlogCircle/internal/auth"
	"github.com/Shivang14d04/BlogCircle/internal/events"
	"github.com/Shivang14d04/BlogCircle/internal/posts"
	"github.com/Shivang14d04/BlogCircle/internal/storage"
)

type testMockRepo struct {
	create func(ctx context.Context, post *posts.Post) (*posts.Post, error)
	get    func(ctx context.Context, slug string) (*posts.Post, error)
	update func(ctx context.Context, slug string, fields posts.UpdateFields) (*posts.Post, error)
	delete func(ctx context.Context, slug string) error
	list   func(ctx context.Context, status posts.Status) ([]*posts.Post, error)
}

func (m *testMockRepo) Create(ctx context.Context, post *posts.Post) (*posts.Post, error) {
	if m.create != nil {
		return m.create(ctx, post)
	}
	return post, nil
}

func (m *testMockRepo) Get(ctx context.Context, slug string) (*posts.Post, error) {
	if m.get != nil {
		return m.get(ctx, slug)
	}
	return nil, posts.ErrNotFound
}

func (m *testMockRepo) Update(ctx context.Context, slug string, fields posts.UpdateFields) (*posts.Post, error) {
	if m.update != nil {
		return m.update(ctx, slug, fields)
	}
	return nil, posts.ErrNotFound
}

func (m *testMockRepo) Delete(ctx context.Context, slug string) error {
	if m.delete != nil {
		return m.delete(ctx, slug)
	}
	return nil
}

func (m *testMockRepo) List(ctx context.Context, status posts.Status) ([]*posts.Post, error) {
	if m.list != nil {
		return m.list(ctx, status)
	}
	return []*posts.Post{}, nil
}

type testMockStorage struct {
	upload   func(ctx context.Context, key string, body io.Reader, contentType string) error
	download func(ctx context.Context, key string) (io.ReadCloser, string, error)
	delete   func(ctx context.Context, key string) error
	exists   func(ctx context.Context, key string) (bool, error)
}

func (m *testMockStorage) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	if m.upload != nil {
		return m.upload(ctx, key, body, contentType)
	}
	return nil
}

func (m *testMockStorage) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if m.download != nil {
		return m.download(ctx, key)
	}
	return nil, "", storage.ErrNotFound
}

func (m *testMockStorage) Delete(ctx context.Context, key string) error {
	if m.delete != nil {
		return m.delete(ctx, key)
	}
	return nil
}

func (m *testMockStorage) Exists(ctx context.Context, key string) (bool, error) {
	if m.exists != nil {
		return m.exists(ctx, key)
	}
	return false, nil
}

func testHandler(t *testing.T) (*PostsHandler, *testMockRepo, *testMockStorage) {
	t.Helper()
	repo := &testMockRepo{}
	st := &testMockStorage{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := posts.NewService(repo, st, events.NoopPublisher{}, logger, "b", "us-east-1", "")
	return NewPostsHandler(svc, logger), repo, st
}

func testMux(h *PostsHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /posts", h.List())
	mux.HandleFunc("POST /posts", h.Create())
	mux.HandleFunc("GET /posts/{slug}", h.Get())
	mux.HandleFunc("PUT /posts/{slug}", h.Update())
	mux.HandleFunc("DELETE /posts/{slug}", h.Delete())
	mux.HandleFunc("GET /assets/{id}", h.Asset())
	return mux
}

// multipartBody builds a form with the given fields and, when image is
// non-nil, an image file part.
func multipartBody(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if image != nil {
		part, err := mw.CreateFormFile("image", "cover.png")
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := part.Write(image); err != nil {
			t.Fatalf("write image: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return buf, mw.FormDataContentType()
}

func asUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: userID}))
}

func TestPostsHandler_Create(t *testing.T) {
	h, repo, _ := testHandler(t)
	repo.create = func(_ context.Context, p *posts.Post) (*posts.Post, error) { return p, nil }

	body, contentType := multipartBody(t, map[string]string{
		"title":   "Hello, World! 2024",
		"content": "<p>hi</p>",
	}, []byte("png-bytes"))
	req := asUser(httptest.NewRequest(http.MethodPost, "/posts", body), "user-1")
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	testMux(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Create: status %d, body %s", rec.Code, rec.Body.Bytes())
	}
	var post posts.Post
	if err := json.NewDecoder(rec.Body).Decode(&post); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if post.Slug != "hello-world-2024" || post.UserID != "user-1" {
		t.Errorf("got %+v", post)
	}
	if post.FeaturedImageURL == "" {
		t.Errorf("expected featured_image_url in response")
	}
}

func TestPostsHandler_Create_Anonymous(t *testing.T) {
	h, _, _ := testHandler(t)
	body, contentType := multipartBody(t, map[string]string{"title": "X"}, []byte("img"))
	req := httptest.NewRequest(http.MethodPost, "/posts", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	testMux(h).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestPostsHandler_Create_MissingImage(t *testing.T) {
	h, _, _ := testHandler(t)
	body, contentType := multipartBody(t, map[string]string{"title": "X"}, nil)
	req := asUser(httptest.NewRequest(http.MethodPost, "/posts", body), "user-1")
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	testMux(h).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestPostsHandler_Create_NotMultipart(t *testing.T) {
	h, _, _ := testHandler(t)
	req := asUser(httptest.NewRequest(http.MethodPost, "/posts", bytes.NewBufferString(`{"title":"X"}`)), "user-1")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	testMux(h).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestPostsHandler_Create_Conflict(t *testing.T) {
	h, repo, _ := testHandler(t)
	repo.create = func(context.Context, *posts.Post) (*posts.Post, error) {
		return nil, posts.ErrSlugExists
	}
	body, contentType := multipartBody(t, map[string]string{"title": "Taken"}, []byte("img"))
	req := asUser(httptest.NewRequest(http.MethodPost, "/posts", body), "user-1")
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	testMux(h).ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestPostsHandler_Get(t *testing.T) {
	h, repo, _ := testHandler(t)
	repo.get = func(context.Context, string) (*posts.Post, error) {
		return &posts.Post{Slug: "a", Title: "A", Status: posts.StatusActive}, nil
	}
	req := httptest.NewRequest(http.MethodGet, "/posts/a", nil)
	rec := httptest.NewRecorder()
	testMux(h).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Get: status %d", rec.Code)
	}
	var post posts.Post
	if err := json.NewDecoder(rec.Body).Decode(&post); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if post.Slug != "a" {
		t.Errorf("got slug %q", post.Slug)
	}
}

func TestPostsHandler_Get_NotFound(t *testing.T) {
	h, _, _ := testHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/posts/missing", nil)
	rec := httptest.NewRecorder()
	testMux(h).ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestPostsHandler_List(t *testing.T) {
	h, repo, _ := testHandler(t)
	repo.list = func(_ context.Context, status posts.Status) ([]*posts.Post, error) {
		if status != posts.StatusActive {
			t.Errorf("List status %q", status)
		}
		return []*posts.Post{{Slug: "one", Status: posts.StatusActive}}, nil
	}
	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	rec := httptest.NewRecorder()
	testMux(h).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("List: status %d", rec.Code)
	}
}

func TestPostsHandler_List_InactiveFilter(t *testing.T) {
	h, repo, _ := testHandler(t)
	repo.list = func(_ context.Context, status posts.Status) ([]*posts.Post, error) {
		if status != posts.StatusInactive {
			t.Errorf("List status %q", status)
		}
		return []*posts.Post{}, nil
	}
	req := httptest.NewRequest(http.MethodGet, "/posts?status=inactive", nil)
	rec := httptest.NewRecorder()
	testMux(h).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("List: status %d", rec.Code)
	}
}

func TestPostsHandler_List_InvalidStatus(t *testing.T) {
	h, _, _ := testHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/posts?status=draft", nil)
	rec := httptest.NewRecorder()
	testMux(h).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid status, got %d", rec.Code)
	}
}

func TestPostsHandler_Update(t *testing.T) {
	h, repo, _ := testHandler(t)
	repo.get = func(context.Context, string) (*posts.Post, error) {
		return &posts.Post{Slug: "old", Title: "Old", Status: posts.StatusActive}, nil
	}
	repo.update = func(_ context.Context, slug string, fields posts.UpdateFields) (*posts.Post, error) {
		return &posts.Post{Slug: slug, Title: *fields.Title, Status: posts.StatusActive}, nil
	}

	body, contentType := multipartBody(t, map[string]string{"title": "New Title"}, nil)
	req := asUser(httptest.NewRequest(http.MethodPut, "/posts/old", body), "user-2")
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	testMux(h).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Update: status %d, body %s", rec.Code, rec.Body.Bytes())
	}
	var post posts.Post
	if err := json.NewDecoder(rec.Body).Decode(&post); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if post.Title != "New Title" {
		t.Errorf("got %+v", post)
	}
}

func TestPostsHandler_Update_NoFields(t *testing.T) {
	h, _, _ := testHandler(t)
	body, contentType := multipartBody(t, nil, nil)
	req := asUser(httptest.NewRequest(http.MethodPut, "/posts/old", body), "user-1")
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	testMux(h).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestPostsHandler_Update_NotFound(t *testing.T) {
	h, _, _ := testHandler(t)
	body, contentType := multipartBody(t, map[string]string{"title": "X"}, nil)
	req := asUser(httptest.NewRequest(http.MethodPut, "/posts/missing", body), "user-1")
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	testMux(h).ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestPostsHandler_Update_Anonymous(t *testing.T) {
	h, _, _ := testHandler(t)
	body, contentType := multipartBody(t, map[string]string{"title": "X"}, nil)
	req := httptest.NewRequest(http.MethodPut, "/posts/old", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	testMux(h).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestPostsHandler_Delete(t *testing.T) {
	h, repo, _ := testHandler(t)
	repo.get = func(context.Context, string) (*posts.Post, error) {
		return &posts.Post{Slug: "d", FeaturedImage: "img123"}, nil
	}
	req := asUser(httptest.NewRequest(http.MethodDelete, "/posts/d", nil), "user-1")
	rec := httptest.NewRecorder()
	testMux(h).ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("Delete: status %d", rec.Code)
	}
}

func TestPostsHandler_Delete_NotFound(t *testing.T) {
	h, _, _ := testHandler(t)
	req := asUser(httptest.NewRequest(http.MethodDelete, "/posts/missing", nil), "user-1")
	rec := httptest.NewRecorder()
	testMux(h).ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestPostsHandler_Delete_Anonymous(t *testing.T) {
	h, _, _ := testHandler(t)
	req := httptest.NewRequest(http.MethodDelete, "/posts/d", nil)
	rec := httptest.NewRecorder()
	testMux(h).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestPostsHandler_Asset(t *testing.T) {
	h, _, st := testHandler(t)
	st.download = func(_ context.Context, key string) (io.ReadCloser, string, error) {
		if key != "images/abc" {
			t.Errorf("Download key %q", key)
		}
		return io.NopCloser(bytes.NewReader([]byte("png-bytes"))), "image/png", nil
	}
	req := httptest.NewRequest(http.MethodGet, "/assets/abc", nil)
	rec := httptest.NewRecorder()
	testMux(h).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Asset: status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type %q", ct)
	}
	if rec.Body.String() != "png-bytes" {
		t.Errorf("body %q", rec.Body.String())
	}
}

func TestPostsHandler_Asset_NotFound(t *testing.T) {
	h, _, _ := testHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/assets/missing", nil)
	rec := httptest.NewRecorder()
	testMux(h).ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
