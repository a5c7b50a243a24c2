package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/Shivang14d04/BlogCircle/internal/auth"
	"github.com/Shivang14d04/BlogCircle/internal/posts"
)

// maxUploadBytes caps the multipart form size, image included.
const maxUploadBytes = 10 << 20

type PostsHandler struct {
	svc    *posts.Service
	logger *slog.Logger
}

func NewPostsHandler(svc *posts.Service, logger *slog.Logger) *PostsHandler {
	return &PostsHandler{
		svc:    svc,
		logger: logger,
	}
}

func (h *PostsHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filter *posts.Status
		if raw := r.URL.Query().Get("status"); raw != "" {
			status := posts.Status(raw)
			if !status.Valid() {
				writeError(w, http.StatusBadRequest, "BAD_REQUEST", "status must be active or inactive", nil)
				return
			}
			filter = &status
		}

		list, err := h.svc.List(r.Context(), filter)
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": list, "total": len(list)})
	}
}

func (h *PostsHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := r.PathValue("slug")
		if slug == "" {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "slug is required", nil)
			return
		}

		post, err := h.svc.Get(r.Context(), slug)
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, post)
	}
}

// Create accepts a multipart form: title, content, status, and a
// mandatory image file.
func (h *PostsHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid multipart form", nil)
			return
		}

		in := posts.CreateInput{
			Title:   r.FormValue("title"),
			Content: r.FormValue("content"),
			Status:  posts.Status(r.FormValue("status")),
		}
		imageBytes, contentType, err := readImage(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "unreadable image upload", nil)
			return
		}
		in.ImageBytes = imageBytes
		in.ImageContentType = contentType

		post, err := h.svc.Create(r.Context(), auth.FromContext(r.Context()), in)
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, post)
	}
}

// Update accepts the same multipart form as Create with every field
// optional; absent fields are left unchanged.
func (h *PostsHandler) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := r.PathValue("slug")
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid multipart form", nil)
			return
		}

		var in posts.UpdateInput
		if v, ok := formValue(r, "title"); ok {
			in.Title = &v
		}
		if v, ok := formValue(r, "content"); ok {
			in.Content = &v
		}
		if v, ok := formValue(r, "status"); ok {
			status := posts.Status(v)
			in.Status = &status
		}
		imageBytes, contentType, err := readImage(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "unreadable image upload", nil)
			return
		}
		in.ImageBytes = imageBytes
		in.ImageContentType = contentType

		if in.Title == nil && in.Content == nil && in.Status == nil && len(in.ImageBytes) == 0 {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "no fields to update", nil)
			return
		}

		post, err := h.svc.Update(r.Context(), auth.FromContext(r.Context()), slug, in)
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, post)
	}
}

func (h *PostsHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := r.PathValue("slug")
		if err := h.svc.Delete(r.Context(), auth.FromContext(r.Context()), slug); err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Asset streams a stored image. Useful when no CDN fronts the bucket.
func (h *PostsHandler) Asset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		body, contentType, err := h.svc.OpenAsset(r.Context(), id)
		if err != nil {
			if errors.Is(err, posts.ErrNotFound) {
				writeError(w, http.StatusNotFound, "NOT_FOUND", "asset not found", nil)
				return
			}
			writeServiceError(w, h.logger, err)
			return
		}
		defer body.Close()

		if contentType == "" {
			contentType = "application/octet-stream"
		}
		w.Header().Set("Content-Type", contentType)
		if _, err := io.Copy(w, body); err != nil {
			h.logger.Error("stream asset failed", "asset_id", id, "error", err)
		}
	}
}

// formValue distinguishes "field absent" from "field set to empty".
func formValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func readImage(r *http.Request) ([]byte, string, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", nil
		}
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, header.Header.Get("Content-Type"), nil
}
