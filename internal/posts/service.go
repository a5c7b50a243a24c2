package posts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Shivang14d04/BlogCircle/internal/auth"
	"github.com/Shivang14d04/BlogCircle/internal/events"
	"github.com/Shivang14d04/BlogCircle/internal/slug"
	"github.com/Shivang14d04/BlogCircle/internal/storage"
)

const assetPrefix = "images/"

func assetKey(assetID string) string {
	return assetPrefix + assetID
}

// Service coordinates the post lifecycle across the document store and
// the blob store. The document is authoritative: a failed document
// write after an asset upload triggers a compensating asset delete,
// while asset cleanup after a committed document write is best-effort
// and never fails the caller. Cleanup failures leave an orphan, which
// is logged and handed to the reaper via an asset.orphaned event.
type Service struct {
	repo      Repository
	store     storage.Storage
	publisher events.Publisher
	logger    *slog.Logger

	bucket     string
	region     string
	cdnBaseURL string
}

func NewService(repo Repository, store storage.Storage, publisher events.Publisher, logger *slog.Logger, bucket, region, cdnBaseURL string) *Service {
	return &Service{
		repo:       repo,
		store:      store,
		publisher:  publisher,
		logger:     logger,
		bucket:     bucket,
		region:     region,
		cdnBaseURL: cdnBaseURL,
	}
}

type CreateInput struct {
	Title            string
	Content          string
	Status           Status
	ImageBytes       []byte
	ImageContentType string
}

// UpdateInput is a partial update; nil/empty fields are left as-is.
type UpdateInput struct {
	Title            *string
	Content          *string
	Status           *Status
	ImageBytes       []byte
	ImageContentType string
}

// Create publishes a new post. The image is mandatory. The upload
// happens before the document insert; when the insert fails the
// just-uploaded asset is deleted again so no dangling reference or
// orphan survives a clean failure.
func (s *Service) Create(ctx context.Context, identity auth.Identity, in CreateInput) (*Post, error) {
	if identity.IsAnonymous() {
		return nil, ErrUnauthorized
	}
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if len(in.ImageBytes) == 0 {
		return nil, fmt.Errorf("%w: image is required", ErrValidation)
	}
	if in.Status == "" {
		in.Status = StatusActive
	}
	if !in.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, in.Status)
	}
	postSlug := slug.Make(in.Title)
	if postSlug == "" {
		return nil, fmt.Errorf("%w: title has no usable characters for a slug", ErrValidation)
	}

	assetID := uuid.NewString()
	if err := s.store.Upload(ctx, assetKey(assetID), bytes.NewReader(in.ImageBytes), in.ImageContentType); err != nil {
		return nil, fmt.Errorf("%w: upload image: %v", ErrAssetStore, err)
	}

	created, err := s.repo.Create(ctx, &Post{
		Slug:          postSlug,
		Title:         in.Title,
		Content:       in.Content,
		FeaturedImage: assetID,
		Status:        in.Status,
		UserID:        identity.UserID,
	})
	if err != nil {
		s.discardAsset(ctx, assetID, postSlug, "create rolled back")
		return nil, err
	}

	if created.Status == StatusActive {
		s.announce(ctx, created)
	}
	return s.withPreview(created), nil
}

// Update applies a partial update. A new image, if supplied, is
// uploaded before the document write; the old image is deleted only
// after the write commits, and a failure there does not fail the
// update.
func (s *Service) Update(ctx context.Context, identity auth.Identity, postSlug string, in UpdateInput) (*Post, error) {
	if identity.IsAnonymous() {
		return nil, ErrUnauthorized
	}
	if in.Title != nil && *in.Title == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *in.Status)
	}

	existing, err := s.repo.Get(ctx, postSlug)
	if err != nil {
		return nil, err
	}

	fields := UpdateFields{Title: in.Title, Content: in.Content, Status: in.Status}
	newAssetID := ""
	if len(in.ImageBytes) > 0 {
		newAssetID = uuid.NewString()
		if err := s.store.Upload(ctx, assetKey(newAssetID), bytes.NewReader(in.ImageBytes), in.ImageContentType); err != nil {
			return nil, fmt.Errorf("%w: upload image: %v", ErrAssetStore, err)
		}
		fields.FeaturedImage = &newAssetID
	}

	updated, err := s.repo.Update(ctx, postSlug, fields)
	if err != nil {
		if newAssetID != "" {
			s.discardAsset(ctx, newAssetID, postSlug, "update rolled back")
		}
		return nil, err
	}

	if newAssetID != "" && existing.FeaturedImage != "" {
		s.discardAsset(ctx, existing.FeaturedImage, postSlug, "image replaced")
	}
	if existing.Status != StatusActive && updated.Status == StatusActive {
		s.announce(ctx, updated)
	}
	return s.withPreview(updated), nil
}

// Delete removes the document first, then reclaims its image. The
// asset delete is best-effort; the post is gone either way.
func (s *Service) Delete(ctx context.Context, identity auth.Identity, postSlug string) error {
	if identity.IsAnonymous() {
		return ErrUnauthorized
	}

	existing, err := s.repo.Get(ctx, postSlug)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, postSlug); err != nil {
		return err
	}

	if existing.FeaturedImage != "" {
		s.discardAsset(ctx, existing.FeaturedImage, postSlug, "post deleted")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, postSlug string) (*Post, error) {
	post, err := s.repo.Get(ctx, postSlug)
	if err != nil {
		return nil, err
	}
	return s.withPreview(post), nil
}

// List returns posts matching the status filter, defaulting to the
// publicly visible ones.
func (s *Service) List(ctx context.Context, filter *Status) ([]*Post, error) {
	status := StatusActive
	if filter != nil {
		if !filter.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *filter)
		}
		status = *filter
	}
	list, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, err
	}
	for _, post := range list {
		s.withPreview(post)
	}
	return list, nil
}

// OpenAsset streams a stored image for the asset-serving endpoint.
func (s *Service) OpenAsset(ctx context.Context, assetID string) (io.ReadCloser, string, error) {
	body, contentType, err := s.store.Download(ctx, assetKey(assetID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("%w: download image: %v", ErrAssetStore, err)
	}
	return body, contentType, nil
}

// PreviewURL computes the display reference for an asset id without
// touching the network.
func (s *Service) PreviewURL(assetID string) string {
	if assetID == "" {
		return ""
	}
	key := assetKey(assetID)
	if s.cdnBaseURL != "" {
		return strings.TrimSuffix(s.cdnBaseURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func (s *Service) withPreview(post *Post) *Post {
	post.FeaturedImageURL = s.PreviewURL(post.FeaturedImage)
	return post
}

// discardAsset deletes a blob that no document references anymore.
// When the delete itself fails the orphan is accepted: logged, handed
// to the reaper, and never retried inline.
func (s *Service) discardAsset(ctx context.Context, assetID, postSlug, reason string) {
	err := s.store.Delete(ctx, assetKey(assetID))
	if err == nil {
		return
	}
	s.logger.Error("asset orphaned: delete failed",
		"asset_id", assetID,
		"slug", postSlug,
		"reason", reason,
		"error", err,
	)
	e := events.NewAssetOrphaned(assetID, assetKey(assetID), postSlug, reason)
	if perr := s.publisher.PublishAssetOrphaned(ctx, e); perr != nil {
		s.logger.Error("publish asset.orphaned failed", "asset_id", assetID, "error", perr)
	}
}

func (s *Service) announce(ctx context.Context, post *Post) {
	e := events.NewPostPublished(post.Slug, post.Title, post.UserID)
	if err := s.publisher.PublishPostPublished(ctx, e); err != nil {
		s.logger.Warn("publish post.published failed", "slug", post.Slug, "error", err)
	}
}
