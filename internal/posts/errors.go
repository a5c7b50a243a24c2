package posts

import "errors"

var (
	ErrNotFound         = errors.New("post not found")
	ErrSlugExists       = errors.New("slug already exists")
	ErrValidation       = errors.New("invalid input")
	ErrUnauthorized     = errors.New("authentication required")
	ErrStoreUnavailable = errors.New("document store unavailable")
	ErrAssetStore       = errors.New("asset store unavailable")
)
