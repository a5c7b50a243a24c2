package posts

import "context"

// UpdateFields is a partial update; nil fields are left untouched.
// The slug itself is not updatable.
type UpdateFields struct {
	Title         *string
	Content       *string
	FeaturedImage *string
	Status        *Status
}

type Repository interface {
	// Create inserts the post, failing with ErrSlugExists when the
	// slug is already taken.
	Create(ctx context.Context, post *Post) (*Post, error)
	Get(ctx context.Context, slug string) (*Post, error)
	Update(ctx context.Context, slug string, fields UpdateFields) (*Post, error)
	Delete(ctx context.Context, slug string) error
	List(ctx context.Context, status Status) ([]*Post, error)
}
