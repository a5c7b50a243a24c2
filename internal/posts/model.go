package posts

import "time"

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Post is one blog entry. The slug doubles as the document's primary
// key and never changes after creation. FeaturedImage holds the opaque
// asset id of the attached image, or "" when there is none.
type Post struct {
	Slug          string    `bson:"_id" json:"slug"`
	Title         string    `bson:"title" json:"title"`
	Content       string    `bson:"content" json:"content"`
	FeaturedImage string    `bson:"featuredImage,omitempty" json:"featured_image,omitempty"`
	Status        Status    `bson:"status" json:"status"`
	UserID        string    `bson:"userId" json:"user_id"`
	CreatedAt     time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updated_at"`

	// FeaturedImageURL is computed from FeaturedImage on the way out;
	// it is never stored.
	FeaturedImageURL string `bson:"-" json:"featured_image_url,omitempty"`
}
