package posts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ Repository = (*mongoRepository)(nil)

// mongoRepository keeps one document per post, with the slug as _id.
// The primary-key constraint on _id is what turns racing creates of
// the same slug into ErrSlugExists.
type mongoRepository struct {
	posts *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{posts: db.Collection("posts")}
}

func (r *mongoRepository) Create(ctx context.Context, post *Post) (*Post, error) {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	if _, err := r.posts.InsertOne(ctx, post); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrSlugExists
		}
		return nil, fmt.Errorf("%w: insert post: %v", ErrStoreUnavailable, err)
	}
	return post, nil
}

func (r *mongoRepository) Get(ctx context.Context, slug string) (*Post, error) {
	var post Post
	err := r.posts.FindOne(ctx, bson.M{"_id": slug}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: find post: %v", ErrStoreUnavailable, err)
	}
	return &post, nil
}

func (r *mongoRepository) Update(ctx context.Context, slug string, fields UpdateFields) (*Post, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if fields.Title != nil {
		set["title"] = *fields.Title
	}
	if fields.Content != nil {
		set["content"] = *fields.Content
	}
	if fields.FeaturedImage != nil {
		set["featuredImage"] = *fields.FeaturedImage
	}
	if fields.Status != nil {
		set["status"] = *fields.Status
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post Post
	err := r.posts.FindOneAndUpdate(ctx, bson.M{"_id": slug}, bson.M{"$set": set}, opts).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: update post: %v", ErrStoreUnavailable, err)
	}
	return &post, nil
}

func (r *mongoRepository) Delete(ctx context.Context, slug string) error {
	res, err := r.posts.DeleteOne(ctx, bson.M{"_id": slug})
	if err != nil {
		return fmt.Errorf("%w: delete post: %v", ErrStoreUnavailable, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepository) List(ctx context.Context, status Status) ([]*Post, error) {
	cursor, err := r.posts.Find(ctx, bson.M{"status": status})
	if err != nil {
		return nil, fmt.Errorf("%w: list posts: %v", ErrStoreUnavailable, err)
	}
	defer cursor.Close(ctx)

	posts := []*Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("%w: decode posts: %v", ErrStoreUnavailable, err)
	}
	return posts, nil
}
