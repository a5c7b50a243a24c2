package events

import "time"

const (
	TypePostPublished = "post.published"
	TypeAssetOrphaned = "asset.orphaned"
)

type PostPublishedPayload struct {
	Slug   string `json:"slug"`
	Title  string `json:"title"`
	UserID string `json:"user_id"`
}

// PostPublished is emitted when a post becomes publicly visible.
type PostPublished struct {
	Type      string               `json:"type"`
	Timestamp time.Time            `json:"timestamp"`
	Payload   PostPublishedPayload `json:"payload"`
}

func NewPostPublished(slug, title, userID string) PostPublished {
	return PostPublished{
		Type:      TypePostPublished,
		Timestamp: time.Now().UTC(),
		Payload: PostPublishedPayload{
			Slug:   slug,
			Title:  title,
			UserID: userID,
		},
	}
}

type AssetOrphanedPayload struct {
	AssetID string `json:"asset_id"`
	Key     string `json:"key"`
	Slug    string `json:"slug"`
	Reason  string `json:"reason"`
}

// AssetOrphaned is emitted when a best-effort blob delete fails and an
// image is left behind with no post referencing it. The reaper worker
// picks these up and retries the delete out-of-band.
type AssetOrphaned struct {
	Type      string               `json:"type"`
	Timestamp time.Time            `json:"timestamp"`
	Payload   AssetOrphanedPayload `json:"payload"`
}

func NewAssetOrphaned(assetID, key, slug, reason string) AssetOrphaned {
	return AssetOrphaned{
		Type:      TypeAssetOrphaned,
		Timestamp: time.Now().UTC(),
		Payload: AssetOrphanedPayload{
			AssetID: assetID,
			Key:     key,
			Slug:    slug,
			Reason:  reason,
		},
	}
}
