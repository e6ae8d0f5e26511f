package pipeline

import (
	"context"

	"ewintr.nl/tubemap/model"
)

// Metadata carries the enrichment fields the metadata endpoint returns,
// plus the full raw response for forward compatibility.
type Metadata struct {
	Title        string
	AuthorName   string
	AuthorURL    string
	ThumbnailURL string
	Raw          map[string]any
}

// MetadataFetcher retrieves video metadata. A nil result without an error
// means no metadata could be obtained; the pipeline proceeds without it.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, id model.YoutubeVideoID) (*Metadata, error)
}
