package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"ewintr.nl/tubemap/model"
	"golang.org/x/exp/slog"
)

const (
	oEmbedEndpoint   = "https://www.youtube.com/oembed"
	oEmbedAttempts   = 3
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// OEmbed fetches video metadata from the oEmbed endpoint. Metadata is an
// enrichment, not a correctness gate: after the final failed attempt the
// fetch reports absence instead of an error.
type OEmbed struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

func NewOEmbed(logger *slog.Logger) *OEmbed {
	return &OEmbed{
		endpoint: oEmbedEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

func (o *OEmbed) FetchMetadata(ctx context.Context, id model.YoutubeVideoID) (*Metadata, error) {
	target := fmt.Sprintf("%s?url=%s&format=json", o.endpoint, url.QueryEscape(watchURL(id)))

	for attempt := 1; attempt <= oEmbedAttempts; attempt++ {
		md, err := o.fetchOnce(ctx, target)
		if err == nil {
			return md, nil
		}
		o.logger.Warn("metadata attempt failed",
			slog.String("video", string(id)),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
	}
	o.logger.Warn("no metadata after final attempt", slog.String("video", string(id)))

	return nil, nil
}

func (o *OEmbed) fetchOnce(ctx context.Context, target string) (*Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Close = true // fresh connection per attempt

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	raw := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	return &Metadata{
		Title:        stringField(raw, "title"),
		AuthorName:   stringField(raw, "author_name"),
		AuthorURL:    stringField(raw, "author_url"),
		ThumbnailURL: stringField(raw, "thumbnail_url"),
		Raw:          raw,
	}, nil
}

func stringField(raw map[string]any, key string) string {
	val, _ := raw[key].(string)

	return val
}

func watchURL(id model.YoutubeVideoID) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", id)
}
