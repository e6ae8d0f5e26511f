package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ewintr.nl/tubemap/model"
	"google.golang.org/api/youtube/v3"
)

const timedtextEndpoint = "https://www.youtube.com/api/timedtext"

// YoutubeSubtitles implements SubtitleService against YouTube: track
// discovery via the Data API captions listing, payload download via the
// timedtext endpoint.
type YoutubeSubtitles struct {
	service   *youtube.Service
	timedtext string
	client    *http.Client
}

func NewYoutubeSubtitles(service *youtube.Service) *YoutubeSubtitles {
	return &YoutubeSubtitles{
		service:   service,
		timedtext: timedtextEndpoint,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (y *YoutubeSubtitles) Catalog(ctx context.Context, id model.YoutubeVideoID) (model.SubtitleCatalog, error) {
	response, err := y.service.Captions.
		List([]string{"snippet"}, string(id)).
		Context(ctx).
		Do()
	if err != nil {
		return model.SubtitleCatalog{}, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	catalog := make(model.SubtitleCatalog, len(response.Items))
	for _, item := range response.Items {
		catalog[item.Snippet.Language] = model.SubtitleTrack{
			Language:      item.Snippet.Language,
			AutoGenerated: strings.EqualFold(item.Snippet.TrackKind, "asr"),
		}
	}

	return catalog, nil
}

// Download fetches the raw VTT payload for one track. The payload lands in
// a temporary directory scoped to this call; it is removed on every exit
// path.
func (y *YoutubeSubtitles) Download(ctx context.Context, id model.YoutubeVideoID, track model.SubtitleTrack) (string, error) {
	dir, err := os.MkdirTemp("", "tubemap-subtitles-")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer os.RemoveAll(dir)

	target := fmt.Sprintf("%s?v=%s&lang=%s&fmt=vtt", y.timedtext, id, track.Language)
	if track.AutoGenerated {
		target += "&kind=asr"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	resp, err := y.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status %d", ErrDownloadFailed, resp.StatusCode)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.%s.vtt", id, track.Language))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("%w: empty payload for language %s", ErrDownloadFailed, track.Language)
	}

	return string(payload), nil
}
