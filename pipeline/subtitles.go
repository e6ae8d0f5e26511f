package pipeline

import (
	"context"
	"sort"

	"ewintr.nl/tubemap/model"
)

// quickLanguages is the short preference list used to cheaply probe
// transcript availability before a record is committed. fullLanguages is
// the exhaustive list the background run works through, regional variants
// included.
var (
	quickLanguages = []string{"en", "zh", "es"}
	fullLanguages  = []string{"en", "zh", "es", "en-US", "en-GB", "zh-CN", "zh-TW", "pt", "fr", "de", "ja", "ko"}
)

// SubtitleService discovers the subtitle tracks a video offers and
// downloads the raw payload of one of them.
type SubtitleService interface {
	Catalog(ctx context.Context, id model.YoutubeVideoID) (model.SubtitleCatalog, error)
	Download(ctx context.Context, id model.YoutubeVideoID, track model.SubtitleTrack) (string, error)
}

// SelectLanguage picks a subtitle language from the catalog: the first
// preference-list tag present wins, with native and machine-generated
// tracks ranking equally. A non-empty catalog without any preferred tag
// falls back to the lexicographically smallest available tag, so the
// choice is stable between runs. An empty catalog is ErrNoTranscript.
func SelectLanguage(catalog model.SubtitleCatalog, quick bool) (string, error) {
	if len(catalog) == 0 {
		return "", ErrNoTranscript
	}

	preferred := fullLanguages
	if quick {
		preferred = quickLanguages
	}
	for _, lang := range preferred {
		if _, ok := catalog[lang]; ok {
			return lang, nil
		}
	}

	available := make([]string, 0, len(catalog))
	for lang := range catalog {
		available = append(available, lang)
	}
	sort.Strings(available)

	return available[0], nil
}
