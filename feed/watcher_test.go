package feed

import (
	"context"
	"io"
	"testing"
	"time"

	"ewintr.nl/tubemap/model"
	"ewintr.nl/tubemap/pipeline"
	"ewintr.nl/tubemap/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type stubReader struct {
	entries []Entry
	read    []int64
}

func (s *stubReader) Unread() ([]Entry, error) {
	return s.entries, nil
}

func (s *stubReader) MarkRead(entryID int64) error {
	s.read = append(s.read, entryID)
	return nil
}

type memMindMaps struct {
	records map[uuid.UUID]*model.MindMap
}

func (m *memMindMaps) Save(record *model.MindMap) error {
	copied := *record
	m.records[record.ID] = &copied
	return nil
}

func (m *memMindMaps) Find(id uuid.UUID) (*model.MindMap, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (m *memMindMaps) FindByUser(_ uuid.UUID) ([]*model.MindMap, error) { return nil, nil }
func (m *memMindMaps) FindPublic() ([]*model.MindMap, error)           { return nil, nil }

type stubAccounts struct{}

func (s *stubAccounts) GenerationPreferences(_ uuid.UUID) (string, string, error) {
	return "", "", nil
}

type stubMetadata struct{}

func (s *stubMetadata) FetchMetadata(_ context.Context, _ model.YoutubeVideoID) (*pipeline.Metadata, error) {
	return nil, nil
}

type stubSubtitles struct{}

func (s *stubSubtitles) Catalog(_ context.Context, _ model.YoutubeVideoID) (model.SubtitleCatalog, error) {
	return model.SubtitleCatalog{"en": {Language: "en"}}, nil
}

func (s *stubSubtitles) Download(_ context.Context, _ model.YoutubeVideoID, _ model.SubtitleTrack) (string, error) {
	return "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nhello\n", nil
}

type stubGenerator struct{}

func (s *stubGenerator) Generate(_ context.Context, _ pipeline.GenerateRequest) (*pipeline.MindmapResult, error) {
	return &pipeline.MindmapResult{Markmap: "# Root [1.00s]"}, nil
}

type recordingDispatcher struct {
	runs []func()
}

func (d *recordingDispatcher) Submit(run func()) {
	d.runs = append(d.runs, run)
}

func TestWatcherPoll(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard))
	mindMaps := &memMindMaps{records: map[uuid.UUID]*model.MindMap{}}
	repos := func() (storage.MindMapRepository, storage.AccountRepository, error) {
		return mindMaps, &stubAccounts{}, nil
	}
	pl := pipeline.NewPipeline(repos, &stubMetadata{}, &stubSubtitles{}, &stubGenerator{}, nil, logger)
	dispatcher := &recordingDispatcher{}
	reader := &stubReader{entries: []Entry{
		{EntryID: 1, Title: "A Video", URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{EntryID: 2, Title: "Not a video", URL: "https://example.com/article"},
	}}
	userID := uuid.New()

	watcher := NewWatcher(reader, mindMaps, pl, dispatcher, userID, time.Minute, 3, "en", logger)
	watcher.Poll()

	// one record for the video entry, both entries marked read
	require.Len(t, mindMaps.records, 1)
	for _, record := range mindMaps.records {
		assert.Equal(t, userID, record.UserID)
		assert.Equal(t, model.StatusCreated, record.Status)
		assert.Equal(t, model.YoutubeVideoID("dQw4w9WgXcQ"), record.YoutubeVideoID)
	}
	assert.Len(t, dispatcher.runs, 1)
	assert.Equal(t, []int64{1, 2}, reader.read)
}
