package pipeline

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"ewintr.nl/tubemap/model"
	"ewintr.nl/tubemap/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

const testVTT = `WEBVTT

00:00:01.000 --> 00:00:05.000
First cue

00:01:05.250 --> 00:01:08.000
Second cue
`

type memMindMaps struct {
	records map[uuid.UUID]*model.MindMap
	saves   int
}

func newMemMindMaps(records ...*model.MindMap) *memMindMaps {
	m := &memMindMaps{records: map[uuid.UUID]*model.MindMap{}}
	for _, record := range records {
		copied := *record
		m.records[record.ID] = &copied
	}
	return m
}

func (m *memMindMaps) Save(record *model.MindMap) error {
	copied := *record
	m.records[record.ID] = &copied
	m.saves++
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

func (m *memMindMaps) FindByUser(userID uuid.UUID) ([]*model.MindMap, error) {
	result := []*model.MindMap{}
	for _, record := range m.records {
		if record.UserID == userID {
			copied := *record
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *memMindMaps) FindPublic() ([]*model.MindMap, error) {
	result := []*model.MindMap{}
	for _, record := range m.records {
		if record.Public {
			copied := *record
			result = append(result, &copied)
		}
	}
	return result, nil
}

type stubAccounts struct {
	apiKey         string
	preferredModel string
}

func (s *stubAccounts) GenerationPreferences(_ uuid.UUID) (string, string, error) {
	return s.apiKey, s.preferredModel, nil
}

type stubMetadata struct {
	md *Metadata
}

func (s *stubMetadata) FetchMetadata(_ context.Context, _ model.YoutubeVideoID) (*Metadata, error) {
	return s.md, nil
}

type stubSubtitles struct {
	catalog     model.SubtitleCatalog
	payload     string
	downloadErr error
}

func (s *stubSubtitles) Catalog(_ context.Context, _ model.YoutubeVideoID) (model.SubtitleCatalog, error) {
	return s.catalog, nil
}

func (s *stubSubtitles) Download(_ context.Context, _ model.YoutubeVideoID, _ model.SubtitleTrack) (string, error) {
	if s.downloadErr != nil {
		return "", s.downloadErr
	}
	return s.payload, nil
}

type stubGenerator struct {
	result  *MindmapResult
	err     error
	lastReq GenerateRequest
}

func (s *stubGenerator) Generate(_ context.Context, req GenerateRequest) (*MindmapResult, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func testPipeline(mindMaps *memMindMaps, accounts *stubAccounts, metadata *stubMetadata, subtitles *stubSubtitles, generator *stubGenerator) *Pipeline {
	logger := slog.New(slog.NewTextHandler(io.Discard))
	repos := func() (storage.MindMapRepository, storage.AccountRepository, error) {
		return mindMaps, accounts, nil
	}
	return NewPipeline(repos, metadata, subtitles, generator, nil, logger)
}

func testRecord() *model.MindMap {
	now := time.Now().UTC()
	return &model.MindMap{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		Status:     model.StatusCreated,
		YoutubeURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func testMetadata() *stubMetadata {
	return &stubMetadata{md: &Metadata{
		Title:        "A Video",
		AuthorName:   "An Author",
		AuthorURL:    "https://example.com/author",
		ThumbnailURL: "https://example.com/thumb.jpg",
		Raw:          map[string]any{"title": "A Video"},
	}}
}

func TestPipelineProcess(t *testing.T) {
	record := testRecord()
	mindMaps := newMemMindMaps(record)
	generator := &stubGenerator{result: &MindmapResult{
		Markmap:   "# Root [1.00s]",
		Summary:   "a summary",
		Takeaways: []string{"one", "two"},
	}}
	p := testPipeline(mindMaps, &stubAccounts{}, testMetadata(), &stubSubtitles{
		catalog: model.SubtitleCatalog{"en": {Language: "en"}},
		payload: testVTT,
	}, generator)

	p.Process(context.Background(), ProcessRequest{MindMapID: record.ID, Level: 3, Language: "en"})

	stored := mindMaps.records[record.ID]
	assert.Equal(t, model.StatusReady, stored.Status)
	assert.Equal(t, model.YoutubeVideoID("dQw4w9WgXcQ"), stored.YoutubeVideoID)
	assert.Equal(t, "A Video", stored.VideoTitle)
	assert.Equal(t, "An Author", stored.AuthorName)
	assert.Equal(t, "# Root [1.00s]", stored.Markmap)
	assert.Equal(t, "a summary", stored.Summary)
	assert.Equal(t, []string{"one", "two"}, stored.Takeaways)
	assert.Equal(t, model.FailureNone, stored.ErrorKind)
	assert.Empty(t, stored.ErrorMessage)
	assert.Equal(t, "[1.00s] First cue\n[65.25s] Second cue", stored.Transcript)
	assert.Equal(t, "A Video", generator.lastReq.Title)
}

func TestPipelineProcessIdempotent(t *testing.T) {
	record := testRecord()
	mindMaps := newMemMindMaps(record)
	generator := &stubGenerator{result: &MindmapResult{
		Markmap:   "# Root [1.00s]",
		Summary:   "a summary",
		Takeaways: []string{"one"},
	}}
	p := testPipeline(mindMaps, &stubAccounts{}, testMetadata(), &stubSubtitles{
		catalog: model.SubtitleCatalog{"en": {Language: "en"}},
		payload: testVTT,
	}, generator)
	req := ProcessRequest{MindMapID: record.ID, Level: 3, Language: "en"}

	p.Process(context.Background(), req)
	first := *mindMaps.records[record.ID]
	p.Process(context.Background(), req)
	second := *mindMaps.records[record.ID]

	assert.Equal(t, first.Markmap, second.Markmap)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.Takeaways, second.Takeaways)
	assert.Equal(t, first.Transcript, second.Transcript)
}

func TestPipelineProcessNoTranscript(t *testing.T) {
	for _, tc := range []struct {
		name      string
		subtitles *stubSubtitles
	}{
		{name: "empty catalog", subtitles: &stubSubtitles{catalog: model.SubtitleCatalog{}}},
		{name: "download failure", subtitles: &stubSubtitles{
			catalog:     model.SubtitleCatalog{"en": {Language: "en"}},
			downloadErr: ErrDownloadFailed,
		}},
		{name: "unusable payload", subtitles: &stubSubtitles{
			catalog: model.SubtitleCatalog{"en": {Language: "en"}},
			payload: "WEBVTT\n\nno cues here\n",
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			record := testRecord()
			mindMaps := newMemMindMaps(record)
			generator := &stubGenerator{result: &MindmapResult{Markmap: "unused"}}
			p := testPipeline(mindMaps, &stubAccounts{}, testMetadata(), tc.subtitles, generator)

			p.Process(context.Background(), ProcessRequest{MindMapID: record.ID, Level: 3, Language: "en"})

			stored := mindMaps.records[record.ID]
			assert.Equal(t, model.StatusFailed, stored.Status)
			assert.Equal(t, model.FailureNoTranscript, stored.ErrorKind)
			assert.Equal(t, noTranscriptMessage, stored.ErrorMessage)
			assert.Empty(t, stored.Markmap)
			// best-effort metadata landed before the transcript failure
			assert.Equal(t, "A Video", stored.VideoTitle)
		})
	}
}

func TestPipelineProcessWithoutMetadata(t *testing.T) {
	record := testRecord()
	mindMaps := newMemMindMaps(record)
	generator := &stubGenerator{result: &MindmapResult{Markmap: "# Root [1.00s]"}}
	p := testPipeline(mindMaps, &stubAccounts{}, &stubMetadata{}, &stubSubtitles{
		catalog: model.SubtitleCatalog{"en": {Language: "en"}},
		payload: testVTT,
	}, generator)

	p.Process(context.Background(), ProcessRequest{MindMapID: record.ID, Level: 3, Language: "en"})

	stored := mindMaps.records[record.ID]
	assert.Equal(t, model.StatusReady, stored.Status)
	assert.Empty(t, stored.VideoTitle)
	assert.Equal(t, "YouTube Video", generator.lastReq.Title)
}

func TestPipelineProcessGenerationFailure(t *testing.T) {
	for _, tc := range []struct {
		name    string
		err     error
		expKind model.FailureKind
	}{
		{name: "no credential", err: ErrNoCredential, expKind: model.FailureNoCredential},
		{name: "quota exceeded", err: classifyGenerationError(errors.New("status code: 429")), expKind: model.FailureQuotaExceeded},
		{name: "provider failure", err: classifyGenerationError(errors.New("boom")), expKind: model.FailureGenerationFailed},
	} {
		t.Run(tc.name, func(t *testing.T) {
			record := testRecord()
			mindMaps := newMemMindMaps(record)
			generator := &stubGenerator{err: tc.err}
			p := testPipeline(mindMaps, &stubAccounts{}, testMetadata(), &stubSubtitles{
				catalog: model.SubtitleCatalog{"en": {Language: "en"}},
				payload: testVTT,
			}, generator)

			p.Process(context.Background(), ProcessRequest{MindMapID: record.ID, Level: 3, Language: "en"})

			stored := mindMaps.records[record.ID]
			assert.Equal(t, model.StatusFailed, stored.Status)
			assert.Equal(t, tc.expKind, stored.ErrorKind)
			assert.Equal(t, tc.err.Error(), stored.ErrorMessage)
			assert.Empty(t, stored.Markmap)
			// the transcript survived, a regenerate can reuse the record
			assert.NotEmpty(t, stored.Transcript)
		})
	}
}

func TestPipelineProcessPreferences(t *testing.T) {
	record := testRecord()
	mindMaps := newMemMindMaps(record)
	generator := &stubGenerator{result: &MindmapResult{Markmap: "# Root [1.00s]"}}
	p := testPipeline(mindMaps, &stubAccounts{
		apiKey:         "user-key",
		preferredModel: "preferred-model",
	}, testMetadata(), &stubSubtitles{
		catalog: model.SubtitleCatalog{"en": {Language: "en"}},
		payload: testVTT,
	}, generator)

	p.Process(context.Background(), ProcessRequest{MindMapID: record.ID, Level: 3, Language: "en", Model: "requested-model"})

	// the account preference beats the request hint, the personal key is
	// passed through
	assert.Equal(t, "preferred-model", generator.lastReq.Model)
	assert.Equal(t, "user-key", generator.lastReq.APIKey)
}

func TestPipelineQuickCheck(t *testing.T) {
	p := testPipeline(newMemMindMaps(), &stubAccounts{}, testMetadata(), &stubSubtitles{
		catalog: model.SubtitleCatalog{"en": {Language: "en"}},
	}, &stubGenerator{})
	require.NoError(t, p.QuickCheck(context.Background(), "dQw4w9WgXcQ"))

	p = testPipeline(newMemMindMaps(), &stubAccounts{}, testMetadata(), &stubSubtitles{
		catalog: model.SubtitleCatalog{},
	}, &stubGenerator{})
	assert.ErrorIs(t, p.QuickCheck(context.Background(), "dQw4w9WgXcQ"), ErrNoTranscript)
}
