package pipeline

import (
	"context"
	"errors"
	"time"

	"ewintr.nl/tubemap/model"
	"ewintr.nl/tubemap/storage"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

const noTranscriptMessage = `Could not retrieve a transcript for this video. This could be because:
- the video has no captions or subtitles
- transcripts were disabled by the creator
- the video is private or unavailable
- YouTube is temporarily blocking transcript requests
Please try a video that has captions enabled.`

// ProcessRequest identifies one pipeline run. Model is a hint that an
// account-level preference overrides.
type ProcessRequest struct {
	MindMapID uuid.UUID
	Level     int
	Language  string
	Model     string
}

// RepositoryFactory hands every run its own repositories, independent of
// whatever storage handle enqueued the run.
type RepositoryFactory func() (storage.MindMapRepository, storage.AccountRepository, error)

// Pipeline turns a created mindmap record into a completed one: metadata
// (best effort), transcript, generation, commit. Every stage boundary is
// persisted; a run always ends with exactly one terminal write, success or
// failure.
type Pipeline struct {
	repos     RepositoryFactory
	metadata  MetadataFetcher
	subtitles SubtitleService
	generator Generator
	vectors   storage.VectorRepository
	logger    *slog.Logger
}

func NewPipeline(repos RepositoryFactory, metadata MetadataFetcher, subtitles SubtitleService, generator Generator, vectors storage.VectorRepository, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		repos:     repos,
		metadata:  metadata,
		subtitles: subtitles,
		generator: generator,
		vectors:   vectors,
		logger:    logger,
	}
}

// QuickCheck probes transcript availability with the short language list,
// so obviously untranscribable videos can be rejected before a record
// exists.
func (p *Pipeline) QuickCheck(ctx context.Context, id model.YoutubeVideoID) error {
	catalog, err := p.subtitles.Catalog(ctx, id)
	if err != nil {
		return err
	}
	_, err = SelectLanguage(catalog, true)

	return err
}

// Process runs the full pipeline against one record. Invoking it again for
// the same record restarts from the top; concurrent runs race on the final
// write and the last one wins.
func (p *Pipeline) Process(ctx context.Context, req ProcessRequest) {
	logger := p.logger.With(slog.String("mindmap", req.MindMapID.String()))
	logger.Info("starting mindmap run")

	mindMaps, accounts, err := p.repos()
	if err != nil {
		logger.Error("unable to open storage for run", err)
		return
	}
	record, err := mindMaps.Find(req.MindMapID)
	if err != nil {
		logger.Error("unable to load mindmap record", err)
		return
	}

	videoID, err := ResolveVideoID(record.YoutubeURL)
	if err != nil {
		p.fail(logger, mindMaps, record, model.FailureInvalidReference, err.Error())
		return
	}
	record.YoutubeVideoID = videoID
	record.Status = model.StatusCreated
	logger.Info("resolved video id", slog.String("video", string(videoID)))

	// metadata is enrichment, its absence never fails the run
	md, err := p.metadata.FetchMetadata(ctx, videoID)
	switch {
	case err != nil:
		logger.Warn("metadata fetch failed", slog.String("error", err.Error()))
	case md == nil:
		logger.Warn("no metadata available", slog.String("video", string(videoID)))
	default:
		record.VideoTitle = md.Title
		record.AuthorName = md.AuthorName
		record.AuthorURL = md.AuthorURL
		record.ThumbnailURL = md.ThumbnailURL
		record.VideoMetadata = md.Raw
		record.Status = model.StatusMetadataFetched
	}
	if err := p.save(mindMaps, record); err != nil {
		logger.Error("unable to save mindmap record", err)
		return
	}

	catalog, err := p.subtitles.Catalog(ctx, videoID)
	if err != nil {
		p.fail(logger, mindMaps, record, model.FailureNoTranscript, noTranscriptMessage)
		return
	}
	lang, err := SelectLanguage(catalog, false)
	if err != nil {
		p.fail(logger, mindMaps, record, model.FailureNoTranscript, noTranscriptMessage)
		return
	}
	logger.Info("selected subtitle language", slog.String("language", lang))

	payload, err := p.subtitles.Download(ctx, videoID, catalog[lang])
	if err != nil {
		p.fail(logger, mindMaps, record, model.FailureNoTranscript, noTranscriptMessage)
		return
	}
	transcript := ParseVTT(payload)
	if transcript.Empty() {
		p.fail(logger, mindMaps, record, model.FailureNoTranscript, noTranscriptMessage)
		return
	}
	record.Transcript = transcript.Render()
	record.Status = model.StatusTranscriptResolved
	if err := p.save(mindMaps, record); err != nil {
		logger.Error("unable to save mindmap record", err)
		return
	}
	logger.Info("resolved transcript", slog.Int("cues", len(transcript)))

	apiKey, preferredModel, err := accounts.GenerationPreferences(record.UserID)
	if err != nil {
		logger.Warn("unable to load generation preferences", slog.String("error", err.Error()))
	}
	modelHint := req.Model
	if preferredModel != "" {
		modelHint = preferredModel
	}

	title := record.VideoTitle
	if title == "" {
		title = "YouTube Video"
	}
	result, err := p.generator.Generate(ctx, GenerateRequest{
		Transcript: record.Transcript,
		Title:      title,
		Level:      req.Level,
		Language:   req.Language,
		APIKey:     apiKey,
		Model:      modelHint,
	})
	if err != nil {
		p.fail(logger, mindMaps, record, failureKind(err), err.Error())
		return
	}

	record.Markmap = result.Markmap
	record.Summary = result.Summary
	record.Takeaways = result.Takeaways
	record.ErrorKind = model.FailureNone
	record.ErrorMessage = ""
	record.Status = model.StatusReady
	if err := p.save(mindMaps, record); err != nil {
		logger.Error("unable to save mindmap record", err)
		return
	}
	logger.Info("mindmap is ready")

	if p.vectors != nil {
		if err := p.vectors.Save(ctx, record); err != nil {
			logger.Warn("failed to mirror mindmap to vector storage", slog.String("error", err.Error()))
		}
	}
}

// fail records the terminal failure outcome. Any generated fields from an
// earlier run are cleared so the record never mixes success and failure.
func (p *Pipeline) fail(logger *slog.Logger, mindMaps storage.MindMapRepository, record *model.MindMap, kind model.FailureKind, message string) {
	logger.Warn("mindmap run failed",
		slog.String("kind", string(kind)),
		slog.String("error", message))

	record.Status = model.StatusFailed
	record.ErrorKind = kind
	record.ErrorMessage = message
	record.Markmap, record.Summary, record.Takeaways = "", "", nil
	if err := p.save(mindMaps, record); err != nil {
		logger.Error("unable to save failed mindmap record", err)
	}
}

func (p *Pipeline) save(mindMaps storage.MindMapRepository, record *model.MindMap) error {
	record.UpdatedAt = time.Now().UTC()

	return mindMaps.Save(record)
}

func failureKind(err error) model.FailureKind {
	switch {
	case errors.Is(err, ErrInvalidReference):
		return model.FailureInvalidReference
	case errors.Is(err, ErrNoTranscript):
		return model.FailureNoTranscript
	case errors.Is(err, ErrNoCredential):
		return model.FailureNoCredential
	case errors.Is(err, ErrQuotaExceeded):
		return model.FailureQuotaExceeded
	default:
		return model.FailureGenerationFailed
	}
}
