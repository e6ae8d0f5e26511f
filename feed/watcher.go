package feed

import (
	"context"
	"time"

	"ewintr.nl/tubemap/model"
	"ewintr.nl/tubemap/pipeline"
	"ewintr.nl/tubemap/storage"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// Watcher polls a feed reader for unread entries and schedules a mindmap
// run for every entry that references a video. Entries that do not are
// marked read and skipped.
type Watcher struct {
	reader     Reader
	mindMaps   storage.MindMapRepository
	pipeline   *pipeline.Pipeline
	dispatcher pipeline.Dispatcher
	userID     uuid.UUID
	interval   time.Duration
	level      int
	language   string
	logger     *slog.Logger
}

func NewWatcher(reader Reader, mindMaps storage.MindMapRepository, pl *pipeline.Pipeline, dispatcher pipeline.Dispatcher, userID uuid.UUID, interval time.Duration, level int, language string, logger *slog.Logger) *Watcher {
	return &Watcher{
		reader:     reader,
		mindMaps:   mindMaps,
		pipeline:   pl,
		dispatcher: dispatcher,
		userID:     userID,
		interval:   interval,
		level:      level,
		language:   language,
		logger:     logger,
	}
}

func (w *Watcher) Run() {
	w.logger.Info("started feed watcher")
	ticker := time.NewTicker(w.interval)
	for range ticker.C {
		w.Poll()
	}
}

func (w *Watcher) Poll() {
	entries, err := w.reader.Unread()
	if err != nil {
		w.logger.Error("failed to fetch unread entries", err)
		return
	}
	if len(entries) == 0 {
		return
	}
	w.logger.Info("fetched unread entries", slog.Int("count", len(entries)))

	for _, entry := range entries {
		videoID, err := pipeline.ResolveVideoID(entry.URL)
		if err != nil {
			w.logger.Warn("skipping entry without a video reference", slog.String("url", entry.URL))
			if err := w.reader.MarkRead(entry.EntryID); err != nil {
				w.logger.Error("failed to mark entry as read", err)
			}
			continue
		}

		now := time.Now().UTC()
		record := &model.MindMap{
			ID:             uuid.New(),
			UserID:         w.userID,
			Status:         model.StatusCreated,
			YoutubeURL:     entry.URL,
			YoutubeVideoID: videoID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := w.mindMaps.Save(record); err != nil {
			w.logger.Error("failed to save mindmap record", err)
			continue
		}

		processReq := pipeline.ProcessRequest{
			MindMapID: record.ID,
			Level:     w.level,
			Language:  w.language,
		}
		w.dispatcher.Submit(func() {
			w.pipeline.Process(context.Background(), processReq)
		})
		w.logger.Info("scheduled mindmap run for feed entry",
			slog.String("mindmap", record.ID.String()),
			slog.String("video", string(videoID)))

		if err := w.reader.MarkRead(entry.EntryID); err != nil {
			w.logger.Error("failed to mark entry as read", err)
		}
	}
}
