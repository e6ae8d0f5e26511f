package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ewintr.nl/tubemap/model"
	"ewintr.nl/tubemap/pipeline"
	"ewintr.nl/tubemap/storage"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

const (
	defaultLevel    = 3
	defaultLanguage = "en"
)

type MindMapAPI struct {
	mindMaps   storage.MindMapRepository
	pipeline   *pipeline.Pipeline
	dispatcher pipeline.Dispatcher
	logger     *slog.Logger
}

func NewMindMapAPI(mindMaps storage.MindMapRepository, pl *pipeline.Pipeline, dispatcher pipeline.Dispatcher, logger *slog.Logger) *MindMapAPI {
	return &MindMapAPI{
		mindMaps:   mindMaps,
		pipeline:   pl,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (m *MindMapAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mindMapID, tail := ShiftPath(r.URL.Path)
	action, _ := ShiftPath(tail)

	switch {
	case r.Method == http.MethodGet && mindMapID == "":
		m.List(w, r)
	case r.Method == http.MethodPost && mindMapID == "":
		m.Create(w, r)
	case r.Method == http.MethodGet && action == "":
		m.Get(w, r, mindMapID)
	case r.Method == http.MethodPost && action == "regenerate":
		m.Regenerate(w, r, mindMapID)
	default:
		Error(w, http.StatusNotFound, "not found", fmt.Errorf("method %s with subpath %q was not registered in the mindmap api", r.Method, mindMapID))
	}
}

type createRequest struct {
	UserID     string `json:"user_id"`
	YoutubeURL string `json:"youtube_url"`
	Level      int    `json:"level"`
	Language   string `json:"language"`
	Model      string `json:"model"`
}

// Create validates the reference and the transcript availability up front,
// persists an empty record and schedules the background run. The caller
// polls the record for the outcome.
func (m *MindMapAPI) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "could not decode request body", err)
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid user id", err)
		return
	}
	level, language := req.Level, req.Language
	if level == 0 {
		level = defaultLevel
	}
	if level < 1 || level > 5 {
		Error(w, http.StatusBadRequest, "level must be between 1 and 5", fmt.Errorf("got level %d", level))
		return
	}
	if language == "" {
		language = defaultLanguage
	}

	videoID, err := pipeline.ResolveVideoID(req.YoutubeURL)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid youtube url", err)
		return
	}

	if err := m.pipeline.QuickCheck(r.Context(), videoID); err != nil {
		Error(w, http.StatusBadRequest, "this video does not have transcripts available", err)
		return
	}

	now := time.Now().UTC()
	record := &model.MindMap{
		ID:             uuid.New(),
		UserID:         userID,
		Status:         model.StatusCreated,
		YoutubeURL:     req.YoutubeURL,
		YoutubeVideoID: videoID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := m.mindMaps.Save(record); err != nil {
		m.returnErr(w, http.StatusInternalServerError, "could not save mindmap", err)
		return
	}

	processReq := pipeline.ProcessRequest{
		MindMapID: record.ID,
		Level:     level,
		Language:  language,
		Model:     req.Model,
	}
	m.dispatcher.Submit(func() {
		m.pipeline.Process(context.Background(), processReq)
	})
	m.logger.Info("scheduled mindmap run", slog.String("mindmap", record.ID.String()))

	m.returnMindMap(w, http.StatusAccepted, record)
}

func (m *MindMapAPI) List(w http.ResponseWriter, r *http.Request) {
	if user := r.URL.Query().Get("user"); user != "" {
		userID, err := uuid.Parse(user)
		if err != nil {
			Error(w, http.StatusBadRequest, "invalid user id", err)
			return
		}
		mindMaps, err := m.mindMaps.FindByUser(userID)
		if err != nil {
			m.returnErr(w, http.StatusInternalServerError, "could not list mindmaps", err)
			return
		}
		m.returnMindMaps(w, mindMaps)
		return
	}

	mindMaps, err := m.mindMaps.FindPublic()
	if err != nil {
		m.returnErr(w, http.StatusInternalServerError, "could not list mindmaps", err)
		return
	}
	m.returnMindMaps(w, mindMaps)
}

func (m *MindMapAPI) Get(w http.ResponseWriter, _ *http.Request, rawID string) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid mindmap id", err)
		return
	}
	record, err := m.mindMaps.Find(id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		Error(w, http.StatusNotFound, "mindmap not found", err)
		return
	case err != nil:
		m.returnErr(w, http.StatusInternalServerError, "could not load mindmap", err)
		return
	}

	m.returnMindMap(w, http.StatusOK, record)
}

// Regenerate restarts the pipeline for an existing record. The run races
// with any other in-flight run for the same record; the last commit wins.
func (m *MindMapAPI) Regenerate(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid mindmap id", err)
		return
	}
	record, err := m.mindMaps.Find(id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		Error(w, http.StatusNotFound, "mindmap not found", err)
		return
	case err != nil:
		m.returnErr(w, http.StatusInternalServerError, "could not load mindmap", err)
		return
	}

	level, language := defaultLevel, defaultLanguage
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
		if req.Level >= 1 && req.Level <= 5 {
			level = req.Level
		}
		if req.Language != "" {
			language = req.Language
		}
	}

	processReq := pipeline.ProcessRequest{
		MindMapID: record.ID,
		Level:     level,
		Language:  language,
		Model:     req.Model,
	}
	m.dispatcher.Submit(func() {
		m.pipeline.Process(context.Background(), processReq)
	})
	m.logger.Info("scheduled mindmap regeneration", slog.String("mindmap", record.ID.String()))

	Message(w, http.StatusAccepted, "regeneration scheduled")
}

type respMindMap struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	Status         string         `json:"status"`
	YoutubeURL     string         `json:"youtube_url"`
	YoutubeVideoID string         `json:"youtube_video_id"`
	VideoTitle     string         `json:"video_title"`
	AuthorName     string         `json:"author_name,omitempty"`
	AuthorURL      string         `json:"author_url,omitempty"`
	ThumbnailURL   string         `json:"thumbnail_url,omitempty"`
	Markmap        string         `json:"markmap,omitempty"`
	Summary        string         `json:"summary,omitempty"`
	Takeaways      []string       `json:"takeaways,omitempty"`
	ErrorKind      string         `json:"error_kind,omitempty"`
	ErrorMessage   string         `json:"error_message,omitempty"`
	Public         bool           `json:"is_public"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func newRespMindMap(record *model.MindMap) respMindMap {
	return respMindMap{
		ID:             record.ID.String(),
		UserID:         record.UserID.String(),
		Status:         string(record.Status),
		YoutubeURL:     record.YoutubeURL,
		YoutubeVideoID: string(record.YoutubeVideoID),
		VideoTitle:     record.VideoTitle,
		AuthorName:     record.AuthorName,
		AuthorURL:      record.AuthorURL,
		ThumbnailURL:   record.ThumbnailURL,
		Markmap:        record.Markmap,
		Summary:        record.Summary,
		Takeaways:      record.Takeaways,
		ErrorKind:      string(record.ErrorKind),
		ErrorMessage:   record.ErrorMessage,
		Public:         record.Public,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
}

func (m *MindMapAPI) returnMindMap(w http.ResponseWriter, status int, record *model.MindMap) {
	jsonBody, err := json.Marshal(newRespMindMap(record))
	if err != nil {
		m.returnErr(w, http.StatusInternalServerError, "could not marshal response", err)
		return
	}

	w.WriteHeader(status)
	fmt.Fprint(w, string(jsonBody))
}

func (m *MindMapAPI) returnMindMaps(w http.ResponseWriter, records []*model.MindMap) {
	resp := make([]respMindMap, 0, len(records))
	for _, record := range records {
		resp = append(resp, newRespMindMap(record))
	}

	jsonBody, err := json.Marshal(resp)
	if err != nil {
		m.returnErr(w, http.StatusInternalServerError, "could not marshal response", err)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, string(jsonBody))
}

func (m *MindMapAPI) returnErr(w http.ResponseWriter, status int, message string, err error, details ...any) {
	m.logger.Error(message, err, slog.String("details", fmt.Sprintf("%+v", details)))
	Error(w, status, message, err, details...)
}
