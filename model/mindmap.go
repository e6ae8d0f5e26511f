package model

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusCreated            Status = "created"
	StatusMetadataFetched    Status = "metadata_fetched"
	StatusTranscriptResolved Status = "transcript_resolved"
	StatusReady              Status = "ready"
	StatusFailed             Status = "failed"
)

type FailureKind string

const (
	FailureNone             FailureKind = ""
	FailureInvalidReference FailureKind = "invalid_reference"
	FailureNoTranscript     FailureKind = "no_transcript"
	FailureNoCredential     FailureKind = "no_credential"
	FailureQuotaExceeded    FailureKind = "quota_exceeded"
	FailureGenerationFailed FailureKind = "generation_failed"
)

type YoutubeVideoID string

// MindMap is the persisted aggregate one pipeline run mutates. A run ends
// with either the markmap/summary/takeaways fields populated or with
// ErrorKind and ErrorMessage set, never a mix of the two.
type MindMap struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Status         Status
	YoutubeURL     string
	YoutubeVideoID YoutubeVideoID
	VideoTitle     string
	AuthorName     string
	AuthorURL      string
	ThumbnailURL   string
	VideoMetadata  map[string]any
	Transcript     string
	Markmap        string
	Summary        string
	Takeaways      []string
	ErrorKind      FailureKind
	ErrorMessage   string
	Public         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
