package pipeline

import "errors"

var (
	ErrInvalidReference = errors.New("invalid video reference")
	ErrNoTranscript     = errors.New("no transcript available")
	ErrDownloadFailed   = errors.New("subtitle download failed")
	ErrNoCredential     = errors.New("no generation credential configured")
	ErrQuotaExceeded    = errors.New("generation quota exceeded")
	ErrGenerationFailed = errors.New("generation failed")
)
