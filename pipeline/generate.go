package pipeline

import "context"

// GenerateRequest carries everything one generation call needs. APIKey is
// the per-user credential and takes precedence over the system default;
// Model is a hint that is only honored when the system advertises it.
type GenerateRequest struct {
	Transcript string
	Title      string
	Level      int
	Language   string
	APIKey     string
	Model      string
}

// MindmapResult is the parsed reply of a successful generation call.
type MindmapResult struct {
	Markmap   string
	Summary   string
	Takeaways []string
}

type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*MindmapResult, error)
}
