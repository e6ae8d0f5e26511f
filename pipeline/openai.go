package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/exp/slog"
)

const mindmapPrompt = `Create a mindmap in markmap format describing the content of the video transcript the user gives you.
Follow these requirements:
1. End every node with the timestamp of its source in the transcript, in the form [XX.XXs], where XX.XX is seconds into the video.
2. For each node, pick the most relevant timestamp in the transcript.
3. Make the mindmap %d levels deep.
4. Translate all content into %s.
5. Respond with a single JSON object with the keys "markmap", "summary" and "takeaways", where "takeaways" is a list of the major lessons of the video.

Example node: "Introduction to the topic [45.30s]"`

const placeholderMarkmap = "Could not extract a mindmap from the generated reply."

// GeneratorConfig holds the system-wide generation settings: the default
// credential, the default model and the advertised available models.
type GeneratorConfig struct {
	APIKey          string
	DefaultModel    string
	AvailableModels []string
}

// OpenAIGenerator turns a transcript into a mindmap with one structured
// chat completion call.
type OpenAIGenerator struct {
	config  GeneratorConfig
	baseURL string
	logger  *slog.Logger
}

func NewOpenAIGenerator(config GeneratorConfig, logger *slog.Logger) *OpenAIGenerator {
	return &OpenAIGenerator{
		config: config,
		logger: logger,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, req GenerateRequest) (*MindmapResult, error) {
	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = g.config.APIKey
	}
	if apiKey == "" {
		return nil, ErrNoCredential
	}

	generationModel := g.config.DefaultModel
	if req.Model != "" {
		if g.available(req.Model) {
			generationModel = req.Model
		} else {
			g.logger.Warn("requested model is not available, falling back",
				slog.String("requested", req.Model),
				slog.String("fallback", generationModel))
		}
	}

	resp, err := g.client(apiKey).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: generationModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(mindmapPrompt, req.Level, req.Language),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("title: %s\n\ntranscript:\n%s", req.Title, req.Transcript),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, classifyGenerationError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: reply contained no choices", ErrGenerationFailed)
	}

	return parseMindmapReply(resp.Choices[len(resp.Choices)-1].Message.Content), nil
}

func (g *OpenAIGenerator) client(apiKey string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if g.baseURL != "" {
		config.BaseURL = g.baseURL
	}

	return openai.NewClientWithConfig(config)
}

func (g *OpenAIGenerator) available(name string) bool {
	for _, m := range g.config.AvailableModels {
		if m == name {
			return true
		}
	}

	return false
}

// parseMindmapReply decodes the generation reply. Unknown keys are
// ignored. A reply without a usable markmap is not a crash: the markmap is
// substituted with a placeholder and whatever else parsed is kept.
func parseMindmapReply(raw string) *MindmapResult {
	var reply struct {
		Markmap   string   `json:"markmap"`
		Summary   string   `json:"summary"`
		Takeaways []string `json:"takeaways"`
	}
	if err := json.Unmarshal([]byte(raw), &reply); err != nil || reply.Markmap == "" {
		return &MindmapResult{
			Markmap:   placeholderMarkmap,
			Summary:   reply.Summary,
			Takeaways: reply.Takeaways,
		}
	}

	return &MindmapResult{
		Markmap:   reply.Markmap,
		Summary:   reply.Summary,
		Takeaways: reply.Takeaways,
	}
}

// classifyGenerationError separates quota exhaustion, which the user can
// act on, from every other provider failure. The raw message is preserved
// for diagnostics either way.
func classifyGenerationError(err error) error {
	message := err.Error()
	lower := strings.ToLower(message)
	if strings.Contains(lower, "429") || strings.Contains(lower, "quota") {
		return fmt.Errorf("%w: %s", ErrQuotaExceeded, message)
	}

	return fmt.Errorf("%w: %s", ErrGenerationFailed, message)
}
