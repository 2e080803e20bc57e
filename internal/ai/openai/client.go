package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultModel     = "gpt-4o-mini"
	defaultMaxTokens = 512
)

// Config holds the per-provider tuning knobs of an OpenAI-compatible
// generator. BaseURL allows pointing at any compatible endpoint.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
}

// Generator wraps the OpenAI chat-completions client behind the engine's
// generator interface.
type Generator struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int64
}

func NewGenerator(cfg Config) (*Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Generator{
		client:      openai.NewClient(opts...),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
	}, nil
}

// GenerateContent sends the prompts as a system+user message pair and
// returns the first choice's content.
func (g *Generator) GenerateContent(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if g == nil {
		return "", errors.New("openai generator is not initialized")
	}

	userPrompt = strings.TrimSpace(userPrompt)
	if userPrompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if systemPrompt = strings.TrimSpace(systemPrompt); systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(userPrompt))

	params := openai.ChatCompletionNewParams{
		Model:     g.model,
		Messages:  messages,
		MaxTokens: openai.Int(g.maxTokens),
	}
	if g.temperature > 0 {
		params.Temperature = openai.Float(g.temperature)
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("openai api returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("openai api returned empty content")
	}

	return content, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}
