package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pratik-mahalle/tasknest/internal/config"
	"github.com/pratik-mahalle/tasknest/internal/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
)

const maxSuggestions = 3

// OpenAIAssistant implements Assistant with the chat completions API.
// BaseURL may point at any compatible endpoint such as OpenRouter.
type OpenAIAssistant struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIAssistant creates an assistant from configuration
func NewOpenAIAssistant(cfg config.AIConfig) *OpenAIAssistant {
	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAIAssistant{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   model,
		timeout: cfg.Timeout,
	}
}

// NewAssistant returns the OpenAI assistant when a key is configured and
// the heuristic fallback otherwise
func NewAssistant(cfg config.AIConfig) Assistant {
	if cfg.OpenAIAPIKey == "" {
		return NewFallbackAssistant()
	}
	return NewOpenAIAssistant(cfg)
}

// Name returns the provider name
func (a *OpenAIAssistant) Name() string {
	return "openai"
}

// Categorize asks the model for a single category label
func (a *OpenAIAssistant) Categorize(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(
		"Classify this to-do item into exactly one of these categories: %s.\n"+
			"Reply with the category name only.\n\nTask: %s",
		strings.Join(Categories, ", "), text)

	answer, err := a.ask(ctx, prompt, 10)
	if err != nil {
		return "", err
	}
	return NormalizeCategory(answer), nil
}

// Suggest asks the model for a few next steps, one per line
func (a *OpenAIAssistant) Suggest(ctx context.Context, text string) ([]string, error) {
	prompt := fmt.Sprintf(
		"Suggest up to %d short, concrete next steps for this to-do item.\n"+
			"Reply with one step per line and nothing else.\n\nTask: %s",
		maxSuggestions, text)

	answer, err := a.ask(ctx, prompt, 300)
	if err != nil {
		return nil, err
	}
	return ParseSuggestions(answer, maxSuggestions), nil
}

func (a *OpenAIAssistant) ask(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", errors.AIProviderError(a.Name(), err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.AIProviderError(a.Name(), fmt.Errorf("empty completion"))
	}
	return resp.Choices[0].Message.Content, nil
}

var _ Assistant = (*OpenAIAssistant)(nil)
