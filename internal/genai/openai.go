package genai

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient wraps any OpenAI-compatible chat completion API (OpenAI proper,
// or a local gateway exposing the /v1 surface). The base URL override makes it
// usable against self-hosted providers.
type OpenAIClient struct {
	api   *openai.Client
	model string
}

func NewOpenAI(baseURL, apiKey, model string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{Timeout: ollamaConnectTimeout}).DialContext,
		},
		Timeout: ollamaReadTimeout,
	}
	return &OpenAIClient{api: openai.NewClientWithConfig(cfg), model: model}
}

func (c *OpenAIClient) Generate(ctx context.Context, topicTitle, difficulty string, count int) ([]GeneratedQuestion, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: mcqPrompt(topicTitle, difficulty, count)},
		},
		Temperature: 0.3,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			// The provider answered; its content or request handling is the
			// problem, not reachability.
			return nil, genErr("openai", err)
		}
		return nil, unavailableErr("openai", err)
	}
	if len(resp.Choices) == 0 {
		return nil, genErr("openai", errors.New("no choices in response"))
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("openai response", "raw", raw)

	questions, err := ParseQuestions(raw)
	if err != nil {
		return nil, genErr("openai", err)
	}
	return questions, nil
}

// IsAvailable lists models with a short deadline; any answer means the
// provider is reachable.
func (c *OpenAIClient) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_, err := c.api.ListModels(ctx)
	return err == nil
}

var _ Generator = (*OpenAIClient)(nil)
