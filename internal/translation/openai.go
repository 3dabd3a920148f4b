package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// DefaultOpenAIModel is the chat model used when none is configured
const DefaultOpenAIModel = openai.GPT4oMini

// OpenAIClient translates with an OpenAI chat completion
type OpenAIClient struct {
	cfg    Config
	model  string
	logger *zap.Logger
}

// NewOpenAIClient creates an OpenAI-backed translator. A Gemini base URL or
// model in cfg is ignored.
func NewOpenAIClient(cfg Config) *OpenAIClient {
	c := &OpenAIClient{cfg: cfg, model: cfg.Model, logger: cfg.Logger}
	if c.model == "" || c.model == DefaultGeminiModel {
		c.model = DefaultOpenAIModel
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

func (c *OpenAIClient) client(credential string) *openai.Client {
	config := openai.DefaultConfig(credential)
	if c.cfg.BaseURL != "" && c.cfg.BaseURL != DefaultGeminiBaseURL {
		config.BaseURL = c.cfg.BaseURL
	}
	if c.cfg.HTTPClient != nil {
		config.HTTPClient = c.cfg.HTTPClient
	}
	return openai.NewClientWithConfig(config)
}

// Translate implements Translator
func (c *OpenAIClient) Translate(ctx context.Context, req Request) (string, error) {
	if req.Credential == "" {
		return "", ErrMissingCredential
	}

	chatReq := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(req),
			},
		},
		Temperature: 0.3,
	}

	c.logger.Debug("sending translation request via openai",
		zap.String("model", c.model),
		zap.String("from", req.SourceLanguage),
		zap.String("to", req.TargetLanguage))

	resp, err := c.client(req.Credential).CreateChatCompletion(ctx, chatReq)
	if err != nil {
		var sdkErr *openai.APIError
		if errors.As(err, &sdkErr) {
			return "", &APIError{StatusCode: sdkErr.HTTPStatusCode, Message: sdkErr.Message}
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", &APIError{StatusCode: reqErr.HTTPStatusCode, Status: reqErr.HTTPStatus}
		}
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrMalformedResponse
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// ListModels returns the chat model IDs visible to credential
func (c *OpenAIClient) ListModels(ctx context.Context, credential string) ([]string, error) {
	if credential == "" {
		return nil, ErrMissingCredential
	}

	models, err := c.client(credential).ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	var ids []string
	for _, m := range models.Models {
		if strings.Contains(m.ID, "gpt") || strings.Contains(m.ID, "chat") {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}
