package translation

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GenAIClient translates through the official Google Gen AI SDK. The
// credential is passed to the SDK as its API key.
type GenAIClient struct {
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewGenAIClient creates a genai-backed translator
func NewGenAIClient(cfg Config) *GenAIClient {
	c := &GenAIClient{
		model:      cfg.Model,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}
	if cfg.BaseURL != DefaultGeminiBaseURL {
		c.baseURL = cfg.BaseURL
	}
	if c.model == "" {
		c.model = DefaultGeminiModel
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Translate implements Translator
func (c *GenAIClient) Translate(ctx context.Context, req Request) (string, error) {
	if req.Credential == "" {
		return "", ErrMissingCredential
	}

	// The SDK client is bound to one API key, and the key can change
	// between requests
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      req.Credential,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  c.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: c.baseURL},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create genai client: %w", err)
	}

	c.logger.Debug("sending translation request via genai",
		zap.String("model", c.model),
		zap.String("from", req.SourceLanguage),
		zap.String("to", req.TargetLanguage))

	resp, err := client.Models.GenerateContent(ctx, c.model, genai.Text(BuildPrompt(req)), nil)
	if err != nil {
		var sdkErr genai.APIError
		if errors.As(err, &sdkErr) {
			return "", &APIError{StatusCode: sdkErr.Code, Status: sdkErr.Status, Message: sdkErr.Message}
		}
		var sdkErrPtr *genai.APIError
		if errors.As(err, &sdkErrPtr) {
			return "", &APIError{StatusCode: sdkErrPtr.Code, Status: sdkErrPtr.Status, Message: sdkErrPtr.Message}
		}
		return "", fmt.Errorf("genai request failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrMalformedResponse
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 || candidate.Content.Parts[0] == nil {
		return "", ErrMalformedResponse
	}
	// A non-text first part (inline data, a function call) carries no
	// translation
	if candidate.Content.Parts[0].Text == "" {
		return "", ErrMalformedResponse
	}

	return candidate.Content.Parts[0].Text, nil
}
