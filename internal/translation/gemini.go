package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Gemini REST defaults
const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel   = "gemini-2.0-flash"
	geminiAPIVersion     = "v1beta"
)

// Authentication header styles for the Gemini REST backend
const (
	AuthBearer = "bearer"
	AuthAPIKey = "api-key"
)

// GeminiClient calls the generateContent endpoint over plain HTTP
type GeminiClient struct {
	baseURL    string
	model      string
	authHeader string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewGeminiClient creates a Gemini REST client. Empty fields in cfg fall
// back to the defaults.
func NewGeminiClient(cfg Config) *GeminiClient {
	c := &GeminiClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		authHeader: cfg.AuthHeader,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultGeminiBaseURL
	}
	if c.model == "" {
		c.model = DefaultGeminiModel
	}
	if c.authHeader == "" {
		c.authHeader = AuthBearer
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type generateContentRequest struct {
	Contents []geminiContent `json:"contents"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type geminiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Translate implements Translator
func (c *GeminiClient) Translate(ctx context.Context, req Request) (string, error) {
	if req.Credential == "" {
		return "", ErrMissingCredential
	}

	body, err := json.Marshal(generateContentRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: BuildPrompt(req)}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/models/%s:generateContent", c.baseURL, geminiAPIVersion, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq, req.Credential)

	c.logger.Debug("sending translation request",
		zap.String("model", c.model),
		zap.String("from", req.SourceLanguage),
		zap.String("to", req.TargetLanguage),
		zap.Int("chars", len(req.Text)))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("translation request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", newAPIError(resp, data)
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(parsed.Candidates) == 0 ||
		len(parsed.Candidates[0].Content.Parts) == 0 ||
		parsed.Candidates[0].Content.Parts[0].Text == nil {
		return "", ErrMalformedResponse
	}

	return *parsed.Candidates[0].Content.Parts[0].Text, nil
}

// ListModels returns the model IDs visible to credential, sorted
func (c *GeminiClient) ListModels(ctx context.Context, credential string) ([]string, error) {
	if credential == "" {
		return nil, ErrMissingCredential
	}

	endpoint := fmt.Sprintf("%s/%s/models", c.baseURL, geminiAPIVersion)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(httpReq, credential)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp, data)
	}

	var parsed struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	ids := make([]string, 0, len(parsed.Models))
	for _, m := range parsed.Models {
		ids = append(ids, strings.TrimPrefix(m.Name, "models/"))
	}
	sort.Strings(ids)
	return ids, nil
}

func (c *GeminiClient) authorize(req *http.Request, credential string) {
	if c.authHeader == AuthAPIKey {
		req.Header.Set("x-goog-api-key", credential)
		return
	}
	req.Header.Set("Authorization", "Bearer "+credential)
}

func newAPIError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, Status: resp.Status}

	var parsed geminiErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		apiErr.Message = parsed.Error.Message
	}
	return apiErr
}
