package translation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Request carries everything a backend needs for one translation. Language
// fields hold display names ("Japanese"), not codes.
type Request struct {
	SourceLanguage string
	TargetLanguage string
	Text           string
	Credential     string
}

// Translator issues a single translation request
type Translator interface {
	Translate(ctx context.Context, req Request) (string, error)
}

// TranslatorFunc adapts a function to the Translator interface
type TranslatorFunc func(ctx context.Context, req Request) (string, error)

// Translate calls f
func (f TranslatorFunc) Translate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// BuildPrompt returns the instruction sent to the model. The text is
// embedded verbatim.
func BuildPrompt(req Request) string {
	return fmt.Sprintf("Translate the following text from %s to %s: %s",
		req.SourceLanguage, req.TargetLanguage, req.Text)
}

// Backend names accepted by New
const (
	BackendGemini = "gemini"
	BackendGenAI  = "genai"
	BackendOpenAI = "openai"
)

// Config selects and parameterises a backend
type Config struct {
	Backend string
	Model   string
	BaseURL string
	// AuthHeader is "bearer" (default) or "api-key" for the Gemini REST
	// backend
	AuthHeader string
	// BreakerThreshold is the number of consecutive failures after which
	// requests fail fast. Zero disables the breaker.
	BreakerThreshold uint32
	BreakerCooldown  time.Duration
	HTTPClient       *http.Client
	Logger           *zap.Logger
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() Config {
	return Config{
		Backend:          BackendGemini,
		Model:            DefaultGeminiModel,
		BaseURL:          DefaultGeminiBaseURL,
		AuthHeader:       AuthBearer,
		BreakerThreshold: 5,
		BreakerCooldown:  30 * time.Second,
	}
}

// New builds the translator described by cfg
func New(cfg Config) (Translator, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	var t Translator
	switch strings.ToLower(cfg.Backend) {
	case "", BackendGemini:
		t = NewGeminiClient(cfg)
	case BackendGenAI:
		t = NewGenAIClient(cfg)
	case BackendOpenAI:
		t = NewOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unknown translation backend: %s", cfg.Backend)
	}

	if cfg.BreakerThreshold > 0 {
		t = NewBreakerTranslator(t, cfg.BreakerThreshold, cfg.BreakerCooldown, cfg.Logger)
	}
	return t, nil
}

// Sentinel errors shared by all backends
var (
	ErrMissingCredential = errors.New("API key not configured")
	ErrMalformedResponse = errors.New("response did not contain a translation")
	ErrCircuitOpen       = errors.New("translation service temporarily unavailable")
)

// Messages shown to the user when the service gives none
const (
	StatusFailureMessage  = "Translation failed. Please check your API key and try again."
	GenericFailureMessage = "An error occurred during translation."
)

// APIError is a non-success response from the service
type APIError struct {
	StatusCode int
	Status     string
	// Message is the service's own explanation, if the body carried one
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("translation API error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("translation API error (%d)", e.StatusCode)
}

// UserMessage turns a translation error into the text shown to the user
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return StatusFailureMessage
	case errors.Is(err, ErrCircuitOpen):
		return "The translation service is temporarily unavailable after repeated failures. Please try again shortly."
	case errors.Is(err, ErrMalformedResponse):
		return "The translation service returned an unexpected response."
	case errors.Is(err, ErrMissingCredential):
		return "Please enter your API key first."
	case errors.Is(err, context.Canceled):
		return "Translation was cancelled."
	}

	// Transport and other internal errors are logged by the caller; their
	// text carries endpoints and is not meant for the user
	return GenericFailureMessage
}
