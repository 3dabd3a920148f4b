package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"codeberg.org/snonux/gemtrans/internal/translation"
)

// Source lists model IDs for a credential
type Source interface {
	ListModels(ctx context.Context, credential string) ([]string, error)
}

// Lister handles listing available models
type Lister struct {
	apiKey  string
	backend string
	source  Source
}

// NewLister creates a lister for the backend described by cfg
func NewLister(apiKey string, cfg translation.Config) *Lister {
	l := &Lister{apiKey: apiKey, backend: strings.ToLower(cfg.Backend)}
	switch l.backend {
	case translation.BackendOpenAI:
		l.source = translation.NewOpenAIClient(cfg)
	default:
		// genai uses the same model namespace as the REST API
		l.source = translation.NewGeminiClient(cfg)
	}
	return l
}

// List returns the sorted model IDs available to the API key
func (l *Lister) List(ctx context.Context) ([]string, error) {
	if l.apiKey == "" {
		return nil, fmt.Errorf("API key not found. Set GEMINI_API_KEY, use --api-key, or save one with --set-key")
	}

	models, err := l.source.ListModels(ctx, l.apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	sort.Strings(models)
	return models, nil
}

// ListAvailableModels writes generation-capable models first, then the
// rest, to w
func (l *Lister) ListAvailableModels(ctx context.Context, w io.Writer) error {
	models, err := l.List(ctx)
	if err != nil {
		return err
	}

	// Categorize models
	textModels := []string{}
	otherModels := []string{}
	for _, id := range models {
		if isTextModel(id) {
			textModels = append(textModels, id)
		} else {
			otherModels = append(otherModels, id)
		}
	}

	sort.Strings(textModels)
	sort.Strings(otherModels)

	fmt.Fprintln(w, "Available models:")
	fmt.Fprintln(w, "\nText generation models (usable for translation):")
	if len(textModels) == 0 {
		fmt.Fprintln(w, "  No text models found")
	}
	for _, id := range textModels {
		fmt.Fprintf(w, "  %s\n", id)
	}

	if len(otherModels) > 0 {
		fmt.Fprintln(w, "\nOther models:")
		for _, id := range otherModels {
			fmt.Fprintf(w, "  %s\n", id)
		}
	}

	return nil
}

func isTextModel(id string) bool {
	if strings.Contains(id, "embedding") || strings.Contains(id, "tts") || strings.Contains(id, "image") {
		return false
	}
	return strings.Contains(id, "gemini") || strings.Contains(id, "gpt") || strings.Contains(id, "chat")
}
