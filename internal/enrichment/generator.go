package enrichment

import (
	"context"
	"fmt"
	"net/http"
)

// Provider names
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// Generator turns a prompt into generated text
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// ProviderConfig selects and configures a Generator
type ProviderConfig struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// NewGenerator builds the generator for cfg.Provider. It returns nil, nil for
// ProviderNone so callers can treat enrichment as disabled.
func NewGenerator(ctx context.Context, cfg ProviderConfig, httpClient *http.Client) (Generator, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIGenerator(cfg.APIKey, cfg.Model, cfg.BaseURL, httpClient), nil
	case ProviderGemini:
		return NewGeminiGenerator(ctx, cfg.APIKey, cfg.Model, cfg.BaseURL, httpClient)
	case ProviderNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
