package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/termfolio/internal/content"
	"github.com/verte-zerg/termfolio/internal/fetch"
)

// ProviderConfig selects and configures a provider.
type ProviderConfig struct {
	Kind        string
	Endpoint    string
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// NewProvider builds the provider named by cfg.Kind. An empty kind picks
// remote when an endpoint is set, and local otherwise.
func NewProvider(ctx context.Context, cfg ProviderConfig, p *content.Portfolio) (Provider, error) {
	kind := strings.ToLower(strings.TrimSpace(cfg.Kind))
	if kind == "" {
		kind = ProviderLocal
		if cfg.Endpoint != "" {
			kind = ProviderRemote
		}
	}
	switch kind {
	case ProviderLocal:
		return NewLocal(p), nil
	case ProviderRemote:
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("remote chat provider needs an endpoint")
		}
		return NewRemote(fetch.New(cfg.Endpoint, fetch.WithTimeout(cfg.Timeout))), nil
	case ProviderOpenAI:
		return NewOpenAI(OpenAIConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		})
	case ProviderGemini:
		return NewGemini(ctx, GeminiConfig{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		})
	default:
		return nil, fmt.Errorf("unsupported chat provider: %s", cfg.Kind)
	}
}
