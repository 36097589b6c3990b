// Package chat answers visitor questions through a pluggable provider,
// guarded by PromptShield.
package chat

import (
	"context"

	"github.com/verte-zerg/termfolio/internal/model"
)

// Request is a single question with its conversation context.
type Request struct {
	System   string
	History  []model.ChatMessage
	Question string
}

// Provider produces an answer for a request.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// Provider kinds accepted by NewProvider.
const (
	ProviderLocal  = "local"
	ProviderRemote = "remote"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)
