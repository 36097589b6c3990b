package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/verte-zerg/termfolio/internal/fetch"
	"github.com/verte-zerg/termfolio/internal/model"
)

// ChatPath is the proxy endpoint for chat completions.
const ChatPath = "/api/chat"

// WireRequest is the JSON body of POST /api/chat.
type WireRequest struct {
	Message string              `json:"message"`
	History []model.ChatMessage `json:"history,omitempty"`
}

// WireResponse is the JSON reply of POST /api/chat.
type WireResponse struct {
	Response     string `json:"response"`
	ResponseTime int64  `json:"responseTime"`
	Blocked      bool   `json:"blocked,omitempty"`
	Fallback     bool   `json:"fallback,omitempty"`
}

type remoteProvider struct {
	client *fetch.Client
	policy fetch.RetryPolicy
}

// NewRemote returns a provider that forwards questions to a termfolio proxy.
// The proxy owns the system prompt and API keys.
func NewRemote(client *fetch.Client) Provider {
	return &remoteProvider{client: client, policy: fetch.SingleAttempt}
}

func (p *remoteProvider) Name() string {
	return ProviderRemote
}

func (p *remoteProvider) Complete(ctx context.Context, req Request) (string, error) {
	body := WireRequest{Message: req.Question, History: req.History}
	out, err := fetch.WithRetry(ctx, p.policy, func(ctx context.Context) (WireResponse, error) {
		var out WireResponse
		err := p.client.PostJSON(ctx, ChatPath, body, &out)
		return out, err
	})
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(out.Response)
	if text == "" {
		return "", errors.New("remote: empty response")
	}
	return text, nil
}
