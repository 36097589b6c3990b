package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/termfolio/internal/content"
	"github.com/verte-zerg/termfolio/internal/model"
	"github.com/verte-zerg/termfolio/internal/shield"
)

const (
	// DefaultTimeout bounds a provider call.
	DefaultTimeout = 30 * time.Second
	// maxHistory is the number of earlier turns forwarded to the provider.
	maxHistory = 10
)

// Answer is the outcome of one question.
type Answer struct {
	Message model.ChatMessage
	// Blocked is set when the shield replaced the exchange with a canned reply.
	Blocked bool
	// Fallback is set when the provider failed and the local answer was used.
	Fallback bool
	Reasons  []string
}

// Service answers questions through a provider, guarded by a shield.
type Service struct {
	provider  Provider
	fallback  Provider
	shield    *shield.Shield
	portfolio *content.Portfolio
	logger    *zap.Logger
	timeout   time.Duration
	now       func() time.Time
}

// NewService wires a provider to the shield. A nil logger disables logging.
func NewService(provider Provider, sh *shield.Shield, p *content.Portfolio, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sh == nil {
		sh = shield.Default(p.Topics()...)
	}
	return &Service{
		provider:  provider,
		fallback:  NewLocal(p),
		shield:    sh,
		portfolio: p,
		logger:    logger,
		timeout:   DefaultTimeout,
		now:       time.Now,
	}
}

// SetTimeout overrides the provider call timeout.
func (s *Service) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// Provider returns the primary provider.
func (s *Service) Provider() Provider {
	return s.provider
}

// NewUserMessage builds the visitor side of a chat turn.
func (s *Service) NewUserMessage(text string) model.ChatMessage {
	return model.ChatMessage{
		ID:        uuid.NewString(),
		Text:      strings.TrimSpace(text),
		IsUser:    true,
		Timestamp: s.now(),
	}
}

// Ask answers question. It never fails for provider or network errors; those
// fall back to the canned local answer. Only ctx cancellation is returned.
func (s *Service) Ask(ctx context.Context, question string, history []model.ChatMessage) (Answer, error) {
	started := s.now()
	verdict := s.shield.Inspect(question)
	if verdict.Action == shield.ActionWarn {
		s.logger.Info("shield warning", zap.Strings("reasons", verdict.Reasons))
	}
	if !verdict.Allowed() {
		s.logger.Info("question rejected by shield",
			zap.String("action", string(verdict.Action)),
			zap.Strings("reasons", verdict.Reasons))
		return s.answer(verdict.Reply, started, true, false, verdict.Reasons), nil
	}

	req := Request{
		System:   s.portfolio.SystemPrompt(),
		History:  trimHistory(history),
		Question: strings.TrimSpace(question),
	}
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	text, err := s.provider.Complete(callCtx, req)
	cancel()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Answer{}, ctxErr
		}
		s.logger.Warn("chat provider failed; using local answer",
			zap.String("provider", s.provider.Name()),
			zap.Error(err))
		return s.fallbackAnswer(ctx, req, started), nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return s.fallbackAnswer(ctx, req, started), nil
	}

	filtered := s.shield.Filter(text)
	if !filtered.Allowed() {
		s.logger.Warn("assistant answer filtered", zap.Strings("reasons", filtered.Reasons))
		return s.answer(filtered.Reply, started, true, false, filtered.Reasons), nil
	}
	return s.answer(text, started, false, false, nil), nil
}

func (s *Service) fallbackAnswer(ctx context.Context, req Request, started time.Time) Answer {
	text, err := s.fallback.Complete(ctx, req)
	if err != nil || text == "" {
		text = s.portfolio.FallbackAnswer
	}
	return s.answer(text, started, false, true, nil)
}

func (s *Service) answer(text string, started time.Time, blocked, fallback bool, reasons []string) Answer {
	now := s.now()
	return Answer{
		Message: model.ChatMessage{
			ID:           uuid.NewString(),
			Text:         text,
			IsUser:       false,
			Timestamp:    now,
			ResponseTime: now.Sub(started),
		},
		Blocked:  blocked,
		Fallback: fallback,
		Reasons:  reasons,
	}
}

func trimHistory(history []model.ChatMessage) []model.ChatMessage {
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	return append([]model.ChatMessage(nil), history...)
}

// IsCanceled reports whether err came from a superseded or aborted question.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
