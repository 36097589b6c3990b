package chat

import (
	"context"

	"github.com/verte-zerg/termfolio/internal/content"
)

// localProvider answers from the portfolio FAQ without any network access.
type localProvider struct {
	portfolio *content.Portfolio
}

// NewLocal returns the offline provider.
func NewLocal(p *content.Portfolio) Provider {
	return &localProvider{portfolio: p}
}

func (p *localProvider) Name() string {
	return ProviderLocal
}

func (p *localProvider) Complete(_ context.Context, req Request) (string, error) {
	if answer, ok := p.portfolio.Answer(req.Question); ok {
		return answer, nil
	}
	return p.portfolio.FallbackAnswer, nil
}
