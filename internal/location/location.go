// Package location describes the surroundings of an office with help of the
// model's maps grounding. The result only enriches the interview directive.
package location

import (
	"context"
	"strings"

	"github.com/spigell/recruitai/internal/ai"
	"github.com/spigell/recruitai/internal/failure"
	"github.com/spigell/recruitai/internal/prompt"
	"go.uber.org/zap"
)

type quotaGuard interface {
	CheckAndConsume(ctx context.Context, tier ai.Tier) error
}

type Fetcher struct {
	generator ai.Generator
	quota     quotaGuard
	logger    *zap.Logger
}

func NewFetcher(generator ai.Generator, quota quotaGuard, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{generator: generator, quota: quota, logger: logger}
}

// Fetch returns a narrative about the area of query, or "" when query is empty
// or the lookup fails. Only a quota failure is returned as an error.
func (f *Fetcher) Fetch(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil
	}

	if err := f.quota.CheckAndConsume(ctx, ai.TierFast); err != nil {
		if failure.IsQuota(err) {
			return "", err
		}
		f.logger.Warn("location quota check failed, continuing without it",
			zap.String("location", query),
			zap.Error(err),
		)
		return "", nil
	}

	resp, err := f.generator.Generate(ctx, ai.GenerateRequest{
		Tier:      ai.TierFast,
		Prompt:    prompt.Location(query),
		Grounding: ai.GroundingMaps,
	})
	if err != nil {
		f.logger.Warn("location lookup failed, continuing without it",
			zap.String("location", query),
			zap.Error(err),
		)
		return "", nil
	}

	return strings.TrimSpace(resp.Text), nil
}
