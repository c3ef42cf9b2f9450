// Package summary writes the short job pitch shown on the candidate card.
package summary

import (
	"context"
	"strings"

	"github.com/spigell/recruitai/internal/ai"
	"github.com/spigell/recruitai/internal/failure"
	"github.com/spigell/recruitai/internal/job"
	"github.com/spigell/recruitai/internal/prompt"
	"go.uber.org/zap"
)

const (
	// Fallback is returned when the model call fails.
	Fallback = "Great career opportunity. Please review the details and apply."
	// EmptyReply replaces a blank model answer.
	EmptyReply = "Exciting opportunity available. Apply now to discuss your fit for this role."
)

type quotaGuard interface {
	CheckAndConsume(ctx context.Context, tier ai.Tier) error
}

type Writer struct {
	model  ai.Generator
	quota  quotaGuard
	logger *zap.Logger
}

func NewWriter(model ai.Generator, quota quotaGuard, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{model: model, quota: quota, logger: logger}
}

// Generate returns "" for an empty description. Only quota failures are
// returned as errors.
func (w *Writer) Generate(ctx context.Context, description, additional string, lang job.Language) (string, error) {
	if strings.TrimSpace(description) == "" {
		return "", nil
	}

	if err := w.quota.CheckAndConsume(ctx, ai.TierFast); err != nil {
		if failure.IsQuota(err) {
			return "", err
		}
		w.logger.Warn("summary quota check failed", zap.Error(err))
		return Fallback, nil
	}

	resp, err := w.model.Generate(ctx, ai.GenerateRequest{
		Tier:   ai.TierFast,
		Prompt: prompt.Summary(description, additional, lang),
	})
	if err != nil {
		w.logger.Warn("summary generation failed", zap.Error(err))
		return Fallback, nil
	}

	if text := strings.TrimSpace(resp.Text); text != "" {
		return text, nil
	}
	return EmptyReply, nil
}

// Additional joins the job facts that help the pitch but are not part of the description.
func Additional(cfg *job.Configuration) string {
	parts := make([]string, 0, 4)
	add := func(label, value string) {
		if v := strings.TrimSpace(value); v != "" {
			parts = append(parts, label+": "+v)
		}
	}
	add("Company", cfg.CompanyName)
	add("Title", cfg.JobTitle)
	add("Location", cfg.OfficeLocation)
	add("Salary", cfg.Salary)
	return strings.Join(parts, ", ")
}
