package summary

import (
	"context"
	"errors"
	"testing"

	"github.com/spigell/recruitai/internal/ai"
	"github.com/spigell/recruitai/internal/failure"
	"github.com/spigell/recruitai/internal/job"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubModel struct {
	resp  *ai.Response
	err   error
	calls []ai.GenerateRequest
}

func (s *stubModel) Generate(_ context.Context, req ai.GenerateRequest) (*ai.Response, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

type stubQuota struct{ err error }

func (s stubQuota) CheckAndConsume(context.Context, ai.Tier) error { return s.err }

func TestGenerate(t *testing.T) {
	tests := []struct {
		name        string
		description string
		model       *stubModel
		want        string
		wantCalls   int
	}{
		{name: "empty description", description: "  ", model: &stubModel{}, want: "", wantCalls: 0},
		{name: "model text", description: "Go role", model: &stubModel{resp: &ai.Response{Text: " Senior Go role at Acme, remote. \n"}}, want: "Senior Go role at Acme, remote.", wantCalls: 1},
		{name: "blank reply", description: "Go role", model: &stubModel{resp: &ai.Response{Text: ""}}, want: EmptyReply, wantCalls: 1},
		{name: "model error", description: "Go role", model: &stubModel{err: errors.New("unavailable")}, want: Fallback, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewWriter(tt.model, stubQuota{}, nil).Generate(context.Background(), tt.description, "", job.English)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Len(t, tt.model.calls, tt.wantCalls)
		})
	}
}

func TestGenerateQuotaExceeded(t *testing.T) {
	model := &stubModel{}
	_, err := NewWriter(model, stubQuota{err: failure.QuotaExceeded(ai.TierFast)}, nil).
		Generate(context.Background(), "Go role", "", job.English)

	assert.True(t, failure.IsQuota(err))
	assert.Empty(t, model.calls)
}

func TestGeneratePromptCarriesLanguage(t *testing.T) {
	model := &stubModel{resp: &ai.Response{Text: "ok"}}
	_, err := NewWriter(model, stubQuota{}, nil).Generate(context.Background(), "Go role", "Salary: 5k", job.Portuguese)
	require.NoError(t, err)

	require.Len(t, model.calls, 1)
	assert.Equal(t, ai.TierFast, model.calls[0].Tier)
	assert.Contains(t, model.calls[0].Prompt, "Portuguese")
	assert.Contains(t, model.calls[0].Prompt, "Salary: 5k")
	assert.Nil(t, model.calls[0].Schema)
}

func TestAdditional(t *testing.T) {
	cfg, err := job.New(job.Draft{CompanyName: "Acme", JobTitle: "SRE", Salary: "$100k"})
	require.NoError(t, err)

	assert.Equal(t, "Company: Acme, Title: SRE, Salary: $100k", Additional(cfg))
}
