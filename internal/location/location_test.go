package location

import (
	"context"
	"errors"
	"testing"

	"github.com/spigell/recruitai/internal/ai"
	"github.com/spigell/recruitai/internal/failure"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubGenerator struct {
	resp  *ai.Response
	err   error
	calls []ai.GenerateRequest
}

func (s *stubGenerator) Generate(_ context.Context, req ai.GenerateRequest) (*ai.Response, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

type stubQuota struct {
	err   error
	tiers []ai.Tier
}

func (s *stubQuota) CheckAndConsume(_ context.Context, tier ai.Tier) error {
	s.tiers = append(s.tiers, tier)
	return s.err
}

func TestFetchEmptyQuery(t *testing.T) {
	gen := &stubGenerator{}
	quota := &stubQuota{}

	got, err := NewFetcher(gen, quota, nil).Fetch(context.Background(), "   ")
	if err != nil || got != "" {
		t.Fatalf("expected empty result, got %q, %v", got, err)
	}
	if len(quota.tiers) != 0 || len(gen.calls) != 0 {
		t.Fatalf("empty query must not consume quota or call the model")
	}
}

func TestFetchUsesMapsOnFastTier(t *testing.T) {
	gen := &stubGenerator{resp: &ai.Response{Text: "  Near the harbour.  "}}
	quota := &stubQuota{}

	got, err := NewFetcher(gen, quota, zap.NewNop()).Fetch(context.Background(), "Rua Augusta 1, Lisboa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Near the harbour." {
		t.Fatalf("unexpected narrative: %q", got)
	}

	if len(quota.tiers) != 1 || quota.tiers[0] != ai.TierFast {
		t.Fatalf("expected one fast tier consumption, got %v", quota.tiers)
	}

	req := gen.calls[0]
	if req.Tier != ai.TierFast || req.Grounding != ai.GroundingMaps {
		t.Fatalf("unexpected request: %+v", req)
	}
	want := "Describe the location and immediate surroundings of: Rua Augusta 1, Lisboa. What is this area known for?"
	if req.Prompt != want {
		t.Fatalf("unexpected prompt: %q", req.Prompt)
	}
}

func TestFetchReraisesQuota(t *testing.T) {
	gen := &stubGenerator{}
	quota := &stubQuota{err: failure.QuotaExceeded(ai.TierFast)}

	_, err := NewFetcher(gen, quota, nil).Fetch(context.Background(), "Berlin")
	if !failure.IsQuota(err) {
		t.Fatalf("expected quota error, got %v", err)
	}
	if len(gen.calls) != 0 {
		t.Fatalf("model must not be called without quota")
	}
}

func TestFetchSwallowsTransportErrors(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	gen := &stubGenerator{err: errors.New("deadline exceeded")}

	got, err := NewFetcher(gen, &stubQuota{}, zap.New(core)).Fetch(context.Background(), "Berlin")
	if err != nil || got != "" {
		t.Fatalf("expected empty result without error, got %q, %v", got, err)
	}

	entries := observed.FilterMessage("location lookup failed, continuing without it").All()
	if len(entries) != 1 {
		t.Fatalf("expected one warning, got %d", len(entries))
	}
	if entries[0].ContextMap()["location"] != "Berlin" {
		t.Fatalf("expected location field in warning")
	}
}

func TestFetchSwallowsLedgerErrors(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	gen := &stubGenerator{}
	quota := &stubQuota{err: errors.New("quota state changed concurrently too many times")}

	got, err := NewFetcher(gen, quota, zap.New(core)).Fetch(context.Background(), "Berlin")
	if err != nil || got != "" {
		t.Fatalf("expected empty result without error, got %q, %v", got, err)
	}
	if len(gen.calls) != 0 {
		t.Fatalf("model must not be called when the quota check fails")
	}
	if observed.FilterMessage("location quota check failed, continuing without it").Len() != 1 {
		t.Fatalf("expected one warning")
	}
}
