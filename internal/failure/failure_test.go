package failure

import (
	"errors"
	"fmt"
	"testing"

	"github.com/spigell/recruitai/internal/ai"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	base := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: KindUnknown},
		{name: "plain", err: base, want: KindUnknown},
		{name: "quota", err: QuotaExceeded(ai.TierDeep), want: KindQuota},
		{name: "transport", err: Transport("send", base), want: KindTransport},
		{name: "initialization", err: Initialization("start", base), want: KindInitialization},
		{name: "generation", err: Generation("report", base), want: KindGeneration},
		{name: "wrapped with fmt", err: fmt.Errorf("outer: %w", Transport("send", base)), want: KindTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestWrapKeepsQuotaFailure(t *testing.T) {
	quota := QuotaExceeded(ai.TierFast)

	for _, err := range []error{
		Initialization("start", quota),
		Transport("send", fmt.Errorf("ctx: %w", quota)),
		Generation("report", quota),
	} {
		if !IsQuota(err) {
			t.Fatalf("expected quota kind to survive wrapping, got %v", err)
		}
		if tier := TierOf(err); tier != ai.TierFast {
			t.Fatalf("expected tier fast, got %q", tier)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	base := errors.New("connection reset")
	err := Transport("send message", base)

	if !errors.Is(err, base) {
		t.Fatalf("expected errors.Is to find the cause")
	}

	if got := err.Error(); got != "transport: send message: connection reset" {
		t.Fatalf("unexpected message: %q", got)
	}

	if TierOf(err) != "" {
		t.Fatalf("expected no tier for transport error")
	}
}
