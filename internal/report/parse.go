package report

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spigell/recruitai/internal/job"
	"github.com/xeipuuv/gojsonschema"
)

type evaluation struct {
	CandidateSummary     string   `mapstructure:"candidateSummary"`
	DetailedAnalysis     string   `mapstructure:"detailedAnalysis"`
	Strengths            []string `mapstructure:"strengths"`
	Weaknesses           []string `mapstructure:"weaknesses"`
	Score                float64  `mapstructure:"score"`
	HiringRecommendation string   `mapstructure:"hiringRecommendation"`
}

func (g *Generator) parse(raw string, lang job.Language) (*Report, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("empty model response")
	}

	result, err := g.check.Validate(gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, fmt.Errorf("read evaluation: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return nil, fmt.Errorf("evaluation does not match schema: %s", strings.Join(problems, "; "))
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse evaluation: %w", err)
	}

	var ev evaluation
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &ev,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode evaluation: %w", err)
	}

	rec, err := ParseRecommendation(ev.HiringRecommendation, lang)
	if err != nil {
		return nil, err
	}

	return &Report{
		CandidateSummary: strings.TrimSpace(ev.CandidateSummary),
		DetailedAnalysis: strings.TrimSpace(ev.DetailedAnalysis),
		Strengths:        nonNil(ev.Strengths),
		Weaknesses:       nonNil(ev.Weaknesses),
		Score:            clampScore(ev.Score),
		Recommendation:   rec,
	}, nil
}

// extractJSON drops the markdown fences models like to wrap JSON in.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func clampScore(score float64) float64 {
	switch {
	case math.IsNaN(score), score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}

func nonNil(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
