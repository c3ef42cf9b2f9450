// Package report turns a finished interview transcript into a structured
// evaluation and renders it for download.
package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/recruitai/internal/ai"
	"github.com/spigell/recruitai/internal/failure"
	"github.com/spigell/recruitai/internal/interview"
	"github.com/spigell/recruitai/internal/job"
	"github.com/spigell/recruitai/internal/locale"
	"github.com/spigell/recruitai/internal/prompt"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

// Report is the evaluation of one interview.
type Report struct {
	CandidateSummary string         `json:"candidateSummary"`
	DetailedAnalysis string         `json:"detailedAnalysis"`
	Strengths        []string       `json:"strengths"`
	Weaknesses       []string       `json:"weaknesses"`
	Score            float64        `json:"score"`
	Recommendation   Recommendation `json:"hiringRecommendation"`
	Citations        []ai.Citation  `json:"citations"`

	// Failure is set on a degraded report and explains why the model
	// evaluation is missing.
	Failure error `json:"-"`
}

// Degraded reports whether the report is a placeholder for a failed evaluation.
func (r *Report) Degraded() bool {
	return r.Failure != nil
}

type quotaGuard interface {
	CheckAndConsume(ctx context.Context, tier ai.Tier) error
}

type Generator struct {
	model  ai.Generator
	quota  quotaGuard
	logger *zap.Logger
	schema *ai.Schema
	check  *gojsonschema.Schema
}

func NewGenerator(model ai.Generator, quota quotaGuard, logger *zap.Logger) (*Generator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	schema := evaluationSchema()
	// the verdict is matched leniently by ParseRecommendation
	doc, err := schema.WithoutEnums().JSONSchema()
	if err != nil {
		return nil, fmt.Errorf("render evaluation schema: %w", err)
	}

	check, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("compile evaluation schema: %w", err)
	}

	return &Generator{
		model:  model,
		quota:  quota,
		logger: logger,
		schema: schema,
		check:  check,
	}, nil
}

func evaluationSchema() *ai.Schema {
	return &ai.Schema{Fields: []ai.Field{
		{Name: "candidateSummary", Type: ai.FieldString, Description: "A professional summary of the candidate's performance."},
		{Name: "detailedAnalysis", Type: ai.FieldString, Description: "How the candidate answered specific questions, their depth of knowledge and how they handled pressure."},
		{Name: "strengths", Type: ai.FieldStringArray, Description: "Key strengths."},
		{Name: "weaknesses", Type: ai.FieldStringArray, Description: "Areas for improvement."},
		{Name: "score", Type: ai.FieldNumber, Description: "Overall fit from 0 to 100."},
		{Name: "hiringRecommendation", Type: ai.FieldString, Description: "The hiring verdict.", Enum: labels()},
	}}
}

// Generate evaluates the transcript. A quota failure is returned as is and
// nothing else is attempted. Every other failure yields a degraded report and
// a nil error.
func (g *Generator) Generate(ctx context.Context, cfg *job.Configuration, turns []interview.Turn) (*Report, error) {
	if err := g.quota.CheckAndConsume(ctx, ai.TierFast); err != nil {
		if failure.IsQuota(err) {
			return nil, err
		}
		return g.degraded(cfg, failure.Generation("check quota", err)), nil
	}

	resp, err := g.model.Generate(ctx, ai.GenerateRequest{
		Tier:      ai.TierFast,
		Prompt:    prompt.Report(cfg, Transcript(turns), labels()),
		Schema:    g.schema,
		Grounding: ai.GroundingSearch,
	})
	if err != nil {
		return g.degraded(cfg, failure.Generation("generate report", err)), nil
	}

	rep, err := g.parse(resp.Text, cfg.Language)
	if err != nil {
		return g.degraded(cfg, failure.Generation("parse report", err)), nil
	}

	rep.Citations = resp.Citations
	if rep.Citations == nil {
		rep.Citations = []ai.Citation{}
	}

	g.logger.Info("report generated",
		zap.Float64("score", rep.Score),
		zap.String("recommendation", string(rep.Recommendation)),
		zap.Int("citations", len(rep.Citations)),
	)

	return rep, nil
}

func (g *Generator) degraded(cfg *job.Configuration, cause error) *Report {
	g.logger.Error("report generation failed", zap.Error(cause))

	text := locale.For(cfg.Language)
	return &Report{
		CandidateSummary: text.ReportFailed,
		DetailedAnalysis: text.AnalysisMissing,
		Strengths:        []string{},
		Weaknesses:       []string{},
		Score:            0,
		Recommendation:   Error,
		Citations:        []ai.Citation{},
		Failure:          cause,
	}
}

// Transcript serializes the turns one per line in conversation order.
func Transcript(turns []interview.Turn) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		speaker := "CANDIDATE"
		if t.Role == interview.RoleInterviewer {
			speaker = "INTERVIEWER"
		}
		lines = append(lines, speaker+": "+t.Text)
	}
	return strings.Join(lines, "\n")
}
