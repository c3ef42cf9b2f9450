package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spigell/recruitai/internal/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	tests := map[float64]int{
		0:    0,
		19.9: 0,
		20:   1,
		59:   2,
		78:   3,
		80:   4,
		100:  4,
		150:  4,
		-5:   0,
	}
	for score, want := range tests {
		assert.Equal(t, want, Level(score), "score %v", score)
	}
}

func TestFileName(t *testing.T) {
	now := time.Date(2025, 3, 14, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "Interview_Report_Senior_Go_Engineer_2025-03-14.txt", FileName(" Senior Go \t Engineer ", now))
}

func TestExport(t *testing.T) {
	rep := &Report{
		CandidateSummary: "Solid backend engineer.",
		DetailedAnalysis: "Answered concurrency questions well.",
		Strengths:        []string{"Go"},
		Weaknesses:       []string{"Frontend"},
		Score:            78,
		Recommendation:   Hire,
		Citations:        []ai.Citation{{Title: "Go", URI: "https://go.dev"}},
	}
	now := time.Date(2025, 3, 14, 12, 30, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, config(t, ""), rep, sampleTurns(), now))
	out := buf.String()

	for _, want := range []string{
		"CANDIDATE EVALUATION REPORT",
		"Company: Acme",
		"Role: Backend Engineer",
		"Date: 2025-03-14 12:30:00",
		"Recommendation: Hire",
		"Score: 78/100",
		"Level: Proficient",
		"EXECUTIVE SUMMARY\n-----------------------------------------\nSolid backend engineer.",
		"KEY STRENGTHS\n-----------------------------------------\n- Go",
		"AREAS FOR IMPROVEMENT\n-----------------------------------------\n- Frontend",
		"FACT CHECK & SOURCES",
		"- Go: https://go.dev",
		"INTERVIEW TRANSCRIPT",
		"[Interviewer] (10:00:00):\nHi, tell me about yourself.",
		"[Candidate] (10:00:30):\nI build APIs in Go.",
	} {
		assert.Contains(t, out, want)
	}
	assert.True(t, strings.HasPrefix(out, heavyRule))
}

func TestExportLocalizesHeadersAndOmitsEmptySources(t *testing.T) {
	rep := &Report{Score: 10, Recommendation: NoHire, Citations: []ai.Citation{}}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, config(t, "Spanish"), rep, nil, time.Now()))
	out := buf.String()

	assert.Contains(t, out, "INFORME DE EVALUACIÓN DEL CANDIDATO")
	assert.Contains(t, out, "Recommendation: No contratar")
	assert.Contains(t, out, "Nivel: Novato")
	assert.NotContains(t, out, "VERIFICACIÓN")
}
