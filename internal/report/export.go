package report

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spigell/recruitai/internal/interview"
	"github.com/spigell/recruitai/internal/job"
	"github.com/spigell/recruitai/internal/locale"
)

const (
	heavyRule = "========================================="
	lightRule = "-----------------------------------------"
)

var whitespace = regexp.MustCompile(`\s+`)

// Level maps a score onto the five step ladder, 0 being the lowest.
func Level(score float64) int {
	level := int(clampScore(score)) / 20
	if level > 4 {
		return 4
	}
	return level
}

// FileName is the download name of an exported report.
func FileName(jobTitle string, now time.Time) string {
	title := whitespace.ReplaceAllString(strings.TrimSpace(jobTitle), "_")
	return fmt.Sprintf("Interview_Report_%s_%s.txt", title, now.Format("2006-01-02"))
}

// Export writes the plain text report with headers in the interview language.
func Export(w io.Writer, cfg *job.Configuration, rep *Report, turns []interview.Turn, now time.Time) error {
	text := locale.For(cfg.Language)
	bw := bufio.NewWriter(w)

	line := func(s string) { _, _ = bw.WriteString(s + "\n") }
	section := func(title, rule string) {
		line("")
		line(strings.ToUpper(title))
		line(rule)
	}

	line(heavyRule)
	line(strings.ToUpper(text.ReportTitle))
	line(heavyRule)
	line("Company: " + cfg.CompanyName)
	line("Role: " + cfg.JobTitle)
	line("Date: " + now.Format("2006-01-02 15:04:05"))
	line("Recommendation: " + recommendationLabel(text, rep.Recommendation))
	line("Score: " + strconv.FormatFloat(rep.Score, 'f', -1, 64) + "/100")
	line(text.Level + ": " + text.Levels[Level(rep.Score)])

	section(text.Summary, lightRule)
	line(rep.CandidateSummary)

	section(text.Detailed, lightRule)
	line(rep.DetailedAnalysis)

	section(text.Strengths, lightRule)
	for _, s := range rep.Strengths {
		line("- " + s)
	}

	section(text.Improvements, lightRule)
	for _, s := range rep.Weaknesses {
		line("- " + s)
	}

	if len(rep.Citations) > 0 {
		section(text.Sources, lightRule)
		for _, c := range rep.Citations {
			line(fmt.Sprintf("- %s: %s", c.Title, c.URI))
		}
	}

	line("")
	line(heavyRule)
	line(strings.ToUpper(text.Transcript))
	line(heavyRule)
	for _, t := range turns {
		speaker := text.Candidate
		if t.Role == interview.RoleInterviewer {
			speaker = text.Interviewer
		}
		line("")
		line(fmt.Sprintf("[%s] (%s):", speaker, t.Time.Format("15:04:05")))
		line(t.Text)
	}

	return bw.Flush()
}

func recommendationLabel(text locale.Text, rec Recommendation) string {
	if label, ok := text.Recommendations[string(rec)]; ok {
		return label
	}
	return string(rec)
}
