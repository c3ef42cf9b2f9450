package report

import (
	"fmt"
	"strings"

	"github.com/spigell/recruitai/internal/job"
	"github.com/spigell/recruitai/internal/locale"
)

// Recommendation is the canonical hiring verdict. Display labels live in
// internal/locale and are keyed by these values.
type Recommendation string

const (
	StrongHire    Recommendation = "Strong Hire"
	Hire          Recommendation = "Hire"
	LeaningHire   Recommendation = "Leaning Hire"
	LeaningNoHire Recommendation = "Leaning No Hire"
	NoHire        Recommendation = "No Hire"
	// Error marks a report that could not be produced.
	Error Recommendation = "Error"
)

// Recommendations lists the verdicts the model may choose from, strongest first.
func Recommendations() []Recommendation {
	return []Recommendation{StrongHire, Hire, LeaningHire, LeaningNoHire, NoHire}
}

func labels() []string {
	recs := Recommendations()
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = string(r)
	}
	return out
}

// ParseRecommendation matches a model verdict ignoring case and whitespace.
// Besides the canonical values it accepts the localized labels, trying the
// given languages first and then every supported one.
func ParseRecommendation(raw string, langs ...job.Language) (Recommendation, error) {
	value := strings.Join(strings.Fields(raw), " ")
	if value == "" {
		return "", fmt.Errorf("empty hiring recommendation")
	}

	for _, r := range Recommendations() {
		if strings.EqualFold(value, string(r)) {
			return r, nil
		}
	}

	for _, lang := range append(langs, job.Languages()...) {
		labels := locale.For(lang).Recommendations
		for _, r := range Recommendations() {
			if strings.EqualFold(value, strings.TrimSpace(labels[string(r)])) {
				return r, nil
			}
		}
	}

	return "", fmt.Errorf("unknown hiring recommendation %q", raw)
}
