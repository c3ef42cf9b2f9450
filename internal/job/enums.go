package job

import (
	"fmt"
	"strings"
)

// Language is the language the whole interview is conducted in.
type Language string

const (
	English    Language = "English"
	Spanish    Language = "Spanish"
	Portuguese Language = "Portuguese"
)

// Languages returns the supported languages in display order.
func Languages() []Language {
	return []Language{English, Spanish, Portuguese}
}

// ParseLanguage accepts the English name or the ISO 639-1 code, in any case.
// Empty input selects English.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "english", "en":
		return English, nil
	case "spanish", "es", "español", "espanol":
		return Spanish, nil
	case "portuguese", "pt", "português", "portugues":
		return Portuguese, nil
	default:
		return "", fmt.Errorf("unsupported language %q", s)
	}
}

// Style is the behavioral style of the interviewer.
type Style string

const (
	StylePsychological Style = "Psychological / Behavioral"
	StyleTechnical     Style = "Technical / Skills-based"
	StyleExecutive     Style = "Executive / Leadership"
	StyleCultural      Style = "Cultural Fit"
	StyleGeneral       Style = "General Screening"
)

func Styles() []Style {
	return []Style{StylePsychological, StyleTechnical, StyleExecutive, StyleCultural, StyleGeneral}
}

var styleAliases = map[string]Style{
	"psychological": StylePsychological,
	"behavioral":    StylePsychological,
	"technical":     StyleTechnical,
	"executive":     StyleExecutive,
	"leadership":    StyleExecutive,
	"cultural":      StyleCultural,
	"culture":       StyleCultural,
	"general":       StyleGeneral,
	"screening":     StyleGeneral,
}

// ParseStyle accepts a full label or a one-word alias. Empty input selects General Screening.
func ParseStyle(s string) (Style, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return StyleGeneral, nil
	}

	for _, style := range Styles() {
		if strings.EqualFold(trimmed, string(style)) {
			return style, nil
		}
	}

	if style, ok := styleAliases[strings.ToLower(trimmed)]; ok {
		return style, nil
	}

	return "", fmt.Errorf("unsupported interview style %q", s)
}
