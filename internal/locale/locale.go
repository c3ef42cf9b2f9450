// Package locale holds the user-facing strings of the candidate and admin
// surfaces for every supported interview language.
package locale

import "github.com/spigell/recruitai/internal/job"

// Text is the string table of one language.
type Text struct {
	Placeholder     string
	Sending         string
	QuotaTitle      string
	QuotaDesc       string
	QuotaAction     string
	InitError       string
	Reload          string
	Completed       string
	AccessDenied    string
	AdminPrompt     string
	ReportTitle     string
	Summary         string
	Detailed        string
	Strengths       string
	Improvements    string
	Sources         string
	Transcript      string
	Interviewer     string
	Candidate       string
	Level           string
	QuotaReport     string
	ReportFailed    string
	AnalysisMissing string
	Levels          [5]string
	Recommendations map[string]string
}

var tables = map[job.Language]Text{
	job.English: {
		Placeholder:     "Type your answer here...",
		Sending:         "Interviewer is typing...",
		QuotaTitle:      "Daily Limit Reached",
		QuotaDesc:       "To prevent costs, this application has hit its daily safety limit for AI processing.",
		QuotaAction:     "Please contact the administrator or try again tomorrow.",
		InitError:       "The interview could not be started.",
		Reload:          "Please reload and try again.",
		Completed:       "Thank you! The interview is complete.",
		AccessDenied:    "Access denied.",
		AdminPrompt:     "Admin secret",
		ReportTitle:     "Candidate Evaluation Report",
		Summary:         "Executive Summary",
		Detailed:        "Detailed Analysis",
		Strengths:       "Key Strengths",
		Improvements:    "Areas for Improvement",
		Sources:         "Fact Check & Sources",
		Transcript:      "Interview Transcript",
		Interviewer:     "Interviewer",
		Candidate:       "Candidate",
		Level:           "Level",
		QuotaReport:     "Quota Exceeded: Cannot generate report.",
		ReportFailed:    "Failed to generate report due to an error.",
		AnalysisMissing: "Analysis unavailable.",
		Levels:          [5]string{"Novice", "Beginner", "Competent", "Proficient", "Expert"},
		Recommendations: map[string]string{
			"Strong Hire":     "Strong Hire",
			"Hire":            "Hire",
			"Leaning Hire":    "Leaning Hire",
			"Leaning No Hire": "Leaning No Hire",
			"No Hire":         "No Hire",
			"Error":           "Error",
		},
	},
	job.Spanish: {
		Placeholder:     "Escribe tu respuesta aquí...",
		Sending:         "El entrevistador está escribiendo...",
		QuotaTitle:      "Límite Diario Alcanzado",
		QuotaDesc:       "Para prevenir costos, esta aplicación ha alcanzado su límite de seguridad diario de procesamiento de IA.",
		QuotaAction:     "Por favor contacte al administrador o intente de nuevo mañana.",
		InitError:       "No se pudo iniciar la entrevista.",
		Reload:          "Por favor recargue e intente de nuevo.",
		Completed:       "¡Gracias! La entrevista ha terminado.",
		AccessDenied:    "Acceso denegado.",
		AdminPrompt:     "Clave de administrador",
		ReportTitle:     "Informe de Evaluación del Candidato",
		Summary:         "Resumen Ejecutivo",
		Detailed:        "Análisis Detallado",
		Strengths:       "Fortalezas Clave",
		Improvements:    "Áreas de Mejora",
		Sources:         "Verificación de Hechos y Fuentes",
		Transcript:      "Transcripción de Entrevista",
		Interviewer:     "Entrevistador",
		Candidate:       "Candidato",
		Level:           "Nivel",
		QuotaReport:     "Cuota Excedida: No se puede generar el informe.",
		ReportFailed:    "No se pudo generar el informe debido a un error.",
		AnalysisMissing: "Análisis no disponible.",
		Levels:          [5]string{"Novato", "Principiante", "Competente", "Avanzado", "Experto"},
		Recommendations: map[string]string{
			"Strong Hire":     "Contratar sin duda",
			"Hire":            "Contratar",
			"Leaning Hire":    "Inclinado a contratar",
			"Leaning No Hire": "Inclinado a no contratar",
			"No Hire":         "No contratar",
			"Error":           "Error",
		},
	},
	job.Portuguese: {
		Placeholder:     "Digite sua resposta aqui...",
		Sending:         "O entrevistador está digitando...",
		QuotaTitle:      "Limite Diário Atingido",
		QuotaDesc:       "Para evitar custos, este aplicativo atingiu seu limite de segurança diário para processamento de IA.",
		QuotaAction:     "Entre em contato com o administrador ou tente novamente amanhã.",
		InitError:       "Não foi possível iniciar a entrevista.",
		Reload:          "Recarregue e tente novamente.",
		Completed:       "Obrigado! A entrevista foi concluída.",
		AccessDenied:    "Acesso negado.",
		AdminPrompt:     "Senha de administrador",
		ReportTitle:     "Relatório de Avaliação do Candidato",
		Summary:         "Resumo Executivo",
		Detailed:        "Análise Detalhada",
		Strengths:       "Pontos Fortes",
		Improvements:    "Áreas de Melhoria",
		Sources:         "Verificação de Fatos e Fontes",
		Transcript:      "Transcrição da Entrevista",
		Interviewer:     "Entrevistador",
		Candidate:       "Candidato",
		Level:           "Nível",
		QuotaReport:     "Cota Excedida: Não é possível gerar relatório.",
		ReportFailed:    "Falha ao gerar o relatório devido a um erro.",
		AnalysisMissing: "Análise indisponível.",
		Levels:          [5]string{"Iniciante", "Básico", "Competente", "Proficiente", "Especialista"},
		Recommendations: map[string]string{
			"Strong Hire":     "Contratar com certeza",
			"Hire":            "Contratar",
			"Leaning Hire":    "Inclinado a contratar",
			"Leaning No Hire": "Inclinado a não contratar",
			"No Hire":         "Não contratar",
			"Error":           "Erro",
		},
	},
}

// For returns the table of lang, falling back to English.
func For(lang job.Language) Text {
	if t, ok := tables[lang]; ok {
		return t
	}
	return tables[job.English]
}
