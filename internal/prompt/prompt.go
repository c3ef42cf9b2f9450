// Package prompt renders every text sent to the model. All functions are pure.
package prompt

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/spigell/recruitai/internal/job"
)

// Sentinel is the literal token the interviewer emits to end the session.
const Sentinel = "INTERVIEW_COMPLETE"

const (
	ResumeInstruction      = "Here is the candidate's CV/Resume. Please review it to tailor the interview questions."
	ResumeAcknowledgement  = "I have reviewed the CV. I am ready to interview the candidate based on their specific experience and the job requirements."
	resumeFileNote         = "The candidate's CV has been provided as a file in the chat history. Use it to ask specific questions about their experience."
	noResumeFile           = "No resume file attached."
	noLink                 = "none provided"
	defaultInterviewer     = "a professional interviewer"
	defaultCulture         = "Standard professional business environment."
	defaultPersona         = "Professional, polite, and observant."
	defaultCandidate       = "the candidate"
	defaultSalary          = "Not specified publicly (say it depends on experience)"
	defaultSchedule        = "Standard business hours"
	defaultExperience      = "Not specified"
	defaultDescription     = "No job description provided."
	defaultResume          = "No resume text provided."
	defaultLocation        = "No office location context available."
	defaultAdditional      = "none"
	defaultReportCandidate = "Candidate"
)

var (
	//go:embed directive.md
	directiveTemplate string
	//go:embed report.md
	reportTemplate string
	//go:embed summary.md
	summaryTemplate string
)

var bootstrap = map[job.Language]string{
	job.English:    "Hello. Start the interview in English.",
	job.Spanish:    "Hola. Inicia la entrevista en Español.",
	job.Portuguese: "Olá. Inicie a entrevista em Português.",
}

// Compose renders the standing directive of an interview session. Every
// optional field is replaced by visible fallback text when empty.
func Compose(cfg *job.Configuration, location string) string {
	resumeFile := noResumeFile
	if cfg.Resume != nil {
		resumeFile = resumeFileNote
	}

	r := strings.NewReplacer(
		"{{INTERVIEWER}}", fallback(cfg.InterviewerName, defaultInterviewer),
		"{{COMPANY}}", cfg.CompanyName,
		"{{CULTURE}}", fallback(cfg.CompanyCulture, defaultCulture),
		"{{PERSONA}}", fallback(cfg.InterviewerProfile, defaultPersona),
		"{{PERSONA_LINK}}", fallback(cfg.InterviewerProfileLink, noLink),
		"{{CANDIDATE}}", fallback(cfg.CandidateName, defaultCandidate),
		"{{POSITION}}", cfg.JobTitle,
		"{{SALARY}}", fallback(cfg.Salary, defaultSalary),
		"{{SCHEDULE}}", fallback(cfg.Schedule, defaultSchedule),
		"{{EXPERIENCE}}", fallback(cfg.Experience, defaultExperience),
		"{{DESCRIPTION}}", fallback(cfg.JobDescription, defaultDescription),
		"{{DESCRIPTION_LINK}}", fallback(cfg.JobDescriptionLink, noLink),
		"{{RESUME}}", fallback(cfg.CandidateResume, defaultResume),
		"{{RESUME_LINK}}", fallback(cfg.CandidateResumeLink, noLink),
		"{{RESUME_FILE}}", resumeFile,
		"{{STYLE}}", string(cfg.InterviewStyle),
		"{{QUESTION_COUNT}}", strconv.Itoa(cfg.QuestionCount),
		"{{LANGUAGE}}", string(cfg.Language),
		"{{LOCATION}}", fallback(location, defaultLocation),
		"{{SENTINEL}}", Sentinel,
	)

	return strings.TrimSpace(r.Replace(directiveTemplate))
}

// Bootstrap is the first message sent on behalf of the candidate to make the
// interviewer open the conversation.
func Bootstrap(lang job.Language) string {
	if line, ok := bootstrap[lang]; ok {
		return line
	}
	return fmt.Sprintf("Hello. Start the interview in %s.", lang)
}

// Location asks for a description of the area around an office.
func Location(query string) string {
	return fmt.Sprintf("Describe the location and immediate surroundings of: %s. What is this area known for?", strings.TrimSpace(query))
}

// Report renders the evaluation request for an already serialized transcript.
func Report(cfg *job.Configuration, transcript string, recommendations []string) string {
	quoted := make([]string, 0, len(recommendations))
	for _, rec := range recommendations {
		quoted = append(quoted, strconv.Quote(rec))
	}

	r := strings.NewReplacer(
		"{{POSITION}}", cfg.JobTitle,
		"{{COMPANY}}", cfg.CompanyName,
		"{{CANDIDATE}}", fallback(cfg.CandidateName, defaultReportCandidate),
		"{{STYLE}}", string(cfg.InterviewStyle),
		"{{TRANSCRIPT}}", transcript,
		"{{RECOMMENDATIONS}}", strings.Join(quoted, ", "),
		"{{LANGUAGE}}", string(cfg.Language),
	)

	return strings.TrimSpace(r.Replace(reportTemplate))
}

// Summary renders the candidate card summary request.
func Summary(description, additional string, lang job.Language) string {
	r := strings.NewReplacer(
		"{{LANGUAGE}}", string(lang),
		"{{DESCRIPTION}}", strings.TrimSpace(description),
		"{{ADDITIONAL}}", fallback(additional, defaultAdditional),
	)
	return strings.TrimSpace(r.Replace(summaryTemplate))
}

func fallback(value, def string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return def
}
