// Package job holds the validated interview configuration an admin finalizes
// before a candidate session starts.
package job

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spigell/recruitai/internal/ai"
)

const (
	MinQuestions     = 3
	MaxQuestions     = 20
	DefaultQuestions = 5
)

// ResumeFile is an uploaded resume in transport form.
type ResumeFile struct {
	MIMEType string `mapstructure:"mime-type" json:"mimeType" validate:"required"`
	Data     string `mapstructure:"data" json:"data" validate:"required,base64"`
}

// Draft is the editable form of a configuration. Zero values mean "not set".
type Draft struct {
	CompanyName            string      `mapstructure:"company-name" json:"companyName" validate:"required"`
	CompanyLogoURL         string      `mapstructure:"company-logo-url" json:"companyLogoUrl,omitempty" validate:"omitempty,url"`
	CompanyCulture         string      `mapstructure:"company-culture" json:"companyCulture,omitempty"`
	JobTitle               string      `mapstructure:"job-title" json:"jobTitle" validate:"required"`
	JobDescription         string      `mapstructure:"job-description" json:"jobDescription,omitempty"`
	JobDescriptionLink     string      `mapstructure:"job-description-link" json:"jobDescriptionLink,omitempty" validate:"omitempty,url"`
	Salary                 string      `mapstructure:"salary" json:"salary,omitempty"`
	Schedule               string      `mapstructure:"schedule" json:"schedule,omitempty"`
	Experience             string      `mapstructure:"experience" json:"experience,omitempty"`
	JobSummary             string      `mapstructure:"job-summary" json:"jobSummary,omitempty"`
	InterviewerName        string      `mapstructure:"interviewer-name" json:"interviewerName,omitempty"`
	InterviewerProfile     string      `mapstructure:"interviewer-profile" json:"interviewerProfile,omitempty"`
	InterviewerProfileLink string      `mapstructure:"interviewer-profile-link" json:"interviewerProfileLink,omitempty" validate:"omitempty,url"`
	InterviewStyle         string      `mapstructure:"interview-style" json:"interviewStyle,omitempty" validate:"omitempty,interviewstyle"`
	QuestionCount          int         `mapstructure:"question-count" json:"questionCount,omitempty" validate:"omitempty,min=3,max=20"`
	OfficeLocation         string      `mapstructure:"office-location" json:"officeLocation,omitempty"`
	Language               string      `mapstructure:"language" json:"language,omitempty" validate:"omitempty,language"`
	CandidateName          string      `mapstructure:"candidate-name" json:"candidateName,omitempty"`
	CandidateResume        string      `mapstructure:"candidate-resume" json:"candidateResume,omitempty"`
	CandidateResumeLink    string      `mapstructure:"candidate-resume-link" json:"candidateResumeLink,omitempty" validate:"omitempty,url"`
	ResumeFile             *ResumeFile `mapstructure:"resume-file" json:"resumeFile,omitempty"`
	Tier                   string      `mapstructure:"tier" json:"tier,omitempty" validate:"omitempty,tier"`
}

// Configuration is a validated Draft. It is created once by New and only read afterwards.
type Configuration struct {
	CompanyName            string
	CompanyLogoURL         string
	CompanyCulture         string
	JobTitle               string
	JobDescription         string
	JobDescriptionLink     string
	Salary                 string
	Schedule               string
	Experience             string
	JobSummary             string
	InterviewerName        string
	InterviewerProfile     string
	InterviewerProfileLink string
	InterviewStyle         Style
	QuestionCount          int
	OfficeLocation         string
	Language               Language
	CandidateName          string
	CandidateResume        string
	CandidateResumeLink    string
	Resume                 *ai.Attachment
	Tier                   ai.Tier
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("language", func(fl validator.FieldLevel) bool {
		_, err := ParseLanguage(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("interviewstyle", func(fl validator.FieldLevel) bool {
		_, err := ParseStyle(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("tier", func(fl validator.FieldLevel) bool {
		_, err := ai.ParseTier(fl.Field().String())
		return err == nil
	})

	return v
}

// New validates the draft and returns the immutable configuration with every
// default applied.
func New(d Draft) (*Configuration, error) {
	d = d.normalized()

	if err := validate.Struct(d); err != nil {
		return nil, describe(err)
	}

	// validation above guarantees the parsers succeed
	language, _ := ParseLanguage(d.Language)
	style, _ := ParseStyle(d.InterviewStyle)
	tier, _ := ai.ParseTier(d.Tier)

	questions := d.QuestionCount
	if questions == 0 {
		questions = DefaultQuestions
	}

	cfg := &Configuration{
		CompanyName:            d.CompanyName,
		CompanyLogoURL:         d.CompanyLogoURL,
		CompanyCulture:         d.CompanyCulture,
		JobTitle:               d.JobTitle,
		JobDescription:         d.JobDescription,
		JobDescriptionLink:     d.JobDescriptionLink,
		Salary:                 d.Salary,
		Schedule:               d.Schedule,
		Experience:             d.Experience,
		JobSummary:             d.JobSummary,
		InterviewerName:        d.InterviewerName,
		InterviewerProfile:     d.InterviewerProfile,
		InterviewerProfileLink: d.InterviewerProfileLink,
		InterviewStyle:         style,
		QuestionCount:          questions,
		OfficeLocation:         d.OfficeLocation,
		Language:               language,
		CandidateName:          d.CandidateName,
		CandidateResume:        d.CandidateResume,
		CandidateResumeLink:    d.CandidateResumeLink,
		Tier:                   tier,
	}

	if d.ResumeFile != nil {
		data, err := base64.StdEncoding.DecodeString(d.ResumeFile.Data)
		if err != nil {
			return nil, fmt.Errorf("resume file: %w", err)
		}
		cfg.Resume = &ai.Attachment{MIMEType: d.ResumeFile.MIMEType, Data: data}
	}

	return cfg, nil
}

// Draft converts the configuration back into its editable form.
func (c *Configuration) Draft() Draft {
	d := Draft{
		CompanyName:            c.CompanyName,
		CompanyLogoURL:         c.CompanyLogoURL,
		CompanyCulture:         c.CompanyCulture,
		JobTitle:               c.JobTitle,
		JobDescription:         c.JobDescription,
		JobDescriptionLink:     c.JobDescriptionLink,
		Salary:                 c.Salary,
		Schedule:               c.Schedule,
		Experience:             c.Experience,
		JobSummary:             c.JobSummary,
		InterviewerName:        c.InterviewerName,
		InterviewerProfile:     c.InterviewerProfile,
		InterviewerProfileLink: c.InterviewerProfileLink,
		InterviewStyle:         string(c.InterviewStyle),
		QuestionCount:          c.QuestionCount,
		OfficeLocation:         c.OfficeLocation,
		Language:               string(c.Language),
		CandidateName:          c.CandidateName,
		CandidateResume:        c.CandidateResume,
		CandidateResumeLink:    c.CandidateResumeLink,
		Tier:                   string(c.Tier),
	}

	if c.Resume != nil {
		d.ResumeFile = &ResumeFile{
			MIMEType: c.Resume.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(c.Resume.Data),
		}
	}

	return d
}

// WithSummary returns a copy of the configuration with the job summary replaced.
func (c *Configuration) WithSummary(summary string) *Configuration {
	clone := *c
	clone.JobSummary = strings.TrimSpace(summary)
	return &clone
}

func (d Draft) normalized() Draft {
	fields := []*string{
		&d.CompanyName, &d.CompanyLogoURL, &d.CompanyCulture, &d.JobTitle,
		&d.JobDescription, &d.JobDescriptionLink, &d.Salary, &d.Schedule,
		&d.Experience, &d.JobSummary, &d.InterviewerName, &d.InterviewerProfile,
		&d.InterviewerProfileLink, &d.InterviewStyle, &d.OfficeLocation, &d.Language,
		&d.CandidateName, &d.CandidateResume, &d.CandidateResumeLink, &d.Tier,
	}
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}

	if d.ResumeFile != nil {
		file := *d.ResumeFile
		file.MIMEType = strings.TrimSpace(file.MIMEType)
		file.Data = strings.TrimSpace(file.Data)
		d.ResumeFile = &file
	}

	return d
}

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid job configuration: %w", err)
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			problems = append(problems, fmt.Sprintf("%s is required", fe.Field()))
		case "min", "max":
			problems = append(problems, fmt.Sprintf("%s must be between %d and %d", fe.Field(), MinQuestions, MaxQuestions))
		default:
			problems = append(problems, fmt.Sprintf("%s is not a valid %s", fe.Field(), fe.Tag()))
		}
	}

	return fmt.Errorf("invalid job configuration: %s", strings.Join(problems, "; "))
}
