// Package analysis produces a qualitative resume-to-job fit review: how well
// the candidate fits, which skills are missing, and what to improve.
package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/jobgenie/jobgenie/internal/domain"
)

const promptTemplate = `You are a career advisor. Given the candidate's resume and a job description, provide:
1. Summary of how well the candidate fits the job.
2. Skills missing from the resume compared to the job description.
3. Suggestions to improve the resume or chances.

Resume:
%s

Job Description:
%s`

// Generator produces text from a prompt.
type Generator interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Service generates resume fit analyses.
type Service struct {
	generator Generator
}

// New creates an analysis service.
func New(generator Generator) *Service {
	return &Service{generator: generator}
}

// Analyze reviews the resume against the job description. Unlike description
// synthesis there is no useful fallback text, so generation failures are
// returned to the caller.
func (s *Service) Analyze(ctx context.Context, resumeText, jobDescription string) (string, error) {
	resumeText = strings.TrimSpace(resumeText)
	jobDescription = strings.TrimSpace(jobDescription)
	if resumeText == "" || jobDescription == "" {
		return "", fmt.Errorf("resume and job description must be non-empty: %w", domain.ErrInvalidInput)
	}

	prompt := fmt.Sprintf(promptTemplate, resumeText, jobDescription)
	result, err := s.generator.Complete(ctx, "", prompt)
	if err != nil {
		return "", fmt.Errorf("analyze resume: %w", err)
	}
	return result, nil
}
