// Package jobdesc supplies job descriptions by fetching from a job-listing
// service or synthesizing them with a text-generation model. Acquisition is
// inherently unreliable, so both modes degrade to a usable description
// instead of failing: scoring must be able to proceed for every target.
package jobdesc

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// FallbackDescription is returned when the job-listing service is
// unavailable or returns nothing.
const FallbackDescription = "We are hiring a full stack developer with strong experience in React, FastAPI, and deployment."

const synthesizeSystemPrompt = "You are a helpful assistant."

// Fetcher queries an external job-listing service.
type Fetcher interface {
	Search(ctx context.Context, query, location string) (string, error)
}

// Generator produces text from a prompt.
type Generator interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Service resolves job descriptions in fetch or synthesize mode.
type Service struct {
	fetcher   Fetcher
	generator Generator
	logger    *zap.Logger
}

// New creates a job description source. fetcher may be nil when the
// job-listing credentials are not configured; fetch mode then always
// returns the fallback description.
func New(fetcher Fetcher, generator Generator, logger *zap.Logger) *Service {
	return &Service{fetcher: fetcher, generator: generator, logger: logger}
}

// Fetch returns the first listing description for the search term, or the
// static fallback on any failure. It never returns an error: description
// unavailability must not block resume scoring.
func (s *Service) Fetch(ctx context.Context, query, location string) string {
	if s.fetcher == nil {
		return FallbackDescription
	}

	desc, err := s.fetcher.Search(ctx, query, location)
	if err != nil {
		s.logger.Warn("Job listing fetch failed, using fallback description",
			zap.String("query", query),
			zap.String("location", location),
			zap.Error(err),
		)
		return FallbackDescription
	}
	return desc
}

// Synthesize generates a plausible job description for a role at a company.
// On generation failure it returns a deterministic placeholder naming the
// company and role so downstream records stay traceable.
func (s *Service) Synthesize(ctx context.Context, company, role string) string {
	prompt := fmt.Sprintf(
		"Generate a detailed job description for a %s position at %s. "+
			"Include required skills, responsibilities, and qualifications.",
		role, company,
	)

	desc, err := s.generator.Complete(ctx, synthesizeSystemPrompt, prompt)
	if err != nil {
		s.logger.Warn("Job description generation failed, using placeholder",
			zap.String("company", company),
			zap.String("role", role),
			zap.Error(err),
		)
		return Placeholder(company, role)
	}
	return desc
}

// Placeholder is the deterministic stand-in description for a failed
// generation.
func Placeholder(company, role string) string {
	return fmt.Sprintf("Job description generation failed for %s at %s.", role, company)
}
