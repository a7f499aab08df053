// Package match implements resume-to-job scoring: text extraction, job
// description acquisition, embedding, and cosine comparison.
package match

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jobgenie/jobgenie/internal/domain"
)

// Service scores resumes against job descriptions and records the results.
type Service struct {
	embedder domain.Embedder
	descs    DescriptionSource
	history  HistoryStore
	extract  ExtractFunc

	defaultQuery    string
	defaultLocation string

	logger *zap.Logger
	now    func() time.Time
}

// New creates a matching service. defaultQuery and defaultLocation drive the
// fetch-mode job search when a request does not specify its own.
func New(
	embedder domain.Embedder,
	descs DescriptionSource,
	history HistoryStore,
	extract ExtractFunc,
	defaultQuery, defaultLocation string,
	logger *zap.Logger,
) *Service {
	return &Service{
		embedder:        embedder,
		descs:           descs,
		history:         history,
		extract:         extract,
		defaultQuery:    defaultQuery,
		defaultLocation: defaultLocation,
		logger:          logger,
		now:             time.Now,
	}
}

// MatchOne extracts the resume text, fetches one job description for the
// default search, and scores the pair. Both embeddings are required: an
// embedding failure surfaces as ErrScoringUnavailable. The result is
// recorded best-effort; a storage failure is logged, never returned.
func (s *Service) MatchOne(ctx context.Context, upload Upload) (SingleMatch, error) {
	text, err := s.extractResume(upload)
	if err != nil {
		return SingleMatch{}, err
	}

	desc := s.descs.Fetch(ctx, s.defaultQuery, s.defaultLocation)

	resumeVec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return SingleMatch{}, fmt.Errorf("%w: embed resume: %w", domain.ErrScoringUnavailable, err)
	}
	jobVec, err := s.embedder.Embed(ctx, desc)
	if err != nil {
		return SingleMatch{}, fmt.Errorf("%w: embed job description: %w", domain.ErrScoringUnavailable, err)
	}

	score := domain.Cosine(resumeVec.Embedding, jobVec.Embedding)
	now := s.now().UTC()

	rec := domain.BatchRecord{
		FileName:   upload.FileName,
		ResumeText: text,
		Matches: []domain.MatchResult{{
			JobDescription: desc,
			Score:          score,
			Scored:         true,
			Timestamp:      now,
		}},
		UploadedAt: now,
	}
	if err := s.history.AppendBatch(ctx, &rec); err != nil {
		s.logger.Warn("Failed to persist match record", zap.Error(err))
	}

	return SingleMatch{ResumeText: text, JobDescription: desc, Score: score}, nil
}

// MatchMany scores one resume against every target, preserving target order.
// The resume is extracted and embedded once; a failure there aborts the
// whole batch. Per-target failures do not: a target whose synthesized
// description cannot be embedded yields an unscored sentinel result and the
// remaining targets still run. Persistence is best-effort and reported
// independently via BatchOutcome.PersistErr.
func (s *Service) MatchMany(ctx context.Context, upload Upload, targets []domain.Target) (BatchOutcome, error) {
	if len(targets) == 0 {
		return BatchOutcome{}, fmt.Errorf("no targets: %w", domain.ErrInvalidInput)
	}

	text, err := s.extractResume(upload)
	if err != nil {
		return BatchOutcome{}, err
	}

	resumeVec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return BatchOutcome{}, fmt.Errorf("%w: embed resume: %w", domain.ErrScoringUnavailable, err)
	}

	matches := make([]domain.MatchResult, 0, len(targets))
	for _, target := range targets {
		matches = append(matches, s.matchTarget(ctx, resumeVec.Embedding, target))
	}

	rec := domain.BatchRecord{
		FileName:   upload.FileName,
		ResumeText: text,
		Matches:    matches,
		UploadedAt: s.now().UTC(),
	}

	outcome := BatchOutcome{}
	if err := s.history.AppendBatch(ctx, &rec); err != nil {
		s.logger.Warn("Failed to persist batch record", zap.Error(err))
		outcome.PersistErr = fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	outcome.Record = rec
	return outcome, nil
}

func (s *Service) matchTarget(ctx context.Context, resumeVec []float32, target domain.Target) domain.MatchResult {
	result := domain.MatchResult{
		Company:   target.Company,
		Role:      target.Role,
		Timestamp: s.now().UTC(),
	}

	result.JobDescription = s.descs.Synthesize(ctx, target.Company, target.Role)

	jobVec, err := s.embedder.Embed(ctx, result.JobDescription)
	if err != nil {
		s.logger.Warn("Failed to embed job description, recording unscored match",
			zap.String("company", target.Company),
			zap.String("role", target.Role),
			zap.Error(err),
		)
		return result
	}

	result.Score = domain.Cosine(resumeVec, jobVec.Embedding)
	result.Scored = true
	return result
}

// ScorePair embeds two raw texts and returns their similarity record. Blank
// input is rejected with ErrInvalidInput; embedding failures surface as
// ErrScoringUnavailable. The record is persisted best-effort.
func (s *Service) ScorePair(ctx context.Context, resumeText, jobText string) (domain.ScoreRecord, error) {
	resumeText = strings.TrimSpace(resumeText)
	jobText = strings.TrimSpace(jobText)
	if resumeText == "" || jobText == "" {
		return domain.ScoreRecord{}, fmt.Errorf("resume and job description must be non-empty: %w", domain.ErrInvalidInput)
	}

	resumeVec, err := s.embedder.Embed(ctx, resumeText)
	if err != nil {
		return domain.ScoreRecord{}, fmt.Errorf("%w: embed resume: %w", domain.ErrScoringUnavailable, err)
	}
	jobVec, err := s.embedder.Embed(ctx, jobText)
	if err != nil {
		return domain.ScoreRecord{}, fmt.Errorf("%w: embed job description: %w", domain.ErrScoringUnavailable, err)
	}

	rec := domain.ScoreRecord{
		ResumeText:     resumeText,
		JobDescription: jobText,
		Score:          domain.Cosine(resumeVec.Embedding, jobVec.Embedding),
		CreatedAt:      s.now().UTC(),
	}
	if err := s.history.AppendScore(ctx, &rec); err != nil {
		s.logger.Warn("Failed to persist score record", zap.Error(err))
	}
	return rec, nil
}

func (s *Service) extractResume(upload Upload) (string, error) {
	text, err := s.extract(upload.FileName, upload.Data)
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("resume %q has no extractable text: %w", upload.FileName, domain.ErrEmptyResume)
	}
	return text, nil
}
