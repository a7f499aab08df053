// Package catalog ranks a resume embedding against a fixed set of job
// postings whose embeddings are precomputed at startup.
package catalog

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/jobgenie/jobgenie/internal/domain"
)

// Service holds the posting catalog and its embeddings. The embedding table
// is written once by Warmup before the server starts listening and is
// read-only afterwards, so TopK needs no locking.
type Service struct {
	embedder domain.Embedder
	postings []domain.JobPosting
	vectors  [][]float32
	logger   *zap.Logger
}

// DefaultPostings is the built-in catalog used when none is configured.
func DefaultPostings() []domain.JobPosting {
	return []domain.JobPosting{
		{
			ID:          "job1",
			Title:       "Machine Learning Engineer",
			Description: "Work on NLP and embeddings. Build and ship machine learning models for semantic search and text understanding.",
			Location:    "Remote",
		},
		{
			ID:          "job2",
			Title:       "Frontend Developer",
			Description: "React and TypeScript experience required. Build responsive single-page applications and design systems.",
			Location:    "San Francisco",
		},
		{
			ID:          "job3",
			Title:       "Backend Engineer",
			Description: "Design and operate Go services, REST APIs, and Redis-backed storage at scale.",
			Location:    "New York",
		},
	}
}

// New creates a catalog service over the given postings. Call Warmup before
// serving TopK requests.
func New(embedder domain.Embedder, postings []domain.JobPosting, logger *zap.Logger) *Service {
	if len(postings) == 0 {
		postings = DefaultPostings()
	}
	return &Service{
		embedder: embedder,
		postings: postings,
		logger:   logger,
	}
}

// Warmup precomputes the embedding of every posting description. It must
// succeed before the service handles requests: a partial catalog would
// silently misrank, so any failure is returned for the caller to treat as
// fatal.
func (s *Service) Warmup(ctx context.Context) error {
	vectors := make([][]float32, len(s.postings))
	for i, posting := range s.postings {
		result, err := s.embedder.Embed(ctx, posting.Description)
		if err != nil {
			return fmt.Errorf("warm up catalog posting %s: %w", posting.ID, err)
		}
		vectors[i] = result.Embedding
	}
	s.vectors = vectors

	s.logger.Info("Job catalog warmed up", zap.Int("postings", len(s.postings)))
	return nil
}

// TopK returns the k postings most similar to the resume embedding, scored
// with raw cosine similarity and sorted descending. Ties keep catalog
// insertion order. k larger than the catalog returns the whole catalog.
// The resume embedding must match the catalog's dimensionality and must not
// be the zero vector; cosine against either would fabricate zero scores for
// every posting instead of ranking.
func (s *Service) TopK(resumeEmbedding []float32, k int) ([]domain.ScoredJob, error) {
	if len(resumeEmbedding) == 0 {
		return nil, fmt.Errorf("empty resume embedding: %w", domain.ErrInvalidInput)
	}
	if k < 1 {
		return nil, fmt.Errorf("top_k must be positive: %w", domain.ErrInvalidInput)
	}
	if len(s.vectors) != len(s.postings) {
		return nil, fmt.Errorf("catalog not warmed up: %w", domain.ErrScoringUnavailable)
	}
	if want := len(s.vectors[0]); len(resumeEmbedding) != want {
		return nil, fmt.Errorf("resume embedding has %d dimensions, catalog expects %d: %w",
			len(resumeEmbedding), want, domain.ErrInvalidInput)
	}
	if isZeroVector(resumeEmbedding) {
		return nil, fmt.Errorf("resume embedding is a zero vector: %w", domain.ErrInvalidInput)
	}

	scored := make([]domain.ScoredJob, len(s.postings))
	for i, posting := range s.postings {
		scored[i] = domain.ScoredJob{
			Job:   posting,
			Score: domain.Cosine(resumeEmbedding, s.vectors[i]),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// Size reports the number of postings in the catalog.
func (s *Service) Size() int {
	return len(s.postings)
}

func isZeroVector(v []float32) bool {
	for _, f := range v {
		if f != 0 {
			return false
		}
	}
	return true
}
