// Package embedding wraps the embedding provider with resilience and
// observability concerns.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jobgenie/jobgenie/internal/domain"
	"github.com/jobgenie/jobgenie/internal/metrics"
)

// ResilientEmbedder wraps Embedder with a per-attempt timeout and
// retry-with-backoff. Embedding providers are the dominant latency and
// failure source, so every call is bounded and provider failures are retried
// before surfacing. Caller-fault errors (blank input) are never retried.
type ResilientEmbedder struct {
	inner    domain.Embedder
	provider string
	model    string
	attempts int
	backoff  time.Duration
	timeout  time.Duration
	logger   *zap.Logger
}

// NewResilientEmbedder wraps an embedder with timeout and retry policy.
// attempts < 1 is treated as 1; backoff doubles after each failed attempt.
func NewResilientEmbedder(
	inner domain.Embedder, provider, model string,
	attempts int, backoff, timeout time.Duration,
	logger *zap.Logger,
) *ResilientEmbedder {
	if attempts < 1 {
		attempts = 1
	}
	return &ResilientEmbedder{
		inner:    inner,
		provider: provider,
		model:    model,
		attempts: attempts,
		backoff:  backoff,
		timeout:  timeout,
		logger:   logger,
	}
}

// Embed delegates to the inner embedder, retrying provider failures.
func (p *ResilientEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	var lastErr error
	ran := 0

	delay := p.backoff
	for attempt := 1; attempt <= p.attempts; attempt++ {
		if attempt > 1 {
			metrics.EmbeddingRetriesTotal.WithLabelValues(p.provider, p.model).Inc()
			select {
			case <-ctx.Done():
				return domain.EmbeddingResult{}, fmt.Errorf("embed canceled: %w", ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}

		ran = attempt
		result, err := p.embedOnce(ctx, text)
		if err == nil {
			return result, nil
		}
		lastErr = err

		// Blank input is the caller's fault; retrying cannot help.
		if errors.Is(err, domain.ErrInvalidInput) {
			return domain.EmbeddingResult{}, err
		}
		if ctx.Err() != nil {
			break
		}

		p.logger.Warn("Embedding attempt failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.attempts),
			zap.Error(err),
		)
	}

	return domain.EmbeddingResult{}, fmt.Errorf("embed after %d attempts: %w", ran, lastErr)
}

func (p *ResilientEmbedder) embedOnce(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := p.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}

	p.logger.Debug("Embedding request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}
