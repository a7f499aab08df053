package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
// Implementations must reject blank text with ErrInvalidInput before any
// external call and must never return a partial or zero vector on failure.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the
// decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}
