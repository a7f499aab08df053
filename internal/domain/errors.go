package domain

import "errors"

var (
	// ErrInvalidInput signals empty or blank text where content is required.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmptyResume signals that resume text extraction produced no content.
	ErrEmptyResume = errors.New("empty resume")
	// ErrUnsupportedFile signals an upload of an unknown file type.
	ErrUnsupportedFile = errors.New("unsupported file type")
	// ErrEmbeddingUnavailable signals an embedding provider failure.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")
	// ErrScoringUnavailable signals that a comparison could not be scored
	// because a required embedding could not be obtained.
	ErrScoringUnavailable = errors.New("scoring unavailable")
	// ErrPersistence signals a storage write failure after scoring succeeded.
	ErrPersistence = errors.New("persistence failure")
)
