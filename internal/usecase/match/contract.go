package match

import (
	"context"

	"github.com/jobgenie/jobgenie/internal/domain"
)

// Upload is a resume file received from the transport layer.
type Upload struct {
	FileName string
	Data     []byte
}

// ExtractFunc converts an uploaded file into plain text.
type ExtractFunc func(filename string, data []byte) (string, error)

// DescriptionSource resolves job descriptions. Both modes degrade to a
// usable description instead of failing.
type DescriptionSource interface {
	Fetch(ctx context.Context, query, location string) string
	Synthesize(ctx context.Context, company, role string) string
}

// HistoryStore persists match and score records.
type HistoryStore interface {
	AppendBatch(ctx context.Context, rec *domain.BatchRecord) error
	AppendScore(ctx context.Context, rec *domain.ScoreRecord) error
}

// SingleMatch is the outcome of scoring one resume against one fetched
// job description.
type SingleMatch struct {
	ResumeText     string
	JobDescription string
	Score          float64
}

// BatchOutcome carries a completed batch and, separately, any persistence
// failure. Results are never discarded because the store was down; the
// caller decides how to surface PersistErr.
type BatchOutcome struct {
	Record     domain.BatchRecord
	PersistErr error
}
