// Package history persists match records append-only and lists them in
// reverse-chronological order.
package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jobgenie/jobgenie/internal/domain"
)

const (
	batchListKey = "jobgenie:history:batches"
	scoreListKey = "jobgenie:history:scores"
)

// store is the consumer interface for history persistence.
type store interface {
	LPush(ctx context.Context, key string, value []byte) error
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)
	LLen(ctx context.Context, key string) (int64, error)
}

// Repo stores batch match records and pairwise score records.
type Repo struct {
	store store
}

// New creates a history repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// AppendBatch stores one batch match record. A storage identifier is assigned
// if the record has none. Records are never updated after this call.
func (r *Repo) AppendBatch(ctx context.Context, rec *domain.BatchRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	data, err := json.Marshal(batchToDTO(rec))
	if err != nil {
		return fmt.Errorf("marshal batch record: %w", err)
	}

	if err := r.store.LPush(ctx, batchListKey, data); err != nil {
		return fmt.Errorf("append batch record: %w", err)
	}
	return nil
}

// ListBatches returns all batch match records, most recent first.
func (r *Repo) ListBatches(ctx context.Context) ([]domain.BatchRecord, error) {
	items, err := r.store.LRange(ctx, batchListKey, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("list batch records: %w", err)
	}

	records := make([]domain.BatchRecord, 0, len(items))
	for _, item := range items {
		var dto batchDTO
		if err := json.Unmarshal(item, &dto); err != nil {
			return nil, fmt.Errorf("unmarshal batch record: %w", err)
		}
		records = append(records, batchFromDTO(dto))
	}
	return records, nil
}

// CountBatches reports the number of stored batch match records without
// fetching them.
func (r *Repo) CountBatches(ctx context.Context) (int64, error) {
	n, err := r.store.LLen(ctx, batchListKey)
	if err != nil {
		return 0, fmt.Errorf("count batch records: %w", err)
	}
	return n, nil
}

// AppendScore stores one pairwise score record.
func (r *Repo) AppendScore(ctx context.Context, rec *domain.ScoreRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	data, err := json.Marshal(scoreDTO{
		ID:             rec.ID,
		ResumeText:     rec.ResumeText,
		JobDescription: rec.JobDescription,
		Score:          rec.Score,
		CreatedAt:      rec.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal score record: %w", err)
	}

	if err := r.store.LPush(ctx, scoreListKey, data); err != nil {
		return fmt.Errorf("append score record: %w", err)
	}
	return nil
}
