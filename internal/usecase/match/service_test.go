package match

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jobgenie/jobgenie/internal/domain"
)

// mockEmbedder maps input text to a fixed vector, or fails for texts in
// failFor.
type mockEmbedder struct {
	vectors map[string][]float32
	failFor map[string]error
	calls   []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls = append(m.calls, text)
	if err, ok := m.failFor[text]; ok {
		return domain.EmbeddingResult{}, err
	}
	if vec, ok := m.vectors[text]; ok {
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 0}}, nil
}

// mockDescs synthesizes a deterministic description per target.
type mockDescs struct {
	fetched string
}

func (m *mockDescs) Fetch(_ context.Context, _, _ string) string {
	if m.fetched != "" {
		return m.fetched
	}
	return "fetched description"
}

func (m *mockDescs) Synthesize(_ context.Context, company, role string) string {
	return fmt.Sprintf("%s at %s", role, company)
}

type mockHistory struct {
	batches  []domain.BatchRecord
	scores   []domain.ScoreRecord
	batchErr error
	scoreErr error
}

func (m *mockHistory) AppendBatch(_ context.Context, rec *domain.BatchRecord) error {
	if m.batchErr != nil {
		return m.batchErr
	}
	rec.ID = "batch-1"
	m.batches = append(m.batches, *rec)
	return nil
}

func (m *mockHistory) AppendScore(_ context.Context, rec *domain.ScoreRecord) error {
	if m.scoreErr != nil {
		return m.scoreErr
	}
	rec.ID = "score-1"
	m.scores = append(m.scores, *rec)
	return nil
}

func passthroughExtract(_ string, data []byte) (string, error) {
	return string(data), nil
}

func newTestService(emb *mockEmbedder, hist *mockHistory) *Service {
	svc := New(emb, &mockDescs{}, hist, passthroughExtract,
		"full stack developer", "USA", zap.NewNop())
	svc.now = func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func upload(text string) Upload {
	return Upload{FileName: "resume.txt", Data: []byte(text)}
}

func TestMatchOne_ScoresAndPersists(t *testing.T) {
	emb := &mockEmbedder{vectors: map[string][]float32{
		"react developer":     {1, 0},
		"fetched description": {1, 0},
	}}
	hist := &mockHistory{}
	svc := newTestService(emb, hist)

	result, err := svc.MatchOne(context.Background(), upload("react developer"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ResumeText != "react developer" {
		t.Errorf("ResumeText = %q", result.ResumeText)
	}
	if result.JobDescription != "fetched description" {
		t.Errorf("JobDescription = %q", result.JobDescription)
	}
	if result.Score < 0.999 {
		t.Errorf("identical vectors should score ~1, got %v", result.Score)
	}
	if len(hist.batches) != 1 || len(hist.batches[0].Matches) != 1 {
		t.Fatalf("expected one persisted record with one match, got %+v", hist.batches)
	}
}

func TestMatchOne_EmptyResume(t *testing.T) {
	hist := &mockHistory{}
	svc := newTestService(&mockEmbedder{}, hist)

	_, err := svc.MatchOne(context.Background(), upload("   \n\t "))
	if !errors.Is(err, domain.ErrEmptyResume) {
		t.Fatalf("expected ErrEmptyResume, got: %v", err)
	}
	if len(hist.batches) != 0 {
		t.Error("empty resume must not be persisted")
	}
}

func TestMatchOne_EmbeddingFailure(t *testing.T) {
	emb := &mockEmbedder{failFor: map[string]error{
		"react developer": fmt.Errorf("down: %w", domain.ErrEmbeddingUnavailable),
	}}
	svc := newTestService(emb, &mockHistory{})

	_, err := svc.MatchOne(context.Background(), upload("react developer"))
	if !errors.Is(err, domain.ErrScoringUnavailable) {
		t.Fatalf("expected ErrScoringUnavailable, got: %v", err)
	}
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected the cause to remain inspectable, got: %v", err)
	}
}

func TestMatchOne_PersistenceFailureNotFatal(t *testing.T) {
	hist := &mockHistory{batchErr: errors.New("connection refused")}
	svc := newTestService(&mockEmbedder{}, hist)

	result, err := svc.MatchOne(context.Background(), upload("go developer"))
	if err != nil {
		t.Fatalf("persistence failure must not fail the match: %v", err)
	}
	if result.ResumeText != "go developer" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestMatchMany_PreservesTargetOrder(t *testing.T) {
	hist := &mockHistory{}
	svc := newTestService(&mockEmbedder{}, hist)

	targets := []domain.Target{
		{Company: "Acme", Role: "Frontend Developer"},
		{Company: "Globex", Role: "Backend Engineer"},
		{Company: "Initech", Role: "Data Scientist"},
	}
	outcome, err := svc.MatchMany(context.Background(), upload("resume"), targets)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.PersistErr != nil {
		t.Fatalf("unexpected persist error: %v", outcome.PersistErr)
	}

	matches := outcome.Record.Matches
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	for i, target := range targets {
		if matches[i].Company != target.Company || matches[i].Role != target.Role {
			t.Errorf("match %d = %s/%s, want %s/%s",
				i, matches[i].Company, matches[i].Role, target.Company, target.Role)
		}
		if !matches[i].Scored {
			t.Errorf("match %d should be scored", i)
		}
	}
	if outcome.Record.ID != "batch-1" {
		t.Errorf("record not persisted: %+v", outcome.Record)
	}
}

func TestMatchMany_SentinelIsolatesFailingTarget(t *testing.T) {
	emb := &mockEmbedder{failFor: map[string]error{
		"Backend Engineer at Globex": fmt.Errorf("down: %w", domain.ErrEmbeddingUnavailable),
	}}
	svc := newTestService(emb, &mockHistory{})

	targets := []domain.Target{
		{Company: "Acme", Role: "Frontend Developer"},
		{Company: "Globex", Role: "Backend Engineer"},
		{Company: "Initech", Role: "Data Scientist"},
	}
	outcome, err := svc.MatchMany(context.Background(), upload("resume"), targets)
	if err != nil {
		t.Fatalf("per-target failure must not abort the batch: %v", err)
	}

	matches := outcome.Record.Matches
	if !matches[0].Scored || !matches[2].Scored {
		t.Error("healthy targets must stay scored")
	}
	if matches[1].Scored {
		t.Error("failing target must be recorded unscored")
	}
	if matches[1].Company != "Globex" {
		t.Errorf("sentinel kept its position: got %q", matches[1].Company)
	}
	if matches[1].JobDescription == "" {
		t.Error("sentinel keeps its synthesized description")
	}
}

func TestMatchMany_ResumeEmbeddingFailureAborts(t *testing.T) {
	emb := &mockEmbedder{failFor: map[string]error{
		"resume": fmt.Errorf("down: %w", domain.ErrEmbeddingUnavailable),
	}}
	hist := &mockHistory{}
	svc := newTestService(emb, hist)

	_, err := svc.MatchMany(context.Background(), upload("resume"),
		[]domain.Target{{Company: "Acme", Role: "Frontend Developer"}})
	if !errors.Is(err, domain.ErrScoringUnavailable) {
		t.Fatalf("expected ErrScoringUnavailable, got: %v", err)
	}
	if len(hist.batches) != 0 {
		t.Error("aborted batch must not be persisted")
	}
}

func TestMatchMany_NoTargets(t *testing.T) {
	svc := newTestService(&mockEmbedder{}, &mockHistory{})

	_, err := svc.MatchMany(context.Background(), upload("resume"), nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got: %v", err)
	}
}

func TestMatchMany_PersistenceFailureReportedSeparately(t *testing.T) {
	hist := &mockHistory{batchErr: errors.New("connection refused")}
	svc := newTestService(&mockEmbedder{}, hist)

	outcome, err := svc.MatchMany(context.Background(), upload("resume"),
		[]domain.Target{{Company: "Acme", Role: "Frontend Developer"}})
	if err != nil {
		t.Fatalf("persistence failure must not fail the batch: %v", err)
	}
	if !errors.Is(outcome.PersistErr, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got: %v", outcome.PersistErr)
	}
	if len(outcome.Record.Matches) != 1 || !outcome.Record.Matches[0].Scored {
		t.Errorf("results must survive a persistence failure: %+v", outcome.Record)
	}
}

func TestScorePair(t *testing.T) {
	emb := &mockEmbedder{vectors: map[string][]float32{
		"go developer":       {0, 1},
		"golang backend job": {0, 1},
	}}
	hist := &mockHistory{}
	svc := newTestService(emb, hist)

	rec, err := svc.ScorePair(context.Background(), " go developer ", "golang backend job")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Score < 0.999 {
		t.Errorf("identical vectors should score ~1, got %v", rec.Score)
	}
	if rec.ResumeText != "go developer" {
		t.Errorf("input should be trimmed, got %q", rec.ResumeText)
	}
	if len(hist.scores) != 1 {
		t.Fatalf("expected one persisted score record, got %d", len(hist.scores))
	}
}

func TestScorePair_BlankInput(t *testing.T) {
	svc := newTestService(&mockEmbedder{}, &mockHistory{})

	for _, tc := range []struct{ resume, job string }{
		{"", "job"},
		{"resume", "  "},
	} {
		_, err := svc.ScorePair(context.Background(), tc.resume, tc.job)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("ScorePair(%q, %q): expected ErrInvalidInput, got %v", tc.resume, tc.job, err)
		}
	}
}

func TestExtractResume_UnsupportedFile(t *testing.T) {
	failingExtract := func(filename string, _ []byte) (string, error) {
		return "", fmt.Errorf("%s: %w", filename, domain.ErrUnsupportedFile)
	}
	svc := New(&mockEmbedder{}, &mockDescs{}, &mockHistory{}, failingExtract,
		"q", "l", zap.NewNop())

	_, err := svc.MatchOne(context.Background(), Upload{FileName: "resume.png", Data: []byte{1}})
	if !errors.Is(err, domain.ErrUnsupportedFile) {
		t.Fatalf("expected ErrUnsupportedFile, got: %v", err)
	}
	if !strings.Contains(err.Error(), "resume.png") {
		t.Errorf("error should name the file: %v", err)
	}
}
