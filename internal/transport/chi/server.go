// Package chi exposes the resume matching service over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jobgenie/jobgenie/internal/db"
	"github.com/jobgenie/jobgenie/internal/domain"
	"github.com/jobgenie/jobgenie/internal/usecase/match"
)

// maxUploadBytes bounds resume uploads. Resumes are small documents; anything
// larger is rejected before extraction.
const maxUploadBytes = 10 << 20

// MatchService scores resumes against job descriptions.
type MatchService interface {
	MatchOne(ctx context.Context, upload match.Upload) (match.SingleMatch, error)
	MatchMany(ctx context.Context, upload match.Upload, targets []domain.Target) (match.BatchOutcome, error)
	ScorePair(ctx context.Context, resumeText, jobText string) (domain.ScoreRecord, error)
}

// CatalogService ranks a resume embedding against the job catalog.
type CatalogService interface {
	TopK(resumeEmbedding []float32, k int) ([]domain.ScoredJob, error)
}

// AnalysisService produces a qualitative resume review.
type AnalysisService interface {
	Analyze(ctx context.Context, resumeText, jobDescription string) (string, error)
}

// HistoryReader lists persisted batch match records.
type HistoryReader interface {
	ListBatches(ctx context.Context) ([]domain.BatchRecord, error)
	CountBatches(ctx context.Context) (int64, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

type errorCode string

const (
	codeBadRequest           errorCode = "bad_request"
	codeInvalidInput         errorCode = "invalid_input"
	codeEmptyResume          errorCode = "empty_resume"
	codeUnsupportedFile      errorCode = "unsupported_file"
	codeEmbeddingUnavailable errorCode = "embedding_unavailable"
	codeScoringUnavailable   errorCode = "scoring_unavailable"
	codeInternalError        errorCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// Server holds the HTTP handlers.
type Server struct {
	matcher       MatchService
	catalog       CatalogService
	analysis      AnalysisService
	history       HistoryReader
	pinger        db.Pinger
	embedHealth   domain.HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. embedHealth may be nil; the embedding
// provider check is then skipped.
func NewServer(
	matcher MatchService,
	catalog CatalogService,
	analysis AnalysisService,
	history HistoryReader,
	pinger db.Pinger,
	embedHealth domain.HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		matcher:     matcher,
		catalog:     catalog,
		analysis:    analysis,
		history:     history,
		pinger:      pinger,
		embedHealth: embedHealth,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyResume, http.StatusBadRequest, codeEmptyResume),
		sentinelHandler(domain.ErrUnsupportedFile, http.StatusBadRequest, codeUnsupportedFile),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, codeInvalidInput),
		sentinelHandler(domain.ErrScoringUnavailable, http.StatusBadGateway, codeScoringUnavailable),
		sentinelHandler(domain.ErrEmbeddingUnavailable, http.StatusBadGateway, codeEmbeddingUnavailable),
	}
	return s
}

// Routes mounts every endpoint on a fresh router. Middlewares are applied by
// the caller.
func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()
	r.Post("/upload-resume", s.UploadResume)
	r.Post("/upload-resume-multi", s.UploadResumeMulti)
	r.Get("/resume-history", s.ResumeHistory)
	r.Post("/match-jobs", s.MatchJobs)
	r.Post("/score", s.Score)
	r.Post("/analyze", s.Analyze)
	r.Get("/healthz", s.Health)
	r.Get("/metrics", s.Metrics)
	return r
}

type uploadResumeResponse struct {
	ResumeText     string `json:"resume_text,omitempty"`
	MatchScore     string `json:"match_score,omitempty"`
	JobDescription string `json:"job_description,omitempty"`
	Error          string `json:"error,omitempty"`
}

// UploadResume handles POST /upload-resume. This endpoint predates the error
// taxonomy and keeps its original contract: failures are reported in-payload
// with status 200.
func (s *Server) UploadResume(w http.ResponseWriter, r *http.Request) {
	upload, err := readUpload(r)
	if err != nil {
		writeJSON(w, http.StatusOK, uploadResumeResponse{Error: err.Error()})
		return
	}

	result, err := s.matcher.MatchOne(r.Context(), upload)
	if err != nil {
		s.logger.Warn("Resume match failed", zap.Error(err))
		writeJSON(w, http.StatusOK, uploadResumeResponse{Error: safeDomainMessage(err)})
		return
	}

	writeJSON(w, http.StatusOK, uploadResumeResponse{
		ResumeText:     result.ResumeText,
		MatchScore:     formatPercent(result.Score, true),
		JobDescription: result.JobDescription,
	})
}

type targetJSON struct {
	Company string `json:"company"`
	Role    string `json:"role"`
}

type matchResultJSON struct {
	Company        string    `json:"company"`
	Role           string    `json:"role"`
	JobDescription string    `json:"job_description"`
	MatchScore     string    `json:"match_score"`
	Timestamp      time.Time `json:"timestamp"`
}

type uploadResumeMultiResponse struct {
	ResumeText string            `json:"resume_text"`
	Matches    []matchResultJSON `json:"matches"`
	Warning    string            `json:"warning,omitempty"`
}

// UploadResumeMulti handles POST /upload-resume-multi: one resume file scored
// against every company/role pair from the companies_roles form field.
func (s *Server) UploadResumeMulti(w http.ResponseWriter, r *http.Request) {
	upload, err := readUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	var targetsJSON []targetJSON
	raw := r.FormValue("companies_roles")
	if raw == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "companies_roles form field is required")
		return
	}
	if err := json.Unmarshal([]byte(raw), &targetsJSON); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid companies_roles: "+err.Error())
		return
	}

	targets := make([]domain.Target, len(targetsJSON))
	for i, t := range targetsJSON {
		if t.Company == "" || t.Role == "" {
			writeError(w, http.StatusBadRequest, codeBadRequest,
				fmt.Sprintf("companies_roles[%d]: company and role are required", i))
			return
		}
		targets[i] = domain.Target{Company: t.Company, Role: t.Role}
	}

	outcome, err := s.matcher.MatchMany(r.Context(), upload, targets)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := uploadResumeMultiResponse{
		ResumeText: outcome.Record.ResumeText,
		Matches:    matchesToJSON(outcome.Record.Matches),
	}
	if outcome.PersistErr != nil {
		resp.Warning = "results could not be saved to history"
	}
	writeJSON(w, http.StatusOK, resp)
}

type batchRecordJSON struct {
	ID         string            `json:"id"`
	FileName   string            `json:"filename"`
	ResumeText string            `json:"resume_text"`
	Matches    []matchResultJSON `json:"matches"`
	UploadedAt time.Time         `json:"uploaded_at"`
}

// ResumeHistory handles GET /resume-history.
func (s *Server) ResumeHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.history.ListBatches(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	count, err := s.history.CountBatches(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]batchRecordJSON, len(records))
	for i, rec := range records {
		items[i] = batchRecordJSON{
			ID:         rec.ID,
			FileName:   rec.FileName,
			ResumeText: rec.ResumeText,
			Matches:    matchesToJSON(rec.Matches),
			UploadedAt: rec.UploadedAt,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"history": items,
		"count":   count,
	})
}

type matchJobsRequest struct {
	ResumeEmbedding []float32 `json:"resume_embedding"`
	TopK            int       `json:"top_k"`
}

type scoredJobJSON struct {
	Job   jobPostingJSON `json:"job"`
	Score float64        `json:"score"`
}

type jobPostingJSON struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// MatchJobs handles POST /match-jobs: top-k catalog postings for a resume
// embedding, with raw cosine scores.
func (s *Server) MatchJobs(w http.ResponseWriter, r *http.Request) {
	var req matchJobsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	topK := req.TopK
	if topK == 0 {
		topK = 3
	}

	scored, err := s.catalog.TopK(req.ResumeEmbedding, topK)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]scoredJobJSON, len(scored))
	for i, sj := range scored {
		items[i] = scoredJobJSON{
			Job: jobPostingJSON{
				ID:          sj.Job.ID,
				Title:       sj.Job.Title,
				Description: sj.Job.Description,
				Location:    sj.Job.Location,
			},
			Score: sj.Score,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"matches": items})
}

type scoreRequest struct {
	ResumeText     string `json:"resume_text"`
	JobDescription string `json:"job_description"`
}

// Score handles POST /score: pairwise similarity of two raw texts, returned
// as a percentage with two decimals.
func (s *Server) Score(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	rec, err := s.matcher.ScorePair(r.Context(), req.ResumeText, req.JobDescription)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"score": math.Round(rec.Score*10000) / 100,
	})
}

// Analyze handles POST /analyze: qualitative resume-to-job review.
func (s *Server) Analyze(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	analysis, err := s.analysis.Analyze(r.Context(), req.ResumeText, req.JobDescription)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"analysis": analysis})
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": "ok"}
	overall := "ok"
	status := http.StatusOK

	if err := s.pinger.Ping(r.Context()); err != nil {
		checks["database"] = "unavailable"
		overall = "degraded"
		status = http.StatusServiceUnavailable
	}

	if s.embedHealth != nil {
		checks["embedding_provider"] = "ok"
		if err := s.embedHealth.HealthCheck(r.Context()); err != nil {
			checks["embedding_provider"] = "unavailable"
			overall = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, map[string]any{
		"status": overall,
		"checks": checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// readUpload extracts the "file" part of a multipart request.
func readUpload(r *http.Request) (match.Upload, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return match.Upload{}, fmt.Errorf("parse multipart form: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return match.Upload{}, fmt.Errorf("file form field is required: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return match.Upload{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > maxUploadBytes {
		return match.Upload{}, fmt.Errorf("upload exceeds %d bytes", maxUploadBytes)
	}

	return match.Upload{FileName: header.Filename, Data: data}, nil
}

func matchesToJSON(matches []domain.MatchResult) []matchResultJSON {
	items := make([]matchResultJSON, len(matches))
	for i, m := range matches {
		items[i] = matchResultJSON{
			Company:        m.Company,
			Role:           m.Role,
			JobDescription: m.JobDescription,
			MatchScore:     formatPercent(m.Score, m.Scored),
			Timestamp:      m.Timestamp,
		}
	}
	return items
}

// formatPercent renders a raw cosine score as "NN.NN%", or "N/A" for a
// result that could not be scored.
func formatPercent(score float64, scored bool) string {
	if !scored {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", score*100)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyResume,
		domain.ErrUnsupportedFile,
		domain.ErrInvalidInput,
		domain.ErrScoringUnavailable,
		domain.ErrEmbeddingUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
