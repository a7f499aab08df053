package domain

import "time"

// Target identifies what a resume is compared against: an ad-hoc
// company/role pair whose job description is synthesized on demand.
type Target struct {
	Company string
	Role    string
}

// MatchResult is one scored resume-to-target comparison. Score is the raw
// cosine similarity in [-1, 1]; percentage formatting happens at the
// presentation boundary only. Scored=false marks a target whose job
// description could not be embedded (sentinel result).
type MatchResult struct {
	Company        string
	Role           string
	JobDescription string
	Score          float64
	Scored         bool
	Timestamp      time.Time
}

// BatchRecord groups all match results from one multi-target request.
// Records are append-only: created once, never updated.
type BatchRecord struct {
	ID         string
	FileName   string
	ResumeText string
	Matches    []MatchResult
	UploadedAt time.Time
}

// ScoreRecord is one persisted pairwise text comparison.
type ScoreRecord struct {
	ID             string
	ResumeText     string
	JobDescription string
	Score          float64
	CreatedAt      time.Time
}

// JobPosting is a catalog entry with a static description whose embedding is
// precomputed once at startup.
type JobPosting struct {
	ID          string
	Title       string
	Description string
	Location    string
}

// ScoredJob pairs a catalog posting with its raw similarity score.
type ScoredJob struct {
	Job   JobPosting
	Score float64
}
