package history

import (
	"time"

	"github.com/jobgenie/jobgenie/internal/domain"
)

// batchDTO is the stored form of a domain.BatchRecord.
type batchDTO struct {
	ID         string     `json:"id"`
	FileName   string     `json:"file_name"`
	ResumeText string     `json:"resume_text"`
	Matches    []matchDTO `json:"matches"`
	UploadedAt time.Time  `json:"uploaded_at"`
}

// matchDTO stores the raw cosine score; percentage rendering is a
// presentation concern and never reaches storage.
type matchDTO struct {
	Company        string    `json:"company"`
	Role           string    `json:"role"`
	JobDescription string    `json:"job_description"`
	Score          float64   `json:"score"`
	Scored         bool      `json:"scored"`
	Timestamp      time.Time `json:"timestamp"`
}

type scoreDTO struct {
	ID             string    `json:"id"`
	ResumeText     string    `json:"resume_text"`
	JobDescription string    `json:"job_description"`
	Score          float64   `json:"score"`
	CreatedAt      time.Time `json:"created_at"`
}

func batchToDTO(rec *domain.BatchRecord) batchDTO {
	matches := make([]matchDTO, len(rec.Matches))
	for i, m := range rec.Matches {
		matches[i] = matchDTO{
			Company:        m.Company,
			Role:           m.Role,
			JobDescription: m.JobDescription,
			Score:          m.Score,
			Scored:         m.Scored,
			Timestamp:      m.Timestamp,
		}
	}
	return batchDTO{
		ID:         rec.ID,
		FileName:   rec.FileName,
		ResumeText: rec.ResumeText,
		Matches:    matches,
		UploadedAt: rec.UploadedAt,
	}
}

func batchFromDTO(dto batchDTO) domain.BatchRecord {
	matches := make([]domain.MatchResult, len(dto.Matches))
	for i, m := range dto.Matches {
		matches[i] = domain.MatchResult{
			Company:        m.Company,
			Role:           m.Role,
			JobDescription: m.JobDescription,
			Score:          m.Score,
			Scored:         m.Scored,
			Timestamp:      m.Timestamp,
		}
	}
	return domain.BatchRecord{
		ID:         dto.ID,
		FileName:   dto.FileName,
		ResumeText: dto.ResumeText,
		Matches:    matches,
		UploadedAt: dto.UploadedAt,
	}
}
