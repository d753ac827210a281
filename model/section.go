package model

import (
	"time"

	"gorm.io/gorm"
)

// ExtractionStatus represents the extraction lifecycle of a section's source PDF
type ExtractionStatus string

const (
	ExtractionPending    ExtractionStatus = "pending"
	ExtractionInProgress ExtractionStatus = "in_progress"
	ExtractionCompleted  ExtractionStatus = "completed"
	ExtractionFailed     ExtractionStatus = "failed"
)

// ExamSection represents one section of an exam, backed by an uploaded PDF.
// The extraction_* columns are the section's job state: only the ingestion
// orchestrator (and the stale-job sweeper) writes them.
type ExamSection struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	ExamID    uint           `gorm:"index;not null" json:"exam_id"`
	Title     string         `gorm:"type:varchar(255);not null" json:"title"`
	Position  int            `gorm:"default:0" json:"position"`

	// Source document in object storage
	PDFURL     string `gorm:"column:pdf_url;type:text" json:"pdf_url,omitempty"`
	StorageKey string `gorm:"type:varchar(500)" json:"storage_key,omitempty"`
	PageCount  int    `gorm:"default:0" json:"page_count"`

	// Extraction lifecycle
	ExtractionStatus         ExtractionStatus `gorm:"type:varchar(20);default:'pending'" json:"extraction_status"`
	ExtractionError          string           `gorm:"type:text" json:"extraction_error,omitempty"`
	ExtractionStartedAt      *time.Time       `json:"extraction_started_at,omitempty"`
	ExtractionCompletedAt    *time.Time       `json:"extraction_completed_at,omitempty"`
	TotalQuestions           int              `gorm:"default:0" json:"total_questions"`
	QuestionsRequiringReview int              `gorm:"default:0" json:"questions_requiring_review"`

	// Relationships
	Exam      Exam                `gorm:"foreignKey:ExamID;constraint:OnDelete:CASCADE" json:"-"`
	Questions []ExtractedQuestion `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

// SectionStatusResponse is the polling payload for the extraction status endpoint
type SectionStatusResponse struct {
	ID                       uint             `json:"id"`
	ExtractionStatus         ExtractionStatus `json:"extraction_status"`
	ExtractionError          string           `json:"extraction_error,omitempty"`
	ExtractionStartedAt      *time.Time       `json:"extraction_started_at,omitempty"`
	ExtractionCompletedAt    *time.Time       `json:"extraction_completed_at,omitempty"`
	TotalQuestions           int              `json:"total_questions"`
	QuestionsRequiringReview int              `json:"questions_requiring_review"`
}

// ToStatusResponse converts ExamSection to SectionStatusResponse
func (s *ExamSection) ToStatusResponse() SectionStatusResponse {
	return SectionStatusResponse{
		ID:                       s.ID,
		ExtractionStatus:         s.ExtractionStatus,
		ExtractionError:          s.ExtractionError,
		ExtractionStartedAt:      s.ExtractionStartedAt,
		ExtractionCompletedAt:    s.ExtractionCompletedAt,
		TotalQuestions:           s.TotalQuestions,
		QuestionsRequiringReview: s.QuestionsRequiringReview,
	}
}
