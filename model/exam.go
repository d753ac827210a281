package model

import (
	"time"

	"gorm.io/gorm"
)

// Exam represents a mock exam authored by a creator
type Exam struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	Title           string         `gorm:"type:varchar(255);not null" json:"title"`
	Description     string         `gorm:"type:text" json:"description,omitempty"`
	DurationMinutes int            `gorm:"default:0" json:"duration_minutes"`
	Published       bool           `gorm:"default:false" json:"published"`
	CreatedBy       string         `gorm:"type:varchar(100)" json:"created_by,omitempty"`

	// Relationships
	Sections []ExamSection `gorm:"foreignKey:ExamID;constraint:OnDelete:CASCADE" json:"sections,omitempty"`
}

// ExamSummary is a lightweight version for listing
type ExamSummary struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	DurationMinutes int       `json:"duration_minutes"`
	Published       bool      `json:"published"`
	SectionCount    int       `json:"section_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// ToSummary converts Exam to ExamSummary
func (e *Exam) ToSummary() ExamSummary {
	return ExamSummary{
		ID:              e.ID,
		Title:           e.Title,
		DurationMinutes: e.DurationMinutes,
		Published:       e.Published,
		SectionCount:    len(e.Sections),
		CreatedAt:       e.CreatedAt,
	}
}

// ExamsListResponse for listing multiple exams
type ExamsListResponse struct {
	Exams []ExamSummary `json:"exams"`
	Total int           `json:"total"`
}
