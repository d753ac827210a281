package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ExamAttempt represents one student's submitted answers for an exam.
// Answers is a JSON object keyed by question ID.
type ExamAttempt struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	ExamID        uint           `gorm:"index;not null" json:"exam_id"`
	CandidateName string         `gorm:"type:varchar(255)" json:"candidate_name"`
	Answers       datatypes.JSON `json:"answers"`

	// Scoring: auto-gradable questions (single/multi/true_false with an
	// answer key) contribute to score; the rest are counted ungraded.
	Score    int `gorm:"default:0" json:"score"`
	MaxScore int `gorm:"default:0" json:"max_score"`
	Graded   int `gorm:"default:0" json:"graded"`
	Ungraded int `gorm:"default:0" json:"ungraded"`

	// Relationships
	Exam Exam `gorm:"foreignKey:ExamID;constraint:OnDelete:CASCADE" json:"-"`
}
