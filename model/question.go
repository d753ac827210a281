package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AnswerType classifies how an extracted question is answered
type AnswerType string

const (
	AnswerTypeSingle      AnswerType = "single"
	AnswerTypeMulti       AnswerType = "multi"
	AnswerTypeTrueFalse   AnswerType = "true_false"
	AnswerTypeShortAnswer AnswerType = "short_answer"
	AnswerTypeEssay       AnswerType = "essay"
)

// KnownAnswerType reports whether v is one of the recognized answer types.
// Unrecognized values are still persisted verbatim; callers only log them.
func KnownAnswerType(v string) bool {
	switch AnswerType(v) {
	case AnswerTypeSingle, AnswerTypeMulti, AnswerTypeTrueFalse, AnswerTypeShortAnswer, AnswerTypeEssay:
		return true
	}
	return false
}

// ReviewConfidenceThreshold is the cutoff below which an extracted question
// is flagged for human review. requires_review is always derived from
// confidence with this threshold, never set independently.
const ReviewConfidenceThreshold = 0.9

// ExtractedQuestion represents one question recognized in a section's source
// PDF. Rows are created in a single batch by the ingestion pipeline and are
// immutable there; corrections happen in the manual review workflow.
type ExtractedQuestion struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	SectionID uint           `gorm:"index;not null" json:"section_id"`

	// Best-effort numbering as reported by extraction; not unique or gapless
	QuestionNumber int     `gorm:"default:0" json:"question_number"`
	SectionLabel   *string `gorm:"type:varchar(100)" json:"section_label,omitempty"`
	Text           string  `gorm:"type:text;not null" json:"text"`

	// Options is an ordered JSON array of strings, null when the answer
	// type carries no discrete options
	Options    datatypes.JSON `json:"options,omitempty"`
	AnswerType string         `gorm:"type:varchar(20)" json:"answer_type"`
	AnswerHint *string        `gorm:"type:text" json:"answer_hint,omitempty"`

	Confidence     float64 `gorm:"not null" json:"confidence"`
	RequiresReview bool    `gorm:"default:false;index" json:"requires_review"`

	// Relationships
	Section ExamSection `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"-"`
}
