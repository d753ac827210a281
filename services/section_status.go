package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/prepstack/mockexam-api/model"
)

// StatusAttrs carries the optional attributes a transition may set
type StatusAttrs struct {
	Error                    string
	TotalQuestions           int
	QuestionsRequiringReview int
}

// SectionStatusMachine owns the per-section extraction lifecycle. Only the
// extraction service writes status through it.
type SectionStatusMachine struct {
	db *gorm.DB
}

// NewSectionStatusMachine creates a status machine over the given database
func NewSectionStatusMachine(db *gorm.DB) *SectionStatusMachine {
	return &SectionStatusMachine{db: db}
}

// Transition updates a section's extraction status and the side effects
// attached to the new state. Aggregate counts are written only on the
// completed transition; a failed transition never touches them.
func (m *SectionStatusMachine) Transition(ctx context.Context, sectionID uint, status model.ExtractionStatus, attrs StatusAttrs) error {
	now := time.Now()
	updates := map[string]any{
		"extraction_status": status,
	}

	switch status {
	case model.ExtractionInProgress:
		updates["extraction_started_at"] = &now
		updates["extraction_completed_at"] = nil
		updates["extraction_error"] = ""
	case model.ExtractionCompleted:
		updates["extraction_completed_at"] = &now
		updates["extraction_error"] = ""
		updates["total_questions"] = attrs.TotalQuestions
		updates["questions_requiring_review"] = attrs.QuestionsRequiringReview
	case model.ExtractionFailed:
		updates["extraction_error"] = attrs.Error
	case model.ExtractionPending:
		updates["extraction_started_at"] = nil
		updates["extraction_completed_at"] = nil
		updates["extraction_error"] = ""
		updates["total_questions"] = 0
		updates["questions_requiring_review"] = 0
	}

	result := m.db.WithContext(ctx).
		Model(&model.ExamSection{}).
		Where("id = ?", sectionID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update section %d status to %s: %w", sectionID, status, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("section %d not found", sectionID)
	}
	return nil
}
