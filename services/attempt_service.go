package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/prepstack/mockexam-api/model"
)

// AttemptService scores and stores mock-exam attempts. Only questions with
// an answer hint and a discrete answer type are auto-graded; the rest count
// as ungraded and are left for manual review.
type AttemptService struct {
	db *gorm.DB
}

// NewAttemptService creates an attempt service
func NewAttemptService(db *gorm.DB) *AttemptService {
	return &AttemptService{db: db}
}

// SubmitAttempt grades the given answers against the exam's extracted
// questions and persists the attempt. Answers are keyed by question id.
func (s *AttemptService) SubmitAttempt(ctx context.Context, examID uint, candidateName string, answers map[string]string) (*model.ExamAttempt, error) {
	var exam model.Exam
	if err := s.db.WithContext(ctx).First(&exam, examID).Error; err != nil {
		return nil, fmt.Errorf("exam %d not found: %w", examID, err)
	}

	var questions []model.ExtractedQuestion
	if err := s.db.WithContext(ctx).
		Joins("JOIN exam_sections ON exam_sections.id = extracted_questions.section_id").
		Where("exam_sections.exam_id = ? AND exam_sections.deleted_at IS NULL", examID).
		Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to load questions for exam %d: %w", examID, err)
	}

	attempt := &model.ExamAttempt{
		ExamID:        examID,
		CandidateName: candidateName,
	}

	for _, q := range questions {
		given, answered := answers[strconv.FormatUint(uint64(q.ID), 10)]
		if !gradable(q) {
			attempt.Ungraded++
			continue
		}
		attempt.MaxScore++
		if answered && answerMatches(q.AnswerType, *q.AnswerHint, given) {
			attempt.Score++
		}
		attempt.Graded++
	}

	encoded, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}
	attempt.Answers = datatypes.JSON(encoded)

	if err := s.db.WithContext(ctx).Create(attempt).Error; err != nil {
		return nil, fmt.Errorf("failed to save attempt: %w", err)
	}
	return attempt, nil
}

// GetAttempt fetches one attempt by id, scoped to its exam
func (s *AttemptService) GetAttempt(ctx context.Context, examID, attemptID uint) (*model.ExamAttempt, error) {
	var attempt model.ExamAttempt
	if err := s.db.WithContext(ctx).
		Where("exam_id = ?", examID).
		First(&attempt, attemptID).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

// ListAttempts returns attempts for an exam, most recent first
func (s *AttemptService) ListAttempts(ctx context.Context, examID uint) ([]model.ExamAttempt, error) {
	var attempts []model.ExamAttempt
	err := s.db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Order("created_at DESC").
		Find(&attempts).Error
	return attempts, err
}

func gradable(q model.ExtractedQuestion) bool {
	if q.AnswerHint == nil || strings.TrimSpace(*q.AnswerHint) == "" {
		return false
	}
	switch model.AnswerType(q.AnswerType) {
	case model.AnswerTypeSingle, model.AnswerTypeMulti, model.AnswerTypeTrueFalse:
		return true
	}
	return false
}

func answerMatches(answerType, hint, given string) bool {
	if model.AnswerType(answerType) == model.AnswerTypeMulti {
		return canonicalSet(hint) == canonicalSet(given)
	}
	return strings.EqualFold(strings.TrimSpace(hint), strings.TrimSpace(given))
}

// canonicalSet normalizes a comma-separated multi answer so selection order
// does not matter
func canonicalSet(s string) string {
	parts := strings.Split(s, ",")
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	sort.Strings(cleaned)
	return strings.Join(cleaned, ",")
}
