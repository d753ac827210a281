package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/prepstack/mockexam-api/model"
)

// ObjectDownloader is the slice of object storage the pipeline needs
type ObjectDownloader interface {
	DownloadFile(ctx context.Context, key string) ([]byte, error)
}

// ExtractionSummary is what a successful run reports
type ExtractionSummary struct {
	TotalQuestions           int `json:"totalQuestions"`
	QuestionsRequiringReview int `json:"questionsRequiringReview"`
}

// ExtractionService coordinates one ingestion run: download the PDF, request
// structured extraction, normalize, build records, persist, and drive the
// section status machine.
type ExtractionService struct {
	db            *gorm.DB
	requester     Requester
	storage       ObjectDownloader
	status        *SectionStatusMachine
	jobs          *JobTracker
	publicBaseURL string
}

// NewExtractionService wires the ingestion pipeline
func NewExtractionService(db *gorm.DB, requester Requester, storage ObjectDownloader, jobs *JobTracker, publicBaseURL string) *ExtractionService {
	return &ExtractionService{
		db:            db,
		requester:     requester,
		storage:       storage,
		status:        NewSectionStatusMachine(db),
		jobs:          jobs,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

// Run executes the full pipeline for one section. The stages are strictly
// sequential and nothing is retried: a failing stage marks the section
// failed and its error propagates to the caller. Re-running a section is
// allowed and replaces any prior terminal state.
func (s *ExtractionService) Run(ctx context.Context, sectionID uint, pdfURL string) (*ExtractionSummary, error) {
	release, ok := s.jobs.AcquireSectionLock(ctx, sectionID)
	if !ok {
		return nil, ErrExtractionInProgress
	}
	defer release()

	jobID := s.jobs.StartJob(ctx, sectionID)
	log.Printf("[EXTRACT] Starting extraction job %s for section %d", jobID, sectionID)

	if err := s.status.Transition(ctx, sectionID, model.ExtractionInProgress, StatusAttrs{}); err != nil {
		s.jobs.FailJob(ctx, jobID, sectionID, err)
		return nil, err
	}

	key := s.resolveStorageKey(pdfURL)
	if s.storage == nil {
		unavailable := &DocumentUnavailableError{Key: key, Err: errors.New("object storage is not configured")}
		s.failSection(ctx, jobID, sectionID, "download", unavailable)
		return nil, unavailable
	}
	pdfContent, err := s.storage.DownloadFile(ctx, key)
	if err != nil {
		unavailable := &DocumentUnavailableError{Key: key, Err: err}
		s.failSection(ctx, jobID, sectionID, "download", unavailable)
		return nil, unavailable
	}

	raw, err := s.requester.RequestExtraction(ctx, pdfContent)
	if err != nil {
		s.failSection(ctx, jobID, sectionID, "request", err)
		return nil, err
	}

	normalized, err := NormalizeModelOutput(raw)
	if err != nil {
		s.failSection(ctx, jobID, sectionID, "normalize", err)
		return nil, err
	}

	records := BuildQuestionRecords(sectionID, normalized)

	if err := s.persistQuestions(ctx, sectionID, records); err != nil {
		persistErr := &PersistenceError{SectionID: sectionID, Err: err}
		s.failSection(ctx, jobID, sectionID, "persist", persistErr)
		return nil, persistErr
	}

	summary := &ExtractionSummary{TotalQuestions: len(records)}
	for _, q := range records {
		if q.RequiresReview {
			summary.QuestionsRequiringReview++
		}
	}

	if err := s.status.Transition(ctx, sectionID, model.ExtractionCompleted, StatusAttrs{
		TotalQuestions:           summary.TotalQuestions,
		QuestionsRequiringReview: summary.QuestionsRequiringReview,
	}); err != nil {
		persistErr := &PersistenceError{SectionID: sectionID, Err: err}
		s.failSection(ctx, jobID, sectionID, "complete", persistErr)
		return nil, persistErr
	}

	s.jobs.CompleteJob(ctx, jobID, sectionID, summary.TotalQuestions, summary.QuestionsRequiringReview)
	log.Printf("[EXTRACT] Job %s completed: section %d, %d questions (%d requiring review)",
		jobID, sectionID, summary.TotalQuestions, summary.QuestionsRequiringReview)
	return summary, nil
}

// persistQuestions replaces the section's prior extraction output and writes
// the new batch in one transaction. Either every record lands or none do.
func (s *ExtractionService) persistQuestions(ctx context.Context, sectionID uint, records []model.ExtractedQuestion) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("section_id = ?", sectionID).
			Unscoped().
			Delete(&model.ExtractedQuestion{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.CreateInBatches(records, 100).Error
	})
}

// resolveStorageKey turns a public document URL into a storage key by
// stripping the configured public base URL. URLs outside that base pass
// through unchanged and fail at download time.
func (s *ExtractionService) resolveStorageKey(pdfURL string) string {
	if s.publicBaseURL != "" {
		if rest, found := strings.CutPrefix(pdfURL, s.publicBaseURL+"/"); found {
			return rest
		}
	}
	return strings.TrimPrefix(pdfURL, "/")
}

// failSection marks the section failed. The mark itself is best-effort: if
// it cannot be persisted we log and let the stage's original error surface.
func (s *ExtractionService) failSection(ctx context.Context, jobID string, sectionID uint, stage string, cause error) {
	log.Printf("[EXTRACT] Job %s failed at %s stage for section %d: %v", jobID, stage, sectionID, cause)
	if err := s.status.Transition(ctx, sectionID, model.ExtractionFailed, StatusAttrs{Error: cause.Error()}); err != nil {
		log.Printf("[EXTRACT] Could not mark section %d as failed: %v", sectionID, err)
	}
	s.jobs.FailJob(ctx, jobID, sectionID, cause)
}
