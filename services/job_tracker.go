package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/prepstack/mockexam-api/model"
	"github.com/prepstack/mockexam-api/utils/cache"
)

const (
	// SectionLockTTL bounds how long a crashed run can hold a section lock
	SectionLockTTL = 5 * time.Minute
	// jobStateTTL keeps finished job state around long enough for polling
	// clients and the cleanup cron
	jobStateTTL = 24 * time.Hour
)

// JobTracker records extraction job state in Redis and guards sections
// against concurrent runs. Every write is best-effort: Redis being down
// degrades tracking, it never fails a job.
type JobTracker struct {
	cache *cache.RedisCache
}

// NewJobTracker creates a tracker. A nil cache disables locking and state
// tracking entirely.
func NewJobTracker(c *cache.RedisCache) *JobTracker {
	return &JobTracker{cache: c}
}

// AcquireSectionLock takes the per-section extraction lock. It returns a
// release function and whether the lock was obtained. When Redis is absent
// or erroring the run proceeds unguarded.
func (t *JobTracker) AcquireSectionLock(ctx context.Context, sectionID uint) (release func(), ok bool) {
	if t.cache == nil {
		return func() {}, true
	}

	key := fmt.Sprintf(model.RedisKeySectionLock, sectionID)
	owner := uuid.New().String()
	acquired, err := t.cache.AcquireLock(ctx, key, owner, SectionLockTTL)
	if err != nil {
		log.Printf("[EXTRACT] Lock acquisition for section %d failed, proceeding unguarded: %v", sectionID, err)
		return func() {}, true
	}
	if !acquired {
		return func() {}, false
	}

	return func() {
		if err := t.cache.ReleaseLock(context.Background(), key, owner); err != nil {
			log.Printf("[EXTRACT] Failed to release lock for section %d: %v", sectionID, err)
		}
	}, true
}

// StartJob records a new in-progress job for the section and returns its id
func (t *JobTracker) StartJob(ctx context.Context, sectionID uint) string {
	jobID := uuid.New().String()
	now := time.Now()
	t.put(ctx, &model.ExtractionJob{
		JobID:     jobID,
		SectionID: sectionID,
		Status:    model.JobStatusInProgress,
		Message:   "extraction started",
		StartedAt: now,
		UpdatedAt: now,
	})
	return jobID
}

// CompleteJob marks a job completed with its aggregates
func (t *JobTracker) CompleteJob(ctx context.Context, jobID string, sectionID uint, total, review int) {
	t.put(ctx, &model.ExtractionJob{
		JobID:                    jobID,
		SectionID:                sectionID,
		Status:                   model.JobStatusCompleted,
		Message:                  "extraction completed",
		TotalQuestions:           total,
		QuestionsRequiringReview: review,
		UpdatedAt:                time.Now(),
	})
}

// FailJob marks a job failed with the failure reason
func (t *JobTracker) FailJob(ctx context.Context, jobID string, sectionID uint, cause error) {
	t.put(ctx, &model.ExtractionJob{
		JobID:     jobID,
		SectionID: sectionID,
		Status:    model.JobStatusFailed,
		Message:   "extraction failed",
		Error:     cause.Error(),
		UpdatedAt: time.Now(),
	})
}

// GetJob fetches job state; returns cache.ErrNotFound when absent
func (t *JobTracker) GetJob(ctx context.Context, jobID string) (*model.ExtractionJob, error) {
	if t.cache == nil {
		return nil, cache.ErrNotFound
	}
	var job model.ExtractionJob
	if err := t.cache.GetJSON(ctx, fmt.Sprintf(model.RedisKeyJobState, jobID), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (t *JobTracker) put(ctx context.Context, job *model.ExtractionJob) {
	if t.cache == nil || job.JobID == "" {
		return
	}
	key := fmt.Sprintf(model.RedisKeyJobState, job.JobID)
	if err := t.cache.SetJSON(ctx, key, job, jobStateTTL); err != nil {
		log.Printf("[EXTRACT] Failed to record job state for %s: %v", job.JobID, err)
	}
}
