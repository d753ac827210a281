package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/prepstack/mockexam-api/model"
)

const (
	// staleExtractionAge is how long a section may sit in in_progress before
	// the sweeper declares the run dead (crashed process, lost worker)
	staleExtractionAge = 30 * time.Minute

	// terminalJobStateAge is how long completed/failed job state stays in
	// Redis before cleanup removes it ahead of its TTL
	terminalJobStateAge = 6 * time.Hour

	// cronLogRetention is how long cron execution logs are kept
	cronLogRetention = 30 * 24 * time.Hour
)

// SweepStaleExtractions marks sections stuck in in_progress as failed. A
// run that crashes between the in_progress and terminal transitions would
// otherwise block the UI on a spinner forever.
func (m *CronManager) SweepStaleExtractions() {
	jobName := "sweep_stale_extractions"
	cutoff := time.Now().Add(-staleExtractionAge)

	result := m.db.Model(&model.ExamSection{}).
		Where("extraction_status = ? AND extraction_started_at < ?", model.ExtractionInProgress, cutoff).
		Updates(map[string]interface{}{
			"extraction_status": model.ExtractionFailed,
			"extraction_error":  "extraction timed out",
		})
	if result.Error != nil {
		m.logJobError(jobName, result.Error)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Marked %d stale extraction(s) as failed", result.RowsAffected))
}

// CleanupJobState removes terminal extraction job state from Redis ahead of
// its TTL. Skips itself entirely when Redis is not configured.
func (m *CronManager) CleanupJobState() {
	jobName := "cleanup_job_state"

	if m.cache == nil {
		m.logJobComplete(jobName, "Redis not configured, nothing to clean")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	keys, err := m.cache.Keys(ctx, fmt.Sprintf(model.RedisKeyJobState, "*"))
	if err != nil {
		m.logJobError(jobName, err)
		return
	}

	removed := 0
	cutoff := time.Now().Add(-terminalJobStateAge)
	for _, key := range keys {
		var job model.ExtractionJob
		if err := m.cache.GetJSON(ctx, key, &job); err != nil {
			continue
		}
		if job.Status != model.JobStatusCompleted && job.Status != model.JobStatusFailed {
			continue
		}
		if job.UpdatedAt.After(cutoff) {
			continue
		}
		if err := m.cache.Delete(ctx, key); err == nil {
			removed++
		}
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d terminal job state entries", removed))
}

// CleanupOldLogs deletes cron execution logs past the retention window
func (m *CronManager) CleanupOldLogs() {
	jobName := "cleanup_old_logs"
	cutoff := time.Now().Add(-cronLogRetention)

	result := m.db.Where("started_at < ?", cutoff).Delete(&model.CronJobLog{})
	if result.Error != nil {
		m.logJobError(jobName, result.Error)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Deleted %d old cron log(s)", result.RowsAffected))
}
