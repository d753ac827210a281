package cron

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/prepstack/mockexam-api/model"
	"github.com/prepstack/mockexam-api/utils/cache"
)

// CronManager manages all scheduled background jobs
type CronManager struct {
	cron  *cron.Cron
	db    *gorm.DB
	cache *cache.RedisCache
}

// NewCronManager creates a new cron manager. The cache may be nil; jobs that
// need Redis skip themselves.
func NewCronManager(db *gorm.DB, redisCache *cache.RedisCache) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron:  c,
		db:    db,
		cache: redisCache,
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// 1. Every 5 minutes: sweep extractions stuck in in_progress
	_, err := m.cron.AddFunc("0 */5 * * * *", func() {
		m.logJobStart("sweep_stale_extractions")
		m.SweepStaleExtractions()
	})
	if err != nil {
		return err
	}

	// 2. Every hour: drop expired extraction job state from Redis
	_, err = m.cron.AddFunc("0 0 * * * *", func() {
		m.logJobStart("cleanup_job_state")
		m.CleanupJobState()
	})
	if err != nil {
		return err
	}

	// 3. Daily at 2 AM: cleanup old cron logs
	_, err = m.cron.AddFunc("0 0 2 * * *", func() {
		m.logJobStart("cleanup_old_logs")
		m.CleanupOldLogs()
	})
	if err != nil {
		return err
	}

	log.Println("All cron jobs registered successfully")
	return nil
}

// logJobStart logs the start of a cron job
func (m *CronManager) logJobStart(jobName string) {
	log.Printf("[CRON] Starting job: %s at %s", jobName, time.Now().Format(time.RFC3339))

	cronLog := model.CronJobLog{
		JobName:   jobName,
		Status:    "running",
		StartedAt: time.Now(),
	}
	m.db.Create(&cronLog)
}

// logJobComplete logs successful completion of a cron job
func (m *CronManager) logJobComplete(jobName string, message string) {
	log.Printf("[CRON] Completed job: %s - %s", jobName, message)

	m.finishJob(jobName, map[string]interface{}{
		"status":  "completed",
		"message": message,
	})
}

// logJobError logs a cron job error
func (m *CronManager) logJobError(jobName string, err error) {
	log.Printf("[CRON] Error in job: %s - %v", jobName, err)

	m.finishJob(jobName, map[string]interface{}{
		"status":    "failed",
		"error_msg": err.Error(),
	})
}

// finishJob closes the most recent running log row for the job, stamping
// completion time and elapsed duration in milliseconds.
func (m *CronManager) finishJob(jobName string, updates map[string]interface{}) {
	var entry model.CronJobLog
	if err := m.db.
		Where("job_name = ? AND status = ?", jobName, "running").
		Order("started_at DESC").
		First(&entry).Error; err != nil {
		return
	}

	now := time.Now()
	updates["completed_at"] = now
	updates["duration"] = int(now.Sub(entry.StartedAt).Milliseconds())
	m.db.Model(&entry).Updates(updates)
}
