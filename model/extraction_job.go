package model

import "time"

// ExtractionJobStatus represents the status of an extraction job
type ExtractionJobStatus string

const (
	JobStatusPending    ExtractionJobStatus = "pending"
	JobStatusInProgress ExtractionJobStatus = "in_progress"
	JobStatusCompleted  ExtractionJobStatus = "completed"
	JobStatusFailed     ExtractionJobStatus = "failed"
)

// ExtractionJob is the ephemeral state of one ingestion run, kept in Redis.
// The section row in Postgres remains the source of truth; this record only
// exists so clients can poll a run without hitting the database.
type ExtractionJob struct {
	JobID     string              `json:"job_id"`
	SectionID uint                `json:"section_id"`
	Status    ExtractionJobStatus `json:"status"`
	Message   string              `json:"message,omitempty"`

	// Result (set on completion)
	TotalQuestions           int `json:"total_questions,omitempty"`
	QuestionsRequiringReview int `json:"questions_requiring_review,omitempty"`

	// Error tracking
	Error string `json:"error,omitempty"`

	// Timestamps
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Redis key patterns for extraction jobs
const (
	// RedisKeyJobState stores the full job state as JSON
	// Usage: fmt.Sprintf(RedisKeyJobState, jobID)
	RedisKeyJobState = "extract:state:%s"

	// RedisKeySectionLock guards against two concurrent runs for one section
	// Usage: fmt.Sprintf(RedisKeySectionLock, sectionID)
	RedisKeySectionLock = "extract:lock:%d"
)
