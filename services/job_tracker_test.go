package services

import (
	"context"
	"errors"
	"testing"

	"github.com/prepstack/mockexam-api/utils/cache"
)

func TestJobTrackerWithoutRedis(t *testing.T) {
	tracker := NewJobTracker(nil)
	ctx := context.Background()

	// Locking degrades to always-acquired
	release, ok := tracker.AcquireSectionLock(ctx, 1)
	if !ok {
		t.Fatal("nil-cache tracker must not block runs")
	}
	release()

	// State writes are silently dropped
	jobID := tracker.StartJob(ctx, 1)
	if jobID == "" {
		t.Fatal("StartJob must still mint a job id")
	}
	tracker.CompleteJob(ctx, jobID, 1, 3, 1)

	if _, err := tracker.GetJob(ctx, jobID); !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("GetJob without redis = %v, want ErrNotFound", err)
	}
}
