package queue

import (
	"testing"
	"time"
)

func TestNextStatusCarriesEnqueuedAt(t *testing.T) {
	enqueued := time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC)
	prev := &JobStatus{
		JobID:      "job-1",
		Status:     StatusQueued,
		InputPath:  "/data/doc.pdf",
		EnqueuedAt: enqueued,
	}
	payload := &ProcessTaskPayload{JobID: "job-1", InputPath: "/data/doc.pdf"}

	for _, state := range []string{StatusProcessing, StatusCompleted, StatusFailed} {
		status := nextStatus(prev, payload, state)
		if status.Status != state {
			t.Errorf("Status = %q, want %q", status.Status, state)
		}
		if !status.EnqueuedAt.Equal(enqueued) {
			t.Errorf("state %s: EnqueuedAt = %v, want %v", state, status.EnqueuedAt, enqueued)
		}
	}
}

func TestNextStatusWithoutPreviousRecord(t *testing.T) {
	payload := &ProcessTaskPayload{JobID: "job-2", InputPath: "/data/doc.pdf"}

	status := nextStatus(nil, payload, StatusProcessing)
	if status.JobID != "job-2" || status.InputPath != "/data/doc.pdf" {
		t.Errorf("status = %+v", status)
	}
	if !status.EnqueuedAt.IsZero() {
		t.Errorf("EnqueuedAt = %v, want zero", status.EnqueuedAt)
	}
}
