/**
 * Redis job status store
 *
 * Bookkeeping shared by producer and worker: the CLI enqueues a job and
 * can poll its status key while the worker updates it through the job's
 * lifecycle. Keys expire after a day so abandoned jobs don't accumulate.
 */

package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ocrlab/ocrbench/internal/logging"
	"github.com/ocrlab/ocrbench/internal/processor"
)

// Job lifecycle states
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

const statusTTL = 24 * time.Hour

// JobStatus is the stored state of one queued job
type JobStatus struct {
	JobID      string                  `json:"job_id"`
	Status     string                  `json:"status"`
	InputPath  string                  `json:"input_path"`
	Error      string                  `json:"error,omitempty"`
	Summaries  []*processor.RunSummary `json:"summaries,omitempty"`
	EnqueuedAt time.Time               `json:"enqueued_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

// StatusStore persists job status in Redis
type StatusStore struct {
	client *redis.Client
	logger *logging.Logger
}

// NewStatusStore connects to Redis at redisURL
func NewStatusStore(redisURL string) (*StatusStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &StatusStore{
		client: client,
		logger: logging.NewLogger("StatusStore"),
	}, nil
}

func statusKey(jobID string) string {
	return "ocrbench:job:" + jobID
}

// Set writes the full status record for a job
func (s *StatusStore) Set(ctx context.Context, status *JobStatus) error {
	status.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal job status: %w", err)
	}

	if err := s.client.Set(ctx, statusKey(status.JobID), data, statusTTL).Err(); err != nil {
		return fmt.Errorf("failed to store job status: %w", err)
	}

	s.logger.Debug("Job status updated",
		"jobId", status.JobID,
		"status", status.Status)

	return nil
}

// Get reads the status record for a job; redis.Nil maps to a not-found error
func (s *StatusStore) Get(ctx context.Context, jobID string) (*JobStatus, error) {
	data, err := s.client.Get(ctx, statusKey(jobID)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("job %s not found", jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read job status: %w", err)
	}

	var status JobStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job status: %w", err)
	}
	return &status, nil
}

// Close releases the Redis connection
func (s *StatusStore) Close() error {
	return s.client.Close()
}
