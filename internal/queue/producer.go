/**
 * Queue producer
 *
 * Enqueues extraction jobs onto the asynq queue and seeds their status
 * record so the submitter can poll progress immediately.
 */

package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ocrlab/ocrbench/internal/logging"
)

// Producer enqueues extraction jobs
type Producer struct {
	client    *asynq.Client
	status    *StatusStore
	queueName string
	logger    *logging.Logger
}

// NewProducer connects the asynq client and the status store to Redis
func NewProducer(redisURL, queueName string) (*Producer, error) {
	connOpt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	status, err := NewStatusStore(redisURL)
	if err != nil {
		return nil, err
	}

	return &Producer{
		client:    asynq.NewClient(connOpt),
		status:    status,
		queueName: queueName,
		logger:    logging.NewLogger("QueueProducer"),
	}, nil
}

// Enqueue submits inputPath for background extraction and returns the job id
func (p *Producer) Enqueue(ctx context.Context, inputPath, backends, outputDir string) (string, error) {
	jobID := uuid.NewString()

	task, err := NewProcessTask(&ProcessTaskPayload{
		JobID:     jobID,
		InputPath: inputPath,
		Backends:  backends,
		OutputDir: outputDir,
	})
	if err != nil {
		return "", err
	}

	info, err := p.client.EnqueueContext(ctx, task,
		asynq.Queue(p.queueName),
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Minute),
	)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue job: %w", err)
	}

	if err := p.status.Set(ctx, &JobStatus{
		JobID:      jobID,
		Status:     StatusQueued,
		InputPath:  inputPath,
		EnqueuedAt: time.Now().UTC(),
	}); err != nil {
		p.logger.Warn("Failed to seed job status", "jobId", jobID, "error", err)
	}

	p.logger.Info("Job enqueued",
		"jobId", jobID,
		"taskId", info.ID,
		"queue", info.Queue,
		"input", inputPath)

	return jobID, nil
}

// Status returns the current status of a job
func (p *Producer) Status(ctx context.Context, jobID string) (*JobStatus, error) {
	return p.status.Get(ctx, jobID)
}

// Close releases the asynq client and the status store
func (p *Producer) Close() error {
	err := p.client.Close()
	if cerr := p.status.Close(); err == nil {
		err = cerr
	}
	return err
}
