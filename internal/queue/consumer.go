/**
 * Queue consumer
 *
 * Worker-side asynq server: pulls extraction jobs off the queue, drives
 * the harness, and records the outcome in the status store. Fatal
 * configuration errors skip retry; transient failures get exponential
 * retry delays from asynq.
 */

package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ocrlab/ocrbench/internal/config"
	harnesserrors "github.com/ocrlab/ocrbench/internal/errors"
	"github.com/ocrlab/ocrbench/internal/logging"
	"github.com/ocrlab/ocrbench/internal/processor"
)

// Consumer processes queued extraction jobs
type Consumer struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	harness *processor.Harness
	status  *StatusStore
	cfg     *config.Config
	logger  *logging.Logger
}

// NewConsumer builds the worker-side server
func NewConsumer(cfg *config.Config, harness *processor.Harness) (*Consumer, error) {
	connOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	status, err := NewStatusStore(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	logger := logging.NewLogger("QueueConsumer")

	server := asynq.NewServer(connOpt, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues: map[string]int{
			cfg.QueueName: 1,
		},
		RetryDelayFunc: func(n int, e error, t *asynq.Task) time.Duration {
			// 5s, 10s, 20s, capped at 60s
			delay := 5 * time.Second << uint(n)
			if delay > 60*time.Second {
				delay = 60 * time.Second
			}
			return delay
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error("Task failed", "type", task.Type(), "error", err)
		}),
	})

	c := &Consumer{
		server:  server,
		mux:     asynq.NewServeMux(),
		harness: harness,
		status:  status,
		cfg:     cfg,
		logger:  logger,
	}
	c.mux.HandleFunc(TypeProcess, c.handleProcess)

	return c, nil
}

// Start launches the server's worker goroutines; signal handling stays with
// the caller
func (c *Consumer) Start() error {
	c.logger.Info("Worker starting",
		"queue", c.cfg.QueueName,
		"concurrency", c.cfg.WorkerConcurrency)
	return c.server.Start(c.mux)
}

// Shutdown drains in-flight jobs and stops the server
func (c *Consumer) Shutdown() {
	c.logger.Info("Worker shutting down")
	c.server.Shutdown()
	c.status.Close()
}

func (c *Consumer) handleProcess(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseProcessTask(task)
	if err != nil {
		// A malformed payload will never parse on retry
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	c.logger.Info("Processing job",
		"jobId", payload.JobID,
		"input", payload.InputPath)

	// The producer seeded the status record with the enqueue time; every
	// later update must carry it forward or pollers lose the queue latency
	prev, err := c.status.Get(ctx, payload.JobID)
	if err != nil {
		prev = nil
	}

	c.setStatus(ctx, nextStatus(prev, payload, StatusProcessing))

	kinds, err := processor.ParseKinds(payload.Backends)
	if err != nil {
		c.failJob(ctx, prev, payload, err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	runCtx, cancel := context.WithTimeout(ctx,
		time.Duration(c.cfg.ProcessingTimeout)*time.Millisecond)
	defer cancel()

	summaries, err := c.harness.WithOutputDir(payload.OutputDir).ProcessDocument(runCtx, payload.InputPath, kinds)
	if err != nil {
		c.failJob(ctx, prev, payload, err)
		if harnesserrors.IsFatal(err) {
			// Bad input or credentials will not improve on retry
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	done := nextStatus(prev, payload, StatusCompleted)
	done.Summaries = summaries
	c.setStatus(ctx, done)

	c.logger.Info("Job complete",
		"jobId", payload.JobID,
		"backends", len(summaries))

	return nil
}

// nextStatus derives the follow-up record for a job's next lifecycle state,
// preserving the enqueue timestamp from the previous record when one exists
func nextStatus(prev *JobStatus, payload *ProcessTaskPayload, state string) *JobStatus {
	status := &JobStatus{
		JobID:     payload.JobID,
		Status:    state,
		InputPath: payload.InputPath,
	}
	if prev != nil {
		status.EnqueuedAt = prev.EnqueuedAt
	}
	return status
}

func (c *Consumer) failJob(ctx context.Context, prev *JobStatus, payload *ProcessTaskPayload, cause error) {
	status := nextStatus(prev, payload, StatusFailed)
	status.Error = cause.Error()
	c.setStatus(ctx, status)
}

func (c *Consumer) setStatus(ctx context.Context, status *JobStatus) {
	if err := c.status.Set(ctx, status); err != nil {
		c.logger.Warn("Failed to update job status",
			"jobId", status.JobID,
			"error", err)
	}
}
