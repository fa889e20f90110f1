/**
 * Queue task definitions
 */

package queue

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// TypeProcess is the task type for a queued document extraction
const TypeProcess = "ocr:process"

// ProcessTaskPayload describes one queued extraction job
type ProcessTaskPayload struct {
	JobID     string `json:"job_id"`
	InputPath string `json:"input_path"`
	Backends  string `json:"backends"`
	OutputDir string `json:"output_dir,omitempty"`
}

// NewProcessTask builds the asynq task for payload
func NewProcessTask(payload *ProcessTaskPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task payload: %w", err)
	}
	return asynq.NewTask(TypeProcess, data), nil
}

// ParseProcessTask decodes a task back into its payload
func ParseProcessTask(task *asynq.Task) (*ProcessTaskPayload, error) {
	var payload ProcessTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task payload: %w", err)
	}
	if payload.JobID == "" || payload.InputPath == "" {
		return nil, fmt.Errorf("task payload missing job_id or input_path")
	}
	return &payload, nil
}
