package queue

import (
	"testing"

	"github.com/hibiken/asynq"
)

func TestProcessTaskRoundTrip(t *testing.T) {
	payload := &ProcessTaskPayload{
		JobID:     "job-123",
		InputPath: "/docs/scan.pdf",
		Backends:  "pdftext,tesseract",
		OutputDir: "/out",
	}

	task, err := NewProcessTask(payload)
	if err != nil {
		t.Fatalf("NewProcessTask() error = %v", err)
	}
	if task.Type() != TypeProcess {
		t.Errorf("Type() = %q, want %q", task.Type(), TypeProcess)
	}

	got, err := ParseProcessTask(task)
	if err != nil {
		t.Fatalf("ParseProcessTask() error = %v", err)
	}
	if *got != *payload {
		t.Errorf("round trip = %+v, want %+v", got, payload)
	}
}

func TestParseProcessTaskRejectsIncompletePayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"missing job id", `{"input_path":"/a.pdf"}`},
		{"missing input path", `{"job_id":"j1"}`},
		{"not json", `garbage`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := asynq.NewTask(TypeProcess, []byte(tt.payload))
			if _, err := ParseProcessTask(task); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}
