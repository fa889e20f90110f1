/**
 * Custom error types for the OCR comparison harness
 *
 * Every failure in the pipeline is wrapped in a ProcessingError carrying a
 * structured code, the pipeline stage that failed (split, extract, write)
 * and, where applicable, the page index.
 */

package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode enum for structured error handling
type ErrorCode string

const (
	// Input errors
	ErrorUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	ErrorConversionFailed  ErrorCode = "CONVERSION_FAILED"

	// Backend errors
	ErrorAuthFailed       ErrorCode = "AUTH_FAILED"
	ErrorRateLimited      ErrorCode = "RATE_LIMITED"
	ErrorNetwork          ErrorCode = "NETWORK_ERROR"
	ErrorQuotaExceeded    ErrorCode = "QUOTA_EXCEEDED"
	ErrorExtractionFailed ErrorCode = "EXTRACTION_FAILED"

	// Output errors
	ErrorIO ErrorCode = "IO_ERROR"
)

// Pipeline stages, used in error messages so a failing run names the stage.
const (
	StageSplit   = "split"
	StageExtract = "extract"
	StageWrite   = "write"
)

// ProcessingError represents a structured processing error
type ProcessingError struct {
	Code      ErrorCode
	Message   string
	Stage     string
	Backend   string
	Page      int // 1-based page index, 0 when not page-specific
	Timestamp time.Time
	Details   map[string]interface{}
	Cause     error
}

func (e *ProcessingError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Stage != "" {
		msg = fmt.Sprintf("%s [stage=%s]", msg, e.Stage)
	}
	if e.Page > 0 {
		msg = fmt.Sprintf("%s [page=%d]", msg, e.Page)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (caused by: %v)", msg, e.Cause)
	}
	return msg
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

// CodeOf returns the structured code of err, or "" if err is not a ProcessingError.
func CodeOf(err error) ErrorCode {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsFatal reports whether err must abort the whole run immediately.
// Misconfiguration does not resolve itself: auth and format errors are never
// retried, and an exhausted quota will not refill mid-run.
func IsFatal(err error) bool {
	switch CodeOf(err) {
	case ErrorAuthFailed, ErrorUnsupportedFormat, ErrorQuotaExceeded:
		return true
	}
	return false
}

// IsRetryable reports whether err may succeed on a bounded retry with backoff.
func IsRetryable(err error) bool {
	switch CodeOf(err) {
	case ErrorRateLimited, ErrorNetwork:
		return true
	}
	return false
}

// Factory functions for common errors

func NewUnsupportedFormatError(path string, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorUnsupportedFormat,
		Message:   fmt.Sprintf("Input is not a valid PDF document: %s", path),
		Stage:     StageSplit,
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"path": path,
		},
		Cause: cause,
	}
}

func NewConversionError(page int, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorConversionFailed,
		Message:   fmt.Sprintf("Failed to rasterize page %d", page),
		Stage:     StageSplit,
		Page:      page,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

func NewAuthError(backend string, message string) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorAuthFailed,
		Message:   message,
		Stage:     StageExtract,
		Backend:   backend,
		Timestamp: time.Now(),
	}
}

func NewRateLimitError(backend string, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorRateLimited,
		Message:   fmt.Sprintf("Backend %s is throttling requests", backend),
		Stage:     StageExtract,
		Backend:   backend,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

func NewNetworkError(backend string, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorNetwork,
		Message:   fmt.Sprintf("Network request to backend %s failed", backend),
		Stage:     StageExtract,
		Backend:   backend,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

func NewQuotaExceededError(backend string, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorQuotaExceeded,
		Message:   fmt.Sprintf("Backend %s quota exhausted", backend),
		Stage:     StageExtract,
		Backend:   backend,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

func NewExtractionError(backend string, page int, cause error) *ProcessingError {
	msg := fmt.Sprintf("Extraction failed on backend %s", backend)
	if page > 0 {
		msg = fmt.Sprintf("%s (page %d)", msg, page)
	}
	return &ProcessingError{
		Code:      ErrorExtractionFailed,
		Message:   msg,
		Stage:     StageExtract,
		Backend:   backend,
		Page:      page,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

func NewIOError(path string, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorIO,
		Message:   fmt.Sprintf("Failed to write output: %s", path),
		Stage:     StageWrite,
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"path": path,
		},
		Cause: cause,
	}
}

// ToMap converts error to map for database storage
func (e *ProcessingError) ToMap() map[string]interface{} {
	result := map[string]interface{}{
		"error_code": string(e.Code),
		"message":    e.Message,
		"timestamp":  e.Timestamp,
	}

	if e.Stage != "" {
		result["stage"] = e.Stage
	}
	if e.Backend != "" {
		result["backend"] = e.Backend
	}
	if e.Page > 0 {
		result["page"] = e.Page
	}

	for k, v := range e.Details {
		result[k] = v
	}

	if e.Cause != nil {
		result["cause"] = e.Cause.Error()
	}

	return result
}
