package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *ProcessingError
		code ErrorCode
	}{
		{"unsupported format", NewUnsupportedFormatError("doc.txt", nil), ErrorUnsupportedFormat},
		{"conversion", NewConversionError(3, fmt.Errorf("boom")), ErrorConversionFailed},
		{"auth", NewAuthError("azure-vision", "bad key"), ErrorAuthFailed},
		{"rate limit", NewRateLimitError("azure-vision", nil), ErrorRateLimited},
		{"network", NewNetworkError("azure-di", fmt.Errorf("timeout")), ErrorNetwork},
		{"quota", NewQuotaExceededError("vision-llm", nil), ErrorQuotaExceeded},
		{"extraction", NewExtractionError("tesseract", 2, fmt.Errorf("boom")), ErrorExtractionFailed},
		{"io", NewIOError("/out/x.txt", fmt.Errorf("disk full")), ErrorIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.code {
				t.Errorf("CodeOf() = %v, want %v", got, tt.code)
			}
		})
	}
}

func TestCodeOfNonProcessingError(t *testing.T) {
	if got := CodeOf(fmt.Errorf("plain")); got != "" {
		t.Errorf("CodeOf(plain error) = %q, want empty", got)
	}
	if got := CodeOf(nil); got != "" {
		t.Errorf("CodeOf(nil) = %q, want empty", got)
	}
}

func TestCodeOfWrapped(t *testing.T) {
	inner := NewAuthError("azure-di", "invalid key")
	wrapped := fmt.Errorf("backend run: %w", inner)

	if got := CodeOf(wrapped); got != ErrorAuthFailed {
		t.Errorf("CodeOf(wrapped) = %v, want %v", got, ErrorAuthFailed)
	}
}

func TestFatalVsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		fatal     bool
		retryable bool
	}{
		{"auth is fatal", NewAuthError("b", "m"), true, false},
		{"format is fatal", NewUnsupportedFormatError("p", nil), true, false},
		{"quota is fatal", NewQuotaExceededError("b", nil), true, false},
		{"rate limit is retryable", NewRateLimitError("b", nil), false, true},
		{"network is retryable", NewNetworkError("b", nil), false, true},
		{"extraction is neither", NewExtractionError("b", 1, nil), false, false},
		{"conversion is neither", NewConversionError(1, nil), false, false},
		{"io is neither", NewIOError("p", nil), false, false},
		{"plain error is neither", fmt.Errorf("plain"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFatal(tt.err); got != tt.fatal {
				t.Errorf("IsFatal() = %v, want %v", got, tt.fatal)
			}
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := NewExtractionError("tesseract", 4, cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

func TestErrorMessageIncludesContext(t *testing.T) {
	err := NewExtractionError("azure-vision", 7, fmt.Errorf("boom"))
	msg := err.Error()

	for _, want := range []string{"EXTRACTION_FAILED", "page=7", "stage=extract", "boom"} {
		if !contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestToMap(t *testing.T) {
	err := NewExtractionError("tesseract", 2, fmt.Errorf("boom"))
	m := err.ToMap()

	if m["error_code"] != "EXTRACTION_FAILED" {
		t.Errorf("error_code = %v", m["error_code"])
	}
	if m["backend"] != "tesseract" {
		t.Errorf("backend = %v", m["backend"])
	}
	if m["page"] != 2 {
		t.Errorf("page = %v", m["page"])
	}
	if m["cause"] != "boom" {
		t.Errorf("cause = %v", m["cause"])
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
