package clients

import (
	"context"
	"fmt"
	"testing"
	"time"

	harnesserrors "github.com/ocrlab/ocrbench/internal/errors"
	"github.com/ocrlab/ocrbench/internal/logging"
)

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   harnesserrors.ErrorCode
	}{
		{"401 is auth", 401, `{"error":"invalid key"}`, harnesserrors.ErrorAuthFailed},
		{"403 plain is auth", 403, `{"error":"forbidden"}`, harnesserrors.ErrorAuthFailed},
		{"403 quota is quota", 403, `{"error":"Quota exceeded for this resource"}`, harnesserrors.ErrorQuotaExceeded},
		{"429 is rate limit", 429, `{"error":"too many requests"}`, harnesserrors.ErrorRateLimited},
		{"500 is network", 500, "internal error", harnesserrors.ErrorNetwork},
		{"503 is network", 503, "unavailable", harnesserrors.ErrorNetwork},
		{"400 is extraction", 400, "bad request", harnesserrors.ErrorExtractionFailed},
		{"404 is extraction", 404, "not found", harnesserrors.ErrorExtractionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyHTTPError("azure-vision", tt.status, []byte(tt.body))
			if got := harnesserrors.CodeOf(err); got != tt.code {
				t.Errorf("classifyHTTPError(%d) = %v, want %v", tt.status, got, tt.code)
			}
		})
	}
}

func TestDoWithRetryStopsOnFatal(t *testing.T) {
	logger := logging.NewLogger("test")
	calls := 0

	err := doWithRetry(context.Background(), logger, "azure-di", func() error {
		calls++
		return harnesserrors.NewAuthError("azure-di", "bad key")
	})

	if harnesserrors.CodeOf(err) != harnesserrors.ErrorAuthFailed {
		t.Fatalf("error = %v, want AUTH_FAILED", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1 (fatal errors must not retry)", calls)
	}
}

func TestDoWithRetrySucceedsAfterTransient(t *testing.T) {
	logger := logging.NewLogger("test")
	calls := 0

	err := doWithRetry(context.Background(), logger, "azure-vision", func() error {
		calls++
		if calls == 1 {
			return harnesserrors.NewNetworkError("azure-vision", fmt.Errorf("connection reset"))
		}
		return nil
	})

	if err != nil {
		t.Fatalf("error = %v, want nil", err)
	}
	if calls != 2 {
		t.Errorf("fn called %d times, want 2", calls)
	}
}

func TestDoWithRetryExhaustsBudget(t *testing.T) {
	logger := logging.NewLogger("test")
	calls := 0

	start := time.Now()
	err := doWithRetry(context.Background(), logger, "azure-vision", func() error {
		calls++
		return harnesserrors.NewRateLimitError("azure-vision", fmt.Errorf("throttled"))
	})
	elapsed := time.Since(start)

	if harnesserrors.CodeOf(err) != harnesserrors.ErrorRateLimited {
		t.Fatalf("error = %v, want RATE_LIMITED", err)
	}
	if calls != maxRetries {
		t.Errorf("fn called %d times, want %d", calls, maxRetries)
	}
	// Two doubling sleeps between the three attempts: 1s then 2s
	if elapsed < 3*time.Second {
		t.Errorf("elapsed = %v, want at least 3s of backoff", elapsed)
	}
}

func TestDoWithRetryHonorsCancelledContext(t *testing.T) {
	logger := logging.NewLogger("test")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := doWithRetry(ctx, logger, "azure-vision", func() error {
		calls++
		return harnesserrors.NewNetworkError("azure-vision", fmt.Errorf("down"))
	})

	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestTruncateBody(t *testing.T) {
	long := make([]byte, 2048)
	for i := range long {
		long[i] = 'x'
	}
	got := truncateBody(long)
	if len(got) != 512+3 {
		t.Errorf("truncateBody length = %d, want %d", len(got), 515)
	}

	if got := truncateBody([]byte("  short  ")); got != "short" {
		t.Errorf("truncateBody = %q, want trimmed %q", got, "short")
	}
}
