/**
 * Shared HTTP plumbing for cloud backend clients
 *
 * Maps vendor HTTP status codes onto the harness error taxonomy and
 * provides the bounded exponential-backoff retry loop used by every
 * networked client. Auth and quota failures are never retried.
 */

package clients

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	harnesserrors "github.com/ocrlab/ocrbench/internal/errors"
	"github.com/ocrlab/ocrbench/internal/logging"
)

// Three attempts with doubling backoff: the sleeps between them are 1s
// and 2s, so a transient failure costs at most ~3s before it surfaces.
const (
	maxRetries       = 3
	initialBackoffMs = 1000
)

// classifyHTTPError converts a non-2xx vendor response into a structured
// ProcessingError. The raw response body is preserved as the diagnostic.
func classifyHTTPError(backend string, statusCode int, body []byte) error {
	diag := fmt.Errorf("HTTP %d: %s", statusCode, truncateBody(body))

	switch {
	case statusCode == 401:
		return harnesserrors.NewAuthError(backend,
			fmt.Sprintf("Backend %s rejected the API key (HTTP 401): %s", backend, truncateBody(body)))
	case statusCode == 403:
		// Azure reports an exhausted quota as 403 with a quota message;
		// everything else under 403 is a credential/permission problem
		if bytes.Contains(bytes.ToLower(body), []byte("quota")) {
			return harnesserrors.NewQuotaExceededError(backend, diag)
		}
		return harnesserrors.NewAuthError(backend,
			fmt.Sprintf("Backend %s denied access (HTTP 403): %s", backend, truncateBody(body)))
	case statusCode == 429:
		return harnesserrors.NewRateLimitError(backend, diag)
	case statusCode >= 500:
		return harnesserrors.NewNetworkError(backend, diag)
	default:
		return harnesserrors.NewExtractionError(backend, 0, diag)
	}
}

func truncateBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 512 {
		s = s[:512] + "..."
	}
	return s
}

// doWithRetry runs fn, retrying rate-limit and network failures with
// exponential backoff. Fatal errors are surfaced immediately. After retries
// are exhausted the last error is returned with its backend diagnostic
// intact.
func doWithRetry(ctx context.Context, logger *logging.Logger, backend string, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !harnesserrors.IsRetryable(lastErr) {
			return lastErr
		}

		if attempt == maxRetries {
			break
		}

		backoffMs := initialBackoffMs << (attempt - 1)

		logger.Warn("Retrying after transient failure",
			"backend", backend,
			"attempt", attempt,
			"backoffMs", backoffMs,
			"error", lastErr)

		select {
		case <-time.After(time.Duration(backoffMs) * time.Millisecond):
		case <-ctx.Done():
			return harnesserrors.NewNetworkError(backend, ctx.Err())
		}
	}

	return lastErr
}
