/**
 * Shared types for the OCR comparison pipeline
 */

package processor

import (
	"time"
)

// PageExtraction is the outcome of extracting one page. Exactly one of Text
// or Err carries meaning; a failed page still occupies its slot so the
// aggregate stays ordered.
type PageExtraction struct {
	PageNumber int
	Text       string
	Markdown   string
	Err        error
}

// Failed reports whether this page's extraction failed
func (p PageExtraction) Failed() bool {
	return p.Err != nil
}

// AggregateResult is the merged outcome of one backend over one document
type AggregateResult struct {
	Backend   string
	Pages     []PageExtraction
	Text      string
	Markdown  string
	CharCount int
	PageCount int
	Duration  time.Duration

	// Populated by the writer
	OutputPath   string
	MarkdownPath string
}

// FailedPages returns the 1-based numbers of pages that hit the placeholder
// policy
func (r *AggregateResult) FailedPages() []int {
	var failed []int
	for _, p := range r.Pages {
		if p.Failed() {
			failed = append(failed, p.PageNumber)
		}
	}
	return failed
}

// RunSummary is the per-backend record returned to the caller (and persisted
// when run history is enabled)
type RunSummary struct {
	RunID        string        `json:"run_id"`
	Backend      string        `json:"backend"`
	InputPath    string        `json:"input_path"`
	CharCount    int           `json:"char_count"`
	PageCount    int           `json:"page_count"`
	FailedPages  []int         `json:"failed_pages,omitempty"`
	OutputPath   string        `json:"output_path,omitempty"`
	MarkdownPath string        `json:"markdown_path,omitempty"`
	Duration     time.Duration `json:"duration"`
	Err          error         `json:"-"`
	ErrorCode    string        `json:"error_code,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// Succeeded reports whether the backend run completed (placeholder pages
// included)
func (s *RunSummary) Succeeded() bool {
	return s.Err == nil
}
