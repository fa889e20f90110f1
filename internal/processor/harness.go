/**
 * Comparison harness orchestration
 *
 * Runs a selection of backends over one document and collects a RunSummary
 * per backend. A backend failure is contained to its own summary so the
 * remaining backends still run; only an unusable input document fails the
 * whole call.
 */

package processor

import (
	"context"

	"github.com/google/uuid"

	"github.com/ocrlab/ocrbench/internal/config"
	harnesserrors "github.com/ocrlab/ocrbench/internal/errors"
	"github.com/ocrlab/ocrbench/internal/logging"
	"github.com/ocrlab/ocrbench/internal/pdf"
)

// ResultStore receives successful backend runs for persistence and
// similarity indexing. Implementations must tolerate partial configuration.
type ResultStore interface {
	StoreRunResult(ctx context.Context, summary *RunSummary, text string) error
}

// Harness coordinates splitting, extraction, aggregation and writing for a
// set of backends
type Harness struct {
	cfg       *config.Config
	splitter  *pdf.Splitter
	processor *Processor
	writer    *Writer
	store     ResultStore
	logger    *logging.Logger
}

// NewHarness creates a harness from configuration
func NewHarness(cfg *config.Config) *Harness {
	return &Harness{
		cfg: cfg,
		splitter: pdf.NewSplitter(&pdf.SplitterConfig{
			DPI:          cfg.RenderDPI,
			PdftoppmPath: cfg.PdftoppmPath,
			TempDir:      cfg.TempDir,
			MaxFileSize:  cfg.MaxFileSize,
		}),
		processor: NewProcessor(cfg.PageConcurrency, cfg.PageDelayMs),
		writer:    NewWriter(cfg.OutputDir),
		logger:    logging.NewLogger("Harness"),
	}
}

// SetResultStore attaches an optional persistence layer
func (h *Harness) SetResultStore(store ResultStore) {
	h.store = store
}

// WithOutputDir returns a harness writing into dir, sharing everything else.
// Queued jobs use it to honor their per-job output directory.
func (h *Harness) WithOutputDir(dir string) *Harness {
	if dir == "" || dir == h.cfg.OutputDir {
		return h
	}
	clone := *h
	clone.writer = NewWriter(dir)
	return &clone
}

// ProcessDocument runs every backend in kinds over inputPath. The returned
// error is non-nil only when the input itself is unusable; backend failures
// live in their summaries.
func (h *Harness) ProcessDocument(ctx context.Context, inputPath string, kinds []Kind) ([]*RunSummary, error) {
	runID := uuid.NewString()

	h.logger.Info("Processing document",
		"runId", runID,
		"input", inputPath,
		"backends", len(kinds))

	// Validate the input once, before any backend is constructed; a bad
	// document must fail before any network call
	doc, err := h.splitter.Open(ctx, inputPath)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	summaries := make([]*RunSummary, 0, len(kinds))
	for _, kind := range kinds {
		summary := h.runBackend(ctx, runID, inputPath, doc, kind)
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

func (h *Harness) runBackend(ctx context.Context, runID, inputPath string, doc *pdf.Document, kind Kind) *RunSummary {
	summary := &RunSummary{
		RunID:     runID,
		Backend:   string(kind),
		InputPath: inputPath,
	}

	fail := func(err error) *RunSummary {
		summary.Err = err
		summary.ErrorCode = string(harnesserrors.CodeOf(err))
		summary.ErrorMessage = err.Error()
		h.logger.Error("Backend run failed",
			"runId", runID,
			"backend", kind,
			"errorCode", summary.ErrorCode,
			"error", err)
		return summary
	}

	// Credential presence is verified before any page is touched
	ext, err := NewExtractor(kind, h.cfg)
	if err != nil {
		return fail(err)
	}

	result, err := h.processor.Run(ctx, ext, doc)
	if err != nil {
		return fail(err)
	}

	if err := h.writer.Write(inputPath, result, ext.EmitsMarkdown()); err != nil {
		return fail(err)
	}

	summary.CharCount = result.CharCount
	summary.PageCount = result.PageCount
	summary.FailedPages = result.FailedPages()
	summary.OutputPath = result.OutputPath
	summary.MarkdownPath = result.MarkdownPath
	summary.Duration = result.Duration

	h.logger.Info("Backend run complete",
		"runId", runID,
		"backend", kind,
		"chars", summary.CharCount,
		"pages", summary.PageCount,
		"failedPages", len(summary.FailedPages),
		"duration", summary.Duration)

	if h.store != nil {
		if err := h.store.StoreRunResult(ctx, summary, result.Text); err != nil {
			// Persistence is best-effort; the run itself already succeeded
			h.logger.Warn("Failed to persist run result",
				"runId", runID,
				"backend", kind,
				"error", err)
		}
	}

	return summary
}
