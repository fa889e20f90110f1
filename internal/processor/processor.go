/**
 * Per-backend extraction pipeline
 *
 * Drives one backend over one opened document: whole-document backends get
 * a single call, page backends get rendered pages either sequentially
 * (with a politeness delay between cloud requests) or under bounded
 * parallelism. Page failures follow the continue-with-placeholder policy;
 * fatal failures cancel in-flight work and abort before anything is
 * written.
 */

package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	harnesserrors "github.com/ocrlab/ocrbench/internal/errors"
	"github.com/ocrlab/ocrbench/internal/logging"
	"github.com/ocrlab/ocrbench/internal/pdf"
)

// PageSource supplies rendered page images to page backends. pdf.Document
// satisfies it through docSource; tests inject fakes.
type PageSource interface {
	NumPages() int
	RenderPage(ctx context.Context, page int) ([]byte, error)
}

type docSource struct {
	doc *pdf.Document
}

func (s docSource) NumPages() int {
	return s.doc.PageCount
}

func (s docSource) RenderPage(ctx context.Context, page int) ([]byte, error) {
	return s.doc.RenderPage(ctx, page)
}

// Processor runs extractors over documents
type Processor struct {
	concurrency int
	pageDelay   time.Duration
	logger      *logging.Logger
}

// NewProcessor creates a processor. concurrency <= 1 selects the sequential
// path, which is the only one that applies the inter-page delay.
func NewProcessor(concurrency int, pageDelayMs int) *Processor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Processor{
		concurrency: concurrency,
		pageDelay:   time.Duration(pageDelayMs) * time.Millisecond,
		logger:      logging.NewLogger("Processor"),
	}
}

// Run executes ext over doc and returns the ordered, aggregated result.
// The returned error is always a fatal one; per-page failures are inside
// the aggregate as placeholders.
func (p *Processor) Run(ctx context.Context, ext Extractor, doc *pdf.Document) (*AggregateResult, error) {
	start := time.Now()

	p.logger.Info("Starting extraction",
		"backend", ext.Name(),
		"document", doc.Path,
		"pages", doc.PageCount)

	var pages []PageExtraction

	switch x := ext.(type) {
	case DocumentExtractor:
		docResult, err := x.ExtractDocument(ctx, doc)
		if err != nil {
			return nil, err
		}
		pages = make([]PageExtraction, len(docResult.Pages))
		for i, text := range docResult.Pages {
			pages[i] = PageExtraction{PageNumber: i + 1, Text: text}
		}
		if len(pages) > 0 {
			pages[0].Markdown = docResult.Markdown
		}

	case PageExtractor:
		var err error
		pages, err = p.ExtractPages(ctx, x, docSource{doc})
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("backend %s implements neither capability interface", ext.Name())
	}

	result := Aggregate(ext.Name(), pages)
	result.Duration = time.Since(start)

	if failed := result.FailedPages(); len(failed) > 0 {
		p.logger.Warn("Extraction finished with failed pages",
			"backend", ext.Name(),
			"failedPages", failed)
	}

	return result, nil
}

// ExtractPages renders and extracts every page of src through ext,
// preserving page order. Exposed for pipeline tests with fake sources.
func (p *Processor) ExtractPages(ctx context.Context, ext PageExtractor, src PageSource) ([]PageExtraction, error) {
	n := src.NumPages()
	pages := make([]PageExtraction, n)
	if n == 0 {
		return pages, nil
	}

	if p.concurrency <= 1 {
		return p.extractSequential(ctx, ext, src, pages)
	}
	return p.extractParallel(ctx, ext, src, pages)
}

func (p *Processor) extractSequential(ctx context.Context, ext PageExtractor, src PageSource, pages []PageExtraction) ([]PageExtraction, error) {
	for page := 1; page <= len(pages); page++ {
		if page > 1 && p.pageDelay > 0 {
			select {
			case <-time.After(p.pageDelay):
			case <-ctx.Done():
				return nil, harnesserrors.NewExtractionError(ext.Name(), page, ctx.Err())
			}
		}

		extraction, fatal := p.extractOne(ctx, ext, src, page)
		if fatal != nil {
			return nil, fatal
		}
		pages[page-1] = extraction
	}
	return pages, nil
}

func (p *Processor) extractParallel(ctx context.Context, ext PageExtractor, src PageSource, pages []PageExtraction) ([]PageExtraction, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var fatalErr error

	for page := 1; page <= len(pages); page++ {
		wg.Add(1)
		go func(page int) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-runCtx.Done():
				return
			}
			defer func() { <-sem }()

			extraction, fatal := p.extractOne(runCtx, ext, src, page)
			if fatal != nil {
				mu.Lock()
				if fatalErr == nil {
					fatalErr = fatal
					cancel()
				}
				mu.Unlock()
				return
			}

			// Each goroutine owns exactly one slot; the ordered merge is
			// the slice index itself
			pages[page-1] = extraction
		}(page)
	}

	wg.Wait()

	if fatalErr != nil {
		return nil, fatalErr
	}
	return pages, nil
}

// extractOne renders and extracts a single page. The second return value is
// non-nil only for failures that must abort the whole run.
func (p *Processor) extractOne(ctx context.Context, ext PageExtractor, src PageSource, page int) (PageExtraction, error) {
	image, err := src.RenderPage(ctx, page)
	if err != nil {
		if isRunFatal(err) || ctx.Err() != nil {
			return PageExtraction{}, err
		}
		return PageExtraction{PageNumber: page, Err: err}, nil
	}

	text, err := ext.ExtractPage(ctx, image, page)
	if err != nil {
		if isRunFatal(err) || ctx.Err() != nil {
			return PageExtraction{}, err
		}
		return PageExtraction{PageNumber: page, Err: err}, nil
	}

	return PageExtraction{PageNumber: page, Text: text}, nil
}

// isRunFatal decides abort-vs-placeholder for a page failure. Retryable
// errors reaching this point have already exhausted their backoff budget
// inside the client, so they abort too; only plain extraction and
// conversion failures fall through to the placeholder policy.
func isRunFatal(err error) bool {
	return harnesserrors.IsFatal(err) || harnesserrors.IsRetryable(err)
}
