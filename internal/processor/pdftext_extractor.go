/**
 * Native PDF text backend
 *
 * Reads the embedded text layer directly, no OCR and no network. Fastest
 * backend and the accuracy baseline for born-digital documents; scanned
 * PDFs come back empty.
 */

package processor

import (
	"context"

	"github.com/ocrlab/ocrbench/internal/logging"
	"github.com/ocrlab/ocrbench/internal/pdf"
)

type pdfTextExtractor struct {
	logger *logging.Logger
}

func newPDFTextExtractor() *pdfTextExtractor {
	return &pdfTextExtractor{
		logger: logging.NewLogger("PDFTextExtractor"),
	}
}

func (e *pdfTextExtractor) Name() string {
	return string(KindPDFText)
}

func (e *pdfTextExtractor) EmitsMarkdown() bool {
	return false
}

func (e *pdfTextExtractor) ExtractDocument(ctx context.Context, doc *pdf.Document) (*DocumentResult, error) {
	pages, err := doc.ExtractPageTexts()
	if err != nil {
		return nil, err
	}

	e.logger.Debug("Text layer extracted", "pages", len(pages))
	return &DocumentResult{Pages: pages}, nil
}
