/**
 * Azure Document Intelligence backend
 *
 * The only cloud backend that consumes the whole PDF natively, so no page
 * rasterization happens on this path. prebuilt-layout additionally returns
 * the document as Markdown, preserving table and heading structure.
 */

package processor

import (
	"context"

	"github.com/ocrlab/ocrbench/internal/clients"
	"github.com/ocrlab/ocrbench/internal/logging"
	"github.com/ocrlab/ocrbench/internal/pdf"
)

type azureDIExtractor struct {
	client *clients.AzureDocIntelClient
	logger *logging.Logger
}

func newAzureDIExtractor(client *clients.AzureDocIntelClient) *azureDIExtractor {
	return &azureDIExtractor{
		client: client,
		logger: logging.NewLogger("AzureDIExtractor"),
	}
}

func (e *azureDIExtractor) Name() string {
	return string(KindAzureDI)
}

func (e *azureDIExtractor) EmitsMarkdown() bool {
	return e.client.SupportsMarkdown()
}

func (e *azureDIExtractor) ExtractDocument(ctx context.Context, doc *pdf.Document) (*DocumentResult, error) {
	analysis, err := e.client.AnalyzeDocument(ctx, doc.Bytes())
	if err != nil {
		return nil, err
	}

	// The service reports pages by number; keep the document's own page
	// count authoritative so a short response still yields a full slice
	pages := make([]string, doc.PageCount)
	for _, p := range analysis.Pages {
		if p.PageNumber >= 1 && p.PageNumber <= doc.PageCount {
			pages[p.PageNumber-1] = p.Text
		}
	}

	e.logger.Debug("Document analysis complete",
		"model", e.client.Model(),
		"pages", len(analysis.Pages),
		"markdown", analysis.Markdown != "")

	return &DocumentResult{
		Pages:    pages,
		Markdown: analysis.Markdown,
	}, nil
}
