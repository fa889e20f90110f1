/**
 * Native PDF text extraction
 *
 * Extracts per-page text without OCR by decoding page content streams with
 * pdfcpu and scanning them for text-show operators. Only works for PDFs
 * that carry a text layer; scanned documents come back empty and should go
 * through an image backend instead.
 */

package pdf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	harnesserrors "github.com/ocrlab/ocrbench/internal/errors"
)

// ExtractPageTexts decodes the content stream of every page and returns the
// recovered text in page order. The returned slice always has PageCount
// entries; pages without a text layer are empty strings.
func (d *Document) ExtractPageTexts() ([]string, error) {
	conf := model.NewDefaultConfiguration()

	outDir := filepath.Join(d.workDir, "content")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, harnesserrors.NewIOError(outDir, err)
	}
	defer os.RemoveAll(outDir)

	if err := api.ExtractContentFile(d.tempPDF, outDir, nil, conf); err != nil {
		return nil, harnesserrors.NewExtractionError("pdftext", 0, err)
	}

	// pdfcpu writes one decoded content stream per page; map filename to
	// page number rather than relying on directory order
	pageStreams := make(map[int][]byte)
	files, err := os.ReadDir(outDir)
	if err != nil {
		return nil, harnesserrors.NewIOError(outDir, err)
	}
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(file.Name(), "Content_page_%d", &pageNum); err != nil {
			if _, err := fmt.Sscanf(file.Name(), "page_%d", &pageNum); err != nil {
				continue
			}
		}
		content, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err == nil {
			pageStreams[pageNum] = content
		}
	}

	texts := make([]string, d.PageCount)
	for pageNum := 1; pageNum <= d.PageCount; pageNum++ {
		if stream, ok := pageStreams[pageNum]; ok {
			texts[pageNum-1] = scanContentText(stream)
		}
	}

	return texts, nil
}
