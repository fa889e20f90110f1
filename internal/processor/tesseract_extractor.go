/**
 * Tesseract OCR backend
 *
 * Local, free, offline OCR over rendered page images. Accuracy trails the
 * cloud backends on degraded scans but it costs nothing and needs no
 * credentials, which makes it the comparison baseline for image OCR.
 */

package processor

import (
	"context"
	"strings"

	"github.com/otiai10/gosseract/v2"

	harnesserrors "github.com/ocrlab/ocrbench/internal/errors"
	"github.com/ocrlab/ocrbench/internal/logging"
)

type tesseractExtractor struct {
	language string
	logger   *logging.Logger
}

func newTesseractExtractor(language string) *tesseractExtractor {
	if language == "" {
		language = "eng"
	}
	return &tesseractExtractor{
		language: language,
		logger:   logging.NewLogger("TesseractExtractor"),
	}
}

func (e *tesseractExtractor) Name() string {
	return string(KindTesseract)
}

func (e *tesseractExtractor) EmitsMarkdown() bool {
	return false
}

// ExtractPage runs Tesseract over one page image. A fresh client per call
// keeps this safe under concurrent page extraction; gosseract clients are
// not goroutine-safe.
func (e *tesseractExtractor) ExtractPage(ctx context.Context, image []byte, page int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", harnesserrors.NewExtractionError(e.Name(), page, err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.language); err != nil {
		return "", harnesserrors.NewExtractionError(e.Name(), page, err)
	}

	if err := client.SetImageFromBytes(image); err != nil {
		return "", harnesserrors.NewExtractionError(e.Name(), page, err)
	}

	text, err := client.Text()
	if err != nil {
		return "", harnesserrors.NewExtractionError(e.Name(), page, err)
	}

	text = strings.TrimSpace(text)
	e.logger.Debug("Page OCR complete", "page", page, "chars", len(text))

	return text, nil
}
