/**
 * Output writer
 *
 * Writes aggregate text (and Markdown, for backends that emit it) as UTF-8
 * files named <stem>_<backend>.txt in the output directory. Writes are
 * plain truncating overwrites, so re-running a document produces
 * byte-identical files.
 */

package processor

import (
	"os"
	"path/filepath"
	"strings"

	harnesserrors "github.com/ocrlab/ocrbench/internal/errors"
	"github.com/ocrlab/ocrbench/internal/logging"
)

// Writer persists aggregate results to the output directory
type Writer struct {
	outputDir string
	logger    *logging.Logger
}

// NewWriter creates a writer rooted at outputDir
func NewWriter(outputDir string) *Writer {
	return &Writer{
		outputDir: outputDir,
		logger:    logging.NewLogger("OutputWriter"),
	}
}

// OutputPath returns the text output path for inputPath processed by backend
func (w *Writer) OutputPath(inputPath, backend string) string {
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(w.outputDir, stem+"_"+backend+".txt")
}

// Write persists result and records the written paths on it
func (w *Writer) Write(inputPath string, result *AggregateResult, emitsMarkdown bool) error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return harnesserrors.NewIOError(w.outputDir, err)
	}

	outPath := w.OutputPath(inputPath, result.Backend)
	if err := os.WriteFile(outPath, []byte(result.Text), 0644); err != nil {
		return harnesserrors.NewIOError(outPath, err)
	}
	result.OutputPath = outPath

	if emitsMarkdown && result.Markdown != "" {
		mdPath := strings.TrimSuffix(outPath, ".txt") + ".md"
		if err := os.WriteFile(mdPath, []byte(result.Markdown), 0644); err != nil {
			return harnesserrors.NewIOError(mdPath, err)
		}
		result.MarkdownPath = mdPath
	}

	w.logger.Info("Output written",
		"backend", result.Backend,
		"path", outPath,
		"chars", result.CharCount,
		"markdown", result.MarkdownPath != "")

	return nil
}
