/**
 * PDF page splitter
 *
 * Validates the input document with pdfcpu and rasterizes pages one at a
 * time via poppler's pdftoppm, the same conversion path the comparison
 * harness relies on for every image-based backend. Rendering is lazy: a
 * page is rasterized only when a backend asks for it.
 */

package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	harnesserrors "github.com/ocrlab/ocrbench/internal/errors"
	"github.com/ocrlab/ocrbench/internal/logging"
)

// Splitter produces ordered page images from a PDF at a fixed DPI
type Splitter struct {
	dpi          int
	pdftoppmPath string
	tempDir      string
	maxFileSize  int64
	logger       *logging.Logger
}

// SplitterConfig holds splitter configuration
type SplitterConfig struct {
	DPI          int
	PdftoppmPath string
	TempDir      string
	MaxFileSize  int64 // 0 disables the size check
}

// NewSplitter creates a new page splitter
func NewSplitter(cfg *SplitterConfig) *Splitter {
	dpi := cfg.DPI
	if dpi <= 0 {
		dpi = 200
	}

	pdftoppm := cfg.PdftoppmPath
	if pdftoppm == "" {
		pdftoppm = "pdftoppm"
	}

	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = filepath.Join(os.TempDir(), "ocrbench")
	}

	return &Splitter{
		dpi:          dpi,
		pdftoppmPath: pdftoppm,
		tempDir:      tempDir,
		maxFileSize:  cfg.MaxFileSize,
		logger:       logging.NewLogger("PDFSplitter"),
	}
}

// Document is an opened, validated PDF with a scoped working directory.
// Close must be called regardless of downstream failure.
type Document struct {
	Path      string
	PageCount int
	Encrypted bool

	data     []byte
	workDir  string
	tempPDF  string
	splitter *Splitter
}

// Open reads and validates a PDF file. It fails with UNSUPPORTED_FORMAT
// before any page is rendered or any network call is made downstream.
func (s *Splitter) Open(ctx context.Context, path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, harnesserrors.NewIOError(path, err)
	}

	if s.maxFileSize > 0 && int64(len(data)) > s.maxFileSize {
		return nil, harnesserrors.NewIOError(path,
			fmt.Errorf("file size %d exceeds limit %d", len(data), s.maxFileSize))
	}

	if !IsPDF(data) {
		detected := DetectFormat(data)
		if detected == "" {
			detected = "unknown"
		}
		return nil, harnesserrors.NewUnsupportedFormatError(path,
			fmt.Errorf("missing %%PDF header (detected format: %s)", detected))
	}

	// Temp root is created lazily so an unusable path surfaces as IO_ERROR
	// here instead of failing silently at construction
	if err := os.MkdirAll(s.tempDir, 0755); err != nil {
		return nil, harnesserrors.NewIOError(s.tempDir, err)
	}

	// Scoped working directory; removed by Close
	workDir, err := os.MkdirTemp(s.tempDir, "doc_")
	if err != nil {
		return nil, harnesserrors.NewIOError(s.tempDir, err)
	}

	// pdfcpu needs a file on disk to build its context
	tempPDF := filepath.Join(workDir, "input.pdf")
	if err := os.WriteFile(tempPDF, data, 0644); err != nil {
		os.RemoveAll(workDir)
		return nil, harnesserrors.NewIOError(tempPDF, err)
	}

	pdfCtx, err := api.ReadContextFile(tempPDF)
	if err != nil {
		os.RemoveAll(workDir)
		return nil, harnesserrors.NewUnsupportedFormatError(path, err)
	}

	doc := &Document{
		Path:      path,
		PageCount: pdfCtx.PageCount,
		Encrypted: pdfCtx.Encrypt != nil,
		data:      data,
		workDir:   workDir,
		tempPDF:   tempPDF,
		splitter:  s,
	}

	s.logger.Debug("Opened PDF document",
		"path", path,
		"pages", doc.PageCount,
		"encrypted", doc.Encrypted)

	return doc, nil
}

// Bytes returns the raw PDF content for document-native backends
func (d *Document) Bytes() []byte {
	return d.data
}

// WorkDir returns the document's scoped working directory
func (d *Document) WorkDir() string {
	return d.workDir
}

// RenderPage rasterizes a single page (1-based) to PNG at the splitter's DPI.
// Fails with CONVERSION_FAILED if the rasterizer cannot process the page.
func (d *Document) RenderPage(ctx context.Context, page int) ([]byte, error) {
	if page < 1 || page > d.PageCount {
		return nil, harnesserrors.NewConversionError(page,
			fmt.Errorf("page out of range 1..%d", d.PageCount))
	}

	outPrefix := filepath.Join(d.workDir, fmt.Sprintf("page_%d", page))

	cmd := exec.CommandContext(ctx, d.splitter.pdftoppmPath,
		"-png",
		"-r", strconv.Itoa(d.splitter.dpi),
		"-f", strconv.Itoa(page),
		"-l", strconv.Itoa(page),
		d.tempPDF,
		outPrefix,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, harnesserrors.NewConversionError(page,
			fmt.Errorf("pdftoppm failed: %v: %s", err, stderr.String()))
	}

	// pdftoppm appends a zero-padded page suffix; glob rather than guessing
	// the padding width
	matches, err := filepath.Glob(outPrefix + "-*.png")
	if err != nil || len(matches) == 0 {
		return nil, harnesserrors.NewConversionError(page,
			fmt.Errorf("pdftoppm produced no output for page %d", page))
	}

	imageData, err := os.ReadFile(matches[0])
	if err != nil {
		return nil, harnesserrors.NewConversionError(page, err)
	}

	// Page images are transient; discard as soon as they are read
	for _, m := range matches {
		os.Remove(m)
	}

	d.splitter.logger.Debug("Rendered page",
		"page", page,
		"bytes", len(imageData))

	return imageData, nil
}

// Close removes the document's working directory and all temporary artifacts
func (d *Document) Close() error {
	if d.workDir == "" {
		return nil
	}
	err := os.RemoveAll(d.workDir)
	d.workDir = ""
	return err
}
