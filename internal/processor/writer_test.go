package processor

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriterNamesOutputByStemAndBackend(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	got := w.OutputPath("/docs/report.pdf", "tesseract")
	want := filepath.Join(dir, "report_tesseract.txt")
	if got != want {
		t.Errorf("OutputPath() = %q, want %q", got, want)
	}
}

func TestWriterWritesTextAndMarkdown(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	result := &AggregateResult{
		Backend:  "azure-di",
		Text:     "--- Page 1 ---\nhello",
		Markdown: "# hello",
	}

	if err := w.Write("/docs/scan.pdf", result, true); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	text, err := os.ReadFile(result.OutputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(text) != result.Text {
		t.Errorf("output = %q", text)
	}

	if result.MarkdownPath != filepath.Join(dir, "scan_azure-di.md") {
		t.Errorf("MarkdownPath = %q", result.MarkdownPath)
	}
	md, err := os.ReadFile(result.MarkdownPath)
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	if string(md) != "# hello" {
		t.Errorf("markdown = %q", md)
	}
}

func TestWriterSkipsMarkdownForTextBackends(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	result := &AggregateResult{Backend: "pdftext", Text: "x", Markdown: ""}
	if err := w.Write("/docs/a.pdf", result, false); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if result.MarkdownPath != "" {
		t.Errorf("MarkdownPath = %q, want empty", result.MarkdownPath)
	}
}

func TestWriterRerunsAreByteIdentical(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	result := &AggregateResult{Backend: "pdftext", Text: "--- Page 1 ---\nstable"}

	if err := w.Write("/docs/a.pdf", result, false); err != nil {
		t.Fatalf("first Write() error = %v", err)
	}
	first, _ := os.ReadFile(result.OutputPath)

	if err := w.Write("/docs/a.pdf", result, false); err != nil {
		t.Fatalf("second Write() error = %v", err)
	}
	second, _ := os.ReadFile(result.OutputPath)

	if string(first) != string(second) {
		t.Error("re-run output differs from first run")
	}
}

func TestWriterCreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	w := NewWriter(dir)

	result := &AggregateResult{Backend: "pdftext", Text: "x"}
	if err := w.Write("a.pdf", result, false); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if _, err := os.Stat(result.OutputPath); err != nil {
		t.Errorf("output not created: %v", err)
	}
}

func TestWriterEmptyDocumentProducesEmptyFile(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	result := &AggregateResult{Backend: "pdftext", Text: ""}
	if err := w.Write("empty.pdf", result, false); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	info, err := os.Stat(result.OutputPath)
	if err != nil {
		t.Fatalf("output not created: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("size = %d, want 0", info.Size())
	}
}
