package processor

import (
	"fmt"
	"strings"
	"testing"
)

func TestAggregateOrdersPages(t *testing.T) {
	pages := []PageExtraction{
		{PageNumber: 1, Text: "first"},
		{PageNumber: 2, Text: "second"},
		{PageNumber: 3, Text: "third"},
	}

	result := Aggregate("pdftext", pages)

	want := "--- Page 1 ---\nfirst\n\n--- Page 2 ---\nsecond\n\n--- Page 3 ---\nthird"
	if result.Text != want {
		t.Errorf("Text = %q, want %q", result.Text, want)
	}
	if result.PageCount != 3 {
		t.Errorf("PageCount = %d, want 3", result.PageCount)
	}
}

func TestAggregateCharCountExcludesMarkersAndPlaceholders(t *testing.T) {
	pages := []PageExtraction{
		{PageNumber: 1, Text: "hello"},
		{PageNumber: 2, Err: fmt.Errorf("scan failed")},
		{PageNumber: 3, Text: "world!"},
	}

	result := Aggregate("tesseract", pages)

	// Only "hello" (5) and "world!" (6) count
	if result.CharCount != 11 {
		t.Errorf("CharCount = %d, want 11", result.CharCount)
	}

	if !strings.Contains(result.Text, "[Error processing page 2: scan failed]") {
		t.Errorf("Text missing placeholder: %q", result.Text)
	}
	// Page 3 still follows the failed page 2
	if !strings.Contains(result.Text, "--- Page 3 ---\nworld!") {
		t.Errorf("Text missing page 3 after failed page: %q", result.Text)
	}
}

func TestAggregateCharCountCountsRunesNotBytes(t *testing.T) {
	pages := []PageExtraction{
		{PageNumber: 1, Text: "こんにちは"},
		{PageNumber: 2, Err: fmt.Errorf("scan failed")},
		{PageNumber: 3, Text: "naïve"},
	}

	result := Aggregate("tesseract", pages)

	// 5 Japanese characters plus 5 Latin characters; the UTF-8 encodings
	// are 15 and 6 bytes, which must not leak into the count
	if result.CharCount != 10 {
		t.Errorf("CharCount = %d, want 10", result.CharCount)
	}
}

func TestAggregateFailedPages(t *testing.T) {
	pages := []PageExtraction{
		{PageNumber: 1, Text: "a"},
		{PageNumber: 2, Err: fmt.Errorf("x")},
		{PageNumber: 3, Err: fmt.Errorf("y")},
	}

	result := Aggregate("azure-vision", pages)

	failed := result.FailedPages()
	if len(failed) != 2 || failed[0] != 2 || failed[1] != 3 {
		t.Errorf("FailedPages() = %v, want [2 3]", failed)
	}
}

func TestAggregateZeroPages(t *testing.T) {
	result := Aggregate("pdftext", nil)

	if result.Text != "" {
		t.Errorf("Text = %q, want empty", result.Text)
	}
	if result.CharCount != 0 {
		t.Errorf("CharCount = %d, want 0", result.CharCount)
	}
	if result.PageCount != 0 {
		t.Errorf("PageCount = %d, want 0", result.PageCount)
	}
}

func TestAggregateCarriesDocumentMarkdown(t *testing.T) {
	pages := []PageExtraction{
		{PageNumber: 1, Text: "body", Markdown: "# Title\n\nbody"},
		{PageNumber: 2, Text: "more"},
	}

	result := Aggregate("azure-di", pages)

	if result.Markdown != "# Title\n\nbody" {
		t.Errorf("Markdown = %q", result.Markdown)
	}
	// Markdown never inflates the char count
	if result.CharCount != len("body")+len("more") {
		t.Errorf("CharCount = %d", result.CharCount)
	}
}
