package processor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestBuildComparisonReport(t *testing.T) {
	summaries := []*RunSummary{
		{
			Backend:    "pdftext",
			CharCount:  1234,
			PageCount:  3,
			Duration:   1200 * time.Millisecond,
			OutputPath: "out/doc_pdftext.txt",
		},
		{
			Backend:     "azure-vision",
			CharCount:   1180,
			PageCount:   3,
			FailedPages: []int{2},
			Duration:    4 * time.Second,
			OutputPath:  "out/doc_azure-vision.txt",
		},
		{
			Backend:      "vision-llm",
			Err:          fmt.Errorf("boom"),
			ErrorCode:    "AUTH_FAILED",
			ErrorMessage: "key rejected",
		},
	}

	report := BuildComparisonReport("doc.pdf", summaries, []PairSimilarity{
		{BackendA: "azure-vision", BackendB: "pdftext", Cosine: 0.9731},
	})

	for _, want := range []string{
		"Input: doc.pdf",
		"Backend: pdftext",
		"Characters: 1234",
		"Pages:      3 (1 failed: [2])",
		"[AUTH_FAILED] key rejected",
		"azure-vision",
		"0.9731",
		"Backends: 2 succeeded, 1 failed",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q\n%s", want, report)
		}
	}
}

func TestWriteComparisonReport(t *testing.T) {
	dir := t.TempDir()
	summaries := []*RunSummary{{Backend: "pdftext", CharCount: 5, PageCount: 1}}

	report, err := WriteComparisonReport(dir, "a.pdf", summaries, nil)
	if err != nil {
		t.Fatalf("WriteComparisonReport() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "comparison_report.txt"))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if string(data) != report {
		t.Error("written report differs from returned text")
	}
}
