/**
 * Comparison report
 *
 * Renders the per-backend summaries side by side and, when the similarity
 * layer ran, the pairwise cosine similarity between backend outputs. The
 * report is written next to the extraction outputs and echoed to stdout by
 * the CLI.
 */

package processor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	harnesserrors "github.com/ocrlab/ocrbench/internal/errors"
)

const timeRounding = time.Millisecond

// PairSimilarity is the cosine similarity between two backend outputs
type PairSimilarity struct {
	BackendA string
	BackendB string
	Cosine   float64
}

const reportFileName = "comparison_report.txt"

// BuildComparisonReport renders the report text
func BuildComparisonReport(inputPath string, summaries []*RunSummary, similarities []PairSimilarity) string {
	var sb strings.Builder

	sb.WriteString("OCR Backend Comparison Report\n")
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	sb.WriteString(fmt.Sprintf("Input: %s\n\n", inputPath))

	for _, s := range summaries {
		sb.WriteString(fmt.Sprintf("Backend: %s\n", s.Backend))
		if s.Succeeded() {
			sb.WriteString("  Status:     success\n")
			sb.WriteString(fmt.Sprintf("  Characters: %d\n", s.CharCount))
			if len(s.FailedPages) > 0 {
				sb.WriteString(fmt.Sprintf("  Pages:      %d (%d failed: %v)\n",
					s.PageCount, len(s.FailedPages), s.FailedPages))
			} else {
				sb.WriteString(fmt.Sprintf("  Pages:      %d\n", s.PageCount))
			}
			sb.WriteString(fmt.Sprintf("  Duration:   %s\n", s.Duration.Round(timeRounding)))
			sb.WriteString(fmt.Sprintf("  Output:     %s\n", s.OutputPath))
			if s.MarkdownPath != "" {
				sb.WriteString(fmt.Sprintf("  Markdown:   %s\n", s.MarkdownPath))
			}
		} else {
			sb.WriteString("  Status:     failed\n")
			sb.WriteString(fmt.Sprintf("  Error:      [%s] %s\n", s.ErrorCode, s.ErrorMessage))
		}
		sb.WriteString("\n")
	}

	if len(similarities) > 0 {
		sb.WriteString("Pairwise output similarity (cosine)\n")
		sb.WriteString(strings.Repeat("-", 60) + "\n")
		for _, sim := range similarities {
			sb.WriteString(fmt.Sprintf("  %-14s vs %-14s %.4f\n", sim.BackendA, sim.BackendB, sim.Cosine))
		}
		sb.WriteString("\n")
	}

	succeeded := 0
	for _, s := range summaries {
		if s.Succeeded() {
			succeeded++
		}
	}
	sb.WriteString(fmt.Sprintf("Backends: %d succeeded, %d failed\n",
		succeeded, len(summaries)-succeeded))

	return sb.String()
}

// WriteComparisonReport writes the report into outputDir and returns its
// text for echoing
func WriteComparisonReport(outputDir, inputPath string, summaries []*RunSummary, similarities []PairSimilarity) (string, error) {
	report := BuildComparisonReport(inputPath, summaries, similarities)

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", harnesserrors.NewIOError(outputDir, err)
	}

	reportPath := filepath.Join(outputDir, reportFileName)
	if err := os.WriteFile(reportPath, []byte(report), 0644); err != nil {
		return "", harnesserrors.NewIOError(reportPath, err)
	}

	return report, nil
}
