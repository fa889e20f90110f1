/**
 * Ordered aggregation of page extractions
 *
 * Pages are merged strictly by index regardless of the order extraction
 * finished in. A failed page contributes an explicit inline placeholder so
 * the reader sees the gap; CharCount counts only text that was actually
 * extracted, never markers or placeholders.
 */

package processor

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// pageMarker labels each page segment in the aggregate output
func pageMarker(page int) string {
	return fmt.Sprintf("--- Page %d ---", page)
}

// pagePlaceholder is the inline stand-in for a page whose extraction failed
func pagePlaceholder(page int, err error) string {
	return fmt.Sprintf("[Error processing page %d: %v]", page, err)
}

// Aggregate merges ordered page extractions into the backend's final text.
// A zero-page document yields an empty aggregate with CharCount 0.
func Aggregate(backend string, pages []PageExtraction) *AggregateResult {
	segments := make([]string, 0, len(pages))
	charCount := 0

	for _, p := range pages {
		var body string
		if p.Failed() {
			body = pagePlaceholder(p.PageNumber, p.Err)
		} else {
			body = p.Text
			// Characters, not bytes: CJK documents would otherwise report
			// roughly triple their true count
			charCount += utf8.RuneCountInString(p.Text)
		}
		segments = append(segments, pageMarker(p.PageNumber)+"\n"+body)
	}

	var markdown string
	if len(pages) > 0 && pages[0].Markdown != "" {
		// Whole-document Markdown rides on page 1
		markdown = pages[0].Markdown
	}

	return &AggregateResult{
		Backend:   backend,
		Pages:     pages,
		Text:      strings.Join(segments, "\n\n"),
		Markdown:  markdown,
		CharCount: charCount,
		PageCount: len(pages),
	}
}
