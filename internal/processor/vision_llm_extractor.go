/**
 * Vision LLM backend
 *
 * Transcribes each rendered page through a multimodal chat deployment.
 * Output tends toward Markdown-ish structure but is not guaranteed valid
 * Markdown, so only the plain text file is written.
 */

package processor

import (
	"context"
	"strings"

	"github.com/ocrlab/ocrbench/internal/clients"
	"github.com/ocrlab/ocrbench/internal/logging"
)

type visionLLMExtractor struct {
	client *clients.VisionLLMClient
	logger *logging.Logger
}

func newVisionLLMExtractor(client *clients.VisionLLMClient) *visionLLMExtractor {
	return &visionLLMExtractor{
		client: client,
		logger: logging.NewLogger("VisionLLMExtractor"),
	}
}

func (e *visionLLMExtractor) Name() string {
	return string(KindVisionLLM)
}

func (e *visionLLMExtractor) EmitsMarkdown() bool {
	return false
}

func (e *visionLLMExtractor) ExtractPage(ctx context.Context, image []byte, page int) (string, error) {
	text, err := e.client.ExtractPageText(ctx, image, page)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
