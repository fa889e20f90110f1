/**
 * Azure AI Vision backend
 *
 * Cloud OCR specialized for text recognition. One Read API call per
 * rendered page image; lines come back in reading order already.
 */

package processor

import (
	"context"

	"github.com/ocrlab/ocrbench/internal/clients"
	"github.com/ocrlab/ocrbench/internal/logging"
)

type azureVisionExtractor struct {
	client *clients.AzureVisionClient
	logger *logging.Logger
}

func newAzureVisionExtractor(client *clients.AzureVisionClient) *azureVisionExtractor {
	return &azureVisionExtractor{
		client: client,
		logger: logging.NewLogger("AzureVisionExtractor"),
	}
}

func (e *azureVisionExtractor) Name() string {
	return string(KindAzureVision)
}

func (e *azureVisionExtractor) EmitsMarkdown() bool {
	return false
}

func (e *azureVisionExtractor) ExtractPage(ctx context.Context, image []byte, page int) (string, error) {
	result, err := e.client.AnalyzeImage(ctx, image)
	if err != nil {
		return "", err
	}

	e.logger.Debug("Page analysis complete",
		"page", page,
		"lines", len(result.Lines),
		"model", result.ModelVersion)

	return result.Text, nil
}
