/**
 * Azure AI Vision client (Image Analysis Read API)
 *
 * Sends one rendered page image per request and returns the recognized
 * text lines. Binary image upload, no base64 detour: the Image Analysis
 * endpoint accepts application/octet-stream directly.
 */

package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	harnesserrors "github.com/ocrlab/ocrbench/internal/errors"
	"github.com/ocrlab/ocrbench/internal/logging"
)

const azureVisionAPIVersion = "2024-02-01"

// AzureVisionClient handles communication with the Azure AI Vision service
type AzureVisionClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *logging.Logger
}

// visionReadResponse mirrors the Image Analysis response envelope for the
// read feature
type visionReadResponse struct {
	ReadResult struct {
		Blocks []struct {
			Lines []struct {
				Text string `json:"text"`
			} `json:"lines"`
		} `json:"blocks"`
	} `json:"readResult"`
	ModelVersion string `json:"modelVersion"`
}

// ReadResult contains the recognized text of one page image
type ReadResult struct {
	Lines        []string
	Text         string
	ModelVersion string
}

// NewAzureVisionClient creates a new Azure AI Vision client
func NewAzureVisionClient(endpoint, apiKey string) *AzureVisionClient {
	return &AzureVisionClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logging.NewLogger("AzureVisionClient"),
	}
}

// AnalyzeImage runs the Read feature on one page image and returns the
// recognized lines in reading order
func (c *AzureVisionClient) AnalyzeImage(ctx context.Context, imageData []byte) (*ReadResult, error) {
	analyzeURL := fmt.Sprintf("%s/computervision/imageanalysis:analyze?%s", c.endpoint, url.Values{
		"api-version": {azureVisionAPIVersion},
		"features":    {"read"},
	}.Encode())

	var result *ReadResult

	err := doWithRetry(ctx, c.logger, "azure-vision", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, analyzeURL, bytes.NewReader(imageData))
		if err != nil {
			return harnesserrors.NewNetworkError("azure-vision", err)
		}
		req.Header.Set("Content-Type", "application/octet-stream")
		req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return harnesserrors.NewNetworkError("azure-vision", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return harnesserrors.NewNetworkError("azure-vision", err)
		}

		if resp.StatusCode != http.StatusOK {
			return classifyHTTPError("azure-vision", resp.StatusCode, body)
		}

		var readResp visionReadResponse
		if err := json.Unmarshal(body, &readResp); err != nil {
			return harnesserrors.NewExtractionError("azure-vision", 0,
				fmt.Errorf("failed to parse response: %w", err))
		}

		var lines []string
		for _, block := range readResp.ReadResult.Blocks {
			for _, line := range block.Lines {
				lines = append(lines, line.Text)
			}
		}

		result = &ReadResult{
			Lines:        lines,
			Text:         strings.Join(lines, "\n"),
			ModelVersion: readResp.ModelVersion,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	c.logger.Debug("Image analysis complete",
		"lines", len(result.Lines),
		"chars", len(result.Text))

	return result, nil
}
