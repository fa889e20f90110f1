/**
 * Vision LLM OCR client (Azure OpenAI chat completions)
 *
 * Sends each rendered page as a base64 data URL to a multimodal chat
 * deployment and treats the assistant reply as the recognized text. Slowest
 * backend in the harness, but the only one that reconstructs reading order
 * across complex layouts.
 */

package clients

import (
	"bytes"
	"context"
	"encoding/base64"
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

const visionOCRSystemPrompt = "You are an OCR assistant. Extract all text from the provided image accurately, " +
	"maintaining the original structure and formatting as much as possible. Include all text, " +
	"including headers, footers, tables, and any other content."

// VisionLLMClient handles communication with an Azure OpenAI multimodal deployment
type VisionLLMClient struct {
	endpoint   string
	apiKey     string
	deployment string
	apiVersion string
	httpClient *http.Client
	logger     *logging.Logger
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type chatContentPart struct {
	Type     string         `json:"type"`
	Text     string         `json:"text,omitempty"`
	ImageURL *chatImagePart `json:"image_url,omitempty"`
}

type chatImagePart struct {
	URL string `json:"url"`
}

type chatCompletionRequest struct {
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// NewVisionLLMClient creates a new vision LLM OCR client
func NewVisionLLMClient(endpoint, apiKey, deployment, apiVersion string) *VisionLLMClient {
	if apiVersion == "" {
		apiVersion = "2024-02-15-preview"
	}

	return &VisionLLMClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		deployment: deployment,
		apiVersion: apiVersion,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logging.NewLogger("VisionLLMClient"),
	}
}

// ExtractPageText asks the deployment to transcribe one page image
func (c *VisionLLMClient) ExtractPageText(ctx context.Context, imageData []byte, pageNum int) (string, error) {
	completionURL := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?%s",
		c.endpoint, c.deployment, url.Values{"api-version": {c.apiVersion}}.Encode())

	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(imageData)

	reqBody, err := json.Marshal(chatCompletionRequest{
		Messages: []chatMessage{
			{Role: "system", Content: visionOCRSystemPrompt},
			{Role: "user", Content: []chatContentPart{
				{Type: "text", Text: "Extract all text from this image."},
				{Type: "image_url", ImageURL: &chatImagePart{URL: dataURL}},
			}},
		},
		MaxTokens:   4000,
		Temperature: 0.0,
	})
	if err != nil {
		return "", harnesserrors.NewExtractionError("vision-llm", pageNum, err)
	}

	var text string

	err = doWithRetry(ctx, c.logger, "vision-llm", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, completionURL, bytes.NewReader(reqBody))
		if err != nil {
			return harnesserrors.NewNetworkError("vision-llm", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("api-key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return harnesserrors.NewNetworkError("vision-llm", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return harnesserrors.NewNetworkError("vision-llm", err)
		}

		if resp.StatusCode != http.StatusOK {
			return classifyHTTPError("vision-llm", resp.StatusCode, body)
		}

		var completion chatCompletionResponse
		if err := json.Unmarshal(body, &completion); err != nil {
			return harnesserrors.NewExtractionError("vision-llm", pageNum,
				fmt.Errorf("failed to parse completion response: %w", err))
		}
		if len(completion.Choices) == 0 {
			return harnesserrors.NewExtractionError("vision-llm", pageNum,
				fmt.Errorf("completion response carried no choices"))
		}

		text = completion.Choices[0].Message.Content

		c.logger.Debug("Page transcription complete",
			"page", pageNum,
			"chars", len(text),
			"totalTokens", completion.Usage.TotalTokens,
			"finishReason", completion.Choices[0].FinishReason)
		return nil
	})

	if err != nil {
		return "", err
	}

	return text, nil
}
