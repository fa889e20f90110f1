/**
 * Azure Document Intelligence client
 *
 * Submits the whole PDF as a single analyze operation and polls the
 * returned Operation-Location until the service finishes. The prebuilt-read
 * model yields plain text per page; prebuilt-layout additionally supports
 * Markdown output, which the harness writes as a secondary file.
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

const diPollInterval = 2 * time.Second

// AzureDocIntelClient handles communication with Azure Document Intelligence
type AzureDocIntelClient struct {
	endpoint   string
	apiKey     string
	model      string
	apiVersion string
	httpClient *http.Client
	logger     *logging.Logger
}

// analyzeRequest is the JSON body of a base64 document submission
type analyzeRequest struct {
	Base64Source string `json:"base64Source"`
}

// analyzeStatusResponse mirrors the poll response envelope
type analyzeStatusResponse struct {
	Status        string `json:"status"` // "notStarted", "running", "succeeded", "failed"
	Error         *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	AnalyzeResult *struct {
		Content       string `json:"content"`
		ContentFormat string `json:"contentFormat,omitempty"`
		Pages         []struct {
			PageNumber int `json:"pageNumber"`
			Lines      []struct {
				Content string `json:"content"`
			} `json:"lines"`
		} `json:"pages"`
	} `json:"analyzeResult,omitempty"`
}

// AnalyzedPage contains the text lines of one page
type AnalyzedPage struct {
	PageNumber int
	Lines      []string
	Text       string
}

// AnalyzeResult contains the document-level analysis output
type AnalyzeResult struct {
	Pages    []AnalyzedPage
	Content  string
	Markdown string // Set when the model produced Markdown content
}

// NewAzureDocIntelClient creates a new Document Intelligence client
func NewAzureDocIntelClient(endpoint, apiKey, model, apiVersion string) *AzureDocIntelClient {
	if model == "" {
		model = "prebuilt-read"
	}
	if apiVersion == "" {
		apiVersion = "2024-11-30"
	}

	return &AzureDocIntelClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		model:      model,
		apiVersion: apiVersion,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logging.NewLogger("AzureDocIntelClient"),
	}
}

// Model returns the configured analysis model id
func (c *AzureDocIntelClient) Model() string {
	return c.model
}

// SupportsMarkdown reports whether the configured model can emit Markdown
func (c *AzureDocIntelClient) SupportsMarkdown() bool {
	return c.model == "prebuilt-layout"
}

// AnalyzeDocument submits pdfData and polls until the analysis completes
func (c *AzureDocIntelClient) AnalyzeDocument(ctx context.Context, pdfData []byte) (*AnalyzeResult, error) {
	c.logger.Info("Submitting document for analysis",
		"model", c.model,
		"bytes", len(pdfData))

	var opLocation string

	// Submission is retried on transient failures; polling is not, since a
	// lost poll just repeats on the next tick
	err := doWithRetry(ctx, c.logger, "azure-di", func() error {
		loc, err := c.submit(ctx, pdfData)
		if err != nil {
			return err
		}
		opLocation = loc
		return nil
	})
	if err != nil {
		return nil, err
	}

	return c.pollUntilComplete(ctx, opLocation)
}

func (c *AzureDocIntelClient) submit(ctx context.Context, pdfData []byte) (string, error) {
	values := url.Values{"api-version": {c.apiVersion}}
	if c.SupportsMarkdown() {
		values.Set("outputContentFormat", "markdown")
	}
	analyzeURL := fmt.Sprintf("%s/documentintelligence/documentModels/%s:analyze?%s",
		c.endpoint, c.model, values.Encode())

	reqBody, err := json.Marshal(analyzeRequest{
		Base64Source: base64.StdEncoding.EncodeToString(pdfData),
	})
	if err != nil {
		return "", harnesserrors.NewExtractionError("azure-di", 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, analyzeURL, bytes.NewReader(reqBody))
	if err != nil {
		return "", harnesserrors.NewNetworkError("azure-di", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", harnesserrors.NewNetworkError("azure-di", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", harnesserrors.NewNetworkError("azure-di", err)
	}

	if resp.StatusCode != http.StatusAccepted {
		return "", classifyHTTPError("azure-di", resp.StatusCode, body)
	}

	opLocation := resp.Header.Get("Operation-Location")
	if opLocation == "" {
		return "", harnesserrors.NewExtractionError("azure-di", 0,
			fmt.Errorf("202 response missing Operation-Location header"))
	}

	return opLocation, nil
}

// pollUntilComplete polls the operation until it succeeds, fails, or the
// context is cancelled
func (c *AzureDocIntelClient) pollUntilComplete(ctx context.Context, opLocation string) (*AnalyzeResult, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, harnesserrors.NewNetworkError("azure-di", ctx.Err())
		case <-time.After(diPollInterval):
		}

		status, err := c.getStatus(ctx, opLocation)
		if err != nil {
			if harnesserrors.IsRetryable(err) {
				c.logger.Warn("Transient poll failure, will poll again", "error", err)
				continue
			}
			return nil, err
		}

		switch status.Status {
		case "succeeded":
			return c.buildResult(status)
		case "failed":
			msg := "analysis failed"
			if status.Error != nil {
				msg = fmt.Sprintf("%s: %s", status.Error.Code, status.Error.Message)
			}
			return nil, harnesserrors.NewExtractionError("azure-di", 0, fmt.Errorf("%s", msg))
		default:
			c.logger.Debug("Analysis in progress", "status", status.Status)
		}
	}
}

func (c *AzureDocIntelClient) getStatus(ctx context.Context, opLocation string) (*analyzeStatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opLocation, nil)
	if err != nil {
		return nil, harnesserrors.NewNetworkError("azure-di", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, harnesserrors.NewNetworkError("azure-di", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, harnesserrors.NewNetworkError("azure-di", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyHTTPError("azure-di", resp.StatusCode, body)
	}

	var status analyzeStatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, harnesserrors.NewExtractionError("azure-di", 0,
			fmt.Errorf("failed to parse poll response: %w", err))
	}

	return &status, nil
}

func (c *AzureDocIntelClient) buildResult(status *analyzeStatusResponse) (*AnalyzeResult, error) {
	if status.AnalyzeResult == nil {
		return nil, harnesserrors.NewExtractionError("azure-di", 0,
			fmt.Errorf("succeeded operation carried no analyzeResult"))
	}

	result := &AnalyzeResult{
		Content: status.AnalyzeResult.Content,
	}
	if status.AnalyzeResult.ContentFormat == "markdown" {
		result.Markdown = status.AnalyzeResult.Content
	}

	for _, page := range status.AnalyzeResult.Pages {
		lines := make([]string, 0, len(page.Lines))
		for _, line := range page.Lines {
			lines = append(lines, line.Content)
		}
		result.Pages = append(result.Pages, AnalyzedPage{
			PageNumber: page.PageNumber,
			Lines:      lines,
			Text:       strings.Join(lines, "\n"),
		})
	}

	c.logger.Info("Document analysis complete",
		"pages", len(result.Pages),
		"chars", len(result.Content),
		"markdown", result.Markdown != "")

	return result, nil
}
