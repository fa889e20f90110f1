/**
 * Embedding client for output similarity
 *
 * Generates VoyageAI voyage-3 embeddings (1024 dimensions) for extracted
 * text so the comparison report can score backend outputs against each
 * other by cosine similarity.
 */

package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ocrlab/ocrbench/internal/logging"
)

const (
	voyageModel      = "voyage-3"
	voyageDimensions = 1024
	voyageMaxChars   = 16000
)

// EmbeddingClient handles VoyageAI embedding generation
type EmbeddingClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

type voyageEmbeddingRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type voyageEmbeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// NewEmbeddingClient creates a new embedding client
func NewEmbeddingClient(apiKey string) (*EmbeddingClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("VoyageAI API key is required")
	}

	return &EmbeddingClient{
		apiKey:  apiKey,
		baseURL: "https://api.voyageai.com/v1/embeddings",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logging.NewLogger("EmbeddingClient"),
	}, nil
}

// GenerateEmbedding generates a 1024-dimensional embedding for the given text
func (e *EmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}

	// VoyageAI enforces token limits; a char cap is a close enough proxy
	if len(text) > voyageMaxChars {
		e.logger.Warn("Text too long, truncating",
			"chars", len(text),
			"limit", voyageMaxChars)
		text = text[:voyageMaxChars]
	}

	jsonData, err := json.Marshal(voyageEmbeddingRequest{
		Input: text,
		Model: voyageModel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", e.apiKey))

	startTime := time.Now()
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("VoyageAI API returned status %d: %s", resp.StatusCode, truncateBody(body))
	}

	var voyageResp voyageEmbeddingResponse
	if err := json.Unmarshal(body, &voyageResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(voyageResp.Data) == 0 {
		return nil, fmt.Errorf("no embedding data in response")
	}

	embedding := voyageResp.Data[0].Embedding
	if len(embedding) != voyageDimensions {
		return nil, fmt.Errorf("unexpected embedding dimensions: got %d, expected %d",
			len(embedding), voyageDimensions)
	}

	e.logger.Debug("Embedding generated",
		"dimensions", len(embedding),
		"tokens", voyageResp.Usage.TotalTokens,
		"duration", time.Since(startTime))

	return embedding, nil
}
