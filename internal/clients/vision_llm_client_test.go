package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	harnesserrors "github.com/ocrlab/ocrbench/internal/errors"
)

func TestVisionLLMExtractPageText(t *testing.T) {
	var gotAPIKey string
	var gotRequest map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("api-key")

		if want := "/openai/deployments/gpt-4o/chat/completions"; r.URL.Path != want {
			t.Errorf("path = %q, want %q", r.URL.Path, want)
		}

		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotRequest); err != nil {
			t.Fatalf("request body: %v", err)
		}

		w.Write([]byte(`{
			"choices": [{"message": {"content": "Extracted page text"}, "finish_reason": "stop"}],
			"usage": {"total_tokens": 321}
		}`))
	}))
	defer srv.Close()

	client := NewVisionLLMClient(srv.URL, "llm-key", "gpt-4o", "")
	text, err := client.ExtractPageText(context.Background(), []byte("png-bytes"), 1)
	if err != nil {
		t.Fatalf("ExtractPageText() error = %v", err)
	}

	if text != "Extracted page text" {
		t.Errorf("text = %q", text)
	}
	if gotAPIKey != "llm-key" {
		t.Errorf("api-key header = %q", gotAPIKey)
	}

	messages, ok := gotRequest["messages"].([]interface{})
	if !ok || len(messages) != 2 {
		t.Fatalf("messages = %v, want system + user", gotRequest["messages"])
	}

	system := messages[0].(map[string]interface{})
	if system["role"] != "system" {
		t.Errorf("first message role = %v", system["role"])
	}
	if !strings.Contains(system["content"].(string), "OCR assistant") {
		t.Errorf("system prompt = %v", system["content"])
	}

	user := messages[1].(map[string]interface{})
	parts := user["content"].([]interface{})
	if len(parts) != 2 {
		t.Fatalf("user content parts = %d, want 2", len(parts))
	}
	imagePart := parts[1].(map[string]interface{})
	imageURL := imagePart["image_url"].(map[string]interface{})["url"].(string)
	if !strings.HasPrefix(imageURL, "data:image/png;base64,") {
		t.Errorf("image url = %q, want a base64 PNG data URL", imageURL)
	}

	if gotRequest["temperature"].(float64) != 0.0 {
		t.Errorf("temperature = %v, want 0", gotRequest["temperature"])
	}
	if gotRequest["max_tokens"].(float64) != 4000 {
		t.Errorf("max_tokens = %v, want 4000", gotRequest["max_tokens"])
	}
}

func TestVisionLLMNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	client := NewVisionLLMClient(srv.URL, "key", "gpt-4o", "")
	_, err := client.ExtractPageText(context.Background(), []byte("png"), 2)

	if harnesserrors.CodeOf(err) != harnesserrors.ErrorExtractionFailed {
		t.Fatalf("error = %v, want EXTRACTION_FAILED", err)
	}
}

func TestVisionLLMQuotaExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"You have exceeded your quota for this deployment"}}`))
	}))
	defer srv.Close()

	client := NewVisionLLMClient(srv.URL, "key", "gpt-4o", "")
	_, err := client.ExtractPageText(context.Background(), []byte("png"), 1)

	if harnesserrors.CodeOf(err) != harnesserrors.ErrorQuotaExceeded {
		t.Fatalf("error = %v, want QUOTA_EXCEEDED", err)
	}
}
