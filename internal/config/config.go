/**
 * Configuration for the OCR comparison harness
 *
 * Loads configuration from environment variables matching .env.example.
 * Backend credentials are opaque strings; presence is checked when the
 * corresponding extractor is constructed, not here, so offline backends
 * stay usable without any cloud account.
 */

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds harness configuration
type Config struct {
	// Azure AI Vision (Read API)
	AzureVisionEndpoint string
	AzureVisionKey      string

	// Azure Document Intelligence
	AzureDIEndpoint   string
	AzureDIKey        string
	AzureDIModel      string
	AzureDIAPIVersion string

	// Azure OpenAI (vision-capable deployment)
	AzureOpenAIEndpoint   string
	AzureOpenAIKey        string
	AzureOpenAIDeployment string
	AzureOpenAIAPIVersion string

	// Page rendering
	RenderDPI    int
	PdftoppmPath string

	// Pipeline behavior
	PageConcurrency int
	PageDelayMs     int
	OutputDir       string
	TempDir         string
	MaxFileSize     int64
	ProcessingTimeout int // milliseconds

	// Tesseract
	TesseractLanguage string

	// Batch queue (optional)
	RedisURL          string
	QueueName         string
	WorkerConcurrency int

	// Run history (optional)
	DatabaseURL string

	// Output similarity (optional)
	QdrantURL        string
	QdrantCollection string
	VoyageAPIKey     string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AzureVisionEndpoint: getEnvOrDefault("AZURE_VISION_ENDPOINT", ""),
		AzureVisionKey:      getEnvOrDefault("AZURE_VISION_KEY", ""),

		AzureDIEndpoint:   getEnvOrDefault("AZURE_DOCUMENT_INTELLIGENCE_ENDPOINT", ""),
		AzureDIKey:        getEnvOrDefault("AZURE_DOCUMENT_INTELLIGENCE_KEY", ""),
		AzureDIModel:      getEnvOrDefault("AZURE_DOCUMENT_INTELLIGENCE_MODEL", "prebuilt-read"),
		AzureDIAPIVersion: getEnvOrDefault("AZURE_DOCUMENT_INTELLIGENCE_API_VERSION", "2024-11-30"),

		AzureOpenAIEndpoint:   getEnvOrDefault("AZURE_OPENAI_ENDPOINT", ""),
		AzureOpenAIKey:        getEnvOrDefault("AZURE_OPENAI_API_KEY", ""),
		AzureOpenAIDeployment: getEnvOrDefault("AZURE_OPENAI_DEPLOYMENT_NAME", "mistral"),
		AzureOpenAIAPIVersion: getEnvOrDefault("AZURE_OPENAI_API_VERSION", "2024-02-15-preview"),

		RenderDPI:    getEnvAsIntOrDefault("OCR_RENDER_DPI", 200),
		PdftoppmPath: getEnvOrDefault("PDFTOPPM_PATH", "pdftoppm"),

		PageConcurrency:   getEnvAsIntOrDefault("PAGE_CONCURRENCY", 4),
		PageDelayMs:       getEnvAsIntOrDefault("PAGE_DELAY_MS", 500),
		OutputDir:         getEnvOrDefault("OUTPUT_DIR", "output"),
		TempDir:           getEnvOrDefault("TEMP_DIR", filepath.Join(os.TempDir(), "ocrbench")),
		MaxFileSize:       getEnvAsInt64OrDefault("MAX_FILE_SIZE", 536870912), // 512MB
		ProcessingTimeout: getEnvAsIntOrDefault("PROCESSING_TIMEOUT", 600000), // 10 minutes

		TesseractLanguage: getEnvOrDefault("TESSERACT_LANGUAGE", "eng"),

		RedisURL:          getEnvOrDefault("REDIS_URL", ""),
		QueueName:         getEnvOrDefault("QUEUE_NAME", "ocrbench:jobs"),
		WorkerConcurrency: getEnvAsIntOrDefault("WORKER_CONCURRENCY", 2),

		DatabaseURL: getEnvOrDefault("DATABASE_URL", ""),

		QdrantURL:        getEnvOrDefault("QDRANT_URL", ""),
		QdrantCollection: getEnvOrDefault("QDRANT_COLLECTION", "ocrbench_outputs"),
		VoyageAPIKey:     getEnvOrDefault("VOYAGE_API_KEY", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.RenderDPI < 72 || c.RenderDPI > 600 {
		return fmt.Errorf("OCR_RENDER_DPI must be between 72 and 600, got %d", c.RenderDPI)
	}

	if c.PageConcurrency < 1 || c.PageConcurrency > 32 {
		return fmt.Errorf("PAGE_CONCURRENCY must be between 1 and 32, got %d", c.PageConcurrency)
	}

	if c.PageDelayMs < 0 || c.PageDelayMs > 60000 {
		return fmt.Errorf("PAGE_DELAY_MS must be between 0 and 60000, got %d", c.PageDelayMs)
	}

	if c.WorkerConcurrency < 1 || c.WorkerConcurrency > 100 {
		return fmt.Errorf("WORKER_CONCURRENCY must be between 1 and 100, got %d", c.WorkerConcurrency)
	}

	if c.MaxFileSize < 1024 || c.MaxFileSize > 10737418240 { // 1KB to 10GB
		return fmt.Errorf("MAX_FILE_SIZE must be between 1KB and 10GB, got %d", c.MaxFileSize)
	}

	return nil
}

// getEnvOrDefault gets environment variable or returns default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault gets environment variable as int or returns default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsInt64OrDefault gets environment variable as int64 or returns default
func getEnvAsInt64OrDefault(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}

	return value
}
