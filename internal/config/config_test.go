package config

import (
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.RenderDPI != 200 {
		t.Errorf("RenderDPI = %d, want 200", cfg.RenderDPI)
	}
	if cfg.PageConcurrency != 4 {
		t.Errorf("PageConcurrency = %d, want 4", cfg.PageConcurrency)
	}
	if cfg.PageDelayMs != 500 {
		t.Errorf("PageDelayMs = %d, want 500", cfg.PageDelayMs)
	}
	if cfg.AzureDIModel != "prebuilt-read" {
		t.Errorf("AzureDIModel = %q, want prebuilt-read", cfg.AzureDIModel)
	}
	if cfg.TesseractLanguage != "eng" {
		t.Errorf("TesseractLanguage = %q, want eng", cfg.TesseractLanguage)
	}
	if cfg.QueueName != "ocrbench:jobs" {
		t.Errorf("QueueName = %q", cfg.QueueName)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("OCR_RENDER_DPI", "300")
	t.Setenv("PAGE_CONCURRENCY", "8")
	t.Setenv("AZURE_DOCUMENT_INTELLIGENCE_MODEL", "prebuilt-layout")
	t.Setenv("OUTPUT_DIR", "/var/ocr/out")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.RenderDPI != 300 {
		t.Errorf("RenderDPI = %d, want 300", cfg.RenderDPI)
	}
	if cfg.PageConcurrency != 8 {
		t.Errorf("PageConcurrency = %d, want 8", cfg.PageConcurrency)
	}
	if cfg.AzureDIModel != "prebuilt-layout" {
		t.Errorf("AzureDIModel = %q", cfg.AzureDIModel)
	}
	if cfg.OutputDir != "/var/ocr/out" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
}

func TestLoadConfigInvalidIntFallsBack(t *testing.T) {
	t.Setenv("PAGE_CONCURRENCY", "not-a-number")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.PageConcurrency != 4 {
		t.Errorf("PageConcurrency = %d, want default 4", cfg.PageConcurrency)
	}
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"dpi too low", "OCR_RENDER_DPI", "10"},
		{"dpi too high", "OCR_RENDER_DPI", "1200"},
		{"concurrency zero", "PAGE_CONCURRENCY", "0"},
		{"concurrency too high", "PAGE_CONCURRENCY", "100"},
		{"negative delay", "PAGE_DELAY_MS", "-1"},
		{"file size too small", "MAX_FILE_SIZE", "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := LoadConfig(); err == nil {
				t.Errorf("LoadConfig() with %s=%s should fail validation", tt.key, tt.value)
			}
		})
	}
}
