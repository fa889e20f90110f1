/**
 * Backend registry for the OCR comparison harness
 *
 * The set of backends is closed: dispatch is a switch over the Kind tags,
 * and every backend implements exactly one of the two capability
 * interfaces. Credential presence is checked here, at construction, so a
 * misconfigured cloud backend fails before any page is rendered or sent.
 */

package processor

import (
	"context"
	"fmt"
	"strings"

	"github.com/ocrlab/ocrbench/internal/clients"
	"github.com/ocrlab/ocrbench/internal/config"
	harnesserrors "github.com/ocrlab/ocrbench/internal/errors"
	"github.com/ocrlab/ocrbench/internal/pdf"
)

// Kind identifies one backend in the closed set
type Kind string

const (
	KindPDFText     Kind = "pdftext"
	KindTesseract   Kind = "tesseract"
	KindAzureVision Kind = "azure-vision"
	KindAzureDI     Kind = "azure-di"
	KindVisionLLM   Kind = "vision-llm"
)

// AllKinds lists every backend in deterministic order
func AllKinds() []Kind {
	return []Kind{KindPDFText, KindTesseract, KindAzureVision, KindAzureDI, KindVisionLLM}
}

// ParseKinds parses a comma-separated backend selection. "all" or an empty
// selection means every backend.
func ParseKinds(selection string) ([]Kind, error) {
	selection = strings.TrimSpace(selection)
	if selection == "" || selection == "all" {
		return AllKinds(), nil
	}

	known := make(map[Kind]bool)
	for _, k := range AllKinds() {
		known[k] = true
	}

	var kinds []Kind
	seen := make(map[Kind]bool)
	for _, part := range strings.Split(selection, ",") {
		k := Kind(strings.TrimSpace(part))
		if k == "" {
			continue
		}
		if !known[k] {
			return nil, fmt.Errorf("unknown backend %q (valid: %s)", k, kindNames())
		}
		if !seen[k] {
			seen[k] = true
			kinds = append(kinds, k)
		}
	}

	if len(kinds) == 0 {
		return nil, fmt.Errorf("no backends selected")
	}
	return kinds, nil
}

func kindNames() string {
	names := make([]string, 0, len(AllKinds()))
	for _, k := range AllKinds() {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}

// Extractor is the surface shared by every backend
type Extractor interface {
	Name() string
	// EmitsMarkdown reports whether the backend produces Markdown alongside
	// plain text, in which case the writer emits a sibling .md file
	EmitsMarkdown() bool
}

// PageExtractor consumes one rendered page image at a time. Implementations
// must be safe for concurrent ExtractPage calls.
type PageExtractor interface {
	Extractor
	ExtractPage(ctx context.Context, image []byte, page int) (string, error)
}

// DocumentExtractor consumes the whole document in a single call and
// returns per-page text itself
type DocumentExtractor interface {
	Extractor
	ExtractDocument(ctx context.Context, doc *pdf.Document) (*DocumentResult, error)
}

// DocumentResult is the outcome of a whole-document extraction
type DocumentResult struct {
	Pages    []string // Page texts in order, index 0 is page 1
	Markdown string   // Empty unless the backend emits Markdown
}

// NewExtractor constructs the backend for kind, verifying credentials for
// cloud backends. A missing credential yields AUTH_FAILED immediately.
func NewExtractor(kind Kind, cfg *config.Config) (Extractor, error) {
	switch kind {
	case KindPDFText:
		return newPDFTextExtractor(), nil

	case KindTesseract:
		return newTesseractExtractor(cfg.TesseractLanguage), nil

	case KindAzureVision:
		if cfg.AzureVisionEndpoint == "" || cfg.AzureVisionKey == "" {
			return nil, harnesserrors.NewAuthError(string(KindAzureVision),
				"AZURE_VISION_ENDPOINT and AZURE_VISION_KEY must be set")
		}
		return newAzureVisionExtractor(
			clients.NewAzureVisionClient(cfg.AzureVisionEndpoint, cfg.AzureVisionKey)), nil

	case KindAzureDI:
		if cfg.AzureDIEndpoint == "" || cfg.AzureDIKey == "" {
			return nil, harnesserrors.NewAuthError(string(KindAzureDI),
				"AZURE_DOCUMENT_INTELLIGENCE_ENDPOINT and AZURE_DOCUMENT_INTELLIGENCE_KEY must be set")
		}
		return newAzureDIExtractor(clients.NewAzureDocIntelClient(
			cfg.AzureDIEndpoint, cfg.AzureDIKey, cfg.AzureDIModel, cfg.AzureDIAPIVersion)), nil

	case KindVisionLLM:
		if cfg.AzureOpenAIEndpoint == "" || cfg.AzureOpenAIKey == "" {
			return nil, harnesserrors.NewAuthError(string(KindVisionLLM),
				"AZURE_OPENAI_ENDPOINT and AZURE_OPENAI_API_KEY must be set")
		}
		return newVisionLLMExtractor(clients.NewVisionLLMClient(
			cfg.AzureOpenAIEndpoint, cfg.AzureOpenAIKey,
			cfg.AzureOpenAIDeployment, cfg.AzureOpenAIAPIVersion)), nil

	default:
		return nil, fmt.Errorf("unknown backend %q", kind)
	}
}
