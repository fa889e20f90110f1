/**
 * Storage manager
 *
 * Composes the optional persistence layers behind the harness's
 * ResultStore hook: run history in PostgreSQL, output embeddings in
 * Qdrant. Each layer is independent; whichever is configured gets used,
 * and a store failure never fails the extraction run.
 *
 * Embeddings of the current process's runs are also kept in memory so the
 * comparison report can show pairwise similarity without a search
 * round-trip.
 */

package storage

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/ocrlab/ocrbench/internal/clients"
	"github.com/ocrlab/ocrbench/internal/config"
	"github.com/ocrlab/ocrbench/internal/logging"
	"github.com/ocrlab/ocrbench/internal/processor"
)

// Manager implements processor.ResultStore over the configured layers
type Manager struct {
	runs      *RunStore
	vectors   *VectorStore
	embedding *clients.EmbeddingClient
	logger    *logging.Logger

	mu        sync.Mutex
	runE      map[string][]float32 // backend -> embedding, current process only
}

// NewManager wires up whichever persistence layers the configuration
// enables. Returns nil (no error) when nothing is configured.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		logger: logging.NewLogger("StorageManager"),
		runE:   make(map[string][]float32),
	}

	enabled := false

	if cfg.DatabaseURL != "" {
		runs, err := NewRunStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("run history unavailable: %w", err)
		}
		m.runs = runs
		enabled = true
	}

	if cfg.QdrantURL != "" && cfg.VoyageAPIKey != "" {
		vectors, err := NewVectorStore(cfg.QdrantURL, cfg.QdrantCollection)
		if err != nil {
			return nil, fmt.Errorf("similarity layer unavailable: %w", err)
		}
		embedding, err := clients.NewEmbeddingClient(cfg.VoyageAPIKey)
		if err != nil {
			vectors.Close()
			return nil, fmt.Errorf("similarity layer unavailable: %w", err)
		}
		m.vectors = vectors
		m.embedding = embedding
		enabled = true
	}

	if !enabled {
		return nil, nil
	}
	return m, nil
}

// StoreRunResult persists a completed backend run
func (m *Manager) StoreRunResult(ctx context.Context, summary *processor.RunSummary, text string) error {
	if m.runs != nil {
		if err := m.runs.SaveRun(ctx, summary); err != nil {
			return err
		}
	}

	if m.vectors != nil && text != "" {
		vector, err := m.embedding.GenerateEmbedding(ctx, text)
		if err != nil {
			return fmt.Errorf("failed to embed output: %w", err)
		}

		point := &VectorPoint{
			Vector: vector,
			Metadata: map[string]interface{}{
				"run_id":     summary.RunID,
				"backend":    summary.Backend,
				"input_path": summary.InputPath,
				"char_count": summary.CharCount,
				"page_count": summary.PageCount,
			},
		}
		if err := m.vectors.UpsertVector(ctx, point); err != nil {
			return err
		}

		m.mu.Lock()
		m.runE[summary.Backend] = vector
		m.mu.Unlock()
	}

	return nil
}

// Similarities returns the pairwise cosine similarity between every backend
// output embedded in this process, sorted for deterministic reporting.
func (m *Manager) Similarities() []processor.PairSimilarity {
	m.mu.Lock()
	defer m.mu.Unlock()

	backends := make([]string, 0, len(m.runE))
	for b := range m.runE {
		backends = append(backends, b)
	}
	sort.Strings(backends)

	var pairs []processor.PairSimilarity
	for i := 0; i < len(backends); i++ {
		for j := i + 1; j < len(backends); j++ {
			pairs = append(pairs, processor.PairSimilarity{
				BackendA: backends[i],
				BackendB: backends[j],
				Cosine:   cosineSimilarity(m.runE[backends[i]], m.runE[backends[j]]),
			})
		}
	}
	return pairs
}

// Close releases every configured layer
func (m *Manager) Close() {
	if m.runs != nil {
		m.runs.Close()
	}
	if m.vectors != nil {
		m.vectors.Close()
	}
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
