/**
 * PostgreSQL run history
 *
 * Persists one row per backend run so accuracy and throughput can be
 * compared across documents and across time. The table is created on
 * startup; the harness works fine without a database, this layer is only
 * wired when DATABASE_URL is set.
 */

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/ocrlab/ocrbench/internal/logging"
	"github.com/ocrlab/ocrbench/internal/processor"
)

// RunStore persists backend run summaries
type RunStore struct {
	db     *sql.DB
	logger *logging.Logger
}

const createRunsTable = `
CREATE TABLE IF NOT EXISTS ocr_runs (
	id          BIGSERIAL PRIMARY KEY,
	run_id      UUID        NOT NULL,
	backend     TEXT        NOT NULL,
	input_path  TEXT        NOT NULL,
	char_count  INTEGER     NOT NULL,
	page_count  INTEGER     NOT NULL,
	failed_pages INTEGER    NOT NULL,
	output_path TEXT,
	markdown_path TEXT,
	duration_ms BIGINT      NOT NULL,
	error_code  TEXT,
	error_message TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_ocr_runs_run_id ON ocr_runs (run_id);
CREATE INDEX IF NOT EXISTS idx_ocr_runs_backend ON ocr_runs (backend);
`

// NewRunStore connects to PostgreSQL and ensures the schema exists
func NewRunStore(databaseURL string) (*RunStore, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, createRunsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure ocr_runs table: %w", err)
	}

	return &RunStore{
		db:     db,
		logger: logging.NewLogger("RunStore"),
	}, nil
}

// SaveRun inserts one backend run record
func (s *RunStore) SaveRun(ctx context.Context, summary *processor.RunSummary) error {
	query := `
		INSERT INTO ocr_runs (
			run_id, backend, input_path, char_count, page_count, failed_pages,
			output_path, markdown_path, duration_ms, error_code, error_message
		) VALUES (
			$1::uuid, $2, $3, $4, $5, $6,
			NULLIF($7, ''), NULLIF($8, ''), $9, NULLIF($10, ''), NULLIF($11, '')
		)`

	_, err := s.db.ExecContext(ctx, query,
		summary.RunID,
		summary.Backend,
		summary.InputPath,
		summary.CharCount,
		summary.PageCount,
		len(summary.FailedPages),
		summary.OutputPath,
		summary.MarkdownPath,
		summary.Duration.Milliseconds(),
		summary.ErrorCode,
		summary.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run record: %w", err)
	}

	s.logger.Debug("Run record saved",
		"runId", summary.RunID,
		"backend", summary.Backend)

	return nil
}

// Close releases the connection pool
func (s *RunStore) Close() error {
	return s.db.Close()
}
