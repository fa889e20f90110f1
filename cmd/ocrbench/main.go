/**
 * ocrbench - OCR backend comparison harness
 *
 * Runs a PDF through a selection of OCR/document-extraction backends and
 * writes one output file per backend plus a comparison report. With -queue
 * the document is handed to a background worker instead of processed
 * inline.
 *
 * Usage:
 *   ocrbench [-o outdir] [-m backends] [-compare] [-queue] [-v] <pdf>
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ocrlab/ocrbench/internal/config"
	"github.com/ocrlab/ocrbench/internal/logging"
	"github.com/ocrlab/ocrbench/internal/processor"
	"github.com/ocrlab/ocrbench/internal/queue"
	"github.com/ocrlab/ocrbench/internal/storage"
)

func main() {
	os.Exit(run())
}

func run() int {
	outDir := flag.String("o", "", "output directory (default from OUTPUT_DIR)")
	backends := flag.String("m", "all", "comma-separated backends or 'all'")
	compare := flag.Bool("compare", false, "always write the comparison report")
	enqueue := flag.Bool("queue", false, "enqueue for background processing instead of running inline")
	verbose := flag.Bool("v", false, "verbose (debug) logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-o outdir] [-m backends] [-compare] [-queue] [-v] <pdf>\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return 2
	}
	inputPath := flag.Arg(0)

	logging.SetVerboseAll(*verbose)
	logger := logging.NewLogger("ocrbench")

	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded", "error", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		return 1
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}

	kinds, err := processor.ParseKinds(*backends)
	if err != nil {
		logger.Error("Invalid backend selection", "error", err)
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *enqueue {
		return enqueueJob(ctx, cfg, logger, inputPath, *backends)
	}

	runCtx, cancelRun := context.WithTimeout(ctx,
		time.Duration(cfg.ProcessingTimeout)*time.Millisecond)
	defer cancelRun()

	harness := processor.NewHarness(cfg)

	store, err := storage.NewManager(cfg)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		return 1
	}
	if store != nil {
		defer store.Close()
		harness.SetResultStore(store)
	}

	summaries, err := harness.ProcessDocument(runCtx, inputPath, kinds)
	if err != nil {
		logger.Error("Processing failed", "input", inputPath, "error", err)
		return 1
	}

	failed := 0
	for _, s := range summaries {
		if !s.Succeeded() {
			failed++
		}
	}

	if len(kinds) > 1 || *compare {
		var similarities []processor.PairSimilarity
		if store != nil {
			similarities = store.Similarities()
		}
		report, err := processor.WriteComparisonReport(cfg.OutputDir, inputPath, summaries, similarities)
		if err != nil {
			logger.Error("Failed to write comparison report", "error", err)
			return 1
		}
		fmt.Print(report)
	} else {
		for _, s := range summaries {
			if s.Succeeded() {
				fmt.Printf("%s: %d chars over %d pages -> %s\n",
					s.Backend, s.CharCount, s.PageCount, s.OutputPath)
			} else {
				fmt.Printf("%s: failed [%s] %s\n", s.Backend, s.ErrorCode, s.ErrorMessage)
			}
		}
	}

	if failed > 0 {
		return 1
	}
	return 0
}

func enqueueJob(ctx context.Context, cfg *config.Config, logger *logging.Logger, inputPath, backends string) int {
	if cfg.RedisURL == "" {
		logger.Error("REDIS_URL must be set to use -queue")
		return 1
	}

	producer, err := queue.NewProducer(cfg.RedisURL, cfg.QueueName)
	if err != nil {
		logger.Error("Failed to connect to queue", "error", err)
		return 1
	}
	defer producer.Close()

	jobID, err := producer.Enqueue(ctx, inputPath, backends, cfg.OutputDir)
	if err != nil {
		logger.Error("Failed to enqueue job", "error", err)
		return 1
	}

	fmt.Printf("Enqueued job %s for %s\n", jobID, inputPath)
	return 0
}
