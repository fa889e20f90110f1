/**
 * ocrbench-worker - background extraction worker
 *
 * Consumes queued extraction jobs from Redis and runs them through the
 * same harness the CLI uses. Shuts down gracefully on SIGINT/SIGTERM,
 * draining in-flight jobs first.
 */

package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

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
	verbose := flag.Bool("v", false, "verbose (debug) logging")
	flag.Parse()

	logging.SetVerboseAll(*verbose)
	logger := logging.NewLogger("ocrbench-worker")

	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded", "error", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		return 1
	}

	if cfg.RedisURL == "" {
		logger.Error("REDIS_URL must be set for the worker")
		return 1
	}

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

	consumer, err := queue.NewConsumer(cfg, harness)
	if err != nil {
		logger.Error("Failed to start consumer", "error", err)
		return 1
	}

	if err := consumer.Start(); err != nil {
		logger.Error("Failed to start worker", "error", err)
		return 1
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig

	logger.Info("Signal received, shutting down", "signal", s)
	consumer.Shutdown()

	logger.Info("Worker stopped")
	return 0
}
