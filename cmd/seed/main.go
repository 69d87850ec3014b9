package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/address-validator/internal/dataset"
	"github.com/address-validator/internal/search"
	"go.uber.org/zap"
)

// Standalone seeder: loads the reference dataset CSV and pushes it into the
// Meilisearch autocomplete index. Run it once against a fresh Meilisearch
// instance, or after a dataset change when the API server is not running.
//
// Usage:
//
//	go run ./cmd/seed -source ./addresses_praha.csv
//	MEILISEARCH_URL=http://meili:7700 go run ./cmd/seed
func main() {
	var (
		source    = flag.String("source", os.Getenv("DATASET_SOURCE"), "dataset CSV path or URL")
		meiliURL  = flag.String("meili-url", getEnv("MEILISEARCH_URL", "http://localhost:7700"), "Meilisearch URL")
		meiliKey  = flag.String("meili-key", os.Getenv("MEILISEARCH_MASTER_KEY"), "Meilisearch master key")
		indexName = flag.String("index", "addresses", "Meilisearch index name")
		timeout   = flag.Duration("timeout", 10*time.Minute, "overall seeding timeout")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *source == "" {
		logger.Fatal("no dataset source: pass -source or set DATASET_SOURCE")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	startTime := time.Now()

	// Step 1: load the dataset
	loader := dataset.NewLoader(logger)
	records, err := loader.Load(ctx, *source)
	if err != nil {
		logger.Fatal("load dataset", zap.Error(err))
	}
	logger.Info("dataset loaded", zap.String("source", *source), zap.Int("records", len(records)))

	// Step 2: connect to Meilisearch
	searcher, err := search.NewAddressSearcher(search.SearchConfig{
		Host:      *meiliURL,
		APIKey:    *meiliKey,
		IndexName: *indexName,
	}, logger)
	if err != nil {
		logger.Fatal("connect meilisearch", zap.Error(err))
	}

	// Step 3: configure index settings
	if err := searcher.BuildIndexes(); err != nil {
		logger.Fatal("configure index", zap.Error(err))
	}
	logger.Info("index configured", zap.String("index", *indexName))

	// Step 4: batch insert documents
	if err := searcher.SeedRecords(records); err != nil {
		logger.Fatal("seed records", zap.Error(err))
	}

	logger.Info("seeding complete",
		zap.Int("documents", len(records)),
		zap.Duration("elapsed", time.Since(startTime)))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
