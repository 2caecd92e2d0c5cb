// Command deckindex ingests slide-deck metadata into paired dense and sparse
// search indexes and serves cascading retrieval over them.
package main

import (
	"fmt"
	"os"

	"github.com/deckbot-labs/deckindex-cli/internal/adapters/driven/config/file"
	"github.com/deckbot-labs/deckindex-cli/internal/adapters/driven/index/memory"
	indexpinecone "github.com/deckbot-labs/deckindex-cli/internal/adapters/driven/index/pinecone"
	"github.com/deckbot-labs/deckindex-cli/internal/adapters/driven/manifest/sqlite"
	rerankpinecone "github.com/deckbot-labs/deckindex-cli/internal/adapters/driven/rerank/pinecone"
	"github.com/deckbot-labs/deckindex-cli/internal/adapters/driving/cli"
	"github.com/deckbot-labs/deckindex-cli/internal/core/domain"
	"github.com/deckbot-labs/deckindex-cli/internal/core/ports/driving"
	"github.com/deckbot-labs/deckindex-cli/internal/core/services"
	"github.com/deckbot-labs/deckindex-cli/internal/logger"
)

// version is stamped at build time via
// -ldflags "-X main.version=v1.2.3".
var version string

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := file.Load("")
	if err != nil {
		return err
	}

	manifests, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening manifest store: %w", err)
	}
	defer manifests.Close()

	ingest, retrieval, err := buildServices(cfg)
	if err != nil {
		return err
	}

	cli.SetServices(ingest, retrieval, manifests)
	cli.SetVersion(version)
	return cli.Execute()
}

// buildServices wires the index and reranker adapters into the services.
// With an incomplete networked configuration, offline commands (transform,
// version) still work: ingestion falls back to in-memory indexes and
// retrieval is left unconfigured.
func buildServices(cfg file.Config) (driving.IngestService, driving.RetrievalService, error) {
	ingestCfg := services.IngestConfig{
		MaxBatchSize: cfg.Ingest.MaxBatchSize,
		CallDelay:    cfg.Ingest.CallDelay(),
		TargetDelay:  cfg.Ingest.TargetDelay(),
	}

	if err := cfg.Validate(); err != nil {
		logger.Debug("Networked services unavailable: %v", err)

		ingest, buildErr := services.NewIngestService(
			memory.New(domain.IndexDense, cfg.Dense.Name),
			memory.New(domain.IndexSparse, cfg.Sparse.Name),
			ingestCfg,
		)
		if buildErr != nil {
			return nil, nil, buildErr
		}
		return ingest, nil, nil
	}

	dense, err := indexpinecone.New(indexpinecone.Config{
		APIKey:       cfg.APIKey,
		Host:         cfg.Dense.Host,
		Name:         cfg.Dense.Name,
		Kind:         domain.IndexDense,
		SubBatchSize: cfg.Ingest.SubBatchSize,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("configuring dense index: %w", err)
	}

	sparse, err := indexpinecone.New(indexpinecone.Config{
		APIKey:       cfg.APIKey,
		Host:         cfg.Sparse.Host,
		Name:         cfg.Sparse.Name,
		Kind:         domain.IndexSparse,
		SubBatchSize: cfg.Ingest.SubBatchSize,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("configuring sparse index: %w", err)
	}

	reranker, err := rerankpinecone.New(rerankpinecone.Config{
		APIKey: cfg.APIKey,
		Host:   cfg.Reranker.Host,
		Model:  cfg.Reranker.Model,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("configuring reranker: %w", err)
	}

	ingest, err := services.NewIngestService(dense, sparse, ingestCfg)
	if err != nil {
		return nil, nil, err
	}

	retrieval, err := services.NewRetrievalService(dense, sparse, reranker, services.RetrievalConfig{
		TopK:       cfg.Retrieval.TopK,
		RerankTopN: cfg.Retrieval.RerankTopN,
	})
	if err != nil {
		return nil, nil, err
	}

	return ingest, retrieval, nil
}
