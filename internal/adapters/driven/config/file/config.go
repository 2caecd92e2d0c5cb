// Package file loads the application configuration from a TOML file.
//
// The configuration lives at ~/.deckindex/config.toml by default. A missing
// file yields the built-in defaults; a present file overrides them field by
// field. API keys may be supplied in the file or through the PINECONE_API_KEY
// environment variable, which takes precedence.
package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/deckbot-labs/deckindex-cli/internal/core/domain"
)

// APIKeyEnv is the environment variable consulted for the index API key.
const APIKeyEnv = "PINECONE_API_KEY"

// Config is the full application configuration.
type Config struct {
	// APIKey authenticates against the managed index and rerank services.
	APIKey string `toml:"api_key"`

	Dense     IndexConfig     `toml:"dense"`
	Sparse    IndexConfig     `toml:"sparse"`
	Reranker  RerankerConfig  `toml:"reranker"`
	Ingest    IngestConfig    `toml:"ingest"`
	Retrieval RetrievalConfig `toml:"retrieval"`

	// DataDir holds the manifest database. Defaults to ~/.deckindex/data.
	DataDir string `toml:"data_dir"`
}

// IndexConfig identifies one managed index.
type IndexConfig struct {
	// Name is the index name, used in stats output.
	Name string `toml:"name"`

	// Host is the index-specific endpoint URL.
	Host string `toml:"host"`
}

// RerankerConfig configures the cross-encoder endpoint.
type RerankerConfig struct {
	// Host is the inference API base URL.
	Host string `toml:"host"`

	// Model is the cross-encoder model name.
	Model string `toml:"model"`
}

// IngestConfig tunes batching and dispatch pacing.
type IngestConfig struct {
	// MaxBatchSize caps records per upsert batch.
	MaxBatchSize int `toml:"max_batch_size"`

	// SubBatchSize caps records per network call within a batch.
	SubBatchSize int `toml:"sub_batch_size"`

	// CallDelaySeconds is the pause between consecutive upsert calls.
	CallDelaySeconds int `toml:"call_delay_seconds"`

	// TargetDelaySeconds is the pause between target switches.
	TargetDelaySeconds int `toml:"target_delay_seconds"`
}

// RetrievalConfig tunes search defaults.
type RetrievalConfig struct {
	// TopK is the per-index candidate count.
	TopK int `toml:"top_k"`

	// RerankTopN is how many fused results go to the reranker.
	RerankTopN int `toml:"rerank_top_n"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Dense:    IndexConfig{Name: "deckbot-dense"},
		Sparse:   IndexConfig{Name: "deckbot-sparse"},
		Reranker: RerankerConfig{Host: "https://api.pinecone.io", Model: "bge-reranker-v2-m3"},
		Ingest: IngestConfig{
			MaxBatchSize:       domain.DefaultMaxBatchSize,
			SubBatchSize:       domain.DefaultSubBatchSize,
			CallDelaySeconds:   1,
			TargetDelaySeconds: 2,
		},
		Retrieval: RetrievalConfig{TopK: 20, RerankTopN: 5},
	}
}

// Load reads the configuration file under configDir, layering it over the
// defaults. If configDir is empty, defaults to ~/.deckindex. A missing file
// is not an error.
func Load(configDir string) (Config, error) {
	cfg := Default()

	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".deckindex")
	}

	path := filepath.Join(configDir, "config.toml")
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		applyEnv(&cfg)
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parsing %s: %v", domain.ErrConfiguration, path, err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if key := os.Getenv(APIKeyEnv); key != "" {
		cfg.APIKey = key
	}
}

// CallDelay returns the inter-call pause as a duration.
func (c IngestConfig) CallDelay() time.Duration {
	return time.Duration(c.CallDelaySeconds) * time.Second
}

// TargetDelay returns the target-switch pause as a duration.
func (c IngestConfig) TargetDelay() time.Duration {
	return time.Duration(c.TargetDelaySeconds) * time.Second
}

// Validate checks the fields every networked command needs. Commands that
// never touch the network (transform, version) skip this.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: api_key is not set (config file or %s)", domain.ErrConfiguration, APIKeyEnv)
	}
	if c.Dense.Host == "" {
		return fmt.Errorf("%w: dense.host is not set", domain.ErrConfiguration)
	}
	if c.Sparse.Host == "" {
		return fmt.Errorf("%w: sparse.host is not set", domain.ErrConfiguration)
	}
	if c.Reranker.Host == "" {
		return fmt.Errorf("%w: reranker.host is not set", domain.ErrConfiguration)
	}
	if c.Ingest.MaxBatchSize <= 0 {
		return fmt.Errorf("%w: ingest.max_batch_size must be positive", domain.ErrConfiguration)
	}
	if c.Ingest.SubBatchSize <= 0 {
		return fmt.Errorf("%w: ingest.sub_batch_size must be positive", domain.ErrConfiguration)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: retrieval.top_k must be positive", domain.ErrConfiguration)
	}
	if c.Retrieval.RerankTopN <= 0 {
		return fmt.Errorf("%w: retrieval.rerank_top_n must be positive", domain.ErrConfiguration)
	}
	return nil
}
