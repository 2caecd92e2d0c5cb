// Package cli implements the deckindex command-line interface. Commands are
// thin adapters: they parse flags, read deck files, call the driving ports
// and render the results. All pipeline behaviour lives in the services.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/deckbot-labs/deckindex-cli/internal/core/ports/driven"
	"github.com/deckbot-labs/deckindex-cli/internal/core/ports/driving"
	"github.com/deckbot-labs/deckindex-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services wired in by main before Execute runs. Commands nil-check the
// services they need so unit tests can run commands without full wiring.
var (
	ingestService    driving.IngestService
	retrievalService driving.RetrievalService
	manifestStore    driven.ManifestStore
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "deckindex",
	Short: "Slide-deck indexing and cascading retrieval",
	Long: `deckindex ingests slide-deck metadata into paired dense and sparse
search indexes and serves queries through a cascading retrieval pipeline:
parallel dense + sparse search, score fusion, cross-encoder rerank.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetServices wires the driving ports the commands call. Must run before
// Execute.
func SetServices(ingest driving.IngestService, retrieval driving.RetrievalService, manifests driven.ManifestStore) {
	ingestService = ingest
	retrievalService = retrieval
	manifestStore = manifests
}

// SetVersion overrides the version string printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
