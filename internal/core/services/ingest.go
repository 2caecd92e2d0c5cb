// Package services implements the core business logic behind the driving
// ports: the ingestion pipeline (build, validate, batch, dispatch) and the
// cascading retrieval engine (fan-out, merge, rerank).
package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/deckbot-labs/deckindex-cli/internal/core/domain"
	"github.com/deckbot-labs/deckindex-cli/internal/core/ports/driven"
	"github.com/deckbot-labs/deckindex-cli/internal/core/ports/driving"
	"github.com/deckbot-labs/deckindex-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestConfig holds the tunables of the ingestion pipeline. The zero value
// is not usable - construct via DefaultIngestConfig and override.
type IngestConfig struct {
	// MaxBatchSize is the index's hard per-upsert record limit.
	MaxBatchSize int

	// CallDelay paces consecutive upsert calls against one target.
	CallDelay time.Duration

	// TargetDelay paces switches between targets. Longer than CallDelay:
	// a target switch lands on a different index/namespace and the
	// service rate-limits those more aggressively.
	TargetDelay time.Duration
}

// DefaultIngestConfig returns the documented defaults: the managed index's
// 96-record embedding limit, 1s between calls, 2s between targets.
func DefaultIngestConfig() IngestConfig {
	return IngestConfig{
		MaxBatchSize: domain.DefaultMaxBatchSize,
		CallDelay:    time.Second,
		TargetDelay:  2 * time.Second,
	}
}

// validate checks the config at construction time.
func (c IngestConfig) validate() error {
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("%w: max batch size must be positive, got %d", domain.ErrConfiguration, c.MaxBatchSize)
	}
	if c.CallDelay < 0 || c.TargetDelay < 0 {
		return fmt.Errorf("%w: pacing delays must not be negative", domain.ErrConfiguration)
	}
	return nil
}

// IngestService runs the record pipeline and dispatches uploads.
type IngestService struct {
	indexes map[domain.IndexKind]driven.Index
	cfg     IngestConfig

	// limiter enforces the minimum spacing between consecutive upsert calls.
	limiter *rate.Limiter
}

// NewIngestService creates the ingestion service. Both the dense and sparse
// indexes are required.
func NewIngestService(dense, sparse driven.Index, cfg IngestConfig) (*IngestService, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if dense == nil || sparse == nil {
		return nil, fmt.Errorf("%w: both dense and sparse indexes are required", domain.ErrIndexUnavailable)
	}

	var limiter *rate.Limiter
	if cfg.CallDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.CallDelay), 1)
	}

	return &IngestService{
		indexes: map[domain.IndexKind]driven.Index{
			domain.IndexDense:  dense,
			domain.IndexSparse: sparse,
		},
		cfg:     cfg,
		limiter: limiter,
	}, nil
}

// Prepare runs the offline stages: sanitize the document ID, build records,
// validate fail-closed, batch. No network calls are made.
func (s *IngestService) Prepare(deck domain.Deck) (*driving.Prepared, error) {
	docID, fallback := domain.SanitizeDocumentID(deck.Metadata.Filename)
	if fallback {
		logger.Warn("Filename %q contains no ASCII characters, using generated ID %s",
			deck.Metadata.Filename, docID)
	}

	records, err := domain.BuildRecords(docID, deck)
	if err != nil {
		return nil, fmt.Errorf("build records: %w", err)
	}
	logger.Debug("Built %d records for %s", len(records), docID)

	if failures := domain.ValidateRecords(records); len(failures) > 0 {
		return nil, &domain.ValidationError{Failures: failures}
	}

	batches, err := domain.BatchRecords(records, s.cfg.MaxBatchSize)
	if err != nil {
		return nil, fmt.Errorf("batch records: %w", err)
	}
	logger.Debug("Partitioned into %d batches (max %d)", len(batches), s.cfg.MaxBatchSize)

	return &driving.Prepared{
		DocumentID: docID,
		FallbackID: fallback,
		Records:    records,
		Batches:    batches,
	}, nil
}

// Ingest runs the full pipeline for one deck. Input-shape errors abort
// before any network call; upsert call failures are aggregated into the
// report and never stop the remaining calls.
func (s *IngestService) Ingest(ctx context.Context, deck domain.Deck) (*domain.UpsertReport, error) {
	prepared, err := s.Prepare(deck)
	if err != nil {
		return nil, err
	}
	return s.Dispatch(ctx, prepared)
}

// Dispatch uploads an already-prepared deck to every target.
func (s *IngestService) Dispatch(ctx context.Context, prepared *driving.Prepared) (*domain.UpsertReport, error) {
	targets := domain.TargetsFor(prepared.DocumentID)
	return s.dispatch(ctx, prepared.DocumentID, prepared.Batches, targets, nil)
}

// Redispatch re-runs only the failed (batch, target) pairs of a previous
// report. The deck is re-prepared so records reflect the current input;
// upserts are idempotent so replaying a pair that meanwhile succeeded is
// harmless.
func (s *IngestService) Redispatch(ctx context.Context, deck domain.Deck, previous domain.UpsertReport) (*domain.UpsertReport, error) {
	if len(previous.Failures) == 0 {
		return &domain.UpsertReport{DocumentID: previous.DocumentID}, nil
	}

	prepared, err := s.Prepare(deck)
	if err != nil {
		return nil, err
	}
	if prepared.DocumentID != previous.DocumentID {
		return nil, fmt.Errorf("%w: deck sanitizes to %q but report is for %q",
			domain.ErrMalformedInput, prepared.DocumentID, previous.DocumentID)
	}

	retry := make(map[retryKey]bool, len(previous.Failures))
	for _, f := range previous.Failures {
		retry[retryKey{batch: f.BatchIndex, target: f.Target}] = true
	}

	targets := domain.TargetsFor(prepared.DocumentID)
	return s.dispatch(ctx, prepared.DocumentID, prepared.Batches, targets, retry)
}

// retryKey identifies one (batch, target) pair for selective re-dispatch.
type retryKey struct {
	batch  int
	target domain.Target
}

// dispatch issues one upsert per (batch, target) pair, outer loop over
// targets so all of one target's traffic stays contiguous. When only is
// non-nil, pairs absent from it are skipped (re-dispatch mode).
//
// The report is built locally and returned whole: a caller aborting via ctx
// never observes a partially mutated report.
func (s *IngestService) dispatch(
	ctx context.Context,
	documentID string,
	batches [][]domain.Record,
	targets []domain.Target,
	only map[retryKey]bool,
) (*domain.UpsertReport, error) {
	report := &domain.UpsertReport{DocumentID: documentID}

	logger.Section("Dispatch")
	logger.Info("Dispatching %d batches x %d targets for %s", len(batches), len(targets), documentID)

	for ti, target := range targets {
		index := s.indexes[target.Kind]

		for bi, batch := range batches {
			if only != nil && !only[retryKey{batch: bi, target: target}] {
				continue
			}

			if err := s.pace(ctx); err != nil {
				return nil, err
			}

			report.TotalOperations++
			if err := index.Upsert(ctx, target.Namespace, batch); err != nil {
				// Context cancellation is the caller aborting, not a
				// call-level failure to record and continue past.
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				logger.Warn("Upsert failed: batch %d -> %s: %v", bi, target, err)
				report.Failed++
				report.Failures = append(report.Failures, domain.UpsertFailure{
					BatchIndex: bi,
					Target:     target,
					Reason:     err.Error(),
				})
				continue
			}
			logger.Debug("Upserted batch %d (%d records) -> %s", bi, len(batch), target)
			report.Succeeded++
		}

		// Longer pause before moving to the next target.
		if ti < len(targets)-1 && s.cfg.TargetDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.cfg.TargetDelay):
			}
		}
	}

	logger.Info("Dispatch complete: %d/%d succeeded", report.Succeeded, report.TotalOperations)
	return report, nil
}

// pace blocks until the rate limiter admits the next call.
func (s *IngestService) pace(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.Wait(ctx)
}
