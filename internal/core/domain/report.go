package domain

import "time"

// UpsertFailure identifies one failed (batch, target) upsert call.
type UpsertFailure struct {
	// BatchIndex is the zero-based position of the batch within the
	// document's batch sequence.
	BatchIndex int

	// Target is the destination the call was made against.
	Target Target

	// Reason is the error text from the failed call.
	Reason string
}

// UpsertReport summarises one document's dispatch run. The document's
// ingestion is complete only when Failed is zero - failed pairs are left
// for an explicit re-dispatch, the dispatcher never retries on its own.
type UpsertReport struct {
	// DocumentID is the sanitized document key the run was for.
	DocumentID string

	// TotalOperations is len(batches) x len(targets).
	TotalOperations int

	// Succeeded counts upsert calls that were acknowledged.
	Succeeded int

	// Failed counts upsert calls that errored.
	Failed int

	// Failures identifies each failed (batch, target) pair.
	Failures []UpsertFailure
}

// Complete reports whether every (batch, target) pair succeeded.
func (r UpsertReport) Complete() bool {
	return r.Failed == 0 && r.Succeeded == r.TotalOperations
}

// Manifest records one document's ingestion for later inspection and
// re-dispatch. Persisted by the manifest store.
type Manifest struct {
	// ID is the manifest row ID.
	ID string

	// DocumentID is the sanitized document key.
	DocumentID string

	// Filename is the original display name.
	Filename string

	// Company and Industry mirror the deck metadata.
	Company  string
	Industry string

	// RecordCount is 1 deck record + N slide records.
	RecordCount int

	// BatchCount is how many batches the records were split into.
	BatchCount int

	// FallbackID is true when the document ID came from the timestamp
	// fallback rather than the filename.
	FallbackID bool

	// Report is the dispatch outcome.
	Report UpsertReport

	// IngestedAt is when the dispatch run finished.
	IngestedAt time.Time
}
