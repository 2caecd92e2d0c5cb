package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrMalformedInput indicates a source document is missing required
	// structural fields. Fatal to that document's ingestion - no partial
	// record set is ever produced.
	ErrMalformedInput = errors.New("malformed input")

	// ErrConfiguration indicates an invalid batch size or target
	// configuration. Fatal at startup.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrIndexUnavailable indicates a required index capability is not
	// configured. Both dense and sparse indexes are mandatory.
	ErrIndexUnavailable = errors.New("index unavailable")

	// ErrRerankerUnavailable indicates the reranking service is not
	// configured. The final rerank pass is disabled without it.
	ErrRerankerUnavailable = errors.New("reranker unavailable")
)

// ValidationFailure describes one record that failed schema validation.
type ValidationFailure struct {
	// RecordID is the offending record's ID ("" when the ID itself is missing).
	RecordID string

	// Reason is a human-readable description of the violation.
	Reason string
}

// ValidationError aggregates every schema violation found in a document's
// record set. Validation is all-or-nothing: any failure blocks the whole
// document's upload, and all failures are collected before reporting.
type ValidationError struct {
	Failures []ValidationFailure
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Failures) == 1 {
		return fmt.Sprintf("validation failed: record %q: %s", e.Failures[0].RecordID, e.Failures[0].Reason)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "validation failed: %d records invalid", len(e.Failures))
	for _, f := range e.Failures {
		fmt.Fprintf(&b, "; %q: %s", f.RecordID, f.Reason)
	}
	return b.String()
}

// RetrievalError indicates one of the fan-out searches failed. It is fatal
// to the whole query: returning results from a single modality would present
// a misleading ranking, so there is no partial-result fallback.
type RetrievalError struct {
	// Kind identifies the index whose search failed.
	Kind IndexKind

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *RetrievalError) Error() string {
	return fmt.Sprintf("%s search failed: %v", e.Kind, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *RetrievalError) Unwrap() error {
	return e.Err
}
