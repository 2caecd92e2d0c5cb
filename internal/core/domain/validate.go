package domain

import "strings"

// ValidateRecords enforces the record schema invariants before anything
// reaches an index. It collects every violation rather than stopping at the
// first, so an operator sees the full damage in one pass. An empty return
// means the record set may be uploaded.
//
// Policy is fail-closed and all-or-nothing per document: callers must treat
// any non-empty result as blocking the entire record set.
func ValidateRecords(records []Record) []ValidationFailure {
	var failures []ValidationFailure

	fail := func(id, reason string) {
		failures = append(failures, ValidationFailure{RecordID: id, Reason: reason})
	}

	for _, r := range records {
		if r.ID == "" {
			fail("", "missing record ID")
			continue
		}
		if strings.TrimSpace(r.Content) == "" {
			fail(r.ID, "empty content")
		}
		if !r.Type.Valid() {
			fail(r.ID, "unknown record type "+string(r.Type))
		}
		if r.Type == RecordTypeSlide {
			if r.SlideNumber <= 0 {
				fail(r.ID, "slide record missing slide number")
			}
			if _, ok := r.Attributes()["keywords"]; !ok {
				fail(r.ID, "slide record missing keywords attribute")
			}
		}
	}

	return failures
}
