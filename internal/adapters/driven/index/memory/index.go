// Package memory provides an in-process implementation of the index port.
// It backs --dry-run ingestion and lets the service layer be exercised
// end to end without network access. Scoring is a crude token-overlap
// heuristic, good enough to produce deterministic ordered hits.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/deckbot-labs/deckindex-cli/internal/core/domain"
	"github.com/deckbot-labs/deckindex-cli/internal/core/ports/driven"
)

// Index stores records per namespace in memory. Safe for concurrent use.
type Index struct {
	kind domain.IndexKind
	name string

	mu         sync.RWMutex
	namespaces map[string]map[string]domain.Record
}

var _ driven.Index = (*Index)(nil)

// New returns an empty in-memory index of the given kind.
func New(kind domain.IndexKind, name string) *Index {
	return &Index{
		kind:       kind,
		name:       name,
		namespaces: make(map[string]map[string]domain.Record),
	}
}

// Kind returns the index kind this instance stands in for.
func (i *Index) Kind() domain.IndexKind {
	return i.kind
}

// Upsert inserts or overwrites records by ID within the namespace.
func (i *Index) Upsert(_ context.Context, namespace string, records []domain.Record) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	ns, ok := i.namespaces[namespace]
	if !ok {
		ns = make(map[string]domain.Record)
		i.namespaces[namespace] = ns
	}
	for _, r := range records {
		ns[r.ID] = r
	}
	return nil
}

// Search scores every record in the namespace by token overlap with the
// query, applies the filter as exact attribute equality, and returns the
// topK highest scorers. Ties break by ID so results are deterministic.
func (i *Index) Search(_ context.Context, namespace, query string, topK int, filter map[string]any) ([]driven.Hit, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	terms := tokenize(query)
	var hits []driven.Hit
	for _, r := range i.namespaces[namespace] {
		if !matchesFilter(r, filter) {
			continue
		}
		score := overlap(terms, tokenize(r.Content))
		if score == 0 {
			continue
		}
		hits = append(hits, driven.Hit{
			ID:         r.ID,
			Content:    r.Content,
			Score:      score,
			Attributes: r.Attributes(),
		})
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score > hits[b].Score
		}
		return hits[a].ID < hits[b].ID
	})
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Stats reports record counts per namespace.
func (i *Index) Stats(_ context.Context) (*driven.IndexStats, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	stats := &driven.IndexStats{
		Name:       i.name,
		Namespaces: make(map[string]int, len(i.namespaces)),
	}
	for ns, records := range i.namespaces {
		stats.Namespaces[ns] = len(records)
		stats.TotalRecords += len(records)
	}
	return stats, nil
}

// matchesFilter applies exact equality per attribute. Values wrapped in an
// {"$eq": v} operator map are unwrapped first, mirroring the filter shape
// the managed adapter sends.
func matchesFilter(r domain.Record, filter map[string]any) bool {
	if len(filter) == 0 {
		return true
	}
	attrs := r.Attributes()
	for key, want := range filter {
		if op, ok := want.(map[string]any); ok {
			if eq, ok := op["$eq"]; ok {
				want = eq
			}
		}
		if attrs[key] != want {
			return false
		}
	}
	return true
}

func tokenize(s string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		tokens[strings.Trim(tok, ".,;:!?()")] = struct{}{}
	}
	return tokens
}

// overlap is the fraction of query terms present in the document.
func overlap(query, doc map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	matched := 0
	for tok := range query {
		if _, ok := doc[tok]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(query))
}
