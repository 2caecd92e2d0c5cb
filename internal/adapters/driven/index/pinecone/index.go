// Package pinecone provides a driven.Index adapter for a Pinecone-style
// managed vector index with integrated embedding. The service extracts the
// record's content field, embeds it with the index's configured model, and
// stores every other field as a filterable attribute.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/deckbot-labs/deckindex-cli/internal/core/domain"
	"github.com/deckbot-labs/deckindex-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.Index = (*Index)(nil)

// Default configuration values.
const (
	DefaultTimeout      = 60 * time.Second
	DefaultSubBatchSize = domain.DefaultSubBatchSize
)

// Config holds configuration for one index at the service.
type Config struct {
	// APIKey authenticates against the service (required).
	APIKey string

	// Host is the index's data-plane endpoint, e.g.
	// https://deckbot-dense-xxxx.svc.region.pinecone.io (required).
	Host string

	// Name is the index name, used for stats display.
	Name string

	// Kind is the retrieval modality this index provides.
	Kind domain.IndexKind

	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration

	// SubBatchSize caps records per upload request (default: 20).
	// This is below the index's hard batch limit on purpose: smaller
	// request bodies keep integrated-embedding calls within the
	// service's payload limits.
	SubBatchSize int
}

// Index talks to one managed index over its records API.
type Index struct {
	client       *http.Client
	host         string
	apiKey       string
	name         string
	kind         domain.IndexKind
	subBatchSize int
}

// upsertRecord is the wire shape of one record. The service keys on _id
// and embeds the content field; everything else becomes an attribute.
type upsertRecord map[string]any

// searchRequest is the records search request format.
type searchRequest struct {
	Query searchQuery `json:"query"`
}

type searchQuery struct {
	Inputs map[string]string `json:"inputs"`
	TopK   int               `json:"top_k"`
	Filter map[string]any    `json:"filter,omitempty"`
}

// searchResponse is the records search response format.
type searchResponse struct {
	Result struct {
		Hits []struct {
			ID     string         `json:"_id"`
			Score  float64        `json:"_score"`
			Fields map[string]any `json:"fields"`
		} `json:"hits"`
	} `json:"result"`
}

// statsResponse is the describe-stats response format.
type statsResponse struct {
	TotalRecordCount int `json:"totalRecordCount"`
	Namespaces       map[string]struct {
		RecordCount int `json:"recordCount"`
	} `json:"namespaces"`
}

// errorResponse is the service's error body.
type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// New creates an Index adapter for one managed index.
func New(cfg Config) (*Index, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: index API key is required", domain.ErrConfiguration)
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: index host is required", domain.ErrConfiguration)
	}
	if cfg.Kind != domain.IndexDense && cfg.Kind != domain.IndexSparse {
		return nil, fmt.Errorf("%w: unknown index kind %q", domain.ErrConfiguration, cfg.Kind)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.SubBatchSize == 0 {
		cfg.SubBatchSize = DefaultSubBatchSize
	}
	if cfg.SubBatchSize < 0 {
		return nil, fmt.Errorf("%w: sub-batch size must be positive, got %d", domain.ErrConfiguration, cfg.SubBatchSize)
	}

	return &Index{
		client:       &http.Client{Timeout: cfg.Timeout},
		host:         cfg.Host,
		apiKey:       cfg.APIKey,
		name:         cfg.Name,
		kind:         cfg.Kind,
		subBatchSize: cfg.SubBatchSize,
	}, nil
}

// Kind identifies which retrieval modality this index provides.
func (x *Index) Kind() domain.IndexKind {
	return x.kind
}

// Upsert writes records into the namespace, splitting the batch into
// network sub-batches. Sub-batch splitting preserves record order; the
// service treats each upsert as an independent idempotent overwrite, so a
// failed sub-batch leaves earlier sub-batches applied (callers track the
// whole batch as failed and re-dispatch it).
func (x *Index) Upsert(ctx context.Context, namespace string, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	for start := 0; start < len(records); start += x.subBatchSize {
		end := start + x.subBatchSize
		if end > len(records) {
			end = len(records)
		}
		if err := x.upsertSubBatch(ctx, namespace, records[start:end]); err != nil {
			return fmt.Errorf("records %d-%d: %w", start, end-1, err)
		}
	}
	return nil
}

// upsertSubBatch sends one NDJSON upsert request.
func (x *Index) upsertSubBatch(ctx context.Context, namespace string, records []domain.Record) error {
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, r := range records {
		wire := upsertRecord{"_id": r.ID, "content": r.Content}
		for k, v := range r.Attributes() {
			wire[k] = v
		}
		// Encode appends the newline NDJSON needs.
		if err := enc.Encode(wire); err != nil {
			return fmt.Errorf("encode record %s: %w", r.ID, err)
		}
	}

	endpoint := fmt.Sprintf("%s/records/namespaces/%s/upsert", x.host, url.PathEscape(namespace))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	req.Header.Set("Api-Key", x.apiKey)

	resp, err := x.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return x.serviceError(resp)
	}
	return nil
}

// Search runs a text query against the namespace.
func (x *Index) Search(ctx context.Context, namespace, query string, topK int, filter map[string]any) ([]driven.Hit, error) {
	reqBody := searchRequest{
		Query: searchQuery{
			Inputs: map[string]string{"text": query},
			TopK:   topK,
			Filter: filter,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/records/namespaces/%s/search", x.host, url.PathEscape(namespace))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", x.apiKey)

	resp, err := x.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, x.serviceError(resp)
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	hits := make([]driven.Hit, 0, len(searchResp.Result.Hits))
	for _, h := range searchResp.Result.Hits {
		content, _ := h.Fields["content"].(string)
		attrs := make(map[string]any, len(h.Fields))
		for k, v := range h.Fields {
			if k != "content" {
				attrs[k] = v
			}
		}
		hits = append(hits, driven.Hit{
			ID:         h.ID,
			Content:    content,
			Score:      h.Score,
			Attributes: attrs,
		})
	}
	return hits, nil
}

// Stats returns per-namespace record counts.
func (x *Index) Stats(ctx context.Context) (*driven.IndexStats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.host+"/describe_index_stats", bytes.NewReader([]byte("{}")))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", x.apiKey)

	resp, err := x.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, x.serviceError(resp)
	}

	var statsResp statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&statsResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	stats := &driven.IndexStats{
		Name:         x.name,
		TotalRecords: statsResp.TotalRecordCount,
		Namespaces:   make(map[string]int, len(statsResp.Namespaces)),
	}
	for ns, info := range statsResp.Namespaces {
		stats.Namespaces[ns] = info.RecordCount
	}
	return stats, nil
}

// serviceError extracts the service's error message from a non-2xx response.
func (x *Index) serviceError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("pinecone: status %d (failed to read body: %w)", resp.StatusCode, err)
	}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		return fmt.Errorf("pinecone: status %d: %s", resp.StatusCode, errResp.Error.Message)
	}
	return fmt.Errorf("pinecone: status %d: %s", resp.StatusCode, string(body))
}
