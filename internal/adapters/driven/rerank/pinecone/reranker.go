// Package pinecone implements the reranker port against the hosted
// inference rerank endpoint using a cross-encoder model.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/deckbot-labs/deckindex-cli/internal/core/domain"
	"github.com/deckbot-labs/deckindex-cli/internal/core/ports/driven"
)

// DefaultModel is the cross-encoder used when no model is configured.
const DefaultModel = "bge-reranker-v2-m3"

const apiVersion = "2025-01"

// Config holds the settings needed to reach the rerank endpoint.
type Config struct {
	// APIKey authenticates requests. Required.
	APIKey string

	// Host is the inference API base URL. Required.
	Host string

	// Model is the cross-encoder model name. Defaults to DefaultModel.
	Model string

	// Timeout for a single rerank call. Defaults to 30 seconds.
	Timeout time.Duration
}

// Reranker scores query/document pairs with a hosted cross-encoder.
type Reranker struct {
	cfg    Config
	client *http.Client
}

var _ driven.Reranker = (*Reranker)(nil)

// New validates the configuration and returns a ready Reranker.
func New(cfg Config) (*Reranker, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: reranker API key is required", domain.ErrConfiguration)
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: reranker host is required", domain.ErrConfiguration)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Reranker{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// ModelName returns the configured cross-encoder model.
func (r *Reranker) ModelName() string {
	return r.cfg.Model
}

type rerankDocument struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type rerankRequest struct {
	Model           string           `json:"model"`
	Query           string           `json:"query"`
	TopN            int              `json:"top_n"`
	ReturnDocuments bool             `json:"return_documents"`
	Documents       []rerankDocument `json:"documents"`
}

type rerankResponse struct {
	Data []struct {
		Index    int     `json:"index"`
		Score    float64 `json:"score"`
		Document struct {
			ID string `json:"id"`
		} `json:"document"`
	} `json:"data"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Rerank scores the documents against the query and returns the topN best,
// ordered by descending cross-encoder score.
func (r *Reranker) Rerank(ctx context.Context, query string, documents []driven.RerankDocument, topN int) ([]driven.RankedDocument, error) {
	if len(documents) == 0 {
		return nil, nil
	}
	if topN <= 0 || topN > len(documents) {
		topN = len(documents)
	}

	request := rerankRequest{
		Model:           r.cfg.Model,
		Query:           query,
		TopN:            topN,
		ReturnDocuments: true,
		Documents:       make([]rerankDocument, 0, len(documents)),
	}
	for _, doc := range documents {
		request.Documents = append(request.Documents, rerankDocument{ID: doc.ID, Text: doc.Content})
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	url := strings.TrimSuffix(r.cfg.Host, "/") + "/rerank"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create rerank request: %w", err)
	}
	req.Header.Set("Api-Key", r.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Pinecone-API-Version", apiVersion)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRerankerUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read rerank response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, serviceError(resp.StatusCode, respBody)
	}

	var parsed rerankResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode rerank response: %w", err)
	}

	ranked := make([]driven.RankedDocument, 0, len(parsed.Data))
	for _, row := range parsed.Data {
		id := row.Document.ID
		if id == "" {
			// Some API versions omit the document echo; fall back to the
			// request index.
			if row.Index < 0 || row.Index >= len(documents) {
				return nil, fmt.Errorf("%w: rerank result index %d out of range", domain.ErrRerankerUnavailable, row.Index)
			}
			id = documents[row.Index].ID
		}
		ranked = append(ranked, driven.RankedDocument{ID: id, Score: row.Score})
	}
	return ranked, nil
}

func serviceError(status int, body []byte) error {
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return fmt.Errorf("%w: rerank service returned %d: %s", domain.ErrRerankerUnavailable, status, parsed.Error.Message)
	}
	return fmt.Errorf("%w: rerank service returned %d", domain.ErrRerankerUnavailable, status)
}
