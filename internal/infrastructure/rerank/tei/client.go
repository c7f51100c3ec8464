// Package tei talks to a text-embeddings-inference style reranker over
// HTTP. The /rerank endpoint scores (query, text) pairs jointly with a
// cross-encoder model.
package tei

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/policyops/policy-rag/internal/core/domain"
)

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func New(baseURL, model string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Score returns one relevance score per input text, in input order. An
// unreachable or failing service is reported as domain.ErrRerankerUnavailable
// so the caller can decide whether to degrade or abort.
func (c *Client) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	request := map[string]any{
		"query": query,
		"texts": texts,
	}
	if c.model != "" {
		request["model"] = c.model
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRerankerUnavailable, "rerank request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, domain.WrapError(domain.ErrRerankerUnavailable, "rerank request",
			fmt.Errorf("status %s: %s", resp.Status, strings.TrimSpace(string(raw))))
	}

	var results []struct {
		Index int     `json:"index"`
		Score float64 `json:"score"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, domain.WrapError(domain.ErrRerankerUnavailable, "decode rerank response", err)
	}
	if len(results) != len(texts) {
		return nil, domain.WrapError(domain.ErrRerankerUnavailable, "rerank response",
			fmt.Errorf("got %d scores for %d texts", len(results), len(texts)))
	}

	scores := make([]float64, len(texts))
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(texts) {
			return nil, domain.WrapError(domain.ErrRerankerUnavailable, "rerank response",
				fmt.Errorf("index %d out of range", r.Index))
		}
		scores[r.Index] = r.Score
	}
	return scores, nil
}
