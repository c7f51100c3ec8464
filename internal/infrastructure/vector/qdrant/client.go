package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/policyops/policy-rag/internal/core/domain"
)

type statusError struct {
	Operation string
	Code      int
	Status    string
	Body      string
}

func (e *statusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("qdrant %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("qdrant %s status: %s: %s", e.Operation, e.Status, e.Body)
}

var pointNamespace = uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")

// pointID derives a stable qdrant point UUID from a chunk ID, so
// re-uploading a document replaces its points instead of duplicating them.
func pointID(chunkID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(chunkID)).String()
}

type Client struct {
	baseURL    string
	collection string
	vectorSize int
	httpClient *http.Client

	ensureMu          sync.Mutex
	ensuredCollection bool
}

func New(baseURL, collection string, vectorSize int) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		vectorSize: vectorSize,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) == 0 {
		return nil
	}
	if len(chunks) != len(vectors) {
		return domain.WrapError(domain.ErrInvalidInput, "qdrant upsert",
			fmt.Errorf("%d chunks, %d vectors", len(chunks), len(vectors)))
	}
	for i, v := range vectors {
		if len(v) != c.vectorSize {
			return domain.WrapError(domain.ErrDimensionMismatch, "qdrant upsert",
				fmt.Errorf("vector %d has %d dims, index expects %d", i, len(v), c.vectorSize))
		}
	}

	if err := c.ensureCollection(ctx); err != nil {
		return err
	}

	type point struct {
		ID      string         `json:"id"`
		Vector  []float32      `json:"vector"`
		Payload map[string]any `json:"payload"`
	}

	points := make([]point, 0, len(chunks))
	for i, chunk := range chunks {
		points = append(points, point{
			ID:     pointID(chunk.ID),
			Vector: vectors[i],
			Payload: map[string]any{
				"chunk_id":    chunk.ID,
				"doc_id":      chunk.DocumentID,
				"chunk_index": chunk.Index,
				"page":        chunk.Page,
				"filename":    chunk.Filename,
				"text":        chunk.Text,
			},
		})
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.baseURL, c.collection)
	return c.do(ctx, http.MethodPut, url, map[string]any{"points": points}, nil, "upsert")
}

func (c *Client) Search(ctx context.Context, queryVector []float32, k int) ([]domain.RetrievalCandidate, error) {
	if len(queryVector) != c.vectorSize {
		return nil, domain.WrapError(domain.ErrDimensionMismatch, "qdrant search",
			fmt.Errorf("query vector has %d dims, index expects %d", len(queryVector), c.vectorSize))
	}

	count, err := c.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, domain.ErrIndexEmpty
	}

	reqBody := map[string]any{
		"vector":       queryVector,
		"limit":        k,
		"with_payload": true,
	}

	var searchResp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, c.collection)
	if err := c.do(ctx, http.MethodPost, url, reqBody, &searchResp, "search"); err != nil {
		return nil, err
	}

	out := make([]domain.RetrievalCandidate, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		out = append(out, domain.RetrievalCandidate{
			Chunk: domain.Chunk{
				ID:         getStringPayload(r.Payload, "chunk_id"),
				DocumentID: getStringPayload(r.Payload, "doc_id"),
				Index:      getIntPayload(r.Payload, "chunk_index"),
				Page:       getIntPayload(r.Payload, "page"),
				Filename:   getStringPayload(r.Payload, "filename"),
				Text:       getStringPayload(r.Payload, "text"),
			},
			Similarity: r.Score,
		})
	}
	return out, nil
}

func (c *Client) Count(ctx context.Context) (int, error) {
	var countResp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/count", c.baseURL, c.collection)
	err := c.do(ctx, http.MethodPost, url, map[string]any{"exact": true}, &countResp, "count")
	if err != nil {
		// A missing collection means nothing was ever indexed.
		var statusErr *statusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			return 0, nil
		}
		return 0, err
	}
	return countResp.Result.Count, nil
}

func (c *Client) ensureCollection(ctx context.Context) error {
	c.ensureMu.Lock()
	if c.ensuredCollection {
		c.ensureMu.Unlock()
		return nil
	}
	c.ensureMu.Unlock()

	reqBody := map[string]any{
		"vectors": map[string]any{
			"size":     c.vectorSize,
			"distance": "Cosine",
		},
	}

	url := fmt.Sprintf("%s/collections/%s", c.baseURL, c.collection)
	err := c.do(ctx, http.MethodPut, url, reqBody, nil, "ensure collection")
	if err != nil {
		// 409 means the collection already exists (depends on version/config).
		var statusErr *statusError
		if !errors.As(err, &statusErr) || statusErr.Code != http.StatusConflict {
			return err
		}
	}

	c.ensureMu.Lock()
	c.ensuredCollection = true
	c.ensureMu.Unlock()
	return nil
}

func (c *Client) do(ctx context.Context, method, url string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s body: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &statusError{
			Operation: operation,
			Code:      resp.StatusCode,
			Status:    resp.Status,
			Body:      strings.TrimSpace(string(raw)),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func getStringPayload(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func getIntPayload(payload map[string]any, key string) int {
	v, ok := payload[key]
	if !ok {
		return 0
	}
	f, ok := v.(float64)
	if ok {
		return int(f)
	}
	return 0
}
