package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/policyops/policy-rag/internal/core/ports"
	"github.com/policyops/policy-rag/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	genModel   string
	embedModel string
	judgeModel string
	httpClient *http.Client
	exec       *resilience.Executor
}

func New(baseURL, genModel, embedModel, judgeModel string, exec *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		embedModel: embedModel,
		judgeModel: judgeModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		exec:       exec,
	}
}

type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	request := map[string]any{
		"model": e.client.embedModel,
		"input": texts,
	}

	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := e.client.call(ctx, "embed", "/api/embed", request, &response); err != nil {
		return nil, err
	}
	if len(response.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embed: got %d vectors for %d inputs", len(response.Embeddings), len(texts))
	}
	return response.Embeddings, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

// Generator calls /api/generate with a fully rendered prompt. Calls are
// rate limited so a burst of questions cannot starve the shared model
// server, and retried once on transient failures.
type Generator struct {
	client  *Client
	limiter *rate.Limiter
}

func NewGenerator(client *Client, rps float64) *Generator {
	if rps <= 0 {
		rps = 1
	}
	return &Generator{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (g *Generator) Generate(ctx context.Context, prompt string) (ports.Generation, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return ports.Generation{}, err
	}

	request := map[string]any{
		"model":  g.client.genModel,
		"prompt": prompt,
		"stream": false,
	}

	var response struct {
		Response  string `json:"response"`
		EvalCount int    `json:"eval_count"`
	}
	if err := g.client.call(ctx, "generate", "/api/generate", request, &response); err != nil {
		return ports.Generation{}, err
	}
	return ports.Generation{
		Text:       strings.TrimSpace(response.Response),
		TokensUsed: response.EvalCount,
	}, nil
}

// call runs one JSON round-trip through the resilience executor, so
// transient upstream failures get retried and repeated ones trip the
// per-operation circuit breaker.
func (c *Client) call(ctx context.Context, operation, path string, payload, out any) error {
	if c.exec == nil {
		return wrapTemporaryIfNeeded(operation, c.postJSON(ctx, path, payload, out, operation))
	}
	err := c.exec.Execute(ctx, "ollama_"+operation, func(ctx context.Context) error {
		return c.postJSON(ctx, path, payload, out, operation)
	}, classifyOllamaError)
	return wrapTemporaryIfNeeded(operation, err)
}

func (c *Client) generateJSON(ctx context.Context, operation, model, prompt string) (string, error) {
	request := map[string]any{
		"model":  model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := c.call(ctx, operation, "/api/generate", request, &response); err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
