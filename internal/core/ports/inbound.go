package ports

import (
	"context"
	"io"

	"github.com/policyops/policy-rag/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous chunk/embed/index.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// QueryService is the inbound contract for the full retrieve-rerank-generate
// pipeline.
type QueryService interface {
	Ask(ctx context.Context, question, promptVersion string) (*domain.Answer, error)
}

// AnswerEvaluator scores (question, answer, contexts) triples.
type AnswerEvaluator interface {
	EvaluateSingle(ctx context.Context, sample domain.EvaluationSample) (*domain.EvaluationResult, error)
	EvaluateDataset(ctx context.Context, samples []domain.EvaluationSample) []domain.DatasetItemResult
}
