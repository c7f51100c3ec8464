package ports

import (
	"context"
	"io"

	"github.com/policyops/policy-rag/internal/core/domain"
)

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	GetBySHA256(ctx context.Context, hash string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SetPageCount(ctx context.Context, id string, pages int) error
	MarkSupersededByFilename(ctx context.Context, filename, exceptID string) error
}

// ObjectStorage stores raw source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor extracts plain text, page by page, from a stored document.
// A corrupt or unsupported file yields domain.ErrUnsupportedDocument, never
// silently empty text.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) ([]domain.PageText, error)
}

// Chunker splits extracted pages into retrieval chunks. Deterministic:
// identical input and configuration always produce an identical sequence.
type Chunker interface {
	Chunk(doc *domain.Document, pages []domain.PageText) ([]domain.Chunk, error)
}

// Embedder builds vectors for chunks and query text. Deterministic for a
// fixed model version; dimensionality is fixed per index.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex stores chunk embeddings and answers similarity queries.
// Upsert is idempotent per chunk ID; Search returns candidates in
// descending similarity order and fails with domain.ErrIndexEmpty when
// nothing has been indexed.
type VectorIndex interface {
	Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error
	Search(ctx context.Context, queryVector []float32, k int) ([]domain.RetrievalCandidate, error)
	Count(ctx context.Context) (int, error)
}

// CrossEncoder scores (query, text) pairs jointly. Only relative ordering
// of the returned scores is meaningful. An unreachable scoring service
// yields domain.ErrRerankerUnavailable.
type CrossEncoder interface {
	Score(ctx context.Context, query string, texts []string) ([]float64, error)
}

// Generation is one completed generation call.
type Generation struct {
	Text       string
	TokensUsed int
}

// Generator invokes the generation service with a fully rendered prompt.
// Transient failures are wrapped with domain.ErrTemporary; permanent ones
// (invalid credentials, malformed requests) are not.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Generation, error)
}

// PromptStore is the append-only registry of prompt template versions.
// Publishing an existing version fails; Get with an unknown version yields
// domain.ErrUnknownPromptVersion.
type PromptStore interface {
	Get(ctx context.Context, version string) (*domain.PromptTemplate, error)
	Publish(ctx context.Context, tpl domain.PromptTemplate) error
	Versions(ctx context.Context) ([]string, error)
}

// Judge is the injectable evaluation capability: statement decomposition,
// entailment verdicts, question reconstruction, and context relevance.
// Failures yield domain.ErrJudge.
type Judge interface {
	Statements(ctx context.Context, answer string) ([]string, error)
	Supported(ctx context.Context, statement string, contexts []string) (bool, error)
	ReconstructQuestions(ctx context.Context, answer string, n int) ([]string, error)
	ContextUseful(ctx context.Context, question, contextText string) (bool, error)
}
