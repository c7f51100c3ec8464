package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/policyops/policy-rag/internal/core/domain"
	"github.com/policyops/policy-rag/internal/core/ports"
)

type ProcessDocumentUseCase struct {
	repo      ports.DocumentRepository
	extractor ports.TextExtractor
	chunker   ports.Chunker
	embedder  ports.Embedder
	index     ports.VectorIndex
	logger    *slog.Logger
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	embedder ports.Embedder,
	index ports.VectorIndex,
	logger *slog.Logger,
) *ProcessDocumentUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessDocumentUseCase{
		repo:      repo,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		index:     index,
		logger:    logger,
	}
}

// ProcessByID runs extract -> chunk -> embed -> index for one uploaded
// document. Chunk IDs are deterministic, so a retried run after a crash or
// cancellation re-upserts the same points instead of duplicating them.
func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	doc, err := uc.processPipeline(ctx, documentID)
	if err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, documentID, domain.StatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	// The newly indexed version replaces older uploads of the same file.
	if err := uc.repo.MarkSupersededByFilename(ctx, doc.Filename, doc.ID); err != nil {
		return domain.WrapStage(domain.StageIngestion, fmt.Errorf("supersede prior versions: %w", err))
	}

	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}

	uc.logger.Info("document processed", "document_id", documentID)
	return nil
}

func (uc *ProcessDocumentUseCase) processPipeline(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, domain.WrapStage(domain.StageIngestion, fmt.Errorf("fetch document by id: %w", err))
	}

	pages, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return nil, domain.WrapStage(domain.StageIngestion, fmt.Errorf("extract text: %w", err))
	}

	chunks, err := uc.chunker.Chunk(doc, pages)
	if err != nil {
		return nil, domain.WrapStage(domain.StageIngestion, fmt.Errorf("chunk document: %w", err))
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, domain.WrapStage(domain.StageIndexing, fmt.Errorf("embed chunks: %w", err))
	}
	if len(vectors) != len(chunks) {
		return nil, domain.WrapStage(domain.StageIndexing, domain.WrapError(
			domain.ErrInvalidInput,
			"embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(chunks)),
		))
	}

	if err := uc.index.Upsert(ctx, chunks, vectors); err != nil {
		return nil, domain.WrapStage(domain.StageIndexing, fmt.Errorf("index chunks: %w", err))
	}

	if err := uc.repo.SetPageCount(ctx, doc.ID, len(pages)); err != nil {
		return nil, domain.WrapStage(domain.StageIngestion, fmt.Errorf("save page count: %w", err))
	}

	uc.logger.Info("document indexed",
		"document_id", doc.ID,
		"pages", len(pages),
		"chunks", len(chunks),
	)
	return doc, nil
}
