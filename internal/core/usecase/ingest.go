package usecase

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/policyops/policy-rag/internal/core/domain"
	"github.com/policyops/policy-rag/internal/core/ports"
)

type IngestDocumentUseCase struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
	logger  *slog.Logger
}

func NewIngestDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	logger *slog.Logger,
) *IngestDocumentUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestDocumentUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
		logger:  logger,
	}
}

// Upload stores the raw document and schedules processing. Ingestion is
// idempotent by content hash: re-uploading bytes already ingested returns
// the existing document without re-embedding anything.
func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
) (*domain.Document, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, domain.WrapStage(domain.StageIngestion, fmt.Errorf("read upload body: %w", err))
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, domain.WrapStage(domain.StageIngestion,
			domain.WrapError(domain.ErrEmptyDocument, "upload", errors.New("empty body")))
	}

	sum := sha256.Sum256(raw)
	hash := hex.EncodeToString(sum[:])

	existing, err := uc.repo.GetBySHA256(ctx, hash)
	if err != nil && !domain.IsKind(err, domain.ErrDocumentNotFound) {
		return nil, domain.WrapStage(domain.StageIngestion, fmt.Errorf("look up document by hash: %w", err))
	}
	if existing != nil && existing.Status != domain.StatusFailed {
		uc.logger.Info("duplicate upload skipped", "document_id", existing.ID, "sha256", hash)
		return existing, nil
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, bytes.NewReader(raw)); err != nil {
		return nil, domain.WrapStage(domain.StageIngestion, fmt.Errorf("save to object storage: %w", err))
	}

	doc := &domain.Document{
		ID:          id,
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: storageKey,
		SHA256:      hash,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, domain.WrapStage(domain.StageIngestion, fmt.Errorf("create document metadata: %w", err))
	}

	if err := uc.queue.PublishDocumentIngested(ctx, doc.ID); err != nil {
		return nil, domain.WrapStage(domain.StageIngestion, fmt.Errorf("publish ingestion event: %w", err))
	}

	uc.logger.Info("document uploaded", "document_id", doc.ID, "filename", filename, "sha256", hash)
	return doc, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
