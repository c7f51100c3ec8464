package plaintext

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/policyops/policy-rag/internal/core/domain"
	"github.com/policyops/policy-rag/internal/core/ports"
)

type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

// Extract reads the stored file as UTF-8 text. Binary content is rejected
// as unsupported rather than passed through as garbage.
func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) ([]domain.PageText, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read source document: %w", err)
	}

	if !utf8.Valid(raw) {
		return nil, domain.WrapError(domain.ErrUnsupportedDocument, "extract plaintext",
			fmt.Errorf("binary content in %s", doc.Filename))
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil, domain.WrapError(domain.ErrEmptyDocument, "extract plaintext", errors.New("empty file"))
	}
	return []domain.PageText{{Page: 1, Text: text}}, nil
}
