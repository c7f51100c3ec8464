package xlsx

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/policyops/policy-rag/internal/core/domain"
	"github.com/policyops/policy-rag/internal/core/ports"
)

type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

// Extract flattens a workbook into one page per sheet. Rows are rendered
// as tab-separated lines so the chunker can split on line boundaries.
func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) ([]domain.PageText, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, domain.WrapError(domain.ErrUnsupportedDocument, "parse xlsx", err)
	}
	defer f.Close()

	var pages []domain.PageText
	for i, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, domain.WrapError(domain.ErrUnsupportedDocument, "read xlsx sheet", err)
		}

		var b strings.Builder
		b.WriteString(sheet)
		b.WriteString("\n")
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, "\t"))
			if line == "" {
				continue
			}
			b.WriteString(line)
			b.WriteString("\n")
		}

		text := strings.TrimSpace(b.String())
		if text == sheet {
			continue
		}
		pages = append(pages, domain.PageText{Page: i + 1, Text: text})
	}

	if len(pages) == 0 {
		return nil, domain.WrapError(domain.ErrEmptyDocument, "extract xlsx",
			fmt.Errorf("no cell data in %s", doc.Filename))
	}
	return pages, nil
}
