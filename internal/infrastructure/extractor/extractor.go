// Package extractor routes documents to a format-specific text extractor
// based on MIME type, falling back to the filename extension.
package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/policyops/policy-rag/internal/core/domain"
	"github.com/policyops/policy-rag/internal/core/ports"
	extpdf "github.com/policyops/policy-rag/internal/infrastructure/extractor/pdf"
	"github.com/policyops/policy-rag/internal/infrastructure/extractor/plaintext"
	extxlsx "github.com/policyops/policy-rag/internal/infrastructure/extractor/xlsx"
)

type Dispatcher struct {
	plain ports.TextExtractor
	pdf   ports.TextExtractor
	xlsx  ports.TextExtractor
}

func NewDispatcher(storage ports.ObjectStorage) *Dispatcher {
	return &Dispatcher{
		plain: plaintext.NewExtractor(storage),
		pdf:   extpdf.NewExtractor(storage),
		xlsx:  extxlsx.NewExtractor(storage),
	}
}

func (d *Dispatcher) Extract(ctx context.Context, doc *domain.Document) ([]domain.PageText, error) {
	switch kind(doc) {
	case "pdf":
		return d.pdf.Extract(ctx, doc)
	case "xlsx":
		return d.xlsx.Extract(ctx, doc)
	case "text":
		return d.plain.Extract(ctx, doc)
	default:
		return nil, domain.WrapError(domain.ErrUnsupportedDocument, "dispatch extractor",
			fmt.Errorf("no extractor for %q (%s)", doc.MimeType, doc.Filename))
	}
}

func kind(doc *domain.Document) string {
	mime := strings.ToLower(doc.MimeType)
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	switch mime {
	case "application/pdf":
		return "pdf"
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return "xlsx"
	case "text/plain", "text/markdown", "text/csv":
		return "text"
	}

	switch strings.ToLower(filepath.Ext(doc.Filename)) {
	case ".pdf":
		return "pdf"
	case ".xlsx":
		return "xlsx"
	case ".txt", ".md", ".markdown", ".csv", ".log":
		return "text"
	}
	return ""
}
