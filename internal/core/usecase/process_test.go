package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/policyops/policy-rag/internal/core/domain"
)

type statusCall struct {
	status domain.DocumentStatus
	errMsg string
}

type processRepoFake struct {
	doc            *domain.Document
	getErr         error
	statusCalls    []statusCall
	pageCount      int
	supersededName string
}

func (f *processRepoFake) Create(context.Context, *domain.Document) error { return nil }

func (f *processRepoFake) GetByID(context.Context, string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	copyDoc := *f.doc
	return &copyDoc, nil
}

func (f *processRepoFake) GetBySHA256(context.Context, string) (*domain.Document, error) {
	return nil, domain.ErrDocumentNotFound
}

func (f *processRepoFake) UpdateStatus(_ context.Context, _ string, status domain.DocumentStatus, errMessage string) error {
	f.statusCalls = append(f.statusCalls, statusCall{status: status, errMsg: errMessage})
	return nil
}

func (f *processRepoFake) SetPageCount(_ context.Context, _ string, pages int) error {
	f.pageCount = pages
	return nil
}

func (f *processRepoFake) MarkSupersededByFilename(_ context.Context, filename, _ string) error {
	f.supersededName = filename
	return nil
}

type extractorFake struct {
	pages []domain.PageText
	err   error
}

func (f *extractorFake) Extract(context.Context, *domain.Document) ([]domain.PageText, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

type chunkerFake struct {
	chunks []domain.Chunk
	err    error
}

func (f *chunkerFake) Chunk(*domain.Document, []domain.PageText) ([]domain.Chunk, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.chunks, nil
}

type embedderFake struct {
	vectors [][]float32
	err     error
}

func (f *embedderFake) Embed(context.Context, []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors, nil
}

func (f *embedderFake) EmbedQuery(context.Context, string) ([]float32, error) { return nil, nil }

type indexFake struct {
	upserted []domain.Chunk
	err      error
}

func (f *indexFake) Upsert(_ context.Context, chunks []domain.Chunk, _ [][]float32) error {
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, chunks...)
	return nil
}

func (f *indexFake) Search(context.Context, []float32, int) ([]domain.RetrievalCandidate, error) {
	return nil, nil
}

func (f *indexFake) Count(context.Context) (int, error) { return len(f.upserted), nil }

func TestProcessByIDSuccess(t *testing.T) {
	repo := &processRepoFake{doc: &domain.Document{ID: "doc-1", Filename: "leave.pdf"}}
	index := &indexFake{}
	uc := NewProcessDocumentUseCase(
		repo,
		&extractorFake{pages: []domain.PageText{{Page: 1, Text: "text"}, {Page: 2, Text: "more"}}},
		&chunkerFake{chunks: []domain.Chunk{
			{ID: domain.ChunkID("doc-1", 0), DocumentID: "doc-1", Index: 0, Text: "a"},
			{ID: domain.ChunkID("doc-1", 1), DocumentID: "doc-1", Index: 1, Text: "b"},
		}},
		&embedderFake{vectors: [][]float32{{1}, {2}}},
		index,
		nil,
	)

	if err := uc.ProcessByID(context.Background(), "doc-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	if len(repo.statusCalls) != 2 {
		t.Fatalf("expected 2 status calls, got %d", len(repo.statusCalls))
	}
	if repo.statusCalls[0].status != domain.StatusProcessing || repo.statusCalls[1].status != domain.StatusReady {
		t.Fatalf("unexpected status sequence: %+v", repo.statusCalls)
	}
	if repo.pageCount != 2 {
		t.Fatalf("expected page count 2, got %d", repo.pageCount)
	}
	if repo.supersededName != "leave.pdf" {
		t.Fatalf("expected prior versions of leave.pdf superseded, got %q", repo.supersededName)
	}
	if len(index.upserted) != 2 {
		t.Fatalf("expected 2 chunks indexed, got %d", len(index.upserted))
	}
}

func TestProcessByIDMarksFailedOnExtractError(t *testing.T) {
	repo := &processRepoFake{doc: &domain.Document{ID: "doc-1"}}
	uc := NewProcessDocumentUseCase(
		repo,
		&extractorFake{err: domain.WrapError(domain.ErrUnsupportedDocument, "extract", errors.New("corrupt pdf"))},
		&chunkerFake{},
		&embedderFake{},
		&indexFake{},
		nil,
	)

	err := uc.ProcessByID(context.Background(), "doc-1")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrUnsupportedDocument) {
		t.Fatalf("expected ErrUnsupportedDocument, got %v", err)
	}
	if len(repo.statusCalls) != 2 || repo.statusCalls[1].status != domain.StatusFailed {
		t.Fatalf("expected processing + failed status updates, got %+v", repo.statusCalls)
	}
}

func TestProcessByIDMarksFailedOnVectorMismatch(t *testing.T) {
	repo := &processRepoFake{doc: &domain.Document{ID: "doc-1"}}
	uc := NewProcessDocumentUseCase(
		repo,
		&extractorFake{pages: []domain.PageText{{Page: 1, Text: "text"}}},
		&chunkerFake{chunks: []domain.Chunk{{ID: "doc-1:0000", Text: "a"}, {ID: "doc-1:0001", Text: "b"}}},
		&embedderFake{vectors: [][]float32{{1}}},
		&indexFake{},
		nil,
	)

	err := uc.ProcessByID(context.Background(), "doc-1")
	if err == nil {
		t.Fatalf("expected error")
	}
	if domain.StageOf(err) != domain.StageIndexing {
		t.Fatalf("expected indexing stage tag, got %q", domain.StageOf(err))
	}
	if len(repo.statusCalls) != 2 || repo.statusCalls[1].status != domain.StatusFailed {
		t.Fatalf("expected final failed status, got %+v", repo.statusCalls)
	}
}
