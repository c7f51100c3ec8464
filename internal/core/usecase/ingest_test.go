package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/policyops/policy-rag/internal/core/domain"
)

type ingestRepoFake struct {
	created []domain.Document
	byHash  map[string]*domain.Document
	err     error
}

func (f *ingestRepoFake) Create(_ context.Context, doc *domain.Document) error {
	if f.err != nil {
		return f.err
	}
	copyDoc := *doc
	f.created = append(f.created, copyDoc)
	if f.byHash == nil {
		f.byHash = make(map[string]*domain.Document)
	}
	f.byHash[doc.SHA256] = &copyDoc
	return nil
}

func (f *ingestRepoFake) GetByID(context.Context, string) (*domain.Document, error) {
	return nil, errors.New("not implemented")
}

func (f *ingestRepoFake) GetBySHA256(_ context.Context, hash string) (*domain.Document, error) {
	if doc, ok := f.byHash[hash]; ok {
		return doc, nil
	}
	return nil, domain.WrapError(domain.ErrDocumentNotFound, "get by hash", errors.New(hash))
}

func (f *ingestRepoFake) UpdateStatus(context.Context, string, domain.DocumentStatus, string) error {
	return errors.New("not implemented")
}

func (f *ingestRepoFake) SetPageCount(context.Context, string, int) error {
	return errors.New("not implemented")
}

func (f *ingestRepoFake) MarkSupersededByFilename(context.Context, string, string) error {
	return errors.New("not implemented")
}

type ingestStorageFake struct {
	savedKey  string
	savedBody string
	saves     int
	err       error
}

func (f *ingestStorageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	f.saves++
	return nil
}

func (f *ingestStorageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

type ingestQueueFake struct {
	documentIDs []string
	err         error
}

func (f *ingestQueueFake) PublishDocumentIngested(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.documentIDs = append(f.documentIDs, documentID)
	return nil
}

func (f *ingestQueueFake) SubscribeDocumentIngested(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

func TestIngestUploadSuccess(t *testing.T) {
	repo := &ingestRepoFake{}
	storage := &ingestStorageFake{}
	queue := &ingestQueueFake{}
	uc := NewIngestDocumentUseCase(repo, storage, queue, nil)

	doc, err := uc.Upload(context.Background(), "leave policy.txt", "text/plain", bytes.NewBufferString("20 days of paid annual leave"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.ID == "" {
		t.Fatalf("expected document id")
	}
	if doc.Status != domain.StatusUploaded {
		t.Fatalf("expected status uploaded, got %s", doc.Status)
	}
	if doc.SHA256 == "" {
		t.Fatalf("expected content hash")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one repo.Create call, got %d", len(repo.created))
	}
	if len(queue.documentIDs) != 1 || queue.documentIDs[0] != doc.ID {
		t.Fatalf("expected queued doc id %s, got %v", doc.ID, queue.documentIDs)
	}
	if !strings.Contains(storage.savedKey, "_leave_policy.txt") {
		t.Fatalf("expected sanitized key suffix, got %s", storage.savedKey)
	}
}

func TestIngestUploadIdempotentByHash(t *testing.T) {
	repo := &ingestRepoFake{}
	storage := &ingestStorageFake{}
	queue := &ingestQueueFake{}
	uc := NewIngestDocumentUseCase(repo, storage, queue, nil)

	first, err := uc.Upload(context.Background(), "policy.txt", "text/plain", bytes.NewBufferString("same bytes"))
	if err != nil {
		t.Fatalf("first Upload() error = %v", err)
	}
	second, err := uc.Upload(context.Background(), "policy.txt", "text/plain", bytes.NewBufferString("same bytes"))
	if err != nil {
		t.Fatalf("second Upload() error = %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("expected duplicate upload to return existing document %s, got %s", first.ID, second.ID)
	}
	if storage.saves != 1 {
		t.Fatalf("expected one storage write, got %d", storage.saves)
	}
	if len(queue.documentIDs) != 1 {
		t.Fatalf("expected one ingestion event, got %d", len(queue.documentIDs))
	}
}

func TestIngestUploadEmptyBody(t *testing.T) {
	uc := NewIngestDocumentUseCase(&ingestRepoFake{}, &ingestStorageFake{}, &ingestQueueFake{}, nil)

	_, err := uc.Upload(context.Background(), "empty.txt", "text/plain", bytes.NewBufferString("   \n"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
	if domain.StageOf(err) != domain.StageIngestion {
		t.Fatalf("expected ingestion stage tag, got %q", domain.StageOf(err))
	}
}

func TestIngestUploadQueueError(t *testing.T) {
	uc := NewIngestDocumentUseCase(&ingestRepoFake{}, &ingestStorageFake{}, &ingestQueueFake{err: errors.New("queue down")}, nil)

	_, err := uc.Upload(context.Background(), "policy.txt", "text/plain", bytes.NewBufferString("hello"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "publish ingestion event") {
		t.Fatalf("expected publish error, got %v", err)
	}
}
