package chunking

import (
	"strings"
	"testing"

	"github.com/policyops/policy-rag/internal/core/domain"
)

func testDoc() *domain.Document {
	return &domain.Document{ID: "doc-1", Filename: "policy.txt"}
}

func TestChunkDeterministic(t *testing.T) {
	s := NewSplitter(100, 20)
	pages := []domain.PageText{{Page: 1, Text: strings.Repeat("The quick brown fox jumps over the lazy dog. ", 30)}}

	first, err := s.Chunk(testDoc(), pages)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	second, err := s.Chunk(testDoc(), pages)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("chunk %d differs between runs", i)
		}
	}
}

func TestChunkBoundedSize(t *testing.T) {
	s := NewSplitter(100, 20)
	pages := []domain.PageText{{Page: 1, Text: strings.Repeat("word ", 500)}}

	chunks, err := s.Chunk(testDoc(), pages)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if n := len([]rune(c.Text)); n > 100 {
			t.Fatalf("chunk %s exceeds max size: %d runes", c.ID, n)
		}
	}
}

func TestChunkIDsStableAndOrdered(t *testing.T) {
	s := NewSplitter(50, 10)
	pages := []domain.PageText{
		{Page: 1, Text: strings.Repeat("alpha beta gamma. ", 10)},
		{Page: 2, Text: strings.Repeat("delta epsilon. ", 10)},
	}

	chunks, err := s.Chunk(testDoc(), pages)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	for i, c := range chunks {
		if c.ID != domain.ChunkID("doc-1", i) {
			t.Fatalf("chunk %d: expected id %s, got %s", i, domain.ChunkID("doc-1", i), c.ID)
		}
		if c.Index != i {
			t.Fatalf("chunk %d: expected index %d, got %d", i, i, c.Index)
		}
	}
	if chunks[0].Page != 1 {
		t.Fatalf("expected first chunk on page 1, got %d", chunks[0].Page)
	}
	if chunks[len(chunks)-1].Page != 2 {
		t.Fatalf("expected last chunk on page 2, got %d", chunks[len(chunks)-1].Page)
	}
}

func TestChunkPrefersSentenceBoundary(t *testing.T) {
	s := NewSplitter(60, 0)
	text := "First sentence here. Second sentence follows now. Third one is a bit longer than the rest."
	chunks, err := s.Chunk(testDoc(), []domain.PageText{{Page: 1, Text: text}})
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if !strings.HasSuffix(chunks[0].Text, ".") {
		t.Fatalf("expected first chunk to end at a sentence boundary, got %q", chunks[0].Text)
	}
}

func TestChunkOverlapCarriesContext(t *testing.T) {
	s := NewSplitter(40, 15)
	text := strings.Repeat("abcdefghij ", 20)
	chunks, err := s.Chunk(testDoc(), []domain.PageText{{Page: 1, Text: text}})
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks")
	}
	// Consecutive chunks share a suffix/prefix of the overlap window.
	tail := chunks[0].Text[len(chunks[0].Text)-5:]
	if !strings.Contains(chunks[1].Text, tail) {
		t.Fatalf("expected overlap between chunks, tail %q not in %q", tail, chunks[1].Text)
	}
}

func TestChunkEmptyDocument(t *testing.T) {
	s := NewSplitter(100, 20)
	_, err := s.Chunk(testDoc(), []domain.PageText{{Page: 1, Text: "   \n\t"}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestNewSplitterClampsBadConfig(t *testing.T) {
	s := NewSplitter(0, -5)
	if s.ChunkSize != 1000 || s.Overlap != 0 {
		t.Fatalf("expected defaults applied, got size=%d overlap=%d", s.ChunkSize, s.Overlap)
	}
	s = NewSplitter(100, 100)
	if s.Overlap >= s.ChunkSize {
		t.Fatalf("expected overlap clamped below chunk size, got %d", s.Overlap)
	}
}
