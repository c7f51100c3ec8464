package chunking

import (
	"errors"
	"strings"

	"github.com/policyops/policy-rag/internal/core/domain"
)

// boundary markers tried in order when trimming a window back to a natural
// break. Paragraph first, then line, then sentence, then word.
var boundaries = []string{"\n\n", "\n", ". ", " "}

// Splitter cuts extracted pages into overlapping chunks. Splitting is pure
// string work with no randomness: the same document and configuration
// always produce byte-identical chunk sequences, which is what makes
// re-ingestion detection and chunk-ID stability possible.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

func (s *Splitter) Chunk(doc *domain.Document, pages []domain.PageText) ([]domain.Chunk, error) {
	var out []domain.Chunk
	index := 0
	for _, page := range pages {
		for _, text := range s.splitText(page.Text) {
			out = append(out, domain.Chunk{
				ID:         domain.ChunkID(doc.ID, index),
				DocumentID: doc.ID,
				Index:      index,
				Page:       page.Page,
				Filename:   doc.Filename,
				Text:       text,
			})
			index++
		}
	}
	if len(out) == 0 {
		return nil, domain.WrapError(domain.ErrEmptyDocument, "chunk document", errors.New("no text in any page"))
	}
	return out, nil
}

// splitText walks the page in windows of ChunkSize runes with Overlap runes
// of carry-over. A window that would cut mid-sentence is trimmed back to the
// nearest boundary marker, as long as that keeps at least half the window.
func (s *Splitter) splitText(text string) []string {
	runes := []rune(text)
	if len(strings.TrimSpace(text)) == 0 {
		return nil
	}

	var out []string
	start := 0
	for start < len(runes) {
		end := start + s.ChunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = s.adjustToBoundary(runes, start, end)
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			out = append(out, chunk)
		}
		if end == len(runes) {
			break
		}

		next := end - s.Overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return out
}

func (s *Splitter) adjustToBoundary(runes []rune, start, end int) int {
	window := string(runes[start:end])
	minEnd := start + s.ChunkSize/2
	for _, sep := range boundaries {
		if idx := strings.LastIndex(window, sep); idx >= 0 {
			cut := start + len([]rune(window[:idx+len(sep)]))
			if cut > minEnd {
				return cut
			}
		}
	}
	return end
}
