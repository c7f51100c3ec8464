package domain

import "fmt"

// Chunk is the unit of retrieval: a bounded contiguous slice of a document's
// text. Its ID is derived from the document ID and chunk index, which keeps
// citations valid across process restarts and re-ingestions.
type Chunk struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Index      int    `json:"index"`
	Page       int    `json:"page,omitempty"`
	Filename   string `json:"filename,omitempty"`
	Text       string `json:"text"`
}

// ChunkID builds the stable chunk identifier for a document chunk index.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s:%04d", documentID, index)
}
