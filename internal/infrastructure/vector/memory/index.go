// Package memory provides an in-process vector index for tests and
// single-node development runs. It mirrors the qdrant adapter's
// contract: idempotent upsert per chunk ID, cosine similarity, and
// descending-score search.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/policyops/policy-rag/internal/core/domain"
)

type entry struct {
	chunk  domain.Chunk
	vector []float32
}

type Index struct {
	vectorSize int

	mu      sync.RWMutex
	entries map[string]entry
}

func NewIndex(vectorSize int) *Index {
	return &Index{
		vectorSize: vectorSize,
		entries:    make(map[string]entry),
	}
}

func (x *Index) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return domain.WrapError(domain.ErrInvalidInput, "memory upsert",
			fmt.Errorf("%d chunks, %d vectors", len(chunks), len(vectors)))
	}
	for i, v := range vectors {
		if len(v) != x.vectorSize {
			return domain.WrapError(domain.ErrDimensionMismatch, "memory upsert",
				fmt.Errorf("vector %d has %d dims, index expects %d", i, len(v), x.vectorSize))
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	for i, chunk := range chunks {
		vec := make([]float32, len(vectors[i]))
		copy(vec, vectors[i])
		x.entries[chunk.ID] = entry{chunk: chunk, vector: vec}
	}
	return nil
}

func (x *Index) Search(ctx context.Context, queryVector []float32, k int) ([]domain.RetrievalCandidate, error) {
	if len(queryVector) != x.vectorSize {
		return nil, domain.WrapError(domain.ErrDimensionMismatch, "memory search",
			fmt.Errorf("query vector has %d dims, index expects %d", len(queryVector), x.vectorSize))
	}

	x.mu.RLock()
	defer x.mu.RUnlock()
	if len(x.entries) == 0 {
		return nil, domain.ErrIndexEmpty
	}

	candidates := make([]domain.RetrievalCandidate, 0, len(x.entries))
	for _, e := range x.entries {
		candidates = append(candidates, domain.RetrievalCandidate{
			Chunk:      e.chunk,
			Similarity: cosine(queryVector, e.vector),
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Similarity != candidates[j].Similarity {
			return candidates[i].Similarity > candidates[j].Similarity
		}
		return candidates[i].Chunk.ID < candidates[j].Chunk.ID
	})
	if k < len(candidates) {
		candidates = candidates[:k]
	}
	return candidates, nil
}

func (x *Index) Count(ctx context.Context) (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries), nil
}

func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
