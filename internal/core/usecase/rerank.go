package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/policyops/policy-rag/internal/core/domain"
	"github.com/policyops/policy-rag/internal/core/ports"
)

// rerankCandidates scores every (query, candidate) pair with the
// cross-encoder and returns the top-n by joint relevance. The sort is
// stable, so candidates with equal scores keep their retrieval order and
// identical inputs always produce identical output.
func rerankCandidates(
	ctx context.Context,
	scorer ports.CrossEncoder,
	query string,
	candidates []domain.RetrievalCandidate,
	topN int,
) ([]domain.RerankedCandidate, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	if topN <= 0 || topN > len(candidates) {
		topN = len(candidates)
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Chunk.Text
	}

	scores, err := scorer.Score(ctx, query, texts)
	if err != nil {
		return nil, fmt.Errorf("cross-encoder score: %w", err)
	}
	if len(scores) != len(candidates) {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"cross-encoder score",
			fmt.Errorf("scores/candidates mismatch: %d/%d", len(scores), len(candidates)),
		)
	}

	out := make([]domain.RerankedCandidate, len(candidates))
	for i, c := range candidates {
		out[i] = domain.RerankedCandidate{Chunk: c.Chunk, Score: scores[i]}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	return out[:topN], nil
}

// passthroughTopN is the degraded-mode fallback when the reranker is
// unavailable: keep the embedding-similarity order and trim to top-n.
func passthroughTopN(candidates []domain.RetrievalCandidate, topN int) []domain.RerankedCandidate {
	if topN <= 0 || topN > len(candidates) {
		topN = len(candidates)
	}
	out := make([]domain.RerankedCandidate, 0, topN)
	for _, c := range candidates[:topN] {
		out = append(out, domain.RerankedCandidate{Chunk: c.Chunk, Score: c.Similarity})
	}
	return out
}
