package domain

// RetrievalCandidate is a chunk returned by vector search, scored by
// embedding similarity. Transient, never persisted.
type RetrievalCandidate struct {
	Chunk      Chunk   `json:"chunk"`
	Similarity float64 `json:"similarity"`
}

// RerankedCandidate is a retrieval candidate re-scored by the cross-encoder.
// Scores are only comparable within one reranker model version.
type RerankedCandidate struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// Citation points a span of the answer back at one evidence chunk.
type Citation struct {
	ChunkID  string `json:"chunk_id"`
	Document string `json:"document"`
	Page     int    `json:"page,omitempty"`
}

// QueryMetrics is the observability block attached to every answer.
type QueryMetrics struct {
	LatencyMS         int64  `json:"latency_ms"`
	TokensUsed        int    `json:"tokens_used"`
	ChunksRetrieved   int    `json:"chunks_retrieved"`
	ChunksAfterRerank int    `json:"chunks_after_rerank"`
	PromptVersion     string `json:"prompt_version"`
}

// Answer is the synthesized, citation-grounded response to one question.
// Every citation references a chunk that was in the context window for the
// generating call. GroundingFlagged is set when the generation service
// emitted a citation marker that did not resolve and it was stripped.
type Answer struct {
	Question         string       `json:"question"`
	Text             string       `json:"text"`
	Citations        []Citation   `json:"citations"`
	GroundingFlagged bool         `json:"grounding_flagged,omitempty"`
	RerankDegraded   bool         `json:"rerank_degraded,omitempty"`
	Metrics          QueryMetrics `json:"metrics"`
}
