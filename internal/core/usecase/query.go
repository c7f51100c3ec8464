package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/policyops/policy-rag/internal/core/domain"
	"github.com/policyops/policy-rag/internal/core/ports"
)

// synthesizer is what the query pipeline needs from the synthesis stage.
type synthesizer interface {
	Synthesize(ctx context.Context, question string, ranked []domain.RerankedCandidate, promptVersion string) (*domain.Answer, error)
}

// QueryOptions are the validated pipeline knobs.
type QueryOptions struct {
	TopK           int
	TopN           int
	RerankFallback bool

	EmbedTimeout    time.Duration
	SearchTimeout   time.Duration
	RerankTimeout   time.Duration
	GenerateTimeout time.Duration
}

func (o QueryOptions) normalize() QueryOptions {
	out := o
	if out.TopK <= 0 {
		out.TopK = 20
	}
	if out.TopN <= 0 || out.TopN > out.TopK {
		out.TopN = min(5, out.TopK)
	}
	return out
}

type QueryUseCase struct {
	embedder ports.Embedder
	index    ports.VectorIndex
	scorer   ports.CrossEncoder
	synth    synthesizer
	opts     QueryOptions
	logger   *slog.Logger
}

func NewQueryUseCase(
	embedder ports.Embedder,
	index ports.VectorIndex,
	scorer ports.CrossEncoder,
	synth synthesizer,
	opts QueryOptions,
	logger *slog.Logger,
) *QueryUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryUseCase{
		embedder: embedder,
		index:    index,
		scorer:   scorer,
		synth:    synth,
		opts:     opts.normalize(),
		logger:   logger,
	}
}

// Ask runs retrieve -> rerank -> synthesize for one question. Stages are
// strictly sequential; each external call runs under its own timeout so a
// retrieval timeout is distinguishable from a generation timeout. When the
// reranker is unreachable and the fallback is enabled, the top-n candidates
// pass through in similarity order and the answer is marked degraded.
func (uc *QueryUseCase) Ask(ctx context.Context, question, promptVersion string) (*domain.Answer, error) {
	start := time.Now()

	queryVector, err := uc.embedQuery(ctx, question)
	if err != nil {
		return nil, err
	}

	candidates, err := uc.search(ctx, queryVector)
	if err != nil {
		return nil, err
	}

	ranked, degraded, err := uc.rerank(ctx, question, candidates)
	if err != nil {
		return nil, err
	}

	genCtx, cancel := stageContext(ctx, uc.opts.GenerateTimeout)
	defer cancel()
	answer, err := uc.synth.Synthesize(genCtx, question, ranked, promptVersion)
	if err != nil {
		return nil, err
	}

	answer.RerankDegraded = degraded
	answer.Metrics.ChunksRetrieved = len(candidates)
	answer.Metrics.ChunksAfterRerank = len(ranked)
	answer.Metrics.LatencyMS = time.Since(start).Milliseconds()

	uc.logger.Info("query answered",
		"latency_ms", answer.Metrics.LatencyMS,
		"chunks_retrieved", answer.Metrics.ChunksRetrieved,
		"chunks_after_rerank", answer.Metrics.ChunksAfterRerank,
		"tokens_used", answer.Metrics.TokensUsed,
		"prompt_version", answer.Metrics.PromptVersion,
		"rerank_degraded", degraded,
		"grounding_flagged", answer.GroundingFlagged,
	)
	return answer, nil
}

func (uc *QueryUseCase) embedQuery(ctx context.Context, question string) ([]float32, error) {
	embedCtx, cancel := stageContext(ctx, uc.opts.EmbedTimeout)
	defer cancel()

	vec, err := uc.embedder.EmbedQuery(embedCtx, question)
	if err != nil {
		return nil, domain.WrapStage(domain.StageRetrieval, fmt.Errorf("embed query: %w", err))
	}
	return vec, nil
}

func (uc *QueryUseCase) search(ctx context.Context, queryVector []float32) ([]domain.RetrievalCandidate, error) {
	searchCtx, cancel := stageContext(ctx, uc.opts.SearchTimeout)
	defer cancel()

	candidates, err := uc.index.Search(searchCtx, queryVector, uc.opts.TopK)
	if err != nil {
		return nil, domain.WrapStage(domain.StageRetrieval, fmt.Errorf("search vector index: %w", err))
	}
	return candidates, nil
}

func (uc *QueryUseCase) rerank(
	ctx context.Context,
	question string,
	candidates []domain.RetrievalCandidate,
) ([]domain.RerankedCandidate, bool, error) {
	rerankCtx, cancel := stageContext(ctx, uc.opts.RerankTimeout)
	defer cancel()

	ranked, err := rerankCandidates(rerankCtx, uc.scorer, question, candidates, uc.opts.TopN)
	if err == nil {
		return ranked, false, nil
	}

	if domain.IsKind(err, domain.ErrRerankerUnavailable) && uc.opts.RerankFallback {
		uc.logger.Warn("reranker unavailable, passing through by similarity", "error", err)
		return passthroughTopN(candidates, uc.opts.TopN), true, nil
	}
	return nil, false, domain.WrapStage(domain.StageRerank, fmt.Errorf("rerank candidates: %w", err))
}

func stageContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
