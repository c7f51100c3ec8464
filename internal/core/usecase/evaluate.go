package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/policyops/policy-rag/internal/core/domain"
	"github.com/policyops/policy-rag/internal/core/ports"
)

const reconstructedQuestions = 3

type EvaluateUseCase struct {
	judge    ports.Judge
	embedder ports.Embedder
	logger   *slog.Logger
}

func NewEvaluateUseCase(judge ports.Judge, embedder ports.Embedder, logger *slog.Logger) *EvaluateUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &EvaluateUseCase{judge: judge, embedder: embedder, logger: logger}
}

// EvaluateSingle scores one (question, answer, contexts) triple on the three
// orthogonal axes. The judge is an injectable capability; its aggregation
// here is deterministic given fixed judge output.
func (uc *EvaluateUseCase) EvaluateSingle(
	ctx context.Context,
	sample domain.EvaluationSample,
) (*domain.EvaluationResult, error) {
	if sample.Question == "" || sample.Answer == "" {
		return nil, domain.WrapStage(domain.StageEvaluation,
			domain.WrapError(domain.ErrInvalidInput, "evaluate", fmt.Errorf("question and answer are required")))
	}

	faithfulness, err := uc.faithfulness(ctx, sample)
	if err != nil {
		return nil, domain.WrapStage(domain.StageEvaluation, fmt.Errorf("faithfulness: %w", err))
	}

	relevancy, err := uc.answerRelevancy(ctx, sample)
	if err != nil {
		return nil, domain.WrapStage(domain.StageEvaluation, fmt.Errorf("answer relevancy: %w", err))
	}

	precision, err := uc.contextPrecision(ctx, sample)
	if err != nil {
		return nil, domain.WrapStage(domain.StageEvaluation, fmt.Errorf("context precision: %w", err))
	}

	return &domain.EvaluationResult{
		Faithfulness:     faithfulness,
		AnswerRelevancy:  relevancy,
		ContextPrecision: precision,
	}, nil
}

// EvaluateDataset scores each triple independently. A judge failure marks
// that item with an error instead of aborting the batch or coercing the
// failure into a numeric score.
func (uc *EvaluateUseCase) EvaluateDataset(
	ctx context.Context,
	samples []domain.EvaluationSample,
) []domain.DatasetItemResult {
	out := make([]domain.DatasetItemResult, 0, len(samples))
	for _, sample := range samples {
		item := domain.DatasetItemResult{Sample: sample}
		result, err := uc.EvaluateSingle(ctx, sample)
		if err != nil {
			item.Err = err.Error()
			uc.logger.Warn("evaluation item failed", "question", sample.Question, "error", err)
		} else {
			item.Result = result
		}
		out = append(out, item)
	}
	return out
}

// faithfulness is the fraction of answer statements the contexts support.
// 1.0 requires every statement to be supported; a one-statement answer is
// simply 0 or 1.
func (uc *EvaluateUseCase) faithfulness(ctx context.Context, sample domain.EvaluationSample) (float64, error) {
	statements, err := uc.judge.Statements(ctx, sample.Answer)
	if err != nil {
		return 0, err
	}
	if len(statements) == 0 {
		return 0, nil
	}

	supported := 0
	for _, stmt := range statements {
		ok, err := uc.judge.Supported(ctx, stmt, sample.Contexts)
		if err != nil {
			return 0, err
		}
		if ok {
			supported++
		}
	}
	return float64(supported) / float64(len(statements)), nil
}

// answerRelevancy reconstructs candidate questions from the answer and
// measures how close they land to the original question in embedding space.
func (uc *EvaluateUseCase) answerRelevancy(ctx context.Context, sample domain.EvaluationSample) (float64, error) {
	questions, err := uc.judge.ReconstructQuestions(ctx, sample.Answer, reconstructedQuestions)
	if err != nil {
		return 0, err
	}
	if len(questions) == 0 {
		return 0, nil
	}

	vectors, err := uc.embedder.Embed(ctx, append([]string{sample.Question}, questions...))
	if err != nil {
		return 0, err
	}
	if len(vectors) != len(questions)+1 {
		return 0, fmt.Errorf("embedding count mismatch: %d/%d", len(vectors), len(questions)+1)
	}

	original := vectors[0]
	var total float64
	for _, v := range vectors[1:] {
		total += cosineSimilarity(original, v)
	}
	return clamp01(total / float64(len(questions))), nil
}

// contextPrecision is the fraction of supplied contexts the judge marks as
// useful for the question, independent of generation quality.
func (uc *EvaluateUseCase) contextPrecision(ctx context.Context, sample domain.EvaluationSample) (float64, error) {
	if len(sample.Contexts) == 0 {
		return 0, nil
	}

	useful := 0
	for _, c := range sample.Contexts {
		ok, err := uc.judge.ContextUseful(ctx, sample.Question, c)
		if err != nil {
			return 0, err
		}
		if ok {
			useful++
		}
	}
	return float64(useful) / float64(len(sample.Contexts)), nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
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

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
