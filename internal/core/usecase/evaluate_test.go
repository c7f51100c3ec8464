package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/policyops/policy-rag/internal/core/domain"
)

type judgeFake struct {
	statements    []string
	unsupported   map[string]bool
	questions     []string
	usefulByText  map[string]bool
	statementsErr error
	supportedErr  error
}

func (f *judgeFake) Statements(context.Context, string) ([]string, error) {
	if f.statementsErr != nil {
		return nil, f.statementsErr
	}
	return f.statements, nil
}

func (f *judgeFake) Supported(_ context.Context, statement string, _ []string) (bool, error) {
	if f.supportedErr != nil {
		return false, f.supportedErr
	}
	return !f.unsupported[statement], nil
}

func (f *judgeFake) ReconstructQuestions(context.Context, string, int) ([]string, error) {
	return f.questions, nil
}

func (f *judgeFake) ContextUseful(_ context.Context, _ string, contextText string) (bool, error) {
	return f.usefulByText[contextText], nil
}

type evalEmbedderFake struct {
	vectors map[string][]float32
}

func (f *evalEmbedderFake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		if v, ok := f.vectors[t]; ok {
			out = append(out, v)
		} else {
			out = append(out, []float32{1, 0})
		}
	}
	return out, nil
}

func (f *evalEmbedderFake) EmbedQuery(context.Context, string) ([]float32, error) { return nil, nil }

func evalSample() domain.EvaluationSample {
	return domain.EvaluationSample{
		Question: "How many vacation days do I get?",
		Answer:   "You get 20 days. They accrue monthly. Unused days expire in March.",
		Contexts: []string{"Employees receive 20 days of paid annual leave, accrued monthly."},
	}
}

func TestEvaluateSinglePartialFaithfulness(t *testing.T) {
	judge := &judgeFake{
		statements: []string{
			"You get 20 days",
			"They accrue monthly",
			"Unused days expire in March",
		},
		unsupported:  map[string]bool{"Unused days expire in March": true},
		questions:    []string{"How many vacation days are granted?"},
		usefulByText: map[string]bool{evalSample().Contexts[0]: true},
	}
	uc := NewEvaluateUseCase(judge, &evalEmbedderFake{}, nil)

	result, err := uc.EvaluateSingle(context.Background(), evalSample())
	if err != nil {
		t.Fatalf("EvaluateSingle() error = %v", err)
	}
	if result.Faithfulness <= 0 || result.Faithfulness >= 1 {
		t.Fatalf("expected faithfulness strictly between 0 and 1, got %f", result.Faithfulness)
	}
	if result.Faithfulness != 2.0/3.0 {
		t.Fatalf("expected 2/3 faithfulness, got %f", result.Faithfulness)
	}
	if result.ContextPrecision != 1.0 {
		t.Fatalf("expected full context precision, got %f", result.ContextPrecision)
	}
}

func TestEvaluateSingleFullySupported(t *testing.T) {
	judge := &judgeFake{
		statements:   []string{"You get 20 days"},
		questions:    []string{"q"},
		usefulByText: map[string]bool{evalSample().Contexts[0]: true},
	}
	uc := NewEvaluateUseCase(judge, &evalEmbedderFake{}, nil)

	result, err := uc.EvaluateSingle(context.Background(), evalSample())
	if err != nil {
		t.Fatalf("EvaluateSingle() error = %v", err)
	}
	if result.Faithfulness != 1.0 {
		t.Fatalf("expected 1.0 for a single supported statement, got %f", result.Faithfulness)
	}
}

func TestEvaluateRelevancyFromEmbeddings(t *testing.T) {
	sample := evalSample()
	judge := &judgeFake{
		statements:   []string{"s"},
		questions:    []string{"aligned", "orthogonal"},
		usefulByText: map[string]bool{sample.Contexts[0]: true},
	}
	embedder := &evalEmbedderFake{vectors: map[string][]float32{
		sample.Question: {1, 0},
		"aligned":       {1, 0},
		"orthogonal":    {0, 1},
	}}
	uc := NewEvaluateUseCase(judge, embedder, nil)

	result, err := uc.EvaluateSingle(context.Background(), sample)
	if err != nil {
		t.Fatalf("EvaluateSingle() error = %v", err)
	}
	// Mean of cos=1.0 and cos=0.0.
	if result.AnswerRelevancy < 0.49 || result.AnswerRelevancy > 0.51 {
		t.Fatalf("expected relevancy ~0.5, got %f", result.AnswerRelevancy)
	}
}

func TestEvaluateDatasetPartialFailure(t *testing.T) {
	good := evalSample()
	bad := domain.EvaluationSample{Question: "broken?", Answer: "broken.", Contexts: []string{"ctx"}}

	judge := &judgeFake{
		statements:   []string{"s"},
		questions:    []string{"q"},
		usefulByText: map[string]bool{good.Contexts[0]: true},
	}
	uc := NewEvaluateUseCase(judge, &evalEmbedderFake{}, nil)

	// First pass both fine, then fail the judge for the second run.
	results := uc.EvaluateDataset(context.Background(), []domain.EvaluationSample{good})
	if len(results) != 1 || results[0].Err != "" || results[0].Result == nil {
		t.Fatalf("expected clean result, got %+v", results)
	}

	judge.statementsErr = domain.WrapError(domain.ErrJudge, "statements", errors.New("judge offline"))
	results = uc.EvaluateDataset(context.Background(), []domain.EvaluationSample{good, bad})
	if len(results) != 2 {
		t.Fatalf("expected 2 items, got %d", len(results))
	}
	for i, item := range results {
		if item.Result != nil {
			t.Fatalf("item %d: expected no numeric score for failed judge", i)
		}
		if !strings.Contains(item.Err, "judge") {
			t.Fatalf("item %d: expected judge error marker, got %q", i, item.Err)
		}
	}
}

func TestEvaluateSingleRejectsBlankTriple(t *testing.T) {
	uc := NewEvaluateUseCase(&judgeFake{}, &evalEmbedderFake{}, nil)
	_, err := uc.EvaluateSingle(context.Background(), domain.EvaluationSample{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
