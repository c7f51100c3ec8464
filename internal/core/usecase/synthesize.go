package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/policyops/policy-rag/internal/core/domain"
	"github.com/policyops/policy-rag/internal/core/ports"
)

// citationMarker matches the [n] identifiers the prompt asks the model to
// cite with. n is 1-based and refers to the context block entries.
var citationMarker = regexp.MustCompile(`\[(\d+)\]`)

type SynthesizeUseCase struct {
	prompts        ports.PromptStore
	generator      ports.Generator
	defaultVersion string
	logger         *slog.Logger
}

func NewSynthesizeUseCase(
	prompts ports.PromptStore,
	generator ports.Generator,
	defaultVersion string,
	logger *slog.Logger,
) *SynthesizeUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &SynthesizeUseCase{
		prompts:        prompts,
		generator:      generator,
		defaultVersion: defaultVersion,
		logger:         logger,
	}
}

// Synthesize builds a bounded context block from the ranked chunks, invokes
// the generation service under the requested prompt version, and grounds
// the result: every citation in the returned answer resolves to one of the
// supplied chunks. Markers the model invents are stripped and the answer is
// flagged rather than failed.
func (uc *SynthesizeUseCase) Synthesize(
	ctx context.Context,
	question string,
	ranked []domain.RerankedCandidate,
	promptVersion string,
) (*domain.Answer, error) {
	if promptVersion == "" {
		promptVersion = uc.defaultVersion
	}

	tpl, err := uc.prompts.Get(ctx, promptVersion)
	if err != nil {
		return nil, domain.WrapStage(domain.StageSynthesis, fmt.Errorf("resolve prompt template: %w", err))
	}

	prompt, missing := tpl.Fill(map[string]string{
		"context":  buildContextBlock(ranked),
		"question": question,
	})
	if len(missing) > 0 {
		return nil, domain.WrapStage(domain.StageSynthesis, domain.WrapError(
			domain.ErrInvalidInput,
			"fill prompt template",
			fmt.Errorf("template %s missing variables: %s", tpl.Version, strings.Join(missing, ", ")),
		))
	}

	gen, err := uc.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, domain.WrapStage(domain.StageSynthesis,
			domain.WrapError(domain.ErrGeneration, "generate answer", err))
	}

	citations, flagged := uc.resolveCitations(gen.Text, ranked)

	return &domain.Answer{
		Question:         question,
		Text:             gen.Text,
		Citations:        citations,
		GroundingFlagged: flagged,
		Metrics: domain.QueryMetrics{
			TokensUsed:    gen.TokensUsed,
			PromptVersion: tpl.Version,
		},
	}, nil
}

// resolveCitations maps [n] markers back to chunk IDs. Markers outside the
// supplied range cannot be grounded; they are dropped and reported, which
// keeps the never-cite-beyond-context guarantee even when the generation
// service misbehaves.
func (uc *SynthesizeUseCase) resolveCitations(
	answerText string,
	ranked []domain.RerankedCandidate,
) ([]domain.Citation, bool) {
	flagged := false
	seen := make(map[int]bool, len(ranked))
	citations := make([]domain.Citation, 0, len(ranked))

	for _, match := range citationMarker.FindAllStringSubmatch(answerText, -1) {
		n, err := strconv.Atoi(match[1])
		if err != nil || n < 1 || n > len(ranked) {
			flagged = true
			uc.logger.Warn("dropped unresolvable citation", "marker", match[0], "context_size", len(ranked))
			continue
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		chunk := ranked[n-1].Chunk
		citations = append(citations, domain.Citation{
			ChunkID:  chunk.ID,
			Document: chunk.Filename,
			Page:     chunk.Page,
		})
	}
	return citations, flagged
}

// buildContextBlock renders the evidence window. Each chunk gets a stable
// in-context identifier [n] that the template tells the model to cite.
func buildContextBlock(ranked []domain.RerankedCandidate) string {
	var b strings.Builder
	for i, rc := range ranked {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		page := "n/a"
		if rc.Chunk.Page > 0 {
			page = strconv.Itoa(rc.Chunk.Page)
		}
		fmt.Fprintf(&b, "[%d] source=%s page=%s\n%s\n", i+1, rc.Chunk.Filename, page, rc.Chunk.Text)
	}
	return b.String()
}
