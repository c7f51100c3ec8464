package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/policyops/policy-rag/internal/core/domain"
)

// Judge implements the evaluation verdicts on top of a dedicated judge
// model. Every call uses strict JSON output so verdicts parse reliably.
type Judge struct {
	client *Client
}

func NewJudge(client *Client) *Judge {
	return &Judge{client: client}
}

func (j *Judge) Statements(ctx context.Context, answer string) ([]string, error) {
	raw, err := j.client.generateJSON(ctx, "judge_statements", j.client.judgeModel, buildStatementsPrompt(answer))
	if err != nil {
		return nil, domain.WrapError(domain.ErrJudge, "decompose statements", err)
	}

	var result struct {
		Statements []string `json:"statements"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &result); err != nil {
		return nil, domain.WrapError(domain.ErrJudge, "parse statements json", err)
	}

	statements := make([]string, 0, len(result.Statements))
	for _, s := range result.Statements {
		s = strings.TrimSpace(s)
		if s != "" {
			statements = append(statements, s)
		}
	}
	return statements, nil
}

func (j *Judge) Supported(ctx context.Context, statement string, contexts []string) (bool, error) {
	raw, err := j.client.generateJSON(ctx, "judge_supported", j.client.judgeModel, buildSupportedPrompt(statement, contexts))
	if err != nil {
		return false, domain.WrapError(domain.ErrJudge, "verify statement", err)
	}

	var result struct {
		Supported bool `json:"supported"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &result); err != nil {
		return false, domain.WrapError(domain.ErrJudge, "parse verdict json", err)
	}
	return result.Supported, nil
}

func (j *Judge) ReconstructQuestions(ctx context.Context, answer string, n int) ([]string, error) {
	raw, err := j.client.generateJSON(ctx, "judge_questions", j.client.judgeModel, buildReconstructPrompt(answer, n))
	if err != nil {
		return nil, domain.WrapError(domain.ErrJudge, "reconstruct questions", err)
	}

	var result struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &result); err != nil {
		return nil, domain.WrapError(domain.ErrJudge, "parse questions json", err)
	}
	if len(result.Questions) == 0 {
		return nil, domain.WrapError(domain.ErrJudge, "reconstruct questions",
			fmt.Errorf("judge returned no questions"))
	}
	if len(result.Questions) > n {
		result.Questions = result.Questions[:n]
	}
	return result.Questions, nil
}

func (j *Judge) ContextUseful(ctx context.Context, question, contextText string) (bool, error) {
	raw, err := j.client.generateJSON(ctx, "judge_context", j.client.judgeModel, buildContextUsefulPrompt(question, contextText))
	if err != nil {
		return false, domain.WrapError(domain.ErrJudge, "judge context", err)
	}

	var result struct {
		Useful bool `json:"useful"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &result); err != nil {
		return false, domain.WrapError(domain.ErrJudge, "parse context verdict json", err)
	}
	return result.Useful, nil
}
