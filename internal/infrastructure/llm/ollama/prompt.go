package ollama

import (
	"fmt"
	"strings"
)

const maxJudgeSnippet = 6000

func clip(text string) string {
	if len(text) > maxJudgeSnippet {
		return text[:maxJudgeSnippet]
	}
	return text
}

func buildStatementsPrompt(answer string) string {
	return `Break the answer below into short standalone factual statements.
Return strict JSON object: {"statements": ["...", "..."]}.
No markdown, no extra keys. Skip greetings and hedging phrases.

Answer:
` + clip(answer)
}

func buildSupportedPrompt(statement string, contexts []string) string {
	var b strings.Builder
	for i, c := range contexts {
		fmt.Fprintf(&b, "[%d] %s\n\n", i+1, clip(c))
	}

	return fmt.Sprintf(`Decide whether the statement is directly supported by the context passages.
Return strict JSON object: {"supported": true} or {"supported": false}.
A statement is supported only if the passages state or clearly imply it.

Statement:
%s

Context:
%s`, clip(statement), b.String())
}

func buildReconstructPrompt(answer string, n int) string {
	return fmt.Sprintf(`Write %d distinct questions that the answer below would be a good answer to.
Return strict JSON object: {"questions": ["...", "..."]}.
No markdown, no extra keys.

Answer:
%s`, n, clip(answer))
}

func buildContextUsefulPrompt(question, contextText string) string {
	return fmt.Sprintf(`Decide whether the context passage is useful for answering the question.
Return strict JSON object: {"useful": true} or {"useful": false}.

Question:
%s

Context:
%s`, clip(question), clip(contextText))
}
