package domain

// EvaluationSample is one (question, answer, contexts) triple to score.
type EvaluationSample struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Contexts []string `json:"contexts"`
}

// EvaluationResult holds the three quality axes, each in [0,1]. They are
// orthogonal: an answer can be faithful but off-topic, or relevant but
// unfaithful.
type EvaluationResult struct {
	Faithfulness     float64 `json:"faithfulness"`
	AnswerRelevancy  float64 `json:"answer_relevancy"`
	ContextPrecision float64 `json:"context_precision"`
}

// DatasetItemResult is one batch entry. Err is set instead of Result when
// the judge failed for this triple; a failed item never becomes a number.
type DatasetItemResult struct {
	Sample EvaluationSample  `json:"sample"`
	Result *EvaluationResult `json:"result,omitempty"`
	Err    string            `json:"error,omitempty"`
}
