package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrTemporary        = errors.New("temporary failure")

	ErrEmptyDocument        = errors.New("document has no extractable text")
	ErrUnsupportedDocument  = errors.New("unsupported document format")
	ErrIndexEmpty           = errors.New("vector index is empty")
	ErrDimensionMismatch    = errors.New("embedding dimension mismatch")
	ErrRerankerUnavailable  = errors.New("reranker unavailable")
	ErrUnknownPromptVersion = errors.New("unknown prompt version")
	ErrGeneration           = errors.New("generation service failure")
	ErrJudge                = errors.New("evaluation judge failure")
)

// Stage tags errors with the pipeline stage they belong to, so a caller can
// tell "retrieval timed out" from "generation timed out" without parsing
// message strings.
type Stage string

const (
	StageIngestion  Stage = "ingestion"
	StageIndexing   Stage = "indexing"
	StageRetrieval  Stage = "retrieval"
	StageRerank     Stage = "rerank"
	StageSynthesis  Stage = "synthesis"
	StageEvaluation Stage = "evaluation"
)

type stageError struct {
	stage Stage
	err   error
}

func (e *stageError) Error() string {
	return fmt.Sprintf("%s: %v", e.stage, e.err)
}

func (e *stageError) Unwrap() error { return e.err }

// WrapStage annotates err with a pipeline stage. The error chain is
// preserved, so errors.Is keeps working against the sentinel kinds.
func WrapStage(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &stageError{stage: stage, err: err}
}

// StageOf reports the outermost stage tag on err, or "" when untagged.
func StageOf(err error) Stage {
	var se *stageError
	if errors.As(err, &se) {
		return se.stage
	}
	return ""
}

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
