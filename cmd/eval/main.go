package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/policyops/policy-rag/internal/bootstrap"
	"github.com/policyops/policy-rag/internal/config"
	"github.com/policyops/policy-rag/internal/core/domain"
	"github.com/policyops/policy-rag/internal/observability/logging"
)

func main() {
	dataset := flag.String("dataset", "", "path to a JSONL file of {question, answer, contexts} samples")
	flag.Parse()
	if *dataset == "" {
		fmt.Fprintf(os.Stderr, "usage: %s -dataset samples.jsonl\n", os.Args[0])
		os.Exit(2)
	}

	samples, err := readSamples(*dataset)
	if err != nil {
		log.Fatalf("read dataset: %v", err)
	}
	if len(samples) == 0 {
		log.Fatalf("dataset %s contains no samples", *dataset)
	}

	cfg := config.Load()
	logger := logging.NewJSONLogger("policy-rag-eval", cfg.LogLevel)

	ctx := context.Background()
	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	results := app.EvalUC.EvaluateDataset(ctx, samples)

	enc := json.NewEncoder(os.Stdout)
	var sums domain.EvaluationResult
	scored := 0
	failed := 0
	for _, item := range results {
		if err := enc.Encode(item); err != nil {
			log.Fatalf("encode result: %v", err)
		}
		if item.Result == nil {
			failed++
			continue
		}
		scored++
		sums.Faithfulness += item.Result.Faithfulness
		sums.AnswerRelevancy += item.Result.AnswerRelevancy
		sums.ContextPrecision += item.Result.ContextPrecision
	}

	if scored > 0 {
		fmt.Fprintf(os.Stderr, "samples=%d failed=%d faithfulness=%.3f answer_relevancy=%.3f context_precision=%.3f\n",
			len(results), failed,
			sums.Faithfulness/float64(scored),
			sums.AnswerRelevancy/float64(scored),
			sums.ContextPrecision/float64(scored))
	} else {
		fmt.Fprintf(os.Stderr, "samples=%d failed=%d no scored samples\n", len(results), failed)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func readSamples(path string) ([]domain.EvaluationSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var samples []domain.EvaluationSample
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var sample domain.EvaluationSample
		if err := json.Unmarshal(raw, &sample); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		samples = append(samples, sample)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}
