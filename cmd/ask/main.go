package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/policyops/policy-rag/internal/bootstrap"
	"github.com/policyops/policy-rag/internal/config"
	"github.com/policyops/policy-rag/internal/observability/logging"
)

func main() {
	promptVersion := flag.String("prompt-version", "", "prompt template version (default: configured version)")
	asJSON := flag.Bool("json", false, "print the full answer as JSON")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] question\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	question := strings.Join(flag.Args(), " ")

	cfg := config.Load()
	logger := logging.NewJSONLogger("policy-rag-ask", cfg.LogLevel)

	ctx := context.Background()
	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	answer, err := app.QueryUC.Ask(ctx, question, *promptVersion)
	if err != nil {
		log.Fatalf("ask error: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(answer); err != nil {
			log.Fatalf("encode answer: %v", err)
		}
		return
	}

	fmt.Println(answer.Text)
	if len(answer.Citations) > 0 {
		fmt.Println("\nSources:")
		for i, c := range answer.Citations {
			fmt.Printf("  [%d] %s (page %d)\n", i+1, c.Document, c.Page)
		}
	}
	if answer.RerankDegraded {
		fmt.Fprintln(os.Stderr, "note: reranker unavailable, results ordered by similarity only")
	}
	if answer.GroundingFlagged {
		fmt.Fprintln(os.Stderr, "note: some citation markers could not be resolved and were dropped")
	}
	fmt.Fprintf(os.Stderr, "latency=%dms tokens=%d retrieved=%d reranked=%d prompt=%s\n",
		answer.Metrics.LatencyMS, answer.Metrics.TokensUsed,
		answer.Metrics.ChunksRetrieved, answer.Metrics.ChunksAfterRerank,
		answer.Metrics.PromptVersion)
}
