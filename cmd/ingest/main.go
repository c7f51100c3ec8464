package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"

	"github.com/policyops/policy-rag/internal/bootstrap"
	"github.com/policyops/policy-rag/internal/config"
	"github.com/policyops/policy-rag/internal/observability/logging"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s file [file ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	logger := logging.NewJSONLogger("policy-rag-ingest", cfg.LogLevel)

	ctx := context.Background()
	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	exitCode := 0
	for _, path := range flag.Args() {
		if err := upload(ctx, app, path); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

func upload(ctx context.Context, app *bootstrap.App, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	filename := filepath.Base(path)
	mimeType := mime.TypeByExtension(filepath.Ext(filename))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	doc, err := app.IngestUC.Upload(ctx, filename, mimeType, f)
	if err != nil {
		return err
	}
	fmt.Printf("%s\t%s\t%s\n", doc.ID, doc.Status, filename)
	return nil
}
