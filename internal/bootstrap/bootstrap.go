package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/policyops/policy-rag/internal/config"
	"github.com/policyops/policy-rag/internal/core/ports"
	"github.com/policyops/policy-rag/internal/core/usecase"
	"github.com/policyops/policy-rag/internal/infrastructure/chunking"
	"github.com/policyops/policy-rag/internal/infrastructure/extractor"
	"github.com/policyops/policy-rag/internal/infrastructure/llm/ollama"
	"github.com/policyops/policy-rag/internal/infrastructure/prompts"
	"github.com/policyops/policy-rag/internal/infrastructure/queue/nats"
	"github.com/policyops/policy-rag/internal/infrastructure/repository/postgres"
	"github.com/policyops/policy-rag/internal/infrastructure/rerank/tei"
	"github.com/policyops/policy-rag/internal/infrastructure/resilience"
	"github.com/policyops/policy-rag/internal/infrastructure/storage/localfs"
	"github.com/policyops/policy-rag/internal/infrastructure/vector/qdrant"
	"github.com/policyops/policy-rag/internal/observability/metrics"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue   ports.MessageQueue
	Repo    ports.DocumentRepository
	Index   ports.VectorIndex
	Metrics *metrics.WorkerMetrics

	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	QueryUC   ports.QueryService
	EvalUC    ports.AnswerEvaluator

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure documents schema: %w", err)
	}
	promptRepo := postgres.NewPromptRepository(db)
	if err := promptRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure prompts schema: %w", err)
	}
	if err := prompts.Seed(ctx, promptRepo, logger); err != nil {
		return nil, fmt.Errorf("seed prompt versions: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	// Generation calls are expensive; retry once at most.
	genPolicy := resilience.DefaultConfig()
	genPolicy.RetryMaxAttempts = 2
	genExecutor := resilience.NewExecutor(genPolicy)

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, cfg.OllamaJudgeModel, executor)
	genClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, cfg.OllamaJudgeModel, genExecutor)
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(genClient, cfg.GenerateRPS)
	judge := ollama.NewJudge(genClient)

	scorer := tei.New(cfg.RerankerURL, cfg.RerankerModel)
	index := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection, cfg.EmbeddingDim)
	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	extract := extractor.NewDispatcher(storage)

	workerMetrics := metrics.NewWorkerMetrics("policy-rag")
	pipelineMetrics := metrics.NewPipelineMetrics(workerMetrics.Registry())

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue, logger)
	processUC := usecase.NewProcessDocumentUseCase(repo, extract, chunker, embedder, index, logger)
	synthUC := usecase.NewSynthesizeUseCase(promptRepo, generator, cfg.DefaultPromptVersion, logger)
	queryUC := usecase.NewQueryUseCase(embedder, index, scorer, synthUC, usecase.QueryOptions{
		TopK:            cfg.RetrievalTopK,
		TopN:            cfg.RerankTopN,
		RerankFallback:  cfg.RerankFallback,
		EmbedTimeout:    cfg.EmbedTimeout,
		SearchTimeout:   cfg.SearchTimeout,
		RerankTimeout:   cfg.RerankTimeout,
		GenerateTimeout: cfg.GenerateTimeout,
	}, logger)
	evalUC := usecase.NewEvaluateUseCase(judge, embedder, logger)

	return &App{
		Config: cfg,
		Logger: logger,

		Queue:   queue,
		Repo:    repo,
		Index:   index,
		Metrics: workerMetrics,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		QueryUC:   metrics.InstrumentQueryService(queryUC, pipelineMetrics),
		EvalUC:    evalUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
