package bootstrap

import (
	"context"
	"fmt"
	"time"

	httpadapter "github.com/kirillkom/fichepro/internal/adapters/http"
	"github.com/kirillkom/fichepro/internal/config"
	"github.com/kirillkom/fichepro/internal/core/ports"
	"github.com/kirillkom/fichepro/internal/core/usecase"
	"github.com/kirillkom/fichepro/internal/infrastructure/batchfile"
	"github.com/kirillkom/fichepro/internal/infrastructure/chunking"
	"github.com/kirillkom/fichepro/internal/infrastructure/extractor"
	"github.com/kirillkom/fichepro/internal/infrastructure/extractor/pdfdoc"
	"github.com/kirillkom/fichepro/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/fichepro/internal/infrastructure/llm/openai"
	"github.com/kirillkom/fichepro/internal/infrastructure/promptstore"
	"github.com/kirillkom/fichepro/internal/infrastructure/queue/nats"
	"github.com/kirillkom/fichepro/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/fichepro/internal/infrastructure/resilience"
	"github.com/kirillkom/fichepro/internal/infrastructure/search/valueserp"
	"github.com/kirillkom/fichepro/internal/infrastructure/seo/thot"
	"github.com/kirillkom/fichepro/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/fichepro/internal/infrastructure/tonelib"
	"github.com/kirillkom/fichepro/internal/infrastructure/vector/qdrant"
	"github.com/kirillkom/fichepro/internal/infrastructure/webpage"
	"github.com/kirillkom/fichepro/internal/observability/metrics"
)

const apiServiceName = "fichepro-api"

// App wires the full dependency graph once for both binaries. The API
// serves Router, the worker consumes Queue and runs IndexUC.
type App struct {
	Config config.Config

	Queue   ports.MessageQueue
	IndexUC *usecase.IndexDocumentUseCase
	Router  *httpadapter.Router
	Metrics *metrics.HTTPServerMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewClientDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.SingleAttempt()),
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	prompts, err := promptstore.New(cfg.PromptsPath)
	if err != nil {
		return nil, fmt.Errorf("init prompt store: %w", err)
	}
	tones, err := tonelib.Load(cfg.TonesPath)
	if err != nil {
		return nil, fmt.Errorf("load tone library: %w", err)
	}

	llmClient := openai.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.EmbedModel)
	retryBackoff := time.Duration(cfg.GenerateRetryBackoffMS) * time.Millisecond
	descriptionLLM := openai.NewGenerator(llmClient, resilience.Retrying(cfg.GenerateMaxAttempts, retryBackoff))
	utilityLLM := openai.NewGenerator(llmClient, resilience.SingleAttempt())
	embedder := openai.NewEmbedder(llmClient, resilience.SingleAttempt())
	registry := openai.NewRegistry(cfg.OpenAIModel)

	externalExecutor := resilience.NewExecutor(resilience.SingleAttempt())
	seoClient := thot.New("", cfg.ThotAPIKey, externalExecutor)
	searchClient := valueserp.New("", cfg.ValueSerpAPIKey, externalExecutor)
	fetcher := webpage.NewFetcher()

	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)
	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)

	extractors := extractor.NewRegistry(plaintext.NewExtractor(storage))
	extractors.Register("application/pdf", pdfdoc.NewExtractor(storage))

	seoGuideUC := usecase.NewSeoGuideUseCase(seoClient)
	competitorUC := usecase.NewCompetitorAnalysisUseCase(searchClient, fetcher, utilityLLM, prompts)
	retrieveUC := usecase.NewRetrieveContextUseCase(embedder, vectorDB, cfg.RAGTopK)
	generateUC := usecase.NewGenerateDescriptionUseCase(descriptionLLM, prompts, tones, registry, seoGuideUC, competitorUC, retrieveUC)
	improveUC := usecase.NewSelfImprovingChain(utilityLLM, prompts)
	batchUC := usecase.NewBatchGenerateUseCase(generateUC, improveUC, cfg.BatchMaxWorkers)
	toneUC := usecase.NewToneAnalyzer(utilityLLM, prompts)
	structuredUC := usecase.NewStructuredGenerateUseCase(descriptionLLM, tones, registry, retrieveUC)
	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, vectorDB, queue)
	indexUC := usecase.NewIndexDocumentUseCase(repo, extractors, chunker, embedder, vectorDB)

	httpMetrics := metrics.NewHTTPServerMetrics(apiServiceName)

	router := httpadapter.NewRouter(httpadapter.Deps{
		Generate:    generateUC,
		Improve:     improveUC,
		Batch:       batchUC,
		BatchFiles:  batchfile.New(),
		Specs:       usecase.NewSpecsExtractor(),
		SeoGuide:    seoGuideUC,
		Competitors: competitorUC,
		ToneAnalyze: toneUC,
		Structured:  structuredUC,
		Ingest:      ingestUC,
		Prompts:     prompts,
		Tones:       tones,
		Providers:   registry,

		ServiceName: apiServiceName,
		Metrics:     httpMetrics,

		RateLimitRPS:   cfg.APIRateLimitRPS,
		RateLimitBurst: cfg.APIRateLimitBurst,
		MaxInFlight:    cfg.APIMaxInFlight,
	})

	return &App{
		Config:  cfg,
		Queue:   queue,
		IndexUC: indexUC,
		Router:  router,
		Metrics: httpMetrics,

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
