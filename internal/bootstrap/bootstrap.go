package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mahfuzr/krishi-assistant/internal/config"
	"github.com/mahfuzr/krishi-assistant/internal/core/ports"
	"github.com/mahfuzr/krishi-assistant/internal/core/usecase"
	"github.com/mahfuzr/krishi-assistant/internal/infrastructure/chunking"
	"github.com/mahfuzr/krishi-assistant/internal/infrastructure/extractor"
	graphstore "github.com/mahfuzr/krishi-assistant/internal/infrastructure/graph/neo4j"
	"github.com/mahfuzr/krishi-assistant/internal/infrastructure/llm/ollama"
	"github.com/mahfuzr/krishi-assistant/internal/infrastructure/queue/nats"
	"github.com/mahfuzr/krishi-assistant/internal/infrastructure/repository/postgres"
	"github.com/mahfuzr/krishi-assistant/internal/infrastructure/resilience"
	"github.com/mahfuzr/krishi-assistant/internal/infrastructure/storage/localfs"
	"github.com/mahfuzr/krishi-assistant/internal/infrastructure/vector/pgvector"
)

// App wires configuration into the concrete adapter graph shared by the
// api and worker processes.
type App struct {
	Config config.Config

	DB     *sql.DB
	Graph  *graphstore.Store
	Vector *pgvector.Store
	Queue  *nats.Queue
	Repo   ports.DocumentRepository

	AskUC     ports.QuestionAnswerer
	IngestUC  ports.DocumentIngestor
	ProcessUC *usecase.ProcessDocumentUseCase

	closeFn func(context.Context)
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	exec := resilience.NewExecutor(resilience.DefaultPolicy())

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure document schema: %w", err)
	}

	vectorStore := pgvector.NewStore(db, cfg.EmbedDim, exec)
	if err := vectorStore.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure vector schema: %w", err)
	}

	graph, err := graphstore.NewStore(graphstore.Config{
		URI:      cfg.Neo4jURI,
		User:     cfg.Neo4jUser,
		Password: cfg.Neo4jPassword,
		Database: cfg.Neo4jDatabase,
	}, exec)
	if err != nil {
		return nil, fmt.Errorf("open neo4j: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, nats.Options{Executor: exec})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, exec)
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)

	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	textExtractor := extractor.New(storage)

	resolver := usecase.NewResolver(graph)
	facts := usecase.NewFactAggregator(graph)
	searcher := usecase.NewSimilaritySearcher(embedder, vectorStore).
		WithMMR(cfg.MMREnabled, cfg.MMRLambda)

	askUC := usecase.NewAskUseCase(resolver, facts, searcher, generator, cfg.DefaultLanguage)
	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(repo, textExtractor, chunker, embedder, vectorStore)

	return &App{
		Config: cfg,

		DB:     db,
		Graph:  graph,
		Vector: vectorStore,
		Queue:  queue,
		Repo:   repo,

		AskUC:     askUC,
		IngestUC:  ingestUC,
		ProcessUC: processUC,

		closeFn: func(ctx context.Context) {
			queue.Close()
			_ = graph.Close(ctx)
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close(ctx context.Context) {
	if a.closeFn != nil {
		a.closeFn(ctx)
	}
}
