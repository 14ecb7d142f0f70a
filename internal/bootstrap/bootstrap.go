package bootstrap

import (
	"context"
	"fmt"

	"github.com/thinktj1991/llamareport-retrieval/internal/config"
	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
	"github.com/thinktj1991/llamareport-retrieval/internal/core/ports"
	"github.com/thinktj1991/llamareport-retrieval/internal/core/usecase"
	"github.com/thinktj1991/llamareport-retrieval/internal/infrastructure/llm/ollama"
	"github.com/thinktj1991/llamareport-retrieval/internal/infrastructure/queue/nats"
	"github.com/thinktj1991/llamareport-retrieval/internal/infrastructure/repository/postgres"
	"github.com/thinktj1991/llamareport-retrieval/internal/infrastructure/resilience"
	"github.com/thinktj1991/llamareport-retrieval/internal/infrastructure/vector/chromemdb"
)

type App struct {
	Config config.Config

	Queue ports.MessageQueue
	Repo  ports.ChunkRepository

	RetrieveUC ports.PassageRetriever
	IngestUC   ports.ChunkIngestor
	RebuildUC  ports.IndexRebuilder

	TextIndex  ports.ChannelIndex
	TableIndex ports.ChannelIndex

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	vocabulary, err := config.LoadVocabulary(cfg.VocabularyPath)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewChunkRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultPolicy())

	embedder, err := ollama.NewWithOptions(cfg.OllamaURL, cfg.OllamaEmbedModel, ollama.Options{
		BatchSize:          cfg.EmbedBatchSize,
		Concurrency:        cfg.EmbedConcurrency,
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init embedder: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	textIndex := chromemdb.NewIndex(domain.ChannelText, cfg.SimilarityFloor)
	tableIndex := chromemdb.NewIndex(domain.ChannelTable, cfg.SimilarityFloor)

	expander := usecase.NewQueryExpander(vocabulary)
	selector := usecase.NewStrategySelector(vocabulary)
	scorer, err := usecase.NewHybridScorer(vocabulary, domain.ScoreWeights{
		Semantic: cfg.WeightSemantic,
		Metric:   cfg.WeightMetric,
		Year:     cfg.WeightYear,
	}, cfg.TableBonus)
	if err != nil {
		return nil, fmt.Errorf("init scorer: %w", err)
	}

	retrieveUC := usecase.NewRetrieveUseCase(
		expander, selector, scorer, embedder,
		textIndex, tableIndex,
		cfg.RetrievalTopK, cfg.HybridSplit,
	)
	ingestUC := usecase.NewSubmitChunksUseCase(repo, queue)
	rebuildUC := usecase.NewRebuildIndexUseCase(repo, embedder, textIndex, tableIndex)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		RetrieveUC: retrieveUC,
		IngestUC:   ingestUC,
		RebuildUC:  rebuildUC,

		TextIndex:  textIndex,
		TableIndex: tableIndex,

		closeFn: func() {
			queue.Close()
			embedder.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
