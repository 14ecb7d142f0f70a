package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/thinktj1991/llamareport-retrieval/internal/bootstrap"
	"github.com/thinktj1991/llamareport-retrieval/internal/config"
	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
	"github.com/thinktj1991/llamareport-retrieval/internal/core/ports"
	"github.com/thinktj1991/llamareport-retrieval/internal/core/usecase"
	"github.com/thinktj1991/llamareport-retrieval/internal/infrastructure/chunking"
	"github.com/thinktj1991/llamareport-retrieval/internal/infrastructure/extractor/plaintext"
	"github.com/thinktj1991/llamareport-retrieval/internal/infrastructure/extractor/workbook"
	"github.com/thinktj1991/llamareport-retrieval/internal/infrastructure/storage/localfs"
	"github.com/thinktj1991/llamareport-retrieval/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("seeder", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	store, err := localfs.New(cfg.SeedDocumentRoot)
	if err != nil {
		logger.Error("open_document_root_failed", "root", cfg.SeedDocumentRoot, "error", err)
		os.Exit(1)
	}

	splitter := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	extractors := []ports.DocumentExtractor{
		plaintext.NewExtractor(splitter),
		workbook.NewExtractor(),
	}

	seeder := usecase.NewSeedCorpusUseCase(store, extractors, app.IngestUC)
	logger.Info("seeding_started", "root", cfg.SeedDocumentRoot)

	summary, err := seeder.SeedAll(ctx)
	failed := 0
	for _, result := range summary.Results {
		switch {
		case result.Err != nil:
			failed++
			logger.Error("document_failed", "key", result.Key, "error", result.Err)
		case result.Skipped:
			logger.Info("document_skipped", "key", result.Key)
		default:
			logger.Info("document_seeded", "key", result.Key,
				"text_chunks", result.TextChunks, "table_chunks", result.TableChunks)
		}
	}
	if err != nil {
		logger.Error("seeding_failed", "error", err)
		os.Exit(1)
	}

	logger.Info("seeding_finished",
		"documents", len(summary.Results),
		"failed", failed,
		"accepted_text", summary.Accepted[domain.ChannelText],
		"accepted_table", summary.Accepted[domain.ChannelTable],
	)
	if failed > 0 {
		os.Exit(1)
	}
}
