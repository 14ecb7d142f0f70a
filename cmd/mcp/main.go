package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpadapter "github.com/thinktj1991/llamareport-retrieval/internal/adapters/mcp"
	"github.com/thinktj1991/llamareport-retrieval/internal/bootstrap"
	"github.com/thinktj1991/llamareport-retrieval/internal/config"
	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
	"github.com/thinktj1991/llamareport-retrieval/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	// The stdio transport owns stdout; everything else goes to stderr.
	logger := logging.NewStderrLogger("mcp", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	// The MCP server holds its own in-process indices, so it warms them
	// from the persisted corpus before accepting tool calls.
	for _, channel := range []domain.Channel{domain.ChannelText, domain.ChannelTable} {
		rebuildCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		err := app.RebuildUC.RebuildChannel(rebuildCtx, channel)
		cancel()
		if err != nil {
			if domain.IsKind(err, domain.ErrEmptyInput) {
				logger.Info("index_rebuild_skipped", "channel", channel, "reason", "empty corpus")
				continue
			}
			logger.Error("index_warmup_failed", "channel", channel, "error", err)
			os.Exit(1)
		}
		logger.Info("index_warmed", "channel", channel)
	}

	srv := mcpadapter.NewServer(app.RetrieveUC, logger)
	logger.Info("mcp_serving", "transport", "stdio")
	if err := srv.ServeStdio(); err != nil {
		logger.Error("mcp_server_failed", "error", err)
		os.Exit(1)
	}
}
