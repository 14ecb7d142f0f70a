package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thinktj1991/llamareport-retrieval/internal/bootstrap"
	"github.com/thinktj1991/llamareport-retrieval/internal/config"
	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
	"github.com/thinktj1991/llamareport-retrieval/internal/observability/logging"
	"github.com/thinktj1991/llamareport-retrieval/internal/observability/metrics"
)

const rebuildTimeout = 5 * time.Minute

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	m := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: metricsHandler(m),
	}
	go func() {
		logger.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker_metrics_failed", "error", err)
		}
	}()

	rebuild := func(handlerCtx context.Context, channel domain.Channel) error {
		rebuildCtx, cancel := context.WithTimeout(handlerCtx, rebuildTimeout)
		defer cancel()

		m.StartRebuild()
		start := time.Now()
		err := app.RebuildUC.RebuildChannel(rebuildCtx, channel)
		m.FinishRebuild("worker", string(channel), time.Since(start), err)
		if err != nil {
			return err
		}

		index := app.TextIndex
		if channel == domain.ChannelTable {
			index = app.TableIndex
		}
		m.SetIndexChunks("worker", string(channel), index.Count())
		logger.Info("index_rebuilt", "channel", channel, "chunks", index.Count(),
			"duration_ms", time.Since(start).Milliseconds())
		return nil
	}

	// A cold worker rebuilds both channels up front so retrieval has
	// something to serve before the first dirty event arrives. An empty
	// corpus is not an error at this point.
	if cfg.WorkerRebuildOnStart {
		for _, channel := range []domain.Channel{domain.ChannelText, domain.ChannelTable} {
			if err := rebuild(ctx, channel); err != nil {
				if domain.IsKind(err, domain.ErrEmptyInput) {
					logger.Info("index_rebuild_skipped", "channel", channel, "reason", "empty corpus")
					continue
				}
				logger.Error("initial_rebuild_failed", "channel", channel, "error", err)
			}
		}
	}

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeChannelDirty(ctx, func(handlerCtx context.Context, channel domain.Channel) error {
		if err := rebuild(handlerCtx, channel); err != nil {
			logger.Error("index_rebuild_failed", "channel", channel, "error", err)
			return err
		}
		return nil
	})
	if err != nil {
		logger.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
}

func metricsHandler(m *metrics.WorkerMetrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	return mux
}
