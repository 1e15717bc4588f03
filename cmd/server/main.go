package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/guardkit/pkg/logger"
	"github.com/dmitrymomot/guardkit/pkg/requestid"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("failed to load configuration", logger.Error(err))
		os.Exit(1)
	}

	log := logger.New(append(logger.FromConfig(cfg.Log, cfg.App.Name),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg serverConfig, log *slog.Logger) error {
	deps, cleanup, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	app, err := build(ctx, cfg, deps, log)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.server.Run(ctx, app.router)
	})
	for _, task := range app.background {
		g.Go(func() error { return task(ctx) })
	}
	return g.Wait()
}
