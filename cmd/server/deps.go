package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/guardkit/pkg/auth"
	"github.com/dmitrymomot/guardkit/pkg/httpserver"
	"github.com/dmitrymomot/guardkit/pkg/logger"
	"github.com/dmitrymomot/guardkit/pkg/pg"
	"github.com/dmitrymomot/guardkit/pkg/redis"
	"github.com/dmitrymomot/guardkit/pkg/twofactor"
	"github.com/dmitrymomot/guardkit/svc/memstore"
	"github.com/dmitrymomot/guardkit/svc/pgstore"
)

// dependencies are the external connections and the stores built on them.
type dependencies struct {
	pool  *pgxpool.Pool
	redis *goredis.Client

	users     auth.Storage
	twoFactor twofactor.Storage
	settings  twofactor.SettingsStorage

	checks []httpserver.Check
}

func connect(ctx context.Context, cfg serverConfig, log *slog.Logger) (*dependencies, func(), error) {
	deps := &dependencies{}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.App.StorageDriver {
	case "postgres":
		pool, err := pg.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		closers = append(closers, pool.Close)

		if err := pg.Migrate(ctx, pool, cfg.Postgres, pgstore.Migrations(), log); err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("failed to apply migrations: %w", err)
		}

		deps.pool = pool
		deps.users = pgstore.NewUserStore(pool)
		deps.twoFactor = pgstore.NewTwoFactorStore(pool)
		deps.settings = pgstore.NewSettingsStore(pool)
		deps.checks = append(deps.checks, httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)})
	default:
		log.WarnContext(ctx, "using in-memory storage, data is lost on restart",
			logger.Component("server"),
		)
		deps.users = memstore.NewUserStore()
		deps.twoFactor = memstore.NewTwoFactorStore()
		deps.settings = memstore.NewSettingsStore()
	}

	if cfg.usesRedis() {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("failed to connect to redis: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })

		deps.redis = client
		deps.checks = append(deps.checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)})
	}

	return deps, cleanup, nil
}
