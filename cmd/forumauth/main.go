package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dmitrymomot/forumauth/internal/migrations"
	"github.com/dmitrymomot/forumauth/internal/server"
	"github.com/dmitrymomot/forumauth/internal/web"
	"github.com/dmitrymomot/forumauth/pkg/account"
	"github.com/dmitrymomot/forumauth/pkg/auth"
	"github.com/dmitrymomot/forumauth/pkg/cache"
	"github.com/dmitrymomot/forumauth/pkg/cookie"
	"github.com/dmitrymomot/forumauth/pkg/db"
	"github.com/dmitrymomot/forumauth/pkg/health"
	"github.com/dmitrymomot/forumauth/pkg/logger"
	"github.com/dmitrymomot/forumauth/pkg/redis"
	"github.com/dmitrymomot/forumauth/pkg/settings"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log, os.Stdout, logger.RequestIDExtractor)
	if err != nil {
		slog.Error("invalid logger configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, log *slog.Logger) error {
	hooks := []server.Hook{logger.FlushSentry(2 * time.Second)}
	// Until the server owns the hooks, release whatever was opened.
	serving := false
	defer func() {
		if serving {
			return
		}
		for _, hook := range hooks {
			_ = hook(context.WithoutCancel(ctx))
		}
	}()

	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	hooks = append(hooks, db.Shutdown(pool))

	if err := db.Migrate(ctx, pool, migrations.FS, cfg.DB.MigrationsTable, log); err != nil {
		return err
	}

	checks := health.Checks{"postgres": db.Healthcheck(pool)}

	var (
		snapshots cache.Cache[map[string]string]
		cacheOpts []settings.CachedOption
	)
	if cfg.Redis.URL != "" {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		hooks = append(hooks, redis.Shutdown(client))
		checks["redis"] = redis.Healthcheck(client)
		snapshots = cache.NewRedis[map[string]string](client, "forumauth", cfg.SettingsCacheTTL)
		cacheOpts = append(cacheOpts, settings.WithoutSecrets())
	} else {
		mem := cache.NewMemory[map[string]string](cfg.SettingsCacheTTL)
		hooks = append(hooks, func(context.Context) error { return mem.Close() })
		snapshots = mem
	}
	store := settings.NewCachedStore(settings.NewPostgresStore(pool), snapshots, cfg.SettingsCacheTTL, cacheOpts...)

	if err := seedSettings(ctx, cfg, store, log); err != nil {
		return err
	}

	resolver := account.NewResolver(account.NewPostgresRepository(pool), account.WithLogger(log))
	factory := auth.NewFactory(store, resolver,
		auth.WithLogger(log),
		auth.WithTimeout(cfg.ForumTimeout),
		auth.WithRedirectURL(cfg.RedirectURL),
		auth.WithUnlinker(resolver),
	)

	cookies, err := cookie.New(cfg.CookieSecret, cookie.WithSecure(cfg.CookieSecure))
	if err != nil {
		return err
	}

	h := web.New(factory, resolver, cookies,
		web.WithLogger(log),
		web.WithHealthChecks(checks),
		web.WithSessionTTL(cfg.SessionTTL),
	)

	serving = true
	return server.Run(ctx, h.Router(),
		server.WithAddress(cfg.Addr),
		server.WithLogger(log),
		server.WithShutdownTimeout(cfg.ShutdownTimeout),
		server.WithShutdownHook(hooks...),
	)
}

func seedSettings(ctx context.Context, cfg config, store settings.Store, log *slog.Logger) error {
	if cfg.SettingsFile == "" {
		return nil
	}

	f, err := os.Open(cfg.SettingsFile)
	if err != nil {
		return fmt.Errorf("open settings file: %w", err)
	}
	defer f.Close()

	values, err := settings.LoadYAML(f)
	if err != nil {
		return err
	}
	written, err := settings.Seed(ctx, store, values, cfg.SettingsOverwrite)
	if err != nil {
		return err
	}

	log.InfoContext(ctx, "settings seeded",
		slog.String("file", cfg.SettingsFile),
		slog.Any("keys", written),
	)
	return nil
}
