// Package db opens the PostgreSQL pool used by the account and settings
// repositories, applies embedded goose migrations and runs transactions.
//
//	pool, err := db.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := db.Migrate(ctx, pool, migrations.FS, cfg.MigrationsTable, log); err != nil {
//		return err
//	}
//
// Environment variables read through Config:
//
//	DATABASE_URL                - connection URL (required)
//	DATABASE_MIGRATIONS_TABLE   - goose version table (default: schema_migrations)
//	DATABASE_MAX_CONNS          - pool size (default: 10)
//	DATABASE_MIN_CONNS          - idle connections kept open (default: 2)
//	DATABASE_HEALTHCHECK_PERIOD - pool health check interval (default: 1m)
//	DATABASE_MAX_CONN_IDLE_TIME - idle connection lifetime (default: 10m)
//	DATABASE_MAX_CONN_LIFETIME  - connection lifetime (default: 30m)
//	DATABASE_RETRY_ATTEMPTS     - startup attempts (default: 3)
//	DATABASE_RETRY_INTERVAL     - base backoff between attempts (default: 2s)
package db
