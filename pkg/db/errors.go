package db

import "errors"

var (
	ErrParseConfig = errors.New("db: failed to parse connection URL")
	ErrConnect     = errors.New("db: failed to open connection pool")
	ErrHealthcheck = errors.New("db: healthcheck failed")
	ErrMigrate     = errors.New("db: failed to apply migrations")
)
