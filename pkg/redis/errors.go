package redis

import "errors"

var (
	ErrEmptyURL    = errors.New("redis: empty connection URL")
	ErrParseURL    = errors.New("redis: failed to parse connection URL")
	ErrConnect     = errors.New("redis: failed to connect")
	ErrHealthcheck = errors.New("redis: healthcheck failed")
)
