package server

import "errors"

var (
	ErrListen   = errors.New("server: failed to listen")
	ErrServe    = errors.New("server: serve failed")
	ErrShutdown = errors.New("server: shutdown failed")
)
