// Package server runs the HTTP server with signal-aware graceful shutdown.
package server
