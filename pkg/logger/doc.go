// Package logger builds the service's slog logger: JSON or text output,
// request-scoped attributes pulled from the context on every record, and an
// optional Sentry sink for warnings and errors.
package logger
