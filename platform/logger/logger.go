// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		return l.WithRequestID(requestID)
	}

	return l
}

// WithRequestID returns a logger with request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("request_id", requestID)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// SyncRun logs the outcome of one assignment sync pass
func (l *Logger) SyncRun(window string, inserted, updated, skipped int, dryRun bool) {
	l.Info("assignment_sync_run",
		slog.String("window", window),
		slog.Int("inserted", inserted),
		slog.Int("updated", updated),
		slog.Int("skipped", skipped),
		slog.Bool("dry_run", dryRun),
	)
}

// SyncError logs a recoverable sync error with the key fields of the
// assignment being processed
func (l *Logger) SyncError(operation, date, unitKey, taskType string, err error) {
	l.Error("assignment_sync_error",
		slog.String("operation", operation),
		slog.String("date", date),
		slog.String("unit_key", unitKey),
		slog.String("type", taskType),
		slog.String("error", err.Error()),
	)
}

// UpstreamError logs a failed fetch from the reservation source
func (l *Logger) UpstreamError(operation, serviceID string, err error) {
	l.Error("upstream_error",
		slog.String("operation", operation),
		slog.String("service_id", serviceID),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
