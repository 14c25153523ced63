// Package logging defines the structured logging interface used by every
// server component and its two backends: log/slog (JSON) and go-kit (logfmt).
package logging

import (
	"context"
	"io"
	"log/slog"
)

// Logger is a context-aware, structured logger. The variadic args are
// key/value pairs:
//
//	log.Info(ctx, "account registered", "email", email, "status", status)
type Logger interface {
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given pairs.
	With(args ...any) Logger
}

// Supported values for the log format setting.
const (
	FormatJSON   = "json"
	FormatLogfmt = "logfmt"
)

// New builds a Logger writing to w. Unknown formats fall back to JSON.
func New(format string, w io.Writer) Logger {
	if format == FormatLogfmt {
		return NewGoKitLogger(w)
	}
	return NewSlogLogger(slog.New(slog.NewJSONHandler(w, nil)))
}
