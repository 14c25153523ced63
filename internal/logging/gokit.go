package logging

import (
	"context"
	"io"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// GoKitLogger writes logfmt lines through a go-kit logger.
type GoKitLogger struct {
	l kitlog.Logger
}

// NewGoKitLogger returns a timestamped, goroutine-safe logfmt logger.
func NewGoKitLogger(w io.Writer) *GoKitLogger {
	l := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(w))
	l = kitlog.With(l, "ts", kitlog.DefaultTimestampUTC)
	return &GoKitLogger{l: l}
}

func (g *GoKitLogger) Info(_ context.Context, msg string, args ...any) {
	_ = level.Info(g.l).Log(append([]any{"msg", msg}, args...)...)
}

func (g *GoKitLogger) Warn(_ context.Context, msg string, args ...any) {
	_ = level.Warn(g.l).Log(append([]any{"msg", msg}, args...)...)
}

func (g *GoKitLogger) Error(_ context.Context, msg string, args ...any) {
	_ = level.Error(g.l).Log(append([]any{"msg", msg}, args...)...)
}

func (g *GoKitLogger) With(args ...any) Logger {
	return &GoKitLogger{l: kitlog.With(g.l, args...)}
}
