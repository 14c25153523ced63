package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))
	return NewSlogLogger(l), &buf
}

func TestSlogLogger_Levels_WriteExpectedOutput(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()

	tests := []struct {
		level string
		msg   string
		kv    string
	}{
		{"INFO", "inf", "b=2"},
		{"WARN", "wrn", "c=3"},
		{"ERROR", "err", "d=4"},
	}

	for _, tc := range tests {
		if !strings.Contains(out, "level="+tc.level) {
			t.Fatalf("expected level=%s in output:\n%s", tc.level, out)
		}
		if !strings.Contains(out, "msg="+tc.msg) {
			t.Fatalf("expected msg=%s in output:\n%s", tc.msg, out)
		}
		if !strings.Contains(out, tc.kv) {
			t.Fatalf("expected %s in output:\n%s", tc.kv, out)
		}
	}
}

func TestSlogLogger_With_AddsAttributes(t *testing.T) {
	log, buf := newTestLogger(t)

	log.With("module", "credentials").Info(context.Background(), "hello", "k", "v")

	out := buf.String()
	for _, s := range []string{"level=INFO", "msg=hello", "module=credentials", "k=v"} {
		if !strings.Contains(out, s) {
			t.Fatalf("expected %q in output, got:\n%s", s, out)
		}
	}
}

func TestNew_SelectsBackend(t *testing.T) {
	var buf bytes.Buffer

	if _, ok := New(FormatLogfmt, &buf).(*GoKitLogger); !ok {
		t.Fatalf("logfmt format must produce a GoKitLogger")
	}
	if _, ok := New(FormatJSON, &buf).(*SlogLogger); !ok {
		t.Fatalf("json format must produce a SlogLogger")
	}
	if _, ok := New("unknown", &buf).(*SlogLogger); !ok {
		t.Fatalf("unknown format must fall back to SlogLogger")
	}
}

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	New(FormatJSON, &buf).Info(context.Background(), "started", "addr", ":8080")

	out := buf.String()
	if !strings.Contains(out, `"msg":"started"`) || !strings.Contains(out, `"addr":":8080"`) {
		t.Fatalf("unexpected json output: %s", out)
	}
}
