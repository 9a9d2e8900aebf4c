package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func jsonLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any

	for line := range strings.Lines(buf.String()) {
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}

		out = append(out, m)
	}

	return out
}

func TestMake_Defaults(t *testing.T) {
	l := Make(&bytes.Buffer{})

	if l.Level() != DefaultLevel {
		t.Errorf("Level() = %v, want %v", l.Level(), DefaultLevel)
	}

	if l.Format() != DefaultFormat {
		t.Errorf("Format() = %v, want %v", l.Format(), DefaultFormat)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name  string
		level Level
		want  []string
	}{
		{"trace", LevelTrace, []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}},
		{"info", LevelInfo, []string{"INFO", "WARN", "ERROR"}},
		{"error", LevelError, []string{"ERROR"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			l := Make(&buf, WithLevel(tt.level), WithFormat(FormatJSON))
			l.Trace("m")
			l.Debug("m")
			l.Info("m")
			l.Warn("m")
			l.Error("m")

			var got []string
			for _, rec := range jsonLines(t, &buf) {
				got = append(got, rec[slog.LevelKey].(string))
			}

			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("levels = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogger_JSONAttributes(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithFormat(FormatJSON), WithTimeLayout("none")).
		With(slog.String("component", "flatten"))

	l.InfoContext(context.Background(), "done", slog.Int("prims", 3))

	recs := jsonLines(t, &buf)
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}

	rec := recs[0]
	if rec["msg"] != "done" || rec["component"] != "flatten" || rec["prims"] != float64(3) {
		t.Errorf("record = %v", rec)
	}

	if _, ok := rec[slog.TimeKey]; ok {
		t.Error("time included with layout none")
	}
}

func TestLogger_CallerIsCallSite(t *testing.T) {
	tests := []struct {
		name string
		fn   func(Logger)
	}{
		{"method", func(l Logger) { l.Info("here") }},
		{"context method", func(l Logger) { l.InfoContext(context.Background(), "here") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			tt.fn(Make(&buf, WithFormat(FormatJSON), WithCaller(true)))

			recs := jsonLines(t, &buf)

			src, ok := recs[0][slog.SourceKey].(map[string]any)
			if !ok {
				t.Fatalf("source missing: %v", recs[0])
			}

			if file, _ := src["file"].(string); !strings.HasSuffix(file, "log_test.go") {
				t.Errorf("source file = %q, want log_test.go", file)
			}
		})
	}
}

func TestLogger_Wrap(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithFormat(FormatJSON))
	debug := base.Wrap(WithLevel(LevelDebug))

	base.Debug("hidden")
	debug.Debug("shown")

	recs := jsonLines(t, &buf)
	if len(recs) != 1 || recs[0]["msg"] != "shown" {
		t.Errorf("records = %v", recs)
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	var l Logger

	l.Trace("nothing")
	l.ErrorContext(context.Background(), "nothing")
	l = l.With(slog.String("k", "v"))

	if l.Level() != DefaultLevel {
		t.Errorf("Level() = %v", l.Level())
	}

	if w := l.Wrap(WithLevel(LevelError)); w.Level() != LevelError {
		t.Errorf("Wrap of zero Logger level = %v", w.Level())
	}
}

func TestLogger_Concurrent(t *testing.T) {
	var buf syncBuffer

	l := Make(&buf, WithFormat(FormatJSON))

	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() {
			for range 10 {
				l.Info("tick", slog.Int("n", 1))
			}
		})
	}

	wg.Wait()

	if n := strings.Count(buf.String(), "\n"); n != 160 {
		t.Errorf("lines = %d, want 160", n)
	}
}

func TestPackage_DefaultLogger(t *testing.T) {
	saved := Default()
	t.Cleanup(func() { defaultLog.Store(&saved) })

	var buf bytes.Buffer

	Config(WithOutput(&buf), WithFormat(FormatJSON), WithLevel(LevelTrace))

	TraceContext(context.Background(), "a")
	Debug("b")
	Info("c")
	WarnContext(context.Background(), "d")
	Error("e", slog.String("key", "value"))

	recs := jsonLines(t, &buf)
	if len(recs) != 5 {
		t.Fatalf("records = %d, want 5", len(recs))
	}

	if recs[4]["key"] != "value" {
		t.Errorf("last record = %v", recs[4])
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func BenchmarkLogger_Info(b *testing.B) {
	l := Make(&bytes.Buffer{}, WithFormat(FormatJSON))

	for b.Loop() {
		l.Info("benchmark", slog.Int("n", 1))
	}
}
