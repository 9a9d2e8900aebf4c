package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// initContext parses args against a small global flag set.
func initContext(t *testing.T, base string, args ...string) context.Context {
	t.Helper()

	var cli struct {
		LogLevel  string   `default:"info"`
		LogPretty bool     `default:"true" negatable:""`
		BoxSize   int      `default:"0"`
		Path      []string `short:"I"`
		PprofMode string
		Version   bool
		Unset     string
	}

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: base})
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(context.Background(), ktx)
}

func TestInit_Encodings(t *testing.T) {
	args := []string{"--log-level=debug", "--no-log-pretty", "--box-size=4", "-I", "a", "-I", "b", "--pprof-mode=cpu"}

	want := map[string]any{
		"log-level":  "debug",
		"log-pretty": false,
		"box-size":   4,
		"path":       []any{"a", "b"},
	}

	tests := []struct {
		as     string
		decode func([]byte, any) error
	}{
		{"yaml", func(b []byte, v any) error { return yaml.Unmarshal(b, v) }},
		{"toml", toml.Unmarshal},
		{"json", json.Unmarshal},
	}

	for _, tt := range tests {
		t.Run(tt.as, func(t *testing.T) {
			base := filepath.Join(t.TempDir(), "config")
			ctx := initContext(t, base, args...)

			if err := (&Init{As: tt.as}).Run(ctx); err != nil {
				t.Fatalf("Run failed: %v", err)
			}

			data, err := os.ReadFile(base + "." + tt.as)
			if err != nil {
				t.Fatal(err)
			}

			var doc map[string]any
			if err := tt.decode(data, &doc); err != nil {
				t.Fatalf("invalid %s: %v\n%s", tt.as, err, data)
			}

			got := make(map[string]any, len(doc))
			for k, v := range doc {
				got[strings.ReplaceAll(k, "_", "-")] = v
			}

			if len(got) != len(want) {
				t.Errorf("keys = %v, want %v", got, want)
			}

			for k, v := range want {
				if g, ok := got[k]; !ok || !equalValue(g, v) {
					t.Errorf("%s = %#v, want %#v", k, got[k], v)
				}
			}
		})
	}
}

// equalValue compares decoded values, ignoring the numeric type each
// decoder picks.
func equalValue(got, want any) bool {
	switch w := want.(type) {
	case int:
		switch g := got.(type) {
		case int64:
			return g == int64(w)
		case uint64:
			return g == uint64(w)
		case float64:
			return g == float64(w)
		}

		return false

	case []any:
		g, ok := got.([]any)
		if !ok || len(g) != len(w) {
			return false
		}

		for i := range w {
			if !equalValue(g[i], w[i]) {
				return false
			}
		}

		return true

	default:
		return got == want
	}
}

func TestInit_YAMLOrder(t *testing.T) {
	base := filepath.Join(t.TempDir(), "config")

	if err := (&Init{As: "yaml"}).Run(initContext(t, base)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := os.ReadFile(base + ".yaml")
	if err != nil {
		t.Fatal(err)
	}

	if got, want := string(data), "log-level: info\nlog-pretty: true\nbox-size: 0\n"; got != want {
		t.Errorf("config:\n%s\nwant:\n%s", got, want)
	}
}

func TestInit_Exists(t *testing.T) {
	base := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(base+".toml", []byte("existing = true\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx := initContext(t, base, "--log-level=warn")

	err := (&Init{As: "toml"}).Run(ctx)
	if !errors.Is(err, ErrWriteConfig) || !errors.Is(err, ErrFileExists) {
		t.Fatalf("Run without force error = %v", err)
	}

	if err := (&Init{As: "toml", Force: true}).Run(ctx); err != nil {
		t.Fatalf("Run with force failed: %v", err)
	}

	data, err := os.ReadFile(base + ".toml")
	if err != nil {
		t.Fatal(err)
	}

	if strings.Contains(string(data), "existing") || !strings.Contains(string(data), "warn") {
		t.Errorf("config not overwritten:\n%s", data)
	}
}

func TestInit_InvalidPath(t *testing.T) {
	base := filepath.Join(t.TempDir(), "missing", "config")

	if err := (&Init{As: "json"}).Run(initContext(t, base)); !errors.Is(err, ErrWriteConfig) {
		t.Errorf("Run() error = %v, want ErrWriteConfig", err)
	}
}
