package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/scenec/export"
	"github.com/ardnew/scenec/lang"
	"github.com/ardnew/scenec/pkg"
)

func TestBuild_Outputs(t *testing.T) {
	bvhJSON := export.Target{Format: export.FormatBvh, Encoding: export.EncodingJSON}
	bvhYAML := export.Target{Format: export.FormatBvh, Encoding: export.EncodingYAML}
	obj := export.Target{Format: export.FormatObj}

	tests := []struct {
		name    string
		build   Build
		want    []export.Target
		wantErr error
	}{
		{
			name:    "nothing to deduce",
			build:   Build{BvhEncoding: "json"},
			wantErr: ErrDeduceFormat,
		},
		{
			name:  "stdout with format",
			build: Build{Format: "bvh", BvhEncoding: "yaml"},
			want:  []export.Target{bvhYAML},
		},
		{
			name:  "deduced from extensions",
			build: Build{Out: []string{"a.json", "b.yml", "c.obj"}, BvhEncoding: "json"},
			want:  []export.Target{bvhJSON, bvhYAML, obj},
		},
		{
			name:  "format overrides extension",
			build: Build{Out: []string{"a.json"}, Format: "obj", BvhEncoding: "json"},
			want:  []export.Target{obj},
		},
		{
			name:  "bvh encoding from extension",
			build: Build{Out: []string{"a.yaml", "a.out"}, Format: "bvh", BvhEncoding: "json"},
			want:  []export.Target{bvhYAML, bvhJSON},
		},
		{
			name:    "unknown extension",
			build:   Build{Out: []string{"a.stl"}, BvhEncoding: "json"},
			wantErr: ErrDeduceFormat,
		},
		{
			name:    "shared material file",
			build:   Build{Out: []string{"a.obj", "b.obj"}, Mtl: "a.mtl"},
			wantErr: ErrInvalidFlag,
		},
		{
			name:    "box size checked before any output",
			build:   Build{Out: []string{"a.obj"}, BoxSize: 1},
			wantErr: ErrInvalidFlag,
		},
		{
			name:    "raw with bvh output",
			build:   Build{Out: []string{"a.obj", "a.json"}, BvhEncoding: "json", Raw: true},
			wantErr: ErrInvalidFlag,
		},
		{
			name:    "raw with bvh format",
			build:   Build{Format: "bvh", BvhEncoding: "json", Raw: true},
			wantErr: ErrInvalidFlag,
		},
		{
			name:  "raw obj",
			build: Build{Out: []string{"a.obj"}, Raw: true},
			want:  []export.Target{obj},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outs, err := tt.build.outputs()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("outputs() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("outputs() failed: %v", err)
			}

			if len(outs) != len(tt.want) {
				t.Fatalf("outputs() = %v, want %v", outs, tt.want)
			}

			for i, o := range outs {
				if o.target != tt.want[i] {
					t.Errorf("output %d target = %v, want %v", i, o.target, tt.want[i])
				}
			}
		})
	}
}

func TestBuild_Files(t *testing.T) {
	dir := t.TempDir()
	ctx, _ := testContext(t, kong.Vars{})

	b := &Build{
		Source:      Source{Input: writeScene(t, dir, "scene.yaml", testScene)},
		Out:         []string{filepath.Join(dir, "scene.json"), filepath.Join(dir, "scene.obj")},
		BvhEncoding: "json",
		Mtl:         filepath.Join(dir, "scene.mtl"),
		Indent:      2,
	}

	if err := b.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "scene.json"))
	if err != nil {
		t.Fatal(err)
	}

	var doc export.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("invalid bvh: %v", err)
	}

	if len(doc.TriangleNodes) != 2 || len(doc.RayNodes) != 1 {
		t.Errorf("bvh has %d triangles and %d rays", len(doc.TriangleNodes), len(doc.RayNodes))
	}

	data, err = os.ReadFile(filepath.Join(dir, "scene.obj"))
	if err != nil {
		t.Fatal(err)
	}

	release, err := pkg.Release()
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"# generated by " + release + "\n",
		"mtllib scene.mtl\n",
		"f 1 2 3\nf 3 2 4\n",
		"l 5 6\n",
		"\no box0\n",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("obj missing %q:\n%s", want, data)
		}
	}

	data, err = os.ReadFile(filepath.Join(dir, "scene.mtl"))
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(data), "newmtl color_ff0000\n") {
		t.Errorf("mtl:\n%s", data)
	}
}

func TestBuild_Stdout(t *testing.T) {
	ctx, out := testContext(t, kong.Vars{})

	b := &Build{
		Source:      Source{Input: writeScene(t, t.TempDir(), "scene.yaml", testScene)},
		Format:      "bvh",
		BvhEncoding: "json",
		Where:       `kind == "strip"`,
	}

	if err := b.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var doc export.Document
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("invalid bvh on stdout: %v\n%s", err, out.String())
	}

	if len(doc.TriangleNodes) != 2 || len(doc.RayNodes) != 0 {
		t.Errorf("filtered bvh has %d triangles and %d rays", len(doc.TriangleNodes), len(doc.RayNodes))
	}
}

func TestBuild_Errors(t *testing.T) {
	path := writeScene(t, t.TempDir(), "scene.yaml", testScene)

	tests := []struct {
		name  string
		build Build
		want  error
	}{
		{"box size", Build{Format: "bvh", BvhEncoding: "json", BoxSize: 1}, ErrInvalidFlag},
		{"filter", Build{Format: "obj", Where: "color ++"}, ErrInvalidFilter},
		{"input", Build{Format: "obj", Source: Source{Input: path + ".missing"}}, ErrReadInput},
		{"watch stdin", Build{Format: "obj", Watch: true, Source: Source{Input: "-"}}, ErrInvalidFlag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := testContext(t, kong.Vars{})

			b := tt.build
			if b.Input == "" {
				b.Input = path
			}

			if err := b.Run(ctx); !errors.Is(err, tt.want) {
				t.Errorf("Run() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBuild_Raw(t *testing.T) {
	dir := t.TempDir()
	ctx, out := testContext(t, kong.Vars{})

	b := &Build{
		Source: Source{Input: writeScene(t, dir, "scene.yaml", testScene)},
		Format: "obj",
		Raw:    true,
	}

	if err := b.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !strings.Contains(out.String(), "o strip0\n") || strings.Contains(out.String(), "o box") {
		t.Errorf("raw obj:\n%s", out.String())
	}
}

func TestBuild_FailureKeepsOutputs(t *testing.T) {
	const previous = "PREVIOUS GOOD OUTPUT\n"

	tests := []struct {
		name  string
		scene string
		build Build
		want  error
	}{
		{
			name:  "box size",
			scene: testScene,
			build: Build{BvhEncoding: "json", BoxSize: 1},
			want:  ErrInvalidFlag,
		},
		{
			name:  "instancing",
			scene: "t:\n  strip: [[0, 0, 0], [1, 0, 0], [0, 1, 0]]\ndata: [{instance: t}]\n",
			build: Build{BvhEncoding: "json", Source: Source{Instancing: 1}},
			want:  lang.ErrInstancingExceeded,
		},
		{
			name:  "scene",
			scene: "data: [{strip: [[0, 0, 0]]}]\n",
			build: Build{BvhEncoding: "json"},
			want:  lang.ErrMalformedStrip,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			ctx, _ := testContext(t, kong.Vars{})

			outs := []string{filepath.Join(dir, "scene.json"), filepath.Join(dir, "scene.obj")}
			for _, path := range outs {
				if err := os.WriteFile(path, []byte(previous), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			b := tt.build
			b.Input = writeScene(t, dir, "scene.yaml", tt.scene)
			b.Out = outs

			if err := b.Run(ctx); !errors.Is(err, tt.want) {
				t.Fatalf("Run() error = %v, want %v", err, tt.want)
			}

			for _, path := range outs {
				data, err := os.ReadFile(path)
				if err != nil {
					t.Fatal(err)
				}

				if string(data) != previous {
					t.Errorf("%s changed by a failed build: %q", filepath.Base(path), data)
				}
			}
		})
	}
}
