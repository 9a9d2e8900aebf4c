package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/scenec/geom"
	"github.com/ardnew/scenec/lang"
)

func flatten(t *testing.T, src string) *geom.List {
	t.Helper()

	ctx := context.Background()

	v, err := lang.DecodeBytes(ctx, []byte(src))
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}

	g, err := lang.Build(ctx, v)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	l, err := geom.Flatten(ctx, g)
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}

	return l
}

const single = `
data:
  - strip: [[0, 0, 0], [1.5, 0, 0], [0, 2, -1]]
    color: [255, 128, 0]
`

func TestDeduce(t *testing.T) {
	tests := []struct {
		path    string
		want    Target
		wantErr bool
	}{
		{"out/scene.json", Target{FormatBvh, EncodingJSON}, false},
		{"scene.YAML", Target{FormatBvh, EncodingYAML}, false},
		{"scene.yml", Target{FormatBvh, EncodingYAML}, false},
		{"scene.obj", Target{Format: FormatObj}, false},
		{"scene.stl", Target{}, true},
		{"scene", Target{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := Deduce(tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Fatalf("Deduce(%q) error = %v, want ErrUnknownFormat", tt.path, err)
				}

				return
			}

			if err != nil || got != tt.want {
				t.Errorf("Deduce(%q) = %v, %v; want %v", tt.path, got, err, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	if f, err := ParseFormat(" OBJ "); err != nil || f != FormatObj {
		t.Errorf("ParseFormat = %v, %v", f, err)
	}

	if _, err := ParseFormat("stl"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ParseFormat(stl) error = %v", err)
	}

	if e, err := ParseEncoding("yml"); err != nil || e != EncodingYAML {
		t.Errorf("ParseEncoding = %v, %v", e, err)
	}

	if got := (Target{FormatBvh, EncodingYAML}).String(); got != "bvh/yaml" {
		t.Errorf("Target.String() = %q", got)
	}
}

func TestBvh_SingleTriangle(t *testing.T) {
	b, err := NewBvh(flatten(t, single), 0)
	if err != nil {
		t.Fatalf("NewBvh failed: %v", err)
	}

	var buf bytes.Buffer
	if err := b.Encode(context.Background(), &buf, EncodingJSON); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}

	if len(doc.TriangleNodes) != 1 {
		t.Fatalf("triangle_nodes = %d, want 1", len(doc.TriangleNodes))
	}

	tri := doc.TriangleNodes[0]
	if tri.Vertices != [3][3]float64{{0, 0, 0}, {1.5, 0, 0}, {0, 2, -1}} {
		t.Errorf("vertices = %v", tri.Vertices)
	}

	if tri.Color == nil || *tri.Color != [3]int{255, 128, 0} {
		t.Errorf("color = %v", tri.Color)
	}

	if !tri.Opaque || tri.PrimitiveIndex != 0 || tri.GeometryIndex != 0 {
		t.Errorf("triangle = %+v", tri)
	}

	if doc.Tlas != (NodeRef{MajorBox, 0}) || len(doc.BoxNodes) != 1 {
		t.Fatalf("tlas = %v, boxes = %d", doc.Tlas, len(doc.BoxNodes))
	}

	root := doc.BoxNodes[0]
	if root.MinBounds != [3]float64{0, 0, -1} || root.MaxBounds != [3]float64{1.5, 2, 0} {
		t.Errorf("root bounds = %v %v", root.MinBounds, root.MaxBounds)
	}

	if !slices.Equal(root.ChildNodes, []NodeRef{{MajorTriangle, 0}}) {
		t.Errorf("root children = %v", root.ChildNodes)
	}
}

func TestBvh_FieldOrder(t *testing.T) {
	b, err := NewBvh(flatten(t, `
data:
  - strip: [[0, 0, 0], [1, 0, 0], [0, 1, 0]]
  - origin: [0, 0, 0]
    direction: [0, 0, 1]
    max: 10
  - point: [1, 1, 1]
`), 0)
	if err != nil {
		t.Fatalf("NewBvh failed: %v", err)
	}

	b.Indent = 0

	var buf bytes.Buffer
	if err := b.Encode(context.Background(), &buf, EncodingJSON); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	out := buf.String()

	keys := []string{
		`"tlas"`, `"box_nodes"`, `"instance_nodes":[]`, `"triangle_nodes"`,
		`"procedural_nodes":[]`, `"ray_nodes"`,
	}

	last := -1
	for _, k := range keys {
		i := strings.Index(out, k)
		if i < 0 || i < last {
			t.Fatalf("key %s missing or out of order in %s", k, out)
		}

		last = i
	}

	if strings.Contains(out, `"color"`) {
		t.Errorf("unset color encoded: %s", out)
	}

	ray := `{"geometry_index":0,"primitive_index":1,"opaque":true,"origin":[0,0,0],"direction":[0,0,1],"min":0,"max":10}`
	if !strings.Contains(out, ray) {
		t.Errorf("ray node not found in %s", out)
	}
}

func TestBvh_YAML(t *testing.T) {
	b, err := NewBvh(flatten(t, single), 0)
	if err != nil {
		t.Fatalf("NewBvh failed: %v", err)
	}

	var buf bytes.Buffer
	if err := b.Encode(context.Background(), &buf, EncodingYAML); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var doc Document
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid YAML: %v\n%s", err, buf.String())
	}

	if len(doc.TriangleNodes) != 1 || doc.TriangleNodes[0].Vertices[1] != [3]float64{1.5, 0, 0} {
		t.Errorf("decoded = %+v", doc)
	}

	if !strings.HasPrefix(buf.String(), "tlas:") {
		t.Errorf("YAML does not start with tlas:\n%s", buf.String())
	}
}

func TestBvh_BoxTree(t *testing.T) {
	// Eight separated triangles along x.
	var src strings.Builder
	src.WriteString("t:\n  strip: [[0, 0, 0], [1, 0, 0], [0, 1, 0]]\ndata:\n")

	for i := range 8 {
		fmt.Fprintf(&src, "  - {instance: t, translate: [%d, 0, 0]}\n", 3*i)
	}

	l := flatten(t, src.String())

	tests := []struct {
		size      int
		wantBoxes int
	}{
		{0, 1},
		{8, 1},
		{4, 3},
		{2, 7},
	}

	for _, tt := range tests {
		b, err := NewBvh(l, tt.size)
		if err != nil {
			t.Fatalf("NewBvh(%d) failed: %v", tt.size, err)
		}

		doc := b.Document
		if len(doc.BoxNodes) != tt.wantBoxes {
			t.Errorf("size %d: boxes = %d, want %d", tt.size, len(doc.BoxNodes), tt.wantBoxes)
		}

		// Every triangle is reached exactly once from the root.
		seen := make(map[uint32]int)

		var walk func(i uint32)
		walk = func(i uint32) {
			box := doc.BoxNodes[i]
			if limit := tt.size; limit > 0 && len(box.ChildNodes) > limit {
				t.Errorf("size %d: box %d has %d children", tt.size, i, len(box.ChildNodes))
			}

			for _, c := range box.ChildNodes {
				switch c[0] {
				case MajorBox:
					if c[1] <= i {
						t.Errorf("size %d: box %d child %d not in preorder", tt.size, i, c[1])
					}

					walk(c[1])
				case MajorTriangle:
					seen[c[1]]++
				}
			}
		}

		walk(0)

		if len(seen) != len(doc.TriangleNodes) {
			t.Errorf("size %d: reached %d of %d triangles", tt.size, len(seen), len(doc.TriangleNodes))
		}

		for tri, n := range seen {
			if n != 1 {
				t.Errorf("size %d: triangle %d reached %d times", tt.size, tri, n)
			}
		}
	}
}

func TestNewBvh_BadBoxSize(t *testing.T) {
	for _, size := range []int{1, -3} {
		if _, err := NewBvh(&geom.List{}, size); !errors.Is(err, ErrBoxSize) {
			t.Errorf("NewBvh(%d) error = %v, want ErrBoxSize", size, err)
		}
	}
}

func TestNewBvh_Empty(t *testing.T) {
	b, err := NewBvh(&geom.List{}, 2)
	if err != nil {
		t.Fatalf("NewBvh failed: %v", err)
	}

	var buf bytes.Buffer
	if err := b.Encode(context.Background(), &buf, EncodingJSON); err != nil {
		t.Fatalf("Encode of empty document failed: %v", err)
	}

	if len(b.Document.BoxNodes) != 1 || len(b.Document.BoxNodes[0].ChildNodes) != 0 {
		t.Errorf("boxes = %+v", b.Document.BoxNodes)
	}
}

func TestObj_SingleTriangle(t *testing.T) {
	var buf bytes.Buffer

	o := Obj{Header: []string{"scene"}}
	if err := o.Encode(&buf, flatten(t, single)); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	want := `# scene

newmtl color_000000
Kd 0 0 0
Ks 0.5 0.5 0.5
Ns 18.0

newmtl color_ff8000
Kd 1 0.5019607843137255 0
Ks 0.5 0.5 0.5
Ns 18.0

o strip0
usemtl color_ff8000
v 0 0 0
v 1.5 0 0
v 0 2 -1
f 1 2 3
`

	if got := buf.String(); got != want {
		t.Errorf("output:\n%s\nwant:\n%s", got, want)
	}
}

func TestObj_MixedPrimitives(t *testing.T) {
	var obj, mtl bytes.Buffer

	o := Obj{Materials: &mtl, MaterialLib: "scene.mtl"}

	err := o.Encode(&obj, flatten(t, `
data:
  - strip: [[0, 0, 0], [1, 0, 0], [0, 1, 0], [1, 1, 0]]
  - origin: [1, 0, 0]
    direction: [0, 2, 0]
    min: 1
    max: 2
    color: [0, 0, 255]
  - point: [0, 0, -0.0]
`))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	for _, want := range []string{
		"mtllib scene.mtl\n",
		"o strip0\nusemtl color_000000\n",
		"f 1 2 3\nf 3 2 4\n",
		"o ray0\nusemtl color_0000ff\nv 1 2 0\nv 1 4 0\nl 5 6\n",
		"o point0\nusemtl color_000000\nv 0 0 0\np 7\n",
	} {
		if !strings.Contains(obj.String(), want) {
			t.Errorf("obj output missing %q:\n%s", want, obj.String())
		}
	}

	if strings.Contains(obj.String(), "newmtl") {
		t.Error("materials written inline with a material writer")
	}

	if got := strings.Count(mtl.String(), "newmtl "); got != 2 {
		t.Errorf("materials = %d, want 2:\n%s", got, mtl.String())
	}
}

func TestBvh_Procedural(t *testing.T) {
	l := flatten(t, `
data:
  - strip: [[0, 0, 0], [1, 0, 0], [0, 1, 0]]
  - min: [5, 5, 5]
    max: [6, 7, 8]
    color: [1, 2, 3]
`)

	tests := []struct {
		size      int
		wantBoxes int
	}{
		{0, 1},
		{2, 1},
	}

	for _, tt := range tests {
		b, err := NewBvh(l, tt.size)
		if err != nil {
			t.Fatalf("NewBvh(%d) failed: %v", tt.size, err)
		}

		doc := b.Document
		if len(doc.BoxNodes) != tt.wantBoxes {
			t.Errorf("size %d: boxes = %d, want %d", tt.size, len(doc.BoxNodes), tt.wantBoxes)
		}

		if len(doc.ProceduralNodes) != 1 {
			t.Fatalf("size %d: procedural_nodes = %d, want 1", tt.size, len(doc.ProceduralNodes))
		}

		pr := doc.ProceduralNodes[0]
		if pr.MinBounds != [3]float64{5, 5, 5} || pr.MaxBounds != [3]float64{6, 7, 8} {
			t.Errorf("size %d: procedural bounds = %v %v", tt.size, pr.MinBounds, pr.MaxBounds)
		}

		if pr.Opaque || pr.PrimitiveIndex != 1 || pr.Color == nil || *pr.Color != [3]int{1, 2, 3} {
			t.Errorf("size %d: procedural = %+v", tt.size, pr)
		}

		root := doc.BoxNodes[0]
		want := []NodeRef{{MajorTriangle, 0}, {MajorProcedural, 0}}

		if !slices.Equal(root.ChildNodes, want) {
			t.Errorf("size %d: root children = %v, want %v", tt.size, root.ChildNodes, want)
		}

		if root.MinBounds != [3]float64{0, 0, 0} || root.MaxBounds != [3]float64{6, 7, 8} {
			t.Errorf("size %d: root bounds = %v %v", tt.size, root.MinBounds, root.MaxBounds)
		}
	}
}

func TestObj_Procedural(t *testing.T) {
	var buf bytes.Buffer

	err := Obj{}.Encode(&buf, flatten(t, `
data:
  - min: [0, 0, 0]
    max: [1, 1, 1]
    opaque: true
  - min: [0, 0, 0]
    max: [1, 1, 1]
`))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	corners := "v 0 0 0\nv 0 0 1\nv 0 1 0\nv 0 1 1\nv 1 0 0\nv 1 0 1\nv 1 1 0\nv 1 1 1\n"

	for _, want := range []string{
		"o procedural0\nusemtl color_000000\n" + corners +
			"f 1 2 4 3\nf 1 2 6 5\nf 2 4 8 6\nf 5 6 8 7\nf 3 4 8 7\nf 1 3 7 5\n",
		"o procedural1\n" + corners +
			"l 9 10 12 11 9\nl 13 14 16 15 13\nl 9 13\nl 10 14\nl 11 15\nl 12 16\n",
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("obj output missing %q:\n%s", want, buf.String())
		}
	}

	if strings.Contains(buf.String(), "o box") {
		t.Errorf("boxes written without Boxes:\n%s", buf.String())
	}
}

func TestObj_Boxes(t *testing.T) {
	var buf bytes.Buffer

	o := Obj{Boxes: true}
	if err := o.Encode(&buf, flatten(t, single)); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	want := "\no box0\nusemtl color_000000\n" +
		"v 0 0 -1\nv 0 0 0\nv 0 2 -1\nv 0 2 0\nv 1.5 0 -1\nv 1.5 0 0\nv 1.5 2 -1\nv 1.5 2 0\n" +
		"l 4 5 7 6 4\nl 8 9 11 10 8\nl 4 8\nl 5 9\nl 6 10\nl 7 11\n"

	if got := buf.String(); !strings.HasSuffix(got, want) {
		t.Errorf("output:\n%s\nwant suffix:\n%s", got, want)
	}

	o.BoxSize = 1
	if err := o.Encode(&bytes.Buffer{}, flatten(t, single)); !errors.Is(err, ErrBoxSize) {
		t.Errorf("Encode with box size 1: err = %v, want ErrBoxSize", err)
	}
}
