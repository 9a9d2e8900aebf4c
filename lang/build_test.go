package lang

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/scenec/linear"
)

func buildString(t *testing.T, src string) (*Graph, error) {
	t.Helper()

	v, err := DecodeBytes(context.Background(), []byte(src))
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}

	return Build(context.Background(), v)
}

func mustBuild(t *testing.T, src string) *Graph {
	t.Helper()

	g, err := buildString(t, src)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	return g
}

func objectNamed(t *testing.T, g *Graph, name string) *Object {
	t.Helper()

	for i := range g.Objects {
		if g.Objects[i].Name == name {
			return &g.Objects[i]
		}
	}

	t.Fatalf("object %q not found", name)

	return nil
}

func TestBuild_NearestDefinitionWins(t *testing.T) {
	g := mustBuild(t, `
foo: [1, 1, 1]
bar:
  omega:
    foo: [2, 2, 2]
    beta:
      color: foo
  gamma:
    color: foo
data: []
`)

	tests := []struct {
		name string
		want Color
	}{
		{"world.bar.omega.beta", Color{2, 2, 2}},
		{"world.bar.gamma", Color{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := objectNamed(t, g, tt.name)

			c := obj.Attrs().Color
			if c == nil {
				t.Fatal("color not set")
			}

			if *c != tt.want {
				t.Errorf("color = %v, want %v", *c, tt.want)
			}
		})
	}
}

func TestBuild_WorldChildrenInOrder(t *testing.T) {
	g := mustBuild(t, `
tri:
  strip: [[0, 0, 0], [1, 0, 0], [0, 1, 0]]
data:
  - tri
  - instance: tri
    translate: [1, 0, 0]
  - point: [0, 0, 1]
  - origin: [0, 0, 0]
    direction: [0, 0, 1]
    max: 5
`)

	world := g.Object(g.World)
	if world == nil || world.Kind != KindCustom {
		t.Fatalf("world = %+v, want custom object", world)
	}

	wantKinds := []Kind{KindStrip, KindInstance, KindPoint, KindRay}
	if len(world.Custom.Children) != len(wantKinds) {
		t.Fatalf("children = %d, want %d", len(world.Custom.Children), len(wantKinds))
	}

	for i, ref := range world.Custom.Children {
		if k := g.Object(ref).Kind; k != wantKinds[i] {
			t.Errorf("child %d kind = %v, want %v", i, k, wantKinds[i])
		}
	}

	// The referenced blueprint and the instance target are one object.
	inst := g.Object(world.Custom.Children[1]).Instance
	if inst.Target != world.Custom.Children[0] {
		t.Errorf("instance target = %d, want %d", inst.Target, world.Custom.Children[0])
	}

	if inst.Translate != (linear.V3{1, 0, 0}) || inst.Scale != (linear.V3{1, 1, 1}) {
		t.Errorf("instance transform = %v %v", inst.Scale, inst.Translate)
	}
}

func TestBuild_ForwardReferenceAmongFields(t *testing.T) {
	g := mustBuild(t, `
a: b
b: [0, 0, 0]
data:
  - strip: [a, [1, 0, 0], [0, 1, 0]]
`)

	world := g.Object(g.World)

	strip := g.Object(world.Custom.Children[0]).Strip
	if strip.Vertices[0] != (linear.V3{}) {
		t.Errorf("vertex 0 = %v, want origin", strip.Vertices[0])
	}
}

func TestBuild_RayForms(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantMin float64
		wantMax float64
	}{
		{
			"direct max",
			"data: [{origin: [0, 0, 0], direction: [1, 0, 0], max: 4}]",
			0, 4,
		},
		{
			"direct extent",
			"data: [{origin: [0, 0, 0], direction: [1, 0, 0], extent: 3, min: 1}]",
			1, 3,
		},
		{
			"nested",
			"data: [{ray: {origin: [0, 0, 0], direction: [1, 0, 0], max: 2}, color: [1, 2, 3]}]",
			0, 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustBuild(t, tt.src)

			obj := g.Object(g.Object(g.World).Custom.Children[0])
			if obj.Kind != KindRay {
				t.Fatalf("kind = %v, want ray", obj.Kind)
			}

			if obj.Ray.Min != tt.wantMin || obj.Ray.Max != tt.wantMax {
				t.Errorf("domain = [%v, %v], want [%v, %v]",
					obj.Ray.Min, obj.Ray.Max, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestBuild_UnknownFieldsPreserved(t *testing.T) {
	g := mustBuild(t, `
data:
  - strip: [[0, 0, 0], [1, 0, 0], [0, 1, 0]]
    material: 7
    opaque: false
`)

	strip := g.Object(g.Object(g.World).Custom.Children[0]).Strip

	m, ok := strip.Get("material")
	if !ok || m.Number != 7 {
		t.Errorf("material = %+v, %v", m, ok)
	}

	if strip.Opaque == nil || *strip.Opaque {
		t.Errorf("opaque = %v, want false", strip.Opaque)
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		want     error
		wantPath string
	}{
		{
			"two vertex strip",
			"data: [{strip: [[0, 0, 0], [1, 0, 0]]}]",
			ErrMalformedStrip, "world.data[0]",
		},
		{
			"scalar strip",
			"data: [{strip: 3}]",
			ErrMalformedStrip, "world.data[0]",
		},
		{
			"ray without direction",
			"data: [{origin: [0, 0, 0], max: 5}]",
			ErrIncompleteRay, "world.data[0]",
		},
		{
			"nested ray without max",
			"data: [{ray: {origin: [0, 0, 0], direction: [0, 0, 1]}}]",
			ErrIncompleteRay, "world.data[0]",
		},
		{
			"root without data",
			"foo: [1, 2, 3]",
			ErrMissingWorldData, "world",
		},
		{
			"data as scalar field",
			"data: [{foo: {data: 3}}]",
			ErrReservedIdentifier, "world.data[0].foo",
		},
		{
			"reserved reference",
			"x: [1, 2, 3]\ndata: [{strip: [x, x, strip]}]",
			ErrReservedIdentifier, "world.data[0]",
		},
		{
			"scalar nested ray",
			"data: [{point: [0, 0, 0], ray: 1}]",
			ErrIncompleteRay, "world.data[0]",
		},
		{
			"unresolved",
			"data: [{strip: [a, b, c]}]",
			ErrUnresolvedReference, "world.data[0]",
		},
		{
			"instance of number",
			"n: 3\ndata: [{instance: n}]",
			ErrTypeMismatch, "world.data[0]",
		},
		{
			"data entry is number",
			"data: [4]",
			ErrTypeMismatch, "world",
		},
		{
			"bad color",
			"data: [{strip: [[0, 0, 0], [1, 0, 0], [0, 1, 0]], color: [300, 0, 0]}]",
			ErrTypeMismatch, "world.data[0]",
		},
		{
			"bad vertex",
			"data: [{strip: [[0, 0], [1, 0, 0], [0, 1, 0]]}]",
			ErrTypeMismatch, "world.data[0]",
		},
		{
			"null field",
			"foo:\ndata: []",
			ErrTypeMismatch, "world",
		},
		{
			"fractional primitive index",
			"data: [{strip: [[0, 0, 0], [1, 0, 0], [0, 1, 0]], primitive_index: 1.5}]",
			ErrTypeMismatch, "world.data[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := buildString(t, tt.src)
			if err == nil {
				t.Fatalf("expected error, got graph with %d objects", g.Len())
			}

			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}

			var le *Error
			if !errors.As(err, &le) {
				t.Fatalf("error %T is not *Error", err)
			}

			if le.Path() != tt.wantPath {
				t.Errorf("path = %q, want %q", le.Path(), tt.wantPath)
			}

			if g != nil {
				t.Error("failed build returned a graph")
			}
		})
	}
}

func TestBuild_DataAndInstanceIsCustom(t *testing.T) {
	g := mustBuild(t, `
tri:
  strip: [[0, 0, 0], [1, 0, 0], [0, 1, 0]]
data:
  - instance: tri
    data: [tri]
`)

	obj := g.Object(g.Object(g.World).Custom.Children[0])
	if obj.Kind != KindCustom {
		t.Fatalf("kind = %v, want custom", obj.Kind)
	}

	if len(obj.Custom.Children) != 1 {
		t.Errorf("children = %d, want 1", len(obj.Custom.Children))
	}
}

func TestBuild_MaxDepth(t *testing.T) {
	src := "data: [" + strings.Repeat("{data: [", 5) + strings.Repeat("]}", 5) + "]"

	v, err := DecodeBytes(context.Background(), []byte(src))
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}

	if _, err := Build(context.Background(), v, WithMaxDepth(3)); !errors.Is(err, ErrMaxDepthExceeded) {
		t.Fatalf("expected ErrMaxDepthExceeded, got %v", err)
	}

	if _, err := Build(context.Background(), v, WithMaxDepth(10)); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
}
