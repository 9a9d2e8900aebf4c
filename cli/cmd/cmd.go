package cmd

import (
	"bufio"
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/mitchellh/go-homedir"

	"github.com/ardnew/scenec/geom"
	"github.com/ardnew/scenec/lang"
	"github.com/ardnew/scenec/log"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// kongVar returns the kong variable name, or "" outside a kong context.
func kongVar(ctx context.Context, name string) string {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ""
	}

	return ktx.Model.Vars()[name]
}

// stdout returns the output stream of the kong application.
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

type searchPathKey struct{}

// WithSearchPath returns a new context.Context carrying the directories
// searched for relative scene inputs that do not exist in the working
// directory.
func WithSearchPath(ctx context.Context, dirs []string) context.Context {
	return context.WithValue(ctx, searchPathKey{}, dirs)
}

func searchPathFrom(ctx context.Context) []string {
	dirs, _ := ctx.Value(searchPathKey{}).([]string)

	return dirs
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// Source is the scene input shared by all commands that compile a scene.
type Source struct {
	Input      string `arg:"" default:"-" help:"Scene file or '-' for stdin." name:"input"`
	Instancing int    `default:"0" help:"Maximum instance levels: 0 is unbounded, 1 allows no instances, 2 lets the world use instances, and so on."`
}

// locate resolves the input to a readable file path. Relative paths missing
// from the working directory are looked up on the search path.
func (s Source) locate(ctx context.Context) (string, error) {
	if s.Input == stdinSource {
		return stdinSource, nil
	}

	path, err := homedir.Expand(s.Input)
	if err != nil {
		return "", ErrReadInput.With(slog.String("input", s.Input)).Wrap(err)
	}

	if _, err := os.Stat(path); err == nil || filepath.IsAbs(path) {
		if err != nil {
			return "", ErrReadInput.With(slog.String("input", path)).Wrap(err)
		}

		return path, nil
	}

	for _, dir := range searchPathFrom(ctx) {
		candidate := filepath.Join(dir, path)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			log.TraceContext(ctx, "input found on search path",
				slog.String("input", s.Input),
				slog.String("path", candidate),
			)

			return candidate, nil
		}
	}

	return "", ErrReadInput.
		With(slog.String("input", s.Input)).
		Wrap(fs.ErrNotExist)
}

// scene is a compiled input.
type scene struct {
	path     string
	graph    *lang.Graph
	geometry *geom.List
}

// compile locates, decodes, builds, and flattens the input.
func (s Source) compile(ctx context.Context) (*scene, error) {
	if s.Instancing < 0 {
		return nil, ErrInvalidFlag.
			With(slog.Int("instancing", s.Instancing)).
			Wrap(errors.New("instancing must not be negative"))
	}

	path, err := s.locate(ctx)
	if err != nil {
		return nil, err
	}

	var r io.Reader = os.Stdin

	if path != stdinSource {
		f, err := os.Open(path)
		if err != nil {
			return nil, ErrReadInput.With(slog.String("input", path)).Wrap(err)
		}
		defer f.Close()

		r = f
	}

	logger := log.Default().With(slog.String("input", path))

	root, err := lang.Decode(ctx, bufio.NewReader(r))
	if err != nil {
		return nil, err
	}

	graph, err := lang.Build(ctx, root, lang.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	geometry, err := geom.Flatten(ctx, graph,
		geom.WithLogger(logger),
		geom.WithMaxInstancing(s.Instancing),
	)
	if err != nil {
		return nil, err
	}

	logger.DebugContext(ctx, "scene compiled",
		slog.Int("objects", graph.Len()),
		slog.Int("primitives", len(geometry.Prims)),
	)

	return &scene{path: path, graph: graph, geometry: geometry}, nil
}

// selection compiles where and applies it to the geometry of s.
func (s *scene) selection(where string) (*geom.List, error) {
	filter, err := geom.CompileFilter(where)
	if err != nil {
		return nil, ErrInvalidFilter.With(slog.String("where", where)).Wrap(err)
	}

	l, err := geom.Select(s.geometry, filter)
	if err != nil {
		return nil, ErrInvalidFilter.With(slog.String("where", where)).Wrap(err)
	}

	return l, nil
}
