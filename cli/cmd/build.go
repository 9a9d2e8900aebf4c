package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/sync/errgroup"

	"github.com/ardnew/scenec/export"
	"github.com/ardnew/scenec/geom"
	"github.com/ardnew/scenec/log"
	"github.com/ardnew/scenec/pkg"
)

// watchDelay is how long the input must stay unchanged before a rebuild.
const watchDelay = 100 * time.Millisecond

// Build compiles a scene and writes it in one or more output formats.
type Build struct {
	Source `embed:""`

	Out         []string `help:"Output file, format deduced from extension (repeatable)."  placeholder:"FILE" short:"o"`
	Format      string   `default:""     enum:",bvh,obj"                                 help:"Output format, overriding deduction."     short:"F"`
	BvhEncoding string   `default:"json" enum:"json,yaml"                                help:"Encoding of bvh output without an extension to deduce from." name:"bvh-encoding"`
	BoxSize     int      `default:"0"    help:"Maximum children per bvh box (0 puts all triangles under one box)."`
	Indent      int      `default:"2"    help:"Indent width of bvh output (0 writes compact output)."`
	Mtl         string   `help:"Write obj materials to this file and reference it with mtllib." placeholder:"FILE"`
	Where       string   `help:"Expression selecting the primitives to export." short:"w"`
	Raw         bool     `help:"Leave bvh boxes out of obj outputs. Not allowed with bvh outputs."`
	Watch       bool     `help:"Rebuild whenever the input changes."`
}

// output is one requested export. An empty path is stdout.
type output struct {
	path   string
	target export.Target
}

// document is an output rendered in memory, with its material library when
// written separately.
type document struct {
	output

	data []byte
	mtl  []byte
}

// Run executes the build command.
func (b *Build) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	outs, err := b.outputs()
	if err != nil {
		return err
	}

	if !b.Watch {
		return b.build(ctx, outs)
	}

	return b.watch(ctx, outs)
}

// outputs resolves the target of every requested output and checks the
// flags that apply to them.
func (b *Build) outputs() ([]output, error) {
	if err := export.CheckBoxSize(b.BoxSize); err != nil {
		return nil, ErrInvalidFlag.With(slog.Int("box-size", b.BoxSize)).Wrap(err)
	}

	var forced *export.Target

	if b.Format != "" {
		f, err := export.ParseFormat(b.Format)
		if err != nil {
			return nil, ErrInvalidFlag.With(slog.String("format", b.Format)).Wrap(err)
		}

		t := export.Target{Format: f}

		if f == export.FormatBvh {
			t.Encoding, err = export.ParseEncoding(b.BvhEncoding)
			if err != nil {
				return nil, ErrInvalidFlag.
					With(slog.String("bvh-encoding", b.BvhEncoding)).
					Wrap(err)
			}
		}

		forced = &t
	}

	if len(b.Out) == 0 {
		if forced == nil {
			return nil, ErrDeduceFormat
		}

		if err := b.checkRaw(forced.Format); err != nil {
			return nil, err
		}

		return []output{{target: *forced}}, nil
	}

	outs := make([]output, 0, len(b.Out))
	objs := 0

	for _, name := range b.Out {
		path, err := homedir.Expand(name)
		if err != nil {
			return nil, ErrWriteOutput.With(slog.String("output", name)).Wrap(err)
		}

		var t export.Target

		switch {
		case forced != nil && forced.Format == export.FormatBvh:
			// The extension may still pick the encoding.
			t = *forced
			if d, err := export.Deduce(path); err == nil && d.Format == export.FormatBvh {
				t = d
			}

		case forced != nil:
			t = *forced

		default:
			t, err = export.Deduce(path)
			if err != nil {
				return nil, ErrDeduceFormat.With(slog.String("output", path)).Wrap(err)
			}
		}

		if t.Format == export.FormatObj {
			objs++
		}

		if err := b.checkRaw(t.Format); err != nil {
			return nil, err
		}

		outs = append(outs, output{path: path, target: t})
	}

	if b.Mtl != "" && objs > 1 {
		return nil, ErrInvalidFlag.
			With(slog.String("mtl", b.Mtl), slog.Int("obj_outputs", objs)).
			Wrap(errors.New("a material file serves a single obj output"))
	}

	return outs, nil
}

func (b *Build) checkRaw(f export.Format) error {
	if b.Raw && f == export.FormatBvh {
		return ErrInvalidFlag.
			With(slog.Bool("raw", true)).
			Wrap(errors.New("bvh output always has boxes"))
	}

	return nil
}

// build compiles the input once and renders every output concurrently.
// Files are written only after every output rendered, so a failed build
// leaves existing outputs untouched.
func (b *Build) build(ctx context.Context, outs []output) error {
	s, err := b.compile(ctx)
	if err != nil {
		return err
	}

	l, err := s.selection(b.Where)
	if err != nil {
		return err
	}

	docs := make([]document, len(outs))

	g, gctx := errgroup.WithContext(ctx)

	for i, o := range outs {
		g.Go(func() error {
			d, err := b.render(gctx, s, l, o)
			if err != nil {
				return err
			}

			docs[i] = d

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for _, d := range docs {
		if err := b.write(ctx, d); err != nil {
			return err
		}
	}

	return nil
}

// render exports l for a single output.
func (b *Build) render(ctx context.Context, s *scene, l *geom.List, o output) (document, error) {
	var (
		d   = document{output: o}
		buf bytes.Buffer
		err error
	)

	switch o.target.Format {
	case export.FormatBvh:
		err = b.renderBvh(ctx, &buf, l, o.target.Encoding)
	case export.FormatObj:
		d.mtl, err = b.renderObj(&buf, s, l)
	default:
		err = export.ErrUnknownFormat
	}

	if err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			return d, err
		}

		return d, ErrWriteOutput.With(slog.String("output", o.path)).Wrap(err)
	}

	d.data = buf.Bytes()

	return d, nil
}

// write stores a rendered output.
func (b *Build) write(ctx context.Context, d document) error {
	logger := log.With(
		slog.String("output", d.path),
		slog.String("target", d.target.String()),
	)

	if d.path == "" {
		if _, err := stdout(ctx).Write(d.data); err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	} else if err := os.WriteFile(d.path, d.data, 0o666); err != nil {
		return ErrWriteOutput.With(slog.String("output", d.path)).Wrap(err)
	}

	if d.mtl != nil {
		path, err := homedir.Expand(b.Mtl)
		if err == nil {
			err = os.WriteFile(path, d.mtl, 0o666)
		}

		if err != nil {
			return ErrWriteOutput.With(slog.String("mtl", b.Mtl)).Wrap(err)
		}
	}

	logger.InfoContext(ctx, "scene exported")

	return nil
}

func (b *Build) renderBvh(ctx context.Context, w io.Writer, l *geom.List, enc export.Encoding) error {
	bvh, err := export.NewBvh(l, b.BoxSize)
	if err != nil {
		return ErrInvalidFlag.With(slog.Int("box-size", b.BoxSize)).Wrap(err)
	}

	bvh.Indent = b.Indent

	return bvh.Encode(ctx, w, enc)
}

// renderObj writes the obj output to w and returns the material library
// when it goes to its own file.
func (b *Build) renderObj(w io.Writer, s *scene, l *geom.List) ([]byte, error) {
	release, err := pkg.Release()
	if err != nil {
		return nil, err
	}

	obj := export.Obj{
		Header:  []string{"generated by " + release, "source: " + s.path},
		Boxes:   !b.Raw,
		BoxSize: b.BoxSize,
	}

	var mtl *bytes.Buffer

	if b.Mtl != "" {
		mtl = new(bytes.Buffer)
		obj.Materials = mtl
		obj.MaterialLib = filepath.Base(b.Mtl)
	}

	if err := obj.Encode(w, l); err != nil {
		return nil, err
	}

	if mtl == nil {
		return nil, nil
	}

	return mtl.Bytes(), nil
}

// watch builds once, then rebuilds whenever the input file changes until ctx
// is cancelled. Build failures are logged and do not stop watching.
func (b *Build) watch(ctx context.Context, outs []output) error {
	path, err := b.locate(ctx)
	if err != nil {
		return err
	}

	if path == stdinSource {
		return ErrInvalidFlag.
			With(slog.Bool("watch", true)).
			Wrap(errors.New("cannot watch stdin"))
	}

	path, err = filepath.Abs(path)
	if err != nil {
		return ErrReadInput.With(slog.String("input", path)).Wrap(err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Editors often replace the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return ErrReadInput.With(slog.String("input", path)).Wrap(err)
	}

	rebuild := func() {
		if err := b.build(ctx, outs); err != nil {
			log.ErrorContext(ctx, "build failed", slog.Any("error", err))
		}
	}

	rebuild()

	timer := time.NewTimer(watchDelay)
	timer.Stop()

	log.InfoContext(ctx, "watching input", slog.String("input", path))

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(ev.Name) != path ||
				!ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}

			log.TraceContext(ctx, "input changed", slog.String("op", ev.Op.String()))
			timer.Reset(watchDelay)

		case <-timer.C:
			rebuild()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			log.WarnContext(ctx, "watch error", slog.Any("error", err))
		}
	}
}
