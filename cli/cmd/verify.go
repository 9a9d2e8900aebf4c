package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/scenec/log"
)

// Verify compiles a scene and reports what it contains without writing any
// output files.
type Verify struct {
	Source `embed:""`
}

// Run executes the verify command.
func (v *Verify) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	s, err := v.compile(ctx)
	if err != nil {
		return err
	}

	stats := s.geometry.Stats()

	if len(s.geometry.Prims) == 0 {
		log.WarnContext(ctx, "scene has no primitives", slog.String("input", s.path))
	}

	_, err = fmt.Fprintf(stdout(ctx),
		"%s: ok (%d objects, %d strips, %d triangles, %d rays, %d points, %d procedurals)\n",
		s.path, s.graph.Len(), stats.Strips, stats.Triangles, stats.Rays, stats.Points, stats.Procedurals,
	)

	return err
}
