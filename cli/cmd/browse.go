package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/scenec/cli/cmd/browse"
	"github.com/ardnew/scenec/log"
)

// Browse opens an interactive fuzzy finder over the flattened primitives of
// a scene.
type Browse struct {
	Source `embed:""`

	Where string `help:"Expression selecting the primitives to browse." short:"w"`
}

// Run executes the browse command.
func (b *Browse) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	s, err := b.compile(ctx)
	if err != nil {
		return err
	}

	l, err := s.selection(b.Where)
	if err != nil {
		return err
	}

	logger := log.With(slog.String("component", "browse"))

	return browse.Run(ctx, l, kongVar(ctx, CacheIdentifier), logger)
}
