package geom

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/scenec/lang"
)

// allocator assigns primitive indices to strips, rays and procedural boxes,
// which share one index space.
//
// Explicit indices are kept as given. Two different source objects may not
// claim the same one, but instanced copies of a single object may. Every
// other primitive gets the smallest index not yet used, in traversal order,
// never reusing an explicit index.
type allocator struct {
	claims map[uint32]*Meta
	slots  []slot
}

type slot struct {
	meta     *Meta
	explicit *uint32
}

func (a *allocator) add(m *Meta, explicit *uint32) {
	a.slots = append(a.slots, slot{meta: m, explicit: explicit})
}

func (a *allocator) assign() error {
	a.claims = make(map[uint32]*Meta)

	for _, s := range a.slots {
		if s.explicit == nil {
			continue
		}

		idx := *s.explicit
		if prev, ok := a.claims[idx]; ok && prev.Source != s.meta.Source {
			return lang.ErrDuplicatePrimitiveIndex.
				At(path(s.meta.Name)).
				With(
					slog.Uint64(lang.AttrPrimitiveIndex, uint64(idx)),
					slog.String("claimed_by", prev.Name),
				).
				Wrap(fmt.Errorf("primitive index %d is already used by %s", idx, prev.Name))
		}

		a.claims[idx] = s.meta
		s.meta.PrimitiveIndex = idx
	}

	var next uint32

	for _, s := range a.slots {
		if s.explicit != nil {
			continue
		}

		for {
			if _, taken := a.claims[next]; !taken {
				break
			}

			next++
		}

		s.meta.PrimitiveIndex = next
		next++
	}

	return nil
}

func path(name string) []string {
	if name == "" {
		return nil
	}

	return strings.Split(name, ".")
}
