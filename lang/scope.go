package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

// Reserved lists the identifiers that may not name a field or a reference.
var Reserved = []string{"data", "false", "instance", "ray", "strip", "true"}

// IsReserved reports whether name is a reserved identifier.
func IsReserved(name string) bool {
	_, ok := slices.BinarySearch(Reserved, name)

	return ok
}

// Expect is the kind of binding required at a reference site.
type Expect int

const (
	ExpectAny    Expect = iota // any
	ExpectScalar               // scalar
	ExpectVector               // vector
	ExpectObject               // object
)

func (e Expect) String() string {
	return [...]string{"any", "scalar", "vector", "object"}[e]
}

func (e Expect) accepts(b Binding) bool {
	switch e {
	case ExpectScalar:
		return b.Kind == BindNumber || b.Kind == BindBool
	case ExpectVector:
		return b.Kind == BindSequence
	case ExpectObject:
		return b.Kind == BindObject
	default:
		return true
	}
}

type entryState int

const (
	pending entryState = iota
	resolving
	bound
)

type entry struct {
	value   *Value
	binding Binding
	state   entryState
}

// Scope is one level of the lexical scope chain.
// Its enclosing scope is only read, never modified.
type Scope struct {
	names map[string]*entry
	outer *Scope
	label string
	order []string
}

// Label returns the name of the object that opened s.
func (s *Scope) Label() string { return s.label }

// Lookup returns the binding of name in s alone, if it is already bound.
func (s *Scope) Lookup(name string) (Binding, bool) {
	e, ok := s.names[name]
	if !ok || e.state != bound {
		return Binding{}, false
	}

	return e.binding, true
}

// Names returns the names defined in s in declaration order.
func (s *Scope) Names() []string { return slices.Clone(s.order) }

// Evaluator resolves the source value of a pending name into a binding.
// It is invoked by [Resolver.Resolve] with the owning scope on top.
type Evaluator func(name string, value *Value) (Binding, error)

// Resolver maintains the stack of scopes opened while building a scene.
type Resolver struct {
	top  *Scope
	eval Evaluator
}

// NewResolver returns an empty resolver that uses eval to bind names on
// first lookup.
func NewResolver(eval Evaluator) *Resolver {
	return &Resolver{eval: eval}
}

// Top returns the innermost scope, or nil if none is open.
func (r *Resolver) Top() *Scope { return r.top }

// Depth returns the number of open scopes.
func (r *Resolver) Depth() (n int) {
	for s := r.top; s != nil; s = s.outer {
		n++
	}

	return n
}

// Push opens a scope labeled label whose names are the keys of fields.
// Names are registered before any is resolved, so fields of the same scope
// may refer to each other regardless of order.
//
// The returned pop must be called exactly once, after every scope pushed
// above this one has been popped.
func (r *Resolver) Push(label string, fields []*Field) (pop func(), err error) {
	s := &Scope{
		names: make(map[string]*entry, len(fields)),
		outer: r.top,
		label: label,
		order: make([]string, 0, len(fields)),
	}

	for _, f := range fields {
		if IsReserved(f.Key) {
			return nil, ErrReservedIdentifier.
				With(slog.String("field", f.Key)).
				Wrap(fmt.Errorf("%q cannot name a field", f.Key))
		}

		if _, dup := s.names[f.Key]; dup {
			continue // first declaration wins
		}

		s.names[f.Key] = &entry{value: f.Value}
		s.order = append(s.order, f.Key)
	}

	r.top = s

	return func() {
		if r.top != s {
			panic("lang: scope " + s.label + " popped out of order")
		}

		r.top = s.outer
	}, nil
}

// Resolve returns the binding of name in the nearest enclosing scope.
//
// A name still being resolved is skipped, so a field may refer to an
// enclosing definition of its own name. A pending name in an enclosing scope
// (not the top) is not yet defined and fails rather than falling through.
func (r *Resolver) Resolve(name string, expect Expect) (Binding, error) {
	if IsReserved(name) {
		return Binding{}, ErrReservedIdentifier.
			With(slog.String("name", name)).
			Wrap(fmt.Errorf("%q cannot be referenced", name))
	}

	for s := r.top; s != nil; s = s.outer {
		e, ok := s.names[name]
		if !ok || e.state == resolving {
			continue
		}

		if e.state == pending {
			if s != r.top {
				return Binding{}, ErrUnresolvedReference.
					With(slog.String("name", name), slog.String("scope", s.label)).
					Wrap(fmt.Errorf("%q is referenced before it is defined", name))
			}

			if r.eval == nil {
				return Binding{}, ErrUnresolvedReference.
					With(slog.String("name", name)).
					Wrap(errors.New("no evaluator"))
			}

			e.state = resolving

			b, err := r.eval(name, e.value)
			if err != nil {
				e.state = pending

				return Binding{}, err
			}

			e.binding, e.state = b, bound
		}

		if !expect.accepts(e.binding) {
			return Binding{}, ErrTypeMismatch.
				With(
					slog.String("name", name),
					slog.String("expected", expect.String()),
					slog.String("actual", e.binding.Kind.String()),
				).
				Wrap(fmt.Errorf("%q is a %s, expected %s", name, e.binding.Kind, expect))
		}

		return e.binding, nil
	}

	return Binding{}, ErrUnresolvedReference.
		With(slog.String("name", name)).
		Wrap(fmt.Errorf("%q is not defined", name))
}
