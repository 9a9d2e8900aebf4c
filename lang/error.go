package lang

//go:generate go tool stringer --linecomment --type ErrorKind --output errorkind_string.go

import (
	"errors"
	"log/slog"
	"strings"
)

// ErrorKind classifies a scene compilation failure.
type ErrorKind int

const (
	Unclassified            ErrorKind = iota // unclassified
	MalformedStrip                           // malformed strip
	IncompleteRay                            // incomplete ray
	UnresolvedReference                      // unresolved reference
	TypeMismatch                             // type mismatch
	ReservedIdentifier                       // reserved identifier
	MissingWorldData                         // missing world data
	DuplicatePrimitiveIndex                  // duplicate primitive index
	MaxDepthExceeded                         // maximum depth exceeded
	InvalidDocument                          // invalid document
	InstancingExceeded                       // instancing limit exceeded
)

// Predefined errors (sentinel values). Use [errors.Is] to match the kind of
// any error derived from them.
var (
	ErrMalformedStrip          = newKindError(MalformedStrip)
	ErrIncompleteRay           = newKindError(IncompleteRay)
	ErrUnresolvedReference     = newKindError(UnresolvedReference)
	ErrTypeMismatch            = newKindError(TypeMismatch)
	ErrReservedIdentifier      = newKindError(ReservedIdentifier)
	ErrMissingWorldData        = newKindError(MissingWorldData)
	ErrDuplicatePrimitiveIndex = newKindError(DuplicatePrimitiveIndex)
	ErrMaxDepthExceeded        = newKindError(MaxDepthExceeded)
	ErrInvalidDocument         = newKindError(InvalidDocument)
	ErrInstancingExceeded      = newKindError(InstancingExceeded)
)

// Error represents an error with optional structured logging attributes and
// the object path where it occurred.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error    // Wrapped error (for errors.Unwrap)
	path  []string // Containing object names, outermost first
	attrs []slog.Attr
	kind  ErrorKind
}

// NewError creates a new unclassified Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func newKindError(kind ErrorKind) *Error {
	return &Error{msg: kind.String(), kind: kind}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// "<msg> at <path>: <err>", omitting any part that is unset.
	var sb strings.Builder

	sb.WriteString(e.msg)

	if len(e.path) > 0 {
		if sb.Len() > 0 {
			sb.WriteString(" at ")
		}

		sb.WriteString(e.Path())
	}

	if e.err != nil {
		if sb.Len() > 0 {
			sb.WriteString(": ")
		}

		sb.WriteString(e.err.Error())
	}

	return sb.String()
}

// Kind returns the classification of e.
func (e *Error) Kind() ErrorKind { return e.kind }

// Path returns the dotted object path where e occurred, or "" if unknown.
func (e *Error) Path() string { return strings.Join(e.path, ".") }

// Attrs returns a copy of the structured attributes attached to e.
func (e *Error) Attrs() []slog.Attr { return append([]slog.Attr(nil), e.attrs...) }

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error of the same kind.
// Unclassified errors match only themselves.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	if e.kind == Unclassified || t.kind == Unclassified {
		return e == t
	}

	return e.kind == t.kind
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+3)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if len(e.path) > 0 {
		attrs = append(attrs, slog.String("path", e.Path()))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.err = err

	return &c
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := *e
	c.attrs = make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(c.attrs, e.attrs)
	copy(c.attrs[len(e.attrs):], attrs)

	return &c
}

// At returns a copy of e located at path. A path already set on e is kept,
// since it is nearer to the failure.
func (e *Error) At(path []string) *Error {
	if len(e.path) > 0 || len(path) == 0 {
		return e
	}

	c := *e
	c.path = append([]string(nil), path...)

	return &c
}
