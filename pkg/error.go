package pkg

import (
	"fmt"
	"strings"
)

// Error is a chain of errors, innermost first.
type Error []error

// ErrVersion is returned when the embedded version is not a valid semantic
// version.
var ErrVersion = MakeErrorf("invalid version")

// MakeError constructs an Error from the given errors, flattening any chains
// they carry. The first argument is the innermost error.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		if err != nil {
			e = append(e, UnwrapErrors(err)...)
		}
	}

	return e
}

// MakeErrorf constructs an Error from a formatted message.
func MakeErrorf(format string, args ...any) Error {
	return MakeError(fmt.Errorf(format, args...))
}

// Error joins the chain outermost first, separated by ": ".
func (e Error) Error() string {
	var sb strings.Builder

	for i := len(e) - 1; i >= 0; i-- {
		sb.WriteString(e[i].Error())

		if i > 0 {
			sb.WriteString(": ")
		}
	}

	return sb.String()
}

// Wrap returns a copy of e with err appended as the new innermost cause.
func (e Error) Wrap(err ...error) Error {
	chain := make(Error, 0, len(e)+len(err))
	for _, x := range err {
		if x != nil {
			chain = append(chain, x)
		}
	}

	return append(chain, e...)
}

// Is reports whether target is a chain whose outermost error is part of e.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok || len(t) == 0 {
		return false
	}

	outer := t[len(t)-1]

	for _, x := range e {
		if _, chain := x.(Error); !chain && x == outer {
			return true
		}
	}

	return false
}

// Unwrap returns the errors of the chain.
func (e Error) Unwrap() []error {
	return e
}

// UnwrapErrors flattens the wrap tree of err, innermost first.
func UnwrapErrors(err error) Error {
	if err == nil {
		return nil
	}

	var chain Error

	switch e := err.(type) {
	case interface{ Unwrap() []error }:
		for _, wrapped := range e.Unwrap() {
			chain = append(chain, UnwrapErrors(wrapped)...)
		}
	case interface{ Unwrap() error }:
		chain = append(chain, UnwrapErrors(e.Unwrap())...)
	}

	return append(chain, err)
}
