package export

//go:generate go tool stringer --linecomment --type Format,Encoding --output format_string.go

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies an output format.
type Format int

const (
	FormatBvh Format = iota // bvh
	FormatObj               // obj
)

// Encoding identifies the serialization of a [FormatBvh] document.
type Encoding int

const (
	EncodingJSON Encoding = iota // json
	EncodingYAML                 // yaml
)

// ErrUnknownFormat is returned for unrecognized format names or file
// extensions.
var ErrUnknownFormat = errors.New("unknown output format")

// Target is a format together with its encoding. Encoding is ignored for
// formats with a single encoding.
type Target struct {
	Format   Format
	Encoding Encoding
}

func (t Target) String() string {
	if t.Format == FormatBvh {
		return t.Format.String() + "/" + t.Encoding.String()
	}

	return t.Format.String()
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bvh":
		return FormatBvh, nil
	case "obj":
		return FormatObj, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ParseEncoding parses a bvh encoding name.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return EncodingJSON, nil
	case "yaml", "yml":
		return EncodingYAML, nil
	default:
		return 0, fmt.Errorf("%w: encoding %q", ErrUnknownFormat, s)
	}
}

// Deduce returns the target implied by the extension of path:
// ".json" is bvh as JSON, ".yaml" and ".yml" are bvh as YAML, and ".obj" is
// obj.
func Deduce(path string) (Target, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return Target{FormatBvh, EncodingJSON}, nil
	case ".yaml", ".yml":
		return Target{FormatBvh, EncodingYAML}, nil
	case ".obj":
		return Target{Format: FormatObj}, nil
	case "":
		return Target{}, fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	default:
		return Target{}, fmt.Errorf("%w: extension %q", ErrUnknownFormat, ext)
	}
}
