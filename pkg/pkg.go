//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is the semantic version of the scenec module embedded at build
// time. It is printed by the CLI's --version flag.
//
//go:embed VERSION
var Version string

const (
	// Name is the canonical command and module identifier. It appears in help
	// text, environment variable names, and default config paths.
	Name = "scenec"
	// Description is a short summary of the project used in help output.
	Description = "Ray-traceable scene compiler"
)

// SemVer parses the embedded [Version].
func SemVer() (*semver.Version, error) {
	v, err := semver.StrictNewVersion(strings.TrimSpace(Version))
	if err != nil {
		return nil, ErrVersion.Wrap(err)
	}

	return v, nil
}

// Release returns [Name] and the normalized [SemVer], as printed by
// --version and stamped in generated files.
func Release() (string, error) {
	v, err := SemVer()
	if err != nil {
		return "", err
	}

	return Name + " " + v.String(), nil
}

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project.
//
//nolint:gochecknoglobals
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
