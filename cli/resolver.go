package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/ardnew/scenec/log"
)

// decoder unmarshals a configuration document into v.
type decoder func(data []byte, v any) error

func decodeYAML(data []byte, v any) error { return yaml.Unmarshal(data, v) }

func decodeTOML(data []byte, v any) error { return toml.Unmarshal(data, v) }

// resolve returns a [kong.ConfigurationLoader] for documents decoded by dec.
//
// Keys name flags without the leading dashes. Nested tables join their keys
// with a hyphen, so these YAML documents are equivalent:
//
//	log-level: debug
//
//	log:
//	  level: debug
//
// Underscores in keys match hyphens in flag names. A document that fails to
// decode is reported and ignored. Command-line flags override config values.
func resolve(name string, dec decoder) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}

		var doc map[string]any
		if err := dec(data, &doc); err != nil {
			log.Warn("ignoring invalid configuration",
				slog.String("file", name),
				slog.String("error", err.Error()),
			)

			return config{}, nil
		}

		c := config{}
		c.flatten("", doc)

		return c, nil
	}
}

// config implements [kong.Resolver] over a flattened configuration document.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if v, ok := c[configKey(flag.Name)]; ok {
		return v, nil
	}

	return nil, nil //nolint:nilnil
}

func configKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", "-"))
}

func (c config) flatten(prefix string, m map[string]any) {
	for k, v := range m {
		key := configKey(k)
		if prefix != "" {
			key = prefix + "-" + key
		}

		if sub, ok := v.(map[string]any); ok {
			c.flatten(key, sub)

			continue
		}

		c[key] = flagText(v)
	}
}

// flagText converts a decoded value to the form kong parses from the
// command line. Booleans are kept, numbers become strings, and sequences
// become comma-separated lists.
func flagText(v any) any {
	switch t := v.(type) {
	case nil, bool, string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			items = append(items, fmt.Sprint(flagText(item)))
		}

		return strings.Join(items, ",")
	default:
		return fmt.Sprint(t)
	}
}
