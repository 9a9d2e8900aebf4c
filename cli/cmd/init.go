package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/ardnew/scenec/log"
	"github.com/ardnew/scenec/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init writes the current global flag values to a configuration file.
type Init struct {
	Force bool   `help:"Overwrite existing configuration file" short:"f"`
	As    string `default:"yaml" enum:"yaml,toml,json" help:"Configuration file encoding."`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	base := kongVar(ctx, ConfigIdentifier)
	if base == "" {
		panic("internal error: config path undefined")
	}

	confPath := base + "." + i.As

	// Check if file exists and force not set
	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	data, err := i.encode(i.settings(ctx))
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	err = os.WriteFile(confPath, data, 0o600)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// setting is one configuration key and its value.
type setting struct {
	value any
	key   string
}

// settings collects the set values of the global flags, in declaration
// order.
func (i *Init) settings(ctx context.Context) []setting {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return nil
	}

	prefixIgnore := []string{"help", "version", profile.Tag}

	var out []setting

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if v := flagValue(ktx.FlagValue(flag)); v != nil {
			out = append(out, setting{key: flag.Name, value: v})
		}
	}

	return out
}

// encode renders settings in the chosen encoding.
func (i *Init) encode(settings []setting) ([]byte, error) {
	switch i.As {
	case "toml":
		m := make(map[string]any, len(settings))
		for _, s := range settings {
			m[s.key] = s.value
		}

		return toml.Marshal(m)

	case "json":
		// kong.JSON matches flag names in snake case.
		m := make(map[string]any, len(settings))
		for _, s := range settings {
			m[strings.ReplaceAll(s.key, "-", "_")] = s.value
		}

		data, err := json.MarshalIndent(m, "", strings.Repeat(" ", defaultConfigIndent))
		if err != nil {
			return nil, err
		}

		return append(data, '\n'), nil

	default:
		ms := make(yaml.MapSlice, 0, len(settings))
		for _, s := range settings {
			ms = append(ms, yaml.MapItem{Key: s.key, Value: s.value})
		}

		return yaml.MarshalWithOptions(ms, yaml.Indent(defaultConfigIndent))
	}
}

// flagValue converts a parsed flag value to a plain configuration value, or
// nil if it is empty.
func flagValue(val any) any {
	if val == nil {
		return nil
	}

	rv := reflect.ValueOf(val)

	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()

	case reflect.String:
		if rv.Len() == 0 {
			return nil
		}

		return rv.String()

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()

	case reflect.Float32, reflect.Float64:
		return rv.Float()

	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return nil
		}

		items := make([]any, 0, rv.Len())
		for j := range rv.Len() {
			if v := flagValue(rv.Index(j).Interface()); v != nil {
				items = append(items, v)
			}
		}

		return items

	default:
		return fmt.Sprint(val)
	}
}
