// Package cli contains the command line interface for scenec.
//
// # Usage
//
//	scenec [flags] <command> [args]
//
// With no command, the input is verified:
//
//	scenec scene.yaml
//
// # Configuration
//
// Flag defaults are read from the first of these files found in the
// configuration directory (see [pkg.ConfigDir]):
//
//	config.json
//	config.yaml, config.yml
//	config.toml
//
// Keys name flags without their dashes. In YAML and TOML, nested tables
// join with a hyphen and underscores match hyphens, so "log_level",
// "log-level" and a "level" key under "log" all set --log-level. JSON keys
// use underscores ("log_level"). The init command writes the current flags
// in any of these encodings.
//
// # Search path
//
// A relative scene input missing from the working directory is looked up
// in each directory given with -I, then in $SCENEC_PATH, then in the
// "scenes" subdirectory of the configuration directory.
//
// # Logging Options
//
//   - --log-level: trace, debug, info, warn or error
//   - --log-format: text or json
//   - --log-time-layout: a time package constant, a layout, or none
//   - --[no-]log-caller: include caller information
//   - --[no-]log-pretty: colorized text output (default when stderr is a
//     terminal)
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//	scenec --pprof-mode=cpu build scene.yaml -o scene.json
//
// Profiles are written to the pprof subdirectory of the cache directory
// unless --pprof-dir is given.
package cli
