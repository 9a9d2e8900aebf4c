// Package cmd implements the scenec subcommands.
//
// Each command is a kong command struct whose Run method receives the
// context built by package cli. Scene input is compiled in three stages
// (decode, build, flatten) before a command renders or exports it.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file, without extension.
	ConfigIdentifier = "config"
)
