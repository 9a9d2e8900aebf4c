// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// A [Logger] is created with [Make] and configured with functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("kitchen"),
//		log.WithPretty(true))
//
// The zero [Logger] is valid and discards all messages.
//
// # Levels
//
// Besides the four [slog] levels, [LevelTrace] sits below [LevelDebug] for
// per-object diagnostics of the scene compiler.
//
// # Output Formats
//
// [FormatText] (default) writes logfmt records; with [WithPretty] they are
// colorized using lipgloss styles when the output supports color.
// [FormatJSON] writes one JSON object per line.
//
// # Package Logger
//
// The package-level functions ([Info], [DebugContext], ...) log through a
// shared [Logger] writing to standard error, reconfigured with [Config].
// Functions without a context argument use [DefaultContextProvider].
package log
