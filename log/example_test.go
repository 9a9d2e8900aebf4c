package log_test

import (
	"log/slog"
	"os"

	"github.com/ardnew/scenec/log"
)

func Example() {
	logger := log.Make(os.Stdout, log.WithTimeLayout("none"))
	logger.Info("scene loaded", slog.String("file", "cube.yaml"), slog.Int("objects", 4))
	// Output: level=INFO msg="scene loaded" file=cube.yaml objects=4
}

func Example_json() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatJSON),
		log.WithTimeLayout("none"),
		log.WithLevel(log.LevelDebug),
	).With(slog.String("component", "export"))

	logger.Debug("encoded", slog.String("format", "bvh"))
	// Output: {"level":"DEBUG","msg":"encoded","component":"export","format":"bvh"}
}
