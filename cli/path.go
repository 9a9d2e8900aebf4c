package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/mung"

	"github.com/ardnew/scenec/pkg"
)

const (
	// baseConfig is the base name of the configuration file.
	baseConfig = "config"
	// baseScenes is the configuration subdirectory searched for scene inputs.
	baseScenes = "scenes"
)

// defaultDirMode is the permission mode for created directories.
var defaultDirMode os.FileMode = 0o700

// configPath joins the configuration directory with elem.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}

// pathEnv names the environment variable holding extra scene directories.
func pathEnv() string {
	return strings.ToUpper(pkg.Prefix()) + "_PATH"
}

// searchPath returns the existing directories searched for scene inputs, in
// order: extra (from the command line), then the path environment variable,
// then the scenes directory under the configuration directory.
func searchPath(extra []string) []string {
	subject := strings.Join(
		[]string{os.Getenv(pathEnv()), configPath(baseScenes)},
		string(os.PathListSeparator),
	)

	joined := mung.Make(
		mung.WithSubjectItems(subject),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(extra...),
		mung.WithFilter(isDir),
	).String()

	var dirs []string

	for _, dir := range filepath.SplitList(joined) {
		if isDir(dir) {
			dirs = append(dirs, dir)
		}
	}

	return dirs
}

func isDir(path string) bool {
	if path == "" {
		return false
	}

	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}
