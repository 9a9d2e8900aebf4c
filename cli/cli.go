package cli

import (
	"context"
	"log/slog"

	"github.com/alecthomas/kong"

	"github.com/ardnew/scenec/cli/cmd"
	"github.com/ardnew/scenec/log"
	"github.com/ardnew/scenec/pkg"
)

// CLI is the top-level command-line interface for scenec.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Path    []string         `help:"Extra directories searched for scene inputs." placeholder:"DIR" short:"I" type:"path"`
	Version kong.VersionFlag `help:"Print version and exit."                     short:"V"`

	Verify  cmd.Verify  `cmd:"" default:"withargs" help:"Check that a scene compiles."`
	Build   cmd.Build   `cmd:""                    help:"Compile a scene to BVH and OBJ outputs."`
	Inspect cmd.Inspect `cmd:""                    help:"List the flattened primitives of a scene."`
	Browse  cmd.Browse  `cmd:""                    help:"Browse the primitives of a scene interactively."`
	Init    cmd.Init    `cmd:""                    help:"Write the current flags to a configuration file."`
}

// Run executes the scenec CLI with the given context and arguments.
// The exit function is called by kong for --help and --version.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	release, err := pkg.Release()
	if err != nil {
		return err
	}

	base := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: base,
		cmd.CacheIdentifier:  pkg.CacheDir(),
		"version":            release,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, base+".json"),
		kong.Configuration(resolve(base+".yaml", decodeYAML), base+".yaml", base+".yml"),
		kong.Configuration(resolve(base+".toml", decodeTOML), base+".toml"),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithSearchPath(ctx, searchPath(cli.Path))

	defer cli.Log.start(ctx)()

	// No-op unless built with tag pprof and a mode is selected.
	defer cli.Pprof.start(ctx)()

	log.TraceContext(ctx, "run",
		slog.String("command", ktx.Command()),
	)

	return ktx.Run(&cli)
}
