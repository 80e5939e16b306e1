// Command dockged is the multi-tenant compose-stack orchestrator
// server. Its CLI bootstrap follows cmd/sand/main.go's Kong pattern:
// parse flags (with an optional YAML config file), initialize slog,
// then dispatch to the selected command.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	kongyaml "github.com/alecthomas/kong-yaml"
	kongcompletion "github.com/jotaen/kong-completion"

	"github.com/cfilipov/dockge/internal/config"
	"github.com/cfilipov/dockge/internal/logging"
)

// Context carries the parsed configuration into every command's Run
// method, the way cmd/sand/main.go's Context carried the shared
// SandBoxer.
type Context struct {
	Cfg *config.Config
}

type CLI struct {
	config.Config

	ConfigFile string `help:"Path to a YAML config file." type:"path"`

	Serve   ServeCmd   `cmd:"" help:"Start the dockged server."`
	Stacks  StacksCmd  `cmd:"" help:"List compose stacks managed on disk."`
	Doc     DocCmd     `cmd:"" help:"Print complete command help formatted as markdown."`
	Version VersionCmd `cmd:"" help:"Print version information about this binary."`
}

const description = `dockged manages docker compose stacks across one or more hosts,
exposing a terminal multiplexer, a stack lifecycle engine, and an
image-update checker over a single bidirectional event channel.`

func main() {
	var cli CLI

	parser := kong.Must(&cli,
		kong.Description(description),
		kong.Configuration(kongyaml.Loader, "./dockged.yaml", "~/.dockged.yaml"),
		kong.UsageOnError(),
	)
	kongcompletion.Register(parser)

	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if _, lerr := logging.Init(cli.LogFilePath(), cli.LogLevel); lerr != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", lerr)
		os.Exit(1)
	}

	if err := cli.EnsureDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create data directories: %v\n", err)
		os.Exit(1)
	}

	err = kctx.Run(&Context{Cfg: &cli.Config})
	kctx.FatalIfErrorf(err)
}
