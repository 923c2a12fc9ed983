package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"daytrader-client/internal/trace"
)

var configPath = flag.String("config", "config.yaml", "Path to the YAML configuration file")

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&quoteCmd{}, "market")
	commander.Register(&buyCmd{}, "trade")
	commander.Register(&sellCmd{}, "trade")
	commander.Register(&holdingsCmd{}, "portfolio")
	commander.Register(&ordersCmd{}, "portfolio")
	commander.Register(&accountCmd{}, "portfolio")

	flag.Parse()

	ctx := context.Background()
	status := commander.Execute(ctx)
	_ = trace.Shutdown(ctx)
	os.Exit(int(status))
}
