package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&addCmd{}, "holdings")
	commander.Register(&removeCmd{}, "holdings")
	commander.Register(&listCmd{}, "holdings")
	commander.Register(&importCmd{}, "holdings")
	commander.Register(&exportCmd{}, "holdings")
	commander.Register(&clearCmd{}, "holdings")

	commander.Register(&valueCmd{}, "valuation")
	commander.Register(&seriesCmd{}, "valuation")
	commander.Register(&inspectCmd{}, "valuation")
	commander.Register(&quoteCmd{}, "valuation")

	commander.Register(&watchCmd{}, "watchlist")
	commander.Register(&unwatchCmd{}, "watchlist")
	commander.Register(&watchlistCmd{}, "watchlist")

	commander.Register(&serveCmd{}, "daemon")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
