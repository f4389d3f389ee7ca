package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"StockDesk/internal/model"
	"StockDesk/internal/symbol"
)

type watchCmd struct {
	exchange string
	alert    string
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "add or update a watchlist entry" }
func (*watchCmd) Usage() string {
	return `stockdesk watch [-e NSE|BSE] [-alert price] <symbol>

  The daemon notifies once per trading day when the price crosses -alert.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.exchange, "e", "NSE", "exchange the symbol is listed on")
	f.StringVar(&c.alert, "alert", "", "alert price")
}

func (c *watchCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	var alert decimal.NullDecimal
	if c.alert != "" {
		p, err := decimal.NewFromString(c.alert)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing alert %q: %v\n", c.alert, err)
			return subcommands.ExitUsageError
		}
		alert = decimal.NewNullDecimal(p)
	}
	ex, _ := model.ParseExchange(c.exchange)

	a, err := openApp()
	if err != nil {
		return fail("opening watchlist", err)
	}
	item, err := a.watchlist.Add(f.Arg(0), ex, alert)
	if err != nil {
		return fail("adding watch item", err)
	}
	fmt.Printf("watching %s (%s) alert %s\n", item.Symbol, item.Exchange, nullMoney(item.AlertPrice))
	return subcommands.ExitSuccess
}

type unwatchCmd struct{}

func (*unwatchCmd) Name() string     { return "unwatch" }
func (*unwatchCmd) Synopsis() string { return "remove a watchlist entry" }
func (*unwatchCmd) Usage() string {
	return `stockdesk unwatch <symbol>
`
}
func (*unwatchCmd) SetFlags(*flag.FlagSet) {}

func (*unwatchCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	a, err := openApp()
	if err != nil {
		return fail("opening watchlist", err)
	}
	removed, err := a.watchlist.Remove(f.Arg(0))
	if err != nil {
		return fail("removing watch item", err)
	}
	if !removed {
		fmt.Printf("%s is not on the watchlist\n", f.Arg(0))
	}
	return subcommands.ExitSuccess
}

type watchlistCmd struct {
	json bool
}

func (*watchlistCmd) Name() string     { return "watchlist" }
func (*watchlistCmd) Synopsis() string { return "show watched symbols with current prices" }
func (*watchlistCmd) Usage() string {
	return `stockdesk watchlist [-json]
`
}

func (c *watchlistCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "print JSON of the stored entries")
}

func (c *watchlistCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		return fail("opening watchlist", err)
	}
	items := a.watchlist.List()
	if c.json {
		return printJSON(items)
	}
	if len(items) == 0 {
		fmt.Println("Watchlist is empty.")
		return subcommands.ExitSuccess
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "STOCK\tEXCH\tPRICE\tPREV\tALERT\t")
	for _, it := range items {
		q := a.cache.GetQuote(ctx, symbol.Normalize(it.Symbol, it.Exchange))
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", it.Symbol, it.Exchange,
			nullMoney(q.Price), nullMoney(q.PreviousClose), nullMoney(it.AlertPrice))
	}
	tw.Flush()
	return subcommands.ExitSuccess
}
