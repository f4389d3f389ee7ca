package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"StockDesk/internal/model"
	"StockDesk/internal/valuation"
)

// addCmd records a purchase, merging into an existing holding.
type addCmd struct {
	exchange string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add a purchase lot to the portfolio" }
func (*addCmd) Usage() string {
	return `stockdesk add [-e NSE|BSE] <symbol> <qty> <price>

  Adds qty shares bought at price. An existing holding is merged using the
  weighted-average price.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.exchange, "e", "NSE", "exchange the symbol is listed on")
}

func (c *addCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 3 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	qty, err := strconv.ParseInt(f.Arg(1), 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing qty %q: %v\n", f.Arg(1), err)
		return subcommands.ExitUsageError
	}
	price, err := decimal.NewFromString(f.Arg(2))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing price %q: %v\n", f.Arg(2), err)
		return subcommands.ExitUsageError
	}
	ex, ok := model.ParseExchange(c.exchange)
	if !ok {
		fmt.Fprintf(os.Stderr, "warning: unknown exchange %q, using NSE\n", c.exchange)
	}

	a, err := openApp()
	if err != nil {
		return fail("opening portfolio", err)
	}
	h, err := a.ledger.AddOrUpdate(f.Arg(0), ex, qty, price)
	if err != nil {
		return fail("adding holding", err)
	}
	fmt.Printf("%s: %d @ %s (%s)\n", h.Symbol, h.Quantity, model.FormatMoney(h.AveragePrice), h.Exchange)
	return subcommands.ExitSuccess
}

type removeCmd struct{}

func (*removeCmd) Name() string     { return "remove" }
func (*removeCmd) Synopsis() string { return "remove a holding from the portfolio" }
func (*removeCmd) Usage() string {
	return `stockdesk remove <symbol>
`
}
func (*removeCmd) SetFlags(*flag.FlagSet) {}

func (*removeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	a, err := openApp()
	if err != nil {
		return fail("opening portfolio", err)
	}
	removed, err := a.ledger.Remove(f.Arg(0))
	if err != nil {
		return fail("removing holding", err)
	}
	if !removed {
		fmt.Printf("%s is not in the portfolio\n", f.Arg(0))
		return subcommands.ExitSuccess
	}
	fmt.Printf("removed %s\n", f.Arg(0))
	return subcommands.ExitSuccess
}

type listCmd struct {
	json bool
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list holdings without prices" }
func (*listCmd) Usage() string {
	return `stockdesk list [-json]
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "print JSON instead of a table")
}

func (c *listCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		return fail("opening portfolio", err)
	}
	holdings := a.ledger.List()
	if c.json {
		return printJSON(holdings)
	}
	if len(holdings) == 0 {
		fmt.Println("No holdings present.")
		return subcommands.ExitSuccess
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "STOCK\tEXCH\tQTY\tAVG PRICE\tINVESTED\t")
	for _, h := range holdings {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t\n", h.Symbol, h.Exchange, h.Quantity,
			model.FormatMoney(h.AveragePrice), model.FormatMoney(h.Invested()))
	}
	tw.Flush()
	return subcommands.ExitSuccess
}

// importCmd loads holdings from a JSON file in the ledger's own format.
type importCmd struct {
	merge bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import holdings from a JSON file" }
func (*importCmd) Usage() string {
	return `stockdesk import [-merge] <file.json>

  The file is a JSON array of {"stock", "qty", "avg_price", "exchange"}.
  Without -merge the portfolio is replaced. Duplicate symbols are merged
  using the weighted-average price.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.merge, "merge", false, "merge into the existing holdings instead of replacing them")
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	data, err := os.ReadFile(f.Arg(0))
	if err != nil {
		return fail("reading import file", err)
	}
	var incoming []model.Holding
	if err := json.Unmarshal(data, &incoming); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing %s: %v\n", f.Arg(0), err)
		return subcommands.ExitUsageError
	}

	a, err := openApp()
	if err != nil {
		return fail("opening portfolio", err)
	}
	if c.merge {
		incoming = append(a.ledger.List(), incoming...)
	}
	if err := a.ledger.Replace(incoming); err != nil {
		return fail("importing holdings", err)
	}
	fmt.Printf("imported %d rows, portfolio has %d holdings\n", len(incoming), len(a.ledger.List()))
	return subcommands.ExitSuccess
}

// exportCmd writes holdings as JSON or live valuations as CSV.
type exportCmd struct {
	format string
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export holdings (json) or valuations (csv)" }
func (*exportCmd) Usage() string {
	return `stockdesk export [-format json|csv] [-o file]
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", "json", "json for holdings, csv for current valuations")
	f.StringVar(&c.output, "o", "", "output file (default stdout)")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.format != "json" && c.format != "csv" {
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", c.format)
		return subcommands.ExitUsageError
	}
	a, err := openApp()
	if err != nil {
		return fail("opening portfolio", err)
	}

	out := os.Stdout
	if c.output != "" {
		file, err := os.Create(c.output)
		if err != nil {
			return fail("creating output", err)
		}
		defer file.Close()
		out = file
	}

	if c.format == "csv" {
		report := valuation.Value(ctx, a.ledger, a.cache)
		if err := valuation.WriteCSV(out, report.Rows); err != nil {
			return fail("writing csv", err)
		}
		return subcommands.ExitSuccess
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "    ")
	if err := enc.Encode(a.ledger.List()); err != nil {
		return fail("writing json", err)
	}
	return subcommands.ExitSuccess
}

// clearCmd empties the portfolio or, with -watchlist, the watchlist.
type clearCmd struct {
	watchlist bool
}

func (*clearCmd) Name() string     { return "clear" }
func (*clearCmd) Synopsis() string { return "remove every holding or watchlist entry" }
func (*clearCmd) Usage() string {
	return `stockdesk clear [-watchlist]
`
}

func (c *clearCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.watchlist, "watchlist", false, "clear the watchlist instead of the portfolio")
}

func (c *clearCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	a, err := openApp()
	if err != nil {
		return fail("opening portfolio", err)
	}
	if c.watchlist {
		if err := a.watchlist.Clear(); err != nil {
			return fail("clearing watchlist", err)
		}
		fmt.Println("watchlist cleared")
		return subcommands.ExitSuccess
	}
	if err := a.ledger.Clear(); err != nil {
		return fail("clearing portfolio", err)
	}
	fmt.Println("portfolio cleared")
	return subcommands.ExitSuccess
}
