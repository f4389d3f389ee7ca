package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"StockDesk/internal/model"
	"StockDesk/internal/symbol"
	"StockDesk/internal/valuation"
)

type valueCmd struct {
	json bool
}

func (*valueCmd) Name() string     { return "value" }
func (*valueCmd) Synopsis() string { return "value the portfolio at current prices" }
func (*valueCmd) Usage() string {
	return `stockdesk value [-json]

  Prints one row per holding, sorted by market value, followed by totals.
`
}

func (c *valueCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "print JSON instead of a table")
}

func (c *valueCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		return fail("opening portfolio", err)
	}
	report := valuation.Value(ctx, a.ledger, a.cache)
	if c.json {
		return printJSON(report)
	}
	if len(report.Rows) == 0 {
		fmt.Println("No holdings present.")
		return subcommands.ExitSuccess
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "STOCK\tQTY\tAVG\tPRICE\tINVESTED\tVALUE\tP&L\tP&L %\tWEIGHT\t")
	for _, r := range report.Rows {
		price := "n/a"
		if r.Price.Valid {
			price = model.FormatMoney(r.Price.Decimal)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s%%\t%s%%\t\n",
			r.Symbol, r.Quantity, model.FormatMoney(r.AveragePrice), price,
			model.FormatMoney(r.Invested), model.FormatMoney(r.MarketValue),
			model.FormatSignedMoney(r.UnrealizedPL), r.PLPct.StringFixed(2), r.Weight.StringFixed(2))
	}
	t := report.Totals
	fmt.Fprintf(tw, "TOTAL\t\t\t\t%s\t%s\t%s\t%s%%\t\t\n",
		model.FormatMoney(t.Invested), model.FormatMoney(t.MarketValue),
		model.FormatSignedMoney(t.PL), t.PLPct.StringFixed(2))
	tw.Flush()

	if t.Incomplete {
		fmt.Printf("\nwarning: %d of %d holdings have no price; totals are incomplete\n", t.Unpriced, t.Holdings)
	}
	return subcommands.ExitSuccess
}

type seriesCmd struct {
	days int
	json bool
}

func (*seriesCmd) Name() string     { return "series" }
func (*seriesCmd) Synopsis() string { return "portfolio value per day over a trailing window" }
func (*seriesCmd) Usage() string {
	return `stockdesk series [-days N] [-json]
`
}

func (c *seriesCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.days, "days", 0, "window length in days (default valuation.series_days)")
	f.BoolVar(&c.json, "json", false, "print JSON instead of a table")
}

func (c *seriesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		return fail("opening portfolio", err)
	}
	days := c.days
	if days == 0 {
		days = a.cfg.Valuation.SeriesDays
	}
	series, err := a.series.Series(ctx, a.ledger, days)
	if errors.Is(err, model.ErrInsufficientData) {
		fmt.Println("Not enough historical data to plot performance.")
		return subcommands.ExitSuccess
	}
	if err != nil {
		return fail("building series", err)
	}
	if c.json {
		return printJSON(series)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "DATE\tVALUE\t")
	for _, p := range series.Points {
		fmt.Fprintf(tw, "%s\t%s\t\n", p.Date.Format("2006-01-02"), model.FormatMoney(p.Value))
	}
	tw.Flush()
	return subcommands.ExitSuccess
}

type inspectCmd struct {
	json bool
}

func (*inspectCmd) Name() string     { return "inspect" }
func (*inspectCmd) Synopsis() string { return "show one holding with its trailing statistics" }
func (*inspectCmd) Usage() string {
	return `stockdesk inspect [-json] <symbol>
`
}

func (c *inspectCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "print JSON including the full history")
}

func (c *inspectCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	a, err := openApp()
	if err != nil {
		return fail("opening portfolio", err)
	}
	h, ok := a.ledger.Get(f.Arg(0))
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: %s is not in the portfolio\n", symbol.UserForm(f.Arg(0)))
		return subcommands.ExitFailure
	}
	in := valuation.Inspect(ctx, h, a.cache, a.cache)
	if c.json {
		return printJSON(in)
	}

	v := in.Valuation
	fmt.Printf("%s (%s) %d @ %s\n", v.Symbol, v.ProviderSymbol, v.Quantity, model.FormatMoney(v.AveragePrice))
	fmt.Printf("  price:       %s\n", nullMoney(v.Price))
	fmt.Printf("  value:       %s (%s, %s%%)\n", model.FormatMoney(v.MarketValue),
		model.FormatSignedMoney(v.UnrealizedPL), v.PLPct.StringFixed(2))
	fmt.Printf("  52w range:   %s to %s\n", nullMoney(in.Low52w), nullMoney(in.High52w))
	fmt.Printf("  30d range:   %s to %s\n", nullMoney(in.Low30d), nullMoney(in.High30d))
	fmt.Printf("  SMA50:       %s\n", nullMoney(in.SMA50))
	fmt.Printf("  RSI14:       %s\n", nullNumber(in.RSI14))
	fmt.Printf("  52w pos:     %s\n", nullNumber(in.Position52w))
	fmt.Printf("  history:     %d closes\n", len(in.History))
	return subcommands.ExitSuccess
}

type quoteCmd struct {
	exchange string
}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "fetch the latest quote for a symbol" }
func (*quoteCmd) Usage() string {
	return `stockdesk quote [-e NSE|BSE] <symbol>
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.exchange, "e", "NSE", "exchange the symbol is listed on")
}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	a, err := openApp()
	if err != nil {
		return fail("opening portfolio", err)
	}
	sym := symbol.NormalizeHint(f.Arg(0), c.exchange)
	q := a.cache.GetQuote(ctx, sym)
	if !q.Available() {
		fmt.Printf("%s: price unavailable\n", sym)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s: %s (prev close %s, as of %s)\n", sym, model.FormatMoney(q.Price.Decimal),
		nullMoney(q.PreviousClose), q.AsOf.Format("2006-01-02"))
	return subcommands.ExitSuccess
}

func nullMoney(d decimal.NullDecimal) string {
	if !d.Valid {
		return "n/a"
	}
	return model.FormatMoney(d.Decimal)
}

func nullNumber(d decimal.NullDecimal) string {
	if !d.Valid {
		return "n/a"
	}
	return d.Decimal.String()
}
