package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"StockDesk/internal/model"
	"StockDesk/internal/valuation"
)

const dateLayout = "2006-01-02"

// WatchLine pairs a watch item with its latest quote.
type WatchLine struct {
	Item  model.WatchItem
	Quote model.Quote
}

// FormatValuation formats a portfolio valuation into a Telegram message.
func FormatValuation(r valuation.Report, at time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📊 <b>Portfolio</b> | %s\n\n", at.Format(dateLayout))
	if len(r.Rows) == 0 {
		b.WriteString("No holdings yet.")
		return b.String()
	}

	for _, row := range r.Rows {
		sym := html.EscapeString(row.Symbol)
		if row.PriceUnknown {
			fmt.Fprintf(&b, "• <b>%s</b> ×%d: price unavailable\n", sym, row.Quantity)
			continue
		}
		fmt.Fprintf(&b, "• <b>%s</b> ×%d @ %s: %s (%s, %s)\n",
			sym, row.Quantity,
			model.FormatMoney(row.Price.Decimal),
			model.FormatMoney(row.MarketValue),
			model.FormatSignedMoney(row.UnrealizedPL),
			signedPct(row.PLPct))
	}

	t := r.Totals
	b.WriteString("  ─────────────────\n")
	fmt.Fprintf(&b, "Invested: %s\n", model.FormatMoney(t.Invested))
	fmt.Fprintf(&b, "Market value: %s\n", model.FormatMoney(t.MarketValue))
	fmt.Fprintf(&b, "P&L: %s (%s)\n", model.FormatSignedMoney(t.PL), signedPct(t.PLPct))
	if t.Incomplete {
		fmt.Fprintf(&b, "\n⚠️ %d of %d holdings have no price; totals are incomplete.\n", t.Unpriced, t.Holdings)
	}
	return b.String()
}

// FormatWatchlist lists watched symbols with their latest prices.
func FormatWatchlist(lines []WatchLine) string {
	var b strings.Builder
	b.WriteString("👀 <b>Watchlist</b>\n\n")
	if len(lines) == 0 {
		b.WriteString("Watchlist is empty.")
		return b.String()
	}
	for _, l := range lines {
		fmt.Fprintf(&b, "• <b>%s</b>: ", html.EscapeString(l.Item.Symbol))
		if l.Quote.Available() {
			b.WriteString(model.FormatMoney(l.Quote.Price.Decimal))
		} else {
			b.WriteString("n/a")
		}
		if l.Item.AlertPrice.Valid {
			fmt.Fprintf(&b, " (alert %s)", model.FormatMoney(l.Item.AlertPrice.Decimal))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatAlert announces that a watched symbol crossed its alert price.
func FormatAlert(item model.WatchItem, q model.Quote) string {
	dir := "⬆️ rose through"
	if q.PreviousClose.Valid && q.Price.Decimal.LessThan(q.PreviousClose.Decimal) {
		dir = "⬇️ fell through"
	}
	return fmt.Sprintf("🔔 <b>%s</b> %s %s\n\nPrice: %s | Prev close: %s\nAs of: %s",
		html.EscapeString(item.Symbol), dir,
		model.FormatMoney(item.AlertPrice.Decimal),
		model.FormatMoney(q.Price.Decimal),
		model.FormatMoney(q.PreviousClose.Decimal),
		q.AsOf.Format(dateLayout))
}

// FormatSeries summarizes a trailing portfolio-value series.
func FormatSeries(s model.PortfolioSeries) string {
	if len(s.Points) == 0 {
		return "Not enough historical data to plot performance."
	}
	first, last := s.Points[0], s.Points[len(s.Points)-1]
	change := last.Value.Sub(first.Value)
	pct := decimal.Zero
	if !first.Value.IsZero() {
		pct = change.Div(first.Value).Mul(decimal.NewFromInt(100)).Round(2)
	}

	high, low := first, first
	for _, p := range s.Points {
		if p.Value.GreaterThan(high.Value) {
			high = p
		}
		if p.Value.LessThan(low.Value) {
			low = p
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📈 <b>Last %d days</b>\n\n", s.WindowDays)
	fmt.Fprintf(&b, "%s: %s\n", first.Date.Format(dateLayout), model.FormatMoney(first.Value))
	fmt.Fprintf(&b, "%s: %s\n", last.Date.Format(dateLayout), model.FormatMoney(last.Value))
	fmt.Fprintf(&b, "Change: %s (%s)\n", model.FormatSignedMoney(change), signedPct(pct))
	fmt.Fprintf(&b, "High: %s on %s\n", model.FormatMoney(high.Value), high.Date.Format(dateLayout))
	fmt.Fprintf(&b, "Low: %s on %s\n", model.FormatMoney(low.Value), low.Date.Format(dateLayout))
	return b.String()
}

func signedPct(p decimal.Decimal) string {
	s := p.StringFixed(2) + "%"
	if p.IsPositive() {
		return "+" + s
	}
	return s
}
