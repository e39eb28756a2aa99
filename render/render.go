// Package render formats positions, snapshots and reports for the terminal.
package render

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rustyeddy/hodl/position"
	"github.com/rustyeddy/hodl/report"
)

// PositionReport renders one position with its live PnL snapshot and the
// advisory, the output of the record command.
func PositionReport(p position.Position, snap position.Snapshot, sug position.Suggestion) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s (%s)\n", position.DisplayToken(p.Token), shortID(p.ID))
	fmt.Fprintf(&b, "  invested:   %s (initial %s + added %s)\n",
		usd(snap.TotalInvestedUSD), usd(p.InitialValueUSD), usd(p.CapitalAdditionsUSD))
	fmt.Fprintf(&b, "  current:    %s\n", usd(snap.CurrentValueUSD))
	fmt.Fprintf(&b, "  withdrawn:  %s   fees: %s\n", usd(p.WithdrawnUSD), usd(p.FeesClaimedUSD))
	fmt.Fprintf(&b, "  unrealized: %s   realized: %s\n",
		usd(snap.UnrealizedPnlUSD), usd(snap.RealizedPnlUSD))
	fmt.Fprintf(&b, "  total PnL:  %s (%.2f%%)\n", usd(snap.TotalPnlUSD), snap.PnlPercentage)
	if snap.ReferencePriceUSD > 0 {
		fmt.Fprintf(&b, "  in ref:     %.4f total / %.4f PnL @ %s\n",
			snap.CurrentValueRef, snap.TotalPnlRef, usd(snap.ReferencePriceUSD))
	}
	fmt.Fprintf(&b, "  suggest:    %s [%s] %s\n", sug.Action, sug.Confidence, sug.Reason)

	return b.String()
}

// ActiveList renders the open positions as a table. Unrealized PnL needs a
// manually supplied current value, so the list sticks to the bookkeeping
// figures plus realized PnL.
func ActiveList(positions []position.Position, referencePriceUSD float64, now time.Time) string {
	if len(positions) == 0 {
		return "no active positions\n"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 2, 4, 2, ' ', 0)

	fmt.Fprintln(w, "TOKEN\tINVESTED\tWITHDRAWN\tFEES\tREALIZED\tAGE\tUPDATED")
	for _, p := range positions {
		realized := p.WithdrawnUSD + p.FeesClaimedUSD
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%dd\t%s\n",
			position.DisplayToken(p.Token),
			usd(p.TotalInvestedUSD),
			usd(p.WithdrawnUSD),
			usd(p.FeesClaimedUSD),
			usd(realized),
			p.AgeDays(now),
			p.LastUpdated.Local().Format("2006-01-02 15:04"),
		)
	}
	w.Flush()

	if referencePriceUSD > 0 {
		fmt.Fprintf(&b, "\nreference price: %s\n", usd(referencePriceUSD))
	}
	return b.String()
}

// ClosedByToken renders closed positions grouped by token. Input order is
// preserved inside each group, so pass the records newest first.
func ClosedByToken(closed []position.Position) string {
	if len(closed) == 0 {
		return "no closed positions\n"
	}

	groups := map[string][]position.Position{}
	var order []string
	for _, p := range closed {
		if _, seen := groups[p.Token]; !seen {
			order = append(order, p.Token)
		}
		groups[p.Token] = append(groups[p.Token], p)
	}

	var b strings.Builder
	for i, token := range order {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s\n", position.DisplayToken(token))
		for _, p := range groups[token] {
			closedAt := "?"
			if p.ClosedAt != nil {
				closedAt = p.ClosedAt.Local().Format("2006-01-02")
			}
			fmt.Fprintf(&b, "  %s  exit %s  PnL %s (%.2f%%)  invested %s\n",
				closedAt, usd(p.ExitValueUSD), usd(p.FinalPnlUSD),
				p.FinalPnlPercentage, usd(p.TotalInvestedUSD))
		}
	}
	return b.String()
}

// Summary renders the trailing-window daily report plus the all-time stats.
func Summary(s report.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "last %d days\n", s.WindowDays)
	if len(s.Days) == 0 {
		b.WriteString("  no closed positions in window\n")
	}
	for _, d := range s.Days {
		fmt.Fprintf(&b, "  %s  %d closed, %d W / %d L, PnL %s\n",
			d.Day.Format("2006-01-02"), d.Count, d.Wins, d.Losses, usd(d.TotalPnlUSD))
	}

	b.WriteString("\nall time\n")
	b.WriteString(statsBlock(s.AllTime))
	return b.String()
}

func statsBlock(s report.Stats) string {
	if s.Count == 0 {
		return "  no closed positions\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  closed:       %d (%d wins / %d losses, %.1f%% win rate)\n",
		s.Count, s.Wins, s.Losses, s.WinRate)
	fmt.Fprintf(&b, "  invested:     %s\n", usd(s.TotalInvestedUSD))
	fmt.Fprintf(&b, "  total PnL:    %s (%.2f%%)\n", usd(s.TotalPnlUSD), s.PnlPercentage)
	fmt.Fprintf(&b, "  avg win:      %s   avg loss: %s\n", usd(s.AvgWinUSD), usd(s.AvgLossUSD))
	fmt.Fprintf(&b, "  largest win:  %s (%.2f%%)\n", usd(s.LargestWinUSD), s.LargestWinPct)
	fmt.Fprintf(&b, "  largest loss: %s (%.2f%%)\n", usd(s.LargestLossUSD), s.LargestLossPct)
	fmt.Fprintf(&b, "  expectancy:   %s per trade\n", usd(s.ExpectedValueUSD))
	return b.String()
}

func usd(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-$%.2f", -v)
	}
	return fmt.Sprintf("$%.2f", v)
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
