// Package report derives portfolio statistics from closed positions. All
// functions are pure over their inputs; the reporting instant is injected so
// day bucketing is deterministic in tests.
package report

import (
	"sort"
	"time"

	"github.com/rustyeddy/hodl/position"
)

// Stats summarizes a set of closed positions. A win is a positive final PnL;
// everything else counts as a loss. AvgLossUSD and LargestLossUSD are
// negative (or zero) so expected value composes without sign juggling.
type Stats struct {
	Count  int
	Wins   int
	Losses int

	WinRate float64 // percent

	TotalInvestedUSD float64
	TotalPnlUSD      float64
	PnlPercentage    float64

	AvgWinUSD  float64
	AvgLossUSD float64

	LargestWinUSD  float64
	LargestLossUSD float64
	LargestWinPct  float64
	LargestLossPct float64

	// ExpectedValueUSD = P(win)·avgWin + P(loss)·avgLoss.
	ExpectedValueUSD float64
}

// Compute aggregates the closed records. Largest win/loss by dollars and by
// percentage are tracked independently: the biggest dollar win is not
// necessarily the biggest percentage win.
func Compute(closed []position.Position) Stats {
	var s Stats
	var winSum, lossSum float64

	for _, p := range closed {
		if !p.IsClosed {
			continue
		}
		s.Count++
		s.TotalInvestedUSD += p.TotalInvestedUSD
		s.TotalPnlUSD += p.FinalPnlUSD

		if p.FinalPnlUSD > 0 {
			s.Wins++
			winSum += p.FinalPnlUSD
			if p.FinalPnlUSD > s.LargestWinUSD {
				s.LargestWinUSD = p.FinalPnlUSD
			}
			if p.FinalPnlPercentage > s.LargestWinPct {
				s.LargestWinPct = p.FinalPnlPercentage
			}
		} else {
			s.Losses++
			lossSum += p.FinalPnlUSD
			if p.FinalPnlUSD < s.LargestLossUSD {
				s.LargestLossUSD = p.FinalPnlUSD
			}
			if p.FinalPnlPercentage < s.LargestLossPct {
				s.LargestLossPct = p.FinalPnlPercentage
			}
		}
	}

	if s.Count == 0 {
		return s
	}

	s.WinRate = float64(s.Wins) / float64(s.Count) * 100
	if s.TotalInvestedUSD > 0 {
		s.PnlPercentage = s.TotalPnlUSD / s.TotalInvestedUSD * 100
	}
	if s.Wins > 0 {
		s.AvgWinUSD = winSum / float64(s.Wins)
	}
	if s.Losses > 0 {
		s.AvgLossUSD = lossSum / float64(s.Losses)
	}

	pWin := float64(s.Wins) / float64(s.Count)
	pLoss := float64(s.Losses) / float64(s.Count)
	s.ExpectedValueUSD = pWin*s.AvgWinUSD + pLoss*s.AvgLossUSD

	return s
}

// DayStats is one calendar day's worth of closed trades.
type DayStats struct {
	Day time.Time // midnight, local to the injected now
	Stats
}

// Summary is the trailing-window report: per-day stats newest first, plus an
// all-time rollup over the entire closed set.
type Summary struct {
	WindowDays int
	Days       []DayStats
	AllTime    Stats
}

// Daily buckets the closed set by the calendar day of closed_at over the
// trailing windowDays ending at now. Days with no closes are omitted. The
// all-time rollup ignores the window.
func Daily(closed []position.Position, now time.Time, windowDays int) Summary {
	if windowDays <= 0 {
		windowDays = 7
	}

	loc := now.Location()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).Add(24 * time.Hour)
	start := end.AddDate(0, 0, -windowDays)

	buckets := map[time.Time][]position.Position{}
	for _, p := range closed {
		if !p.IsClosed || p.ClosedAt == nil {
			continue
		}
		at := p.ClosedAt.In(loc)
		if at.Before(start) || !at.Before(end) {
			continue
		}
		day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, loc)
		buckets[day] = append(buckets[day], p)
	}

	days := make([]DayStats, 0, len(buckets))
	for day, set := range buckets {
		days = append(days, DayStats{Day: day, Stats: Compute(set)})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day.After(days[j].Day) })

	return Summary{
		WindowDays: windowDays,
		Days:       days,
		AllTime:    Compute(closed),
	}
}
