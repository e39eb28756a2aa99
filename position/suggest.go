package position

import (
	"fmt"
	"time"
)

// Action is the advisory verdict for a position.
type Action string

const (
	TakeProfit Action = "TAKE_PROFIT"
	Reduce     Action = "REDUCE"
	StopLoss   Action = "STOP_LOSS"
	TopUp      Action = "TOP_UP"
	Hold       Action = "HOLD"
)

// Confidence tags how strongly a rule fired.
type Confidence string

const (
	High   Confidence = "HIGH"
	Medium Confidence = "MEDIUM"
	Low    Confidence = "LOW"
)

// Suggestion is the output of the advisory rules: one action, the confidence
// tier, and a reason embedding the numbers that drove the decision.
type Suggestion struct {
	Action     Action
	Confidence Confidence
	Reason     string
}

// ruleInput is everything a rule may look at.
type ruleInput struct {
	snap    Snapshot
	ageDays int
}

// rule pairs a predicate with the suggestion it yields. Rules are evaluated
// in order and the first match wins, so a rule's predicate can assume every
// earlier predicate was false.
type rule struct {
	match func(in ruleInput) bool
	apply func(in ruleInput) Suggestion
}

var rules = []rule{
	{
		// Claimed fees approaching the unrealized gain: the paper profit is
		// mostly already spent. Ratio is only meaningful with positive
		// unrealized PnL, hence the floor of $10.
		match: func(in ruleInput) bool {
			return in.snap.UnrealizedPnlUSD > 10 &&
				in.snap.RealizedPnlUSD/in.snap.UnrealizedPnlUSD > 0.8
		},
		apply: func(in ruleInput) Suggestion {
			return Suggestion{TakeProfit, High, fmt.Sprintf(
				"realized $%.2f is %.2fx the $%.2f unrealized gain: fees are eating the upside, lock it in",
				in.snap.RealizedPnlUSD,
				in.snap.RealizedPnlUSD/in.snap.UnrealizedPnlUSD,
				in.snap.UnrealizedPnlUSD)}
		},
	},
	{
		match: func(in ruleInput) bool { return in.snap.PnlPercentage >= 25 },
		apply: func(in ruleInput) Suggestion {
			return Suggestion{TakeProfit, High, fmt.Sprintf(
				"up %.2f%%, above the 25%% take-profit line", in.snap.PnlPercentage)}
		},
	},
	{
		match: func(in ruleInput) bool { return in.snap.PnlPercentage >= 15 },
		apply: func(in ruleInput) Suggestion {
			return Suggestion{Reduce, Medium, fmt.Sprintf(
				"up %.2f%%, above the 15%% trim line", in.snap.PnlPercentage)}
		},
	},
	{
		match: func(in ruleInput) bool { return in.snap.PnlPercentage <= -20 },
		apply: func(in ruleInput) Suggestion {
			return Suggestion{StopLoss, High, fmt.Sprintf(
				"down %.2f%%, past the -20%% stop", in.snap.PnlPercentage)}
		},
	},
	{
		match: func(in ruleInput) bool { return in.snap.PnlPercentage <= -10 },
		apply: func(in ruleInput) Suggestion {
			if in.ageDays > 30 {
				return Suggestion{Reduce, Medium, fmt.Sprintf(
					"down %.2f%% after %d days, cut the position back",
					in.snap.PnlPercentage, in.ageDays)}
			}
			return Suggestion{Hold, Low, fmt.Sprintf(
				"down %.2f%% at %d days, give it room",
				in.snap.PnlPercentage, in.ageDays)}
		},
	},
	{
		match: func(in ruleInput) bool {
			return in.snap.PnlPercentage >= 0 && in.snap.PnlPercentage < 5
		},
		apply: func(in ruleInput) Suggestion {
			if in.snap.RealizedPnlUSD > 0 {
				return Suggestion{TopUp, Medium, fmt.Sprintf(
					"flat at %.2f%% but $%.2f already realized, position is paying",
					in.snap.PnlPercentage, in.snap.RealizedPnlUSD)}
			}
			return Suggestion{Hold, Low, fmt.Sprintf(
				"flat at %.2f%% with nothing realized yet", in.snap.PnlPercentage)}
		},
	},
	{
		match: func(in ruleInput) bool {
			return in.snap.PnlPercentage >= 5 && in.snap.PnlPercentage < 15
		},
		apply: func(in ruleInput) Suggestion {
			return Suggestion{Hold, Medium, fmt.Sprintf(
				"up %.2f%%, let it run", in.snap.PnlPercentage)}
		},
	},
	{
		// Catch-all. The bands above cover every reachable percentage, but
		// the evaluator must be total.
		match: func(in ruleInput) bool { return true },
		apply: func(in ruleInput) Suggestion {
			return Suggestion{Hold, Low, fmt.Sprintf(
				"no rule triggered at %.2f%%", in.snap.PnlPercentage)}
		},
	},
}

// Suggest derives one advisory from a position and its snapshot. The rules
// form an ordered decision list; identical inputs always produce the same
// suggestion, reason text included.
func Suggest(p Position, snap Snapshot, now time.Time) Suggestion {
	in := ruleInput{snap: snap, ageDays: p.AgeDays(now)}
	for _, r := range rules {
		if r.match(in) {
			return r.apply(in)
		}
	}
	// Unreachable: the last rule always matches.
	return Suggestion{Hold, Low, "no rule triggered"}
}
