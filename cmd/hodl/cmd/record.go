package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/hodl/position"
	"github.com/rustyeddy/hodl/render"
)

var recordCmd = &cobra.Command{
	Use:   "record <token> <value> [fees]",
	Short: "Record a position's current value (opens one if needed)",
	Long: `Record the current USD value of a token position.

If no active position exists for the token, one is opened with the given
value as the initial investment. If one exists already, the optional fees are
added to its claimed-fee total. Either way the live PnL and a suggestion are
printed against the given value.

Examples:
  hodl record sol 200
  hodl record sol 240 5`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)
}

func runRecord(cmd *cobra.Command, args []string) error {
	token := args[0]

	value, err := parseAmount("value", args[1])
	if err != nil {
		return err
	}

	var fees float64
	if len(args) == 3 {
		if fees, err = parseAmount("fees", args[2]); err != nil {
			return err
		}
	}

	bk, cfg, cleanup, err := openBook()
	if err != nil {
		return err
	}
	defer cleanup()

	p, created, err := bk.Record(token, value, fees)
	if err != nil {
		return err
	}

	if created {
		fmt.Printf("opened %s at $%.2f\n\n", position.DisplayToken(p.Token), p.InitialValueUSD)
	}

	now := time.Now()
	price := newOracle(cfg).PriceUSD(cmd.Context())
	snap := position.Compute(p, value, price)
	sug := position.Suggest(p, snap, now)

	fmt.Print(render.PositionReport(p, snap, sug))
	return nil
}
