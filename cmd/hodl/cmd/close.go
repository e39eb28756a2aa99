package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/hodl/position"
)

var closeCmd = &cobra.Command{
	Use:   "close <token> <exitValue> [finalFees]",
	Short: "Close the active position at an exit value",
	Long: `Close the active position. The exit value plus everything already
withdrawn and claimed, measured against the invested total, becomes the final
PnL frozen on the record. Closed records are permanent and show up in the
closed and summary commands.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runClose,
}

var resetCmd = &cobra.Command{
	Use:   "reset <token> <newValue>",
	Short: "Throw away the active position and start over",
	Long: `Delete the active position outright — no closed record is kept — and
open a fresh one at the new initial value.`,
	Args: cobra.ExactArgs(2),
	RunE: runReset,
}

var removeCmd = &cobra.Command{
	Use:   "remove <token>",
	Short: "Delete the active position without a trace",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func init() {
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(removeCmd)
}

func runClose(cmd *cobra.Command, args []string) error {
	token := args[0]

	exitValue, err := parseAmount("exit value", args[1])
	if err != nil {
		return err
	}

	var finalFees float64
	if len(args) == 3 {
		if finalFees, err = parseAmount("final fees", args[2]); err != nil {
			return err
		}
	}

	bk, _, cleanup, err := openBook()
	if err != nil {
		return err
	}
	defer cleanup()

	p, err := bk.Close(token, exitValue, finalFees)
	if err != nil {
		return err
	}

	fmt.Printf("closed %s at $%.2f: PnL $%.2f (%.2f%%)\n",
		position.DisplayToken(p.Token), p.ExitValueUSD,
		p.FinalPnlUSD, p.FinalPnlPercentage)
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	token := args[0]

	newValue, err := parseAmount("new value", args[1])
	if err != nil {
		return err
	}

	bk, _, cleanup, err := openBook()
	if err != nil {
		return err
	}
	defer cleanup()

	p, err := bk.Reset(token, newValue)
	if err != nil {
		return err
	}

	fmt.Printf("reset %s: fresh position at $%.2f\n",
		position.DisplayToken(p.Token), p.InitialValueUSD)
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	bk, _, cleanup, err := openBook()
	if err != nil {
		return err
	}
	defer cleanup()

	p, err := bk.Remove(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("removed %s (invested $%.2f)\n",
		position.DisplayToken(p.Token), p.TotalInvestedUSD)
	return nil
}
