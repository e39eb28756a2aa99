package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/hodl/position"
)

var addCmd = &cobra.Command{
	Use:   "add <token> <amount>",
	Short: "Add capital to the active position",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFlow(args, "added", func(bk flowBook, token string, amount float64) (position.Position, error) {
			return bk.AddCapital(token, amount)
		})
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw <token> <amount>",
	Short: "Withdraw capital from the active position",
	Long: `Withdraw capital from the active position.

A withdrawal is capital coming back to you: it counts toward realized PnL and
leaves the invested total untouched.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFlow(args, "withdrew", func(bk flowBook, token string, amount float64) (position.Position, error) {
			return bk.Withdraw(token, amount)
		})
	},
}

var claimCmd = &cobra.Command{
	Use:   "claim <token> <amount>",
	Short: "Record claimed fees on the active position",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFlow(args, "claimed", func(bk flowBook, token string, amount float64) (position.Position, error) {
			return bk.ClaimFees(token, amount)
		})
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(withdrawCmd)
	rootCmd.AddCommand(claimCmd)
}

// flowBook is the slice of the book the capital-flow commands use.
type flowBook interface {
	AddCapital(token string, amountUSD float64) (position.Position, error)
	Withdraw(token string, amountUSD float64) (position.Position, error)
	ClaimFees(token string, amountUSD float64) (position.Position, error)
}

func runFlow(args []string, verb string, op func(flowBook, string, float64) (position.Position, error)) error {
	token := args[0]
	amount, err := parseAmount("amount", args[1])
	if err != nil {
		return err
	}

	bk, _, cleanup, err := openBook()
	if err != nil {
		return err
	}
	defer cleanup()

	p, err := op(bk, token, amount)
	if err != nil {
		return err
	}

	fmt.Printf("%s $%.2f on %s: invested $%.2f, withdrawn $%.2f, fees $%.2f\n",
		verb, amount, position.DisplayToken(p.Token),
		p.TotalInvestedUSD, p.WithdrawnUSD, p.FeesClaimedUSD)
	return nil
}
