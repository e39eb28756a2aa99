package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/hodl/position"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Drop positions with an absurd initial value",
	Long: `Drop every position whose initial value exceeds the sanity ceiling
(clean.max_initial_usd in the config). Fat-fingered entries mostly.`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Rewrite the store in the current schema",
	Long: `Load the store — upgrading any legacy-format records on the way in —
and write it back. Safe to run repeatedly; a current-format store is a no-op.`,
	Args: cobra.NoArgs,
	RunE: runFix,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(fixCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	bk, cfg, cleanup, err := openBook()
	if err != nil {
		return err
	}
	defer cleanup()

	dropped, err := bk.Clean(cfg.Clean.MaxInitialUSD)
	if err != nil {
		return err
	}

	if len(dropped) == 0 {
		fmt.Printf("nothing above $%.2f, store untouched\n", cfg.Clean.MaxInitialUSD)
		return nil
	}
	for _, p := range dropped {
		fmt.Printf("dropped %s (initial $%.2f)\n",
			position.DisplayToken(p.Token), p.InitialValueUSD)
	}
	return nil
}

func runFix(cmd *cobra.Command, args []string) error {
	bk, _, cleanup, err := openBook()
	if err != nil {
		return err
	}
	defer cleanup()

	n, err := bk.Fix()
	if err != nil {
		return err
	}

	fmt.Printf("store rewritten, %d positions\n", n)
	return nil
}
