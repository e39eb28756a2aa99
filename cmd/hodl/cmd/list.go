package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/hodl/render"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List active positions",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var closedCmd = &cobra.Command{
	Use:   "closed",
	Short: "List closed positions, grouped by token, newest first",
	Args:  cobra.NoArgs,
	RunE:  runClosed,
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(closedCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	bk, cfg, cleanup, err := openBook()
	if err != nil {
		return err
	}
	defer cleanup()

	active, err := bk.Active()
	if err != nil {
		return err
	}

	price := newOracle(cfg).PriceUSD(cmd.Context())
	fmt.Print(render.ActiveList(active, price, time.Now()))
	return nil
}

func runClosed(cmd *cobra.Command, args []string) error {
	bk, _, cleanup, err := openBook()
	if err != nil {
		return err
	}
	defer cleanup()

	closed, err := bk.Closed()
	if err != nil {
		return err
	}

	fmt.Print(render.ClosedByToken(closed))
	return nil
}
