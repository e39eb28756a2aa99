package cmd

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/hodl/book"
	"github.com/rustyeddy/hodl/config"
	"github.com/rustyeddy/hodl/oracle"
	"github.com/rustyeddy/hodl/store"
)

var rootCmd = &cobra.Command{
	Use:   "hodl",
	Short: "Bookkeeping for manually tracked crypto positions",
	Long: `hodl tracks capital you have committed to tokens: the initial buy-in,
later additions, withdrawals and claimed fees. Every record you give it a
current value for gets a PnL breakdown against the live reference price and
a rule-based trade suggestion.

Typical session:
  hodl record sol 200          # open a position at $200
  hodl record sol 240 5        # revisit: worth $240 now, $5 fees claimed
  hodl add sol 100             # put in another $100
  hodl withdraw sol 50         # take $50 off the table
  hodl close sol 500 10        # close at $500 with $10 final fees
  hodl summary                 # daily + all-time stats over closed rounds`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if flagVerbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr,
			&slog.HandlerOptions{Level: level})))
	},
}

var (
	flagConfig  string
	flagStore   string
	flagVerbose bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "override the position store file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose diagnostics")
}

// Execute runs the root command tree.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagStore != "" {
		cfg.Store.Type = "json"
		cfg.Store.Path = flagStore
	}
	return cfg, nil
}

// openBook wires the configured store into a lifecycle manager. The returned
// cleanup must run when the command is done.
func openBook() (*book.Book, *config.Config, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	var st store.Store
	switch cfg.Store.Type {
	case "sqlite":
		st, err = store.NewSQLite(cfg.Store.DBPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open store: %w", err)
		}
	default:
		st = store.NewJSON(cfg.Store.Path)
	}

	cleanup := func() {
		if err := st.Close(); err != nil {
			slog.Warn("close store", "err", err)
		}
	}
	return book.New(st), cfg, cleanup, nil
}

func newOracle(cfg *config.Config) oracle.Oracle {
	return oracle.NewClient(oracle.Options{
		Endpoint:    cfg.Oracle.Endpoint,
		TokenID:     cfg.Oracle.TokenID,
		Timeout:     cfg.Oracle.Timeout(),
		CachePath:   cfg.Oracle.CachePath,
		MaxStale:    cfg.Oracle.MaxStale(),
		FallbackUSD: cfg.Oracle.FallbackPriceUSD,
		Logger:      slog.Default(),
	})
}

// parseAmount validates a numeric CLI argument: well-formed and finite, or
// the command dies before touching the store.
func parseAmount(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", name, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: %q is not a finite number", name, raw)
	}
	return v, nil
}
