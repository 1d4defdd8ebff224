// Command valuebet scans bookmaker odds for value bets and sizes stakes with a
// fractional Kelly criterion.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/value-better/internal/config"
	"github.com/yourusername/value-better/internal/logger"
	"github.com/yourusername/value-better/internal/metrics"
	"github.com/yourusername/value-better/internal/probability"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cli holds the state shared by subcommands after the root pre-run
type cli struct {
	configFile string
	envFile    string

	bankroll float64
	strategy string
	sport    string

	cfg *config.Config
	log *logrus.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "valuebet",
		Short: "Find value bets in bookmaker odds",
		Long: `valuebet fetches decimal odds, estimates home/draw/away probabilities with a
configurable strategy (frequency calibration, de-vig or a trained classifier), scores
each outcome's edge and suggests a fractional Kelly stake.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd, args)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&c.configFile, "config", "c", config.DefaultPath, "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "Path to a .env file loaded before configuration")
	rootCmd.PersistentFlags().Float64Var(&c.bankroll, "bankroll", 0, "Override betting.bankroll")
	rootCmd.PersistentFlags().StringVar(&c.strategy, "strategy", "", "Override betting.strategy ("+strategyNames()+")")
	rootCmd.PersistentFlags().StringVar(&c.sport, "sport", "", "Override odds_api.sport")

	rootCmd.AddCommand(
		newScanCmd(c),
		newScoreCmd(c),
		newWatchCmd(c),
		newCalibrateCmd(c),
		newImportCmd(c),
		newBacktestCmd(c),
		newVersionCmd(),
	)
	return rootCmd
}

// setup loads .env and configuration, applies flag overrides, validates and builds the
// logger
func (c *cli) setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(c.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", c.envFile, err)
	}

	cfg, err := config.LoadWithDefaults(c.configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("bankroll") {
		cfg.Betting.Bankroll = c.bankroll
	}
	if flags.Changed("strategy") {
		cfg.Betting.Strategy = c.strategy
	}
	if flags.Changed("sport") {
		cfg.OddsAPI.Sport = c.sport
	}
	if cmd.Name() == "score" && len(args) > 0 {
		cfg.OddsAPI.Provider = "file"
		cfg.OddsAPI.FixturePath = args[0]
	}

	if cfg.UsesSecretsManager() {
		if err := config.LoadSecretsFromAWS(cmd.Context(), cfg); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.ValidateEnvironment(cfg); err != nil {
		return err
	}

	c.cfg = cfg
	c.log = logger.NewLogger(logger.Options{
		Level:  cfg.App.LogLevel,
		Format: cfg.Logging.Format,
		File: logger.FileOptions{
			Path:       cfg.Logging.File,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Compress:   cfg.Logging.Compress,
		},
	})
	metrics.InitRegistry()
	return nil
}

func strategyNames() string {
	names := ""
	for i, s := range probability.Strategies {
		if i > 0 {
			names += ", "
		}
		names += string(s)
	}
	return names
}
