package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yourusername/value-better/internal/backtest"
	"github.com/yourusername/value-better/internal/report"
)

func newBacktestCmd(c *cli) *cobra.Command {
	var (
		trainFraction float64
		compound      bool
		format        string
		curvePath     string
	)

	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Replay the configured strategy over historical results",
		Long: `Backtest orders the configured historical fixtures by kick-off, fits the
estimator on the oldest share of them and bets the rest with the configured Kelly
settings, settling each bet against the recorded result.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			btCfg, err := backtest.FromConfig(c.cfg, trainFraction, compound)
			if err != nil {
				return err
			}
			engine, err := backtest.NewEngine(btCfg, c.log)
			if err != nil {
				return err
			}

			_, store, closeStore, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			fixtures, err := c.loadFixtures(ctx, store)
			if err != nil {
				return err
			}

			res, err := engine.Run(ctx, fixtures)
			if err != nil {
				return err
			}

			if curvePath != "" {
				f, err := os.Create(curvePath)
				if err != nil {
					return fmt.Errorf("equity curve: %w", err)
				}
				defer f.Close()
				if err := res.Curve.WriteCSV(f); err != nil {
					return fmt.Errorf("equity curve: %w", err)
				}
			}
			return backtest.Render(cmd.OutOrStdout(), res, format)
		},
	}

	cmd.Flags().Float64Var(&trainFraction, "train-fraction", backtest.DefaultTrainFraction, "Share of fixtures, oldest first, used to fit the estimator")
	cmd.Flags().BoolVar(&compound, "compound", false, "Size stakes from the running bankroll")
	cmd.Flags().StringVarP(&format, "format", "f", report.FormatTable, "Output format (table, json)")
	cmd.Flags().StringVar(&curvePath, "curve", "", "Write the equity curve to this CSV file")
	return cmd
}
